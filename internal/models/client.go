package models

import "time"

// Client is an individual managed by exactly one advisor. A client owns at
// most one portfolio, which is deleted together with the client.
type Client struct {
	Base
	AdvisorID   string     `gorm:"type:uuid;not null;index:idx_clients_advisor_id" json:"advisor_id" validate:"required"`
	FirstName   string     `gorm:"size:100;not null" json:"first_name" validate:"required"`
	LastName    string     `gorm:"size:100;not null" json:"last_name" validate:"required"`
	Email       string     `gorm:"size:255;not null;uniqueIndex:uq_clients_email" json:"email" validate:"required"`
	PhoneNumber *string    `gorm:"size:50" json:"phone_number,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`

	// Read-side association, loaded with Preload. Never written through.
	Advisor *Advisor `gorm:"foreignKey:AdvisorID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT" json:"advisor,omitempty" validate:"-"`
}

// NewClient returns an unsaved client of the given advisor.
func NewClient(advisorID, firstName, lastName, email string, phoneNumber *string) *Client {
	ts := now()
	return &Client{
		AdvisorID:   advisorID,
		FirstName:   firstName,
		LastName:    lastName,
		Email:       email,
		PhoneNumber: phoneNumber,
		CreatedAt:   ts,
		UpdatedAt:   &ts,
	}
}
