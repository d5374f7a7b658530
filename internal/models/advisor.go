package models

import "time"

// Advisor is a financial professional who manages clients.
// Clients reference their advisor; there is no back-collection here, use
// the clients-by-advisor lookup instead.
type Advisor struct {
	Base
	FirstName   string     `gorm:"size:100;not null" json:"first_name" validate:"required"`
	LastName    string     `gorm:"size:100;not null" json:"last_name" validate:"required"`
	Email       string     `gorm:"size:255;not null;uniqueIndex:uq_advisors_email" json:"email" validate:"required"`
	PhoneNumber *string    `gorm:"size:50" json:"phone_number,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
}

// NewAdvisor returns an unsaved advisor stamped with the current time.
func NewAdvisor(firstName, lastName, email string, phoneNumber *string) *Advisor {
	return &Advisor{
		FirstName:   firstName,
		LastName:    lastName,
		Email:       email,
		PhoneNumber: phoneNumber,
		CreatedAt:   now(),
	}
}
