package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Portfolio is the aggregate holding record of one client.
//
// LastUpdated has no trigger behind it: whoever changes the holdings or
// recomputes TotalValue is expected to refresh it.
type Portfolio struct {
	Base
	ClientID    string          `gorm:"type:uuid;not null;uniqueIndex:uq_portfolios_client_id" json:"client_id" validate:"required"`
	TotalValue  decimal.Decimal `gorm:"type:numeric(19,4);not null" json:"total_value"`
	LastUpdated time.Time       `gorm:"not null" json:"last_updated"`

	Client *Client `gorm:"foreignKey:ClientID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT" json:"client,omitempty" validate:"-"`
}

// NewPortfolio returns an empty, zero-valued portfolio for a client.
func NewPortfolio(clientID string) *Portfolio {
	return &Portfolio{
		ClientID:    clientID,
		TotalValue:  decimal.Zero,
		LastUpdated: now(),
	}
}
