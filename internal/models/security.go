package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Security is a single holding within a portfolio, classified by a
// SecurityType. Deleting a security never touches its type.
type Security struct {
	Base
	PortfolioID   string          `gorm:"type:uuid;not null;index:idx_securities_portfolio_id" json:"portfolio_id" validate:"required"`
	TypeID        string          `gorm:"column:type_id;type:uuid;not null;index:idx_securities_type_id" json:"type_id" validate:"required"`
	Name          string          `gorm:"size:200;not null" json:"name" validate:"required"`
	PurchasePrice decimal.Decimal `gorm:"type:numeric(19,4);not null" json:"purchase_price"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	PurchaseDate  datatypes.Date  `gorm:"not null" json:"purchase_date" validate:"required_date"`
	CreatedAt     time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt     *time.Time      `json:"updated_at,omitempty"`

	Portfolio *Portfolio    `gorm:"foreignKey:PortfolioID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT" json:"-" validate:"-"`
	Type      *SecurityType `gorm:"foreignKey:TypeID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT" json:"type,omitempty" validate:"-"`
}

// NewSecurity returns an unsaved holding.
func NewSecurity(portfolioID, typeID, name string, purchasePrice decimal.Decimal, quantity int, purchaseDate datatypes.Date) *Security {
	ts := now()
	return &Security{
		PortfolioID:   portfolioID,
		TypeID:        typeID,
		Name:          name,
		PurchasePrice: purchasePrice,
		Quantity:      quantity,
		PurchaseDate:  purchaseDate,
		CreatedAt:     ts,
		UpdatedAt:     &ts,
	}
}
