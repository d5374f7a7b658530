package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"counselor/internal/models"
	"counselor/internal/pagination"
)

// CascadeResult reports what a cascading delete removed.
type CascadeResult struct {
	PortfolioDeleted  bool  `json:"portfolio_deleted"`
	SecuritiesDeleted int64 `json:"securities_deleted"`
}

// AdvisorUpdate holds the advisor fields to change. Nil fields are left as is.
type AdvisorUpdate struct {
	FirstName        *string
	LastName         *string
	Email            *string
	PhoneNumber      *string
	ClearPhoneNumber bool
}

// AdvisorServicer defines the contract for advisor records.
type AdvisorServicer interface {
	CreateAdvisor(ctx context.Context, firstName, lastName, email string, phoneNumber *string) (*models.Advisor, error)
	GetAdvisorByID(ctx context.Context, id string) (*models.Advisor, error)
	GetAdvisorByEmail(ctx context.Context, email string) (*models.Advisor, error)
	ListAdvisors(ctx context.Context, page pagination.PageRequest) (*pagination.Page[models.Advisor], error)
	UpdateAdvisor(ctx context.Context, id string, upd AdvisorUpdate) (*models.Advisor, error)
	RecordLogin(ctx context.Context, id string, at time.Time) error
	DeleteAdvisor(ctx context.Context, id string) error
}

// ClientUpdate holds the client fields to change. Nil fields are left as is.
// The advisor is changed with ReassignClient.
type ClientUpdate struct {
	FirstName        *string
	LastName         *string
	Email            *string
	PhoneNumber      *string
	ClearPhoneNumber bool
}

// ClientServicer defines the contract for client records.
type ClientServicer interface {
	CreateClient(ctx context.Context, advisorID, firstName, lastName, email string, phoneNumber *string) (*models.Client, error)
	GetClientByID(ctx context.Context, id string) (*models.Client, error)
	GetClientByEmail(ctx context.Context, email string) (*models.Client, error)
	ListClientsByAdvisor(ctx context.Context, advisorID string, page pagination.PageRequest) (*pagination.Page[models.Client], error)
	UpdateClient(ctx context.Context, id string, upd ClientUpdate) (*models.Client, error)
	ReassignClient(ctx context.Context, id, advisorID string) (*models.Client, error)
	DeleteClient(ctx context.Context, id string) (*CascadeResult, error)
}

// PortfolioServicer defines the contract for portfolio records.
type PortfolioServicer interface {
	CreatePortfolio(ctx context.Context, clientID string) (*models.Portfolio, error)
	GetPortfolioByID(ctx context.Context, id string) (*models.Portfolio, error)
	GetPortfolioByClientID(ctx context.Context, clientID string) (*models.Portfolio, error)
	UpdateTotalValue(ctx context.Context, id string, value decimal.Decimal, at time.Time) (*models.Portfolio, error)
	Touch(ctx context.Context, id string, at time.Time) (*models.Portfolio, error)
	DeletePortfolio(ctx context.Context, id string) (*CascadeResult, error)
}

// SecurityUpdate holds the holding fields to change. Nil fields are left as is.
type SecurityUpdate struct {
	TypeID        *string
	Name          *string
	PurchasePrice *decimal.Decimal
	Quantity      *int
	PurchaseDate  *datatypes.Date
}

// SecurityServicer defines the contract for holdings.
type SecurityServicer interface {
	AddSecurity(ctx context.Context, portfolioID, typeID, name string, purchasePrice decimal.Decimal, quantity int, purchaseDate datatypes.Date) (*models.Security, error)
	GetSecurityByID(ctx context.Context, id string) (*models.Security, error)
	ListPortfolioSecurities(ctx context.Context, portfolioID string) ([]models.Security, error)
	UpdateSecurity(ctx context.Context, id string, upd SecurityUpdate) (*models.Security, error)
	RemoveSecurity(ctx context.Context, id string) error
}

// SecurityTypeUpdate holds the security type fields to change.
type SecurityTypeUpdate struct {
	Name             *string
	Description      *string
	ClearDescription bool
}

// SecurityTypeServicer defines the contract for the security type lookup.
type SecurityTypeServicer interface {
	CreateSecurityType(ctx context.Context, name string, description *string) (*models.SecurityType, error)
	GetSecurityTypeByID(ctx context.Context, id string) (*models.SecurityType, error)
	GetSecurityTypeByName(ctx context.Context, name string) (*models.SecurityType, error)
	ListSecurityTypes(ctx context.Context, page pagination.PageRequest) (*pagination.Page[models.SecurityType], error)
	UpdateSecurityType(ctx context.Context, id string, upd SecurityTypeUpdate) (*models.SecurityType, error)
	ReassignSecurityType(ctx context.Context, fromID, toID string) (int64, error)
	DeleteSecurityType(ctx context.Context, id string) error
	EnsureDefaultSecurityTypes(ctx context.Context) ([]models.SecurityType, error)
}
