// Package counselor is the record store of a financial-advisory system:
// advisors, their clients, each client's portfolio, the securities held in
// it and the shared security type lookup.
//
// Open a Store from a configuration and use its services:
//
//	store, err := counselor.OpenFromEnv()
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	advisor, err := store.Advisors.CreateAdvisor(ctx, "Ada", "Lovelace", "ada@example.com", nil)
//
// Every store operation returns an *AppError on failure. Use
// IsConstraintViolation, IsReferentialViolation and IsNotFound to branch on
// the kind of failure, or compare the Code.
package counselor

import (
	"fmt"

	"gorm.io/gorm"

	"counselor/internal/config"
	"counselor/internal/database"
	apperrors "counselor/internal/errors"
	"counselor/internal/logger"
	"counselor/internal/models"
	"counselor/internal/pagination"
	"counselor/internal/services"
)

type (
	Advisor      = models.Advisor
	Client       = models.Client
	Portfolio    = models.Portfolio
	Security     = models.Security
	SecurityType = models.SecurityType

	AdvisorService      = services.AdvisorServicer
	ClientService       = services.ClientServicer
	PortfolioService    = services.PortfolioServicer
	SecurityService     = services.SecurityServicer
	SecurityTypeService = services.SecurityTypeServicer

	AdvisorUpdate      = services.AdvisorUpdate
	ClientUpdate       = services.ClientUpdate
	SecurityUpdate     = services.SecurityUpdate
	SecurityTypeUpdate = services.SecurityTypeUpdate
	CascadeResult      = services.CascadeResult

	PageRequest = pagination.PageRequest

	AppError = apperrors.AppError
	Config   = config.Config
)

var (
	IsConstraintViolation  = apperrors.IsConstraintViolation
	IsReferentialViolation = apperrors.IsReferentialViolation
	IsNotFound             = apperrors.IsNotFound

	// CalendarDate builds a purchase date.
	CalendarDate = models.CalendarDate
)

// Store bundles the record services over one database connection.
type Store struct {
	Advisors      AdvisorService
	Clients       ClientService
	Portfolios    PortfolioService
	Securities    SecurityService
	SecurityTypes SecurityTypeService

	manager *database.Manager
}

// Open connects to the configured database, provisions the schema and
// builds the services.
func Open(cfg *Config) (*Store, error) {
	logger.Init(cfg.Env)

	manager, err := database.NewManager(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create database manager: %w", err)
	}
	if err := manager.Provision(); err != nil {
		_ = manager.Close()
		return nil, fmt.Errorf("failed to provision schema: %w", err)
	}

	db := manager.DB()
	return &Store{
		Advisors:      services.NewAdvisorService(db),
		Clients:       services.NewClientService(db),
		Portfolios:    services.NewPortfolioService(db),
		Securities:    services.NewSecurityService(db),
		SecurityTypes: services.NewSecurityTypeService(db),
		manager:       manager,
	}, nil
}

// OpenFromEnv loads the configuration from .env and the environment, then
// opens the store.
func OpenFromEnv() (*Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return Open(cfg)
}

// SQLiteConfig returns a configuration for a sqlite database at path.
func SQLiteConfig(path string) *Config {
	return config.SQLite(path)
}

// DB returns the underlying GORM database instance.
func (s *Store) DB() *gorm.DB {
	return s.manager.DB()
}

// Close flushes the logger and closes the connection pool.
func (s *Store) Close() error {
	logger.Sync()
	return s.manager.Close()
}
