// Package database opens the record store and provisions its schema.
package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"

	"counselor/internal/config"
	"counselor/internal/logger"
	"counselor/internal/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Manager handles database operations
type Manager struct {
	db  *gorm.DB
	cfg *config.Config
}

// NewManager connects to the configured database and tunes its pool.
func NewManager(cfg *config.Config) (*Manager, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}
	return open(dialector, cfg)
}

func open(dialector gorm.Dialector, cfg *config.Config) (*Manager, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Gorm(cfg.SlowQuery),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying DB: %w", err)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnLifetime)
	}

	return &Manager{db: db, cfg: cfg}, nil
}

// Provision applies the schema steps enabled in the configuration: the
// embedded SQL migrations, then gorm's AutoMigrate.
func (m *Manager) Provision() error {
	if m.cfg.RunMigrations {
		if err := m.RunMigrations(); err != nil {
			return err
		}
	}
	if m.cfg.AutoMigrate {
		if err := m.AutoMigrate(); err != nil {
			return err
		}
	}
	return nil
}

// RunMigrations applies pending SQL migrations embedded in the binary.
func (m *Manager) RunMigrations() error {
	log := logger.Named("database")
	log.Info("Running database migrations...")

	mig, done, err := m.migrator()
	if err != nil {
		return err
	}
	defer done()

	if err := mig.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Info("Database migrations completed successfully")
	return nil
}

// SchemaVersion reports the applied migration version and whether the last
// migration left the schema dirty.
func (m *Manager) SchemaVersion() (uint, bool, error) {
	mig, done, err := m.migrator()
	if err != nil {
		return 0, false, err
	}
	defer done()

	version, dirty, err := mig.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get version: %w", err)
	}
	return version, dirty, nil
}

// migrator builds a migrate instance for the configured driver. The returned
// func releases it.
func (m *Manager) migrator() (*migrate.Migrate, func(), error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	switch m.cfg.DBDriver {
	case config.DriverSQLite:
		return m.sqliteMigrator(src)
	default:
		mig, err := migrate.NewWithSourceInstance("iofs", src, PostgresURL(m.cfg))
		if err != nil {
			_ = src.Close()
			return nil, nil, fmt.Errorf("failed to create migrate instance: %w", err)
		}
		return mig, func() { closeMigrate(mig) }, nil
	}
}

// sqliteMigrator runs migrations over the store's own connection so that
// in-memory databases see the schema. Closing the migrate instance would
// close that connection, so only the source is released.
func (m *Manager) sqliteMigrator(src source.Driver) (*migrate.Migrate, func(), error) {
	sqlDB, err := m.db.DB()
	if err != nil {
		_ = src.Close()
		return nil, nil, fmt.Errorf("failed to get underlying DB: %w", err)
	}

	drv, err := sqlite3.WithInstance(sqlDB, &sqlite3.Config{})
	if err != nil {
		_ = src.Close()
		return nil, nil, fmt.Errorf("failed to create sqlite migrate driver: %w", err)
	}

	mig, err := migrate.NewWithInstance("iofs", src, "sqlite3", drv)
	if err != nil {
		_ = src.Close()
		return nil, nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return mig, func() {
		if err := src.Close(); err != nil {
			logger.Named("database").Warnf("migrate source close error: %v", err)
		}
	}, nil
}

func closeMigrate(mig *migrate.Migrate) {
	srcErr, dbErr := mig.Close()
	if srcErr != nil {
		logger.Named("database").Warnf("migrate source close error: %v", srcErr)
	}
	if dbErr != nil {
		logger.Named("database").Warnf("migrate database close error: %v", dbErr)
	}
}

// AutoMigrate creates or alters tables from the gorm model definitions.
func (m *Manager) AutoMigrate() error {
	if err := m.db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}
	return nil
}

// DB returns the underlying GORM database instance
func (m *Manager) DB() *gorm.DB {
	return m.db
}

// Ping checks that the database is reachable.
func (m *Manager) Ping(ctx context.Context) error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the connection pool.
func (m *Manager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying DB: %w", err)
	}
	return sqlDB.Close()
}
