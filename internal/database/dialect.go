package database

import (
	"fmt"
	"net/url"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"counselor/internal/config"
)

// Dialector returns the gorm dialector for the configured driver.
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres, "":
		return postgres.New(postgres.Config{
			DSN:                  PostgresDSN(cfg),
			PreferSimpleProtocol: true, // works behind transaction-mode poolers such as Supavisor
		}), nil
	case config.DriverSQLite:
		return sqlite.Open(SQLiteDSN(cfg.SQLitePath)), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
}

// PostgresDSN returns the PostgreSQL connection string
func PostgresDSN(cfg *config.Config) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)
}

// PostgresURL returns the URL form of the connection string used by the
// migration driver.
func PostgresURL(cfg *config.Config) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.DBUser, cfg.DBPassword),
		Host:     cfg.DBHost + ":" + cfg.DBPort,
		Path:     "/" + cfg.DBName,
		RawQuery: url.Values{"sslmode": {cfg.DBSSLMode}}.Encode(),
	}
	return u.String()
}

// SQLiteDSN returns the sqlite DSN for path with foreign key enforcement
// switched on. SQLite leaves foreign keys off unless asked per connection.
func SQLiteDSN(path string) string {
	if strings.Contains(path, "_foreign_keys=") || strings.Contains(path, "_fk=") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on"
}
