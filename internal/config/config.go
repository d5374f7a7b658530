package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds record store configuration
type Config struct {
	// Logging environment: "production", "development" or "test"
	Env string

	// Database
	DBDriver     string
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	DBSSLMode    string
	SQLitePath   string
	MaxIdleConns int
	MaxOpenConns int
	ConnLifetime time.Duration
	SlowQuery    time.Duration

	// Schema provisioning
	RunMigrations bool
	AutoMigrate   bool
}

// Load loads configuration from a .env file and environment variables
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Env: getEnv("ENV", "development"),

		DBDriver:   getEnv("DB_DRIVER", DriverPostgres),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "counselor"),
		DBPassword: getEnv("DB_PASSWORD", "counselor"),
		DBName:     getEnv("DB_NAME", "counselor"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		SQLitePath: getEnv("DB_SQLITE_PATH", "counselor.db"),

		MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 10),
		MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 100),
		ConnLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		SlowQuery:    getEnvDuration("DB_SLOW_QUERY", 200*time.Millisecond),

		RunMigrations: getEnvBool("DB_MIGRATE", true),
		AutoMigrate:   getEnvBool("DB_AUTO_MIGRATE", false),
	}

	return config, nil
}

// SQLite returns a configuration for a sqlite database at path, with
// migrations enabled. Used for local runs and tests.
func SQLite(path string) *Config {
	return &Config{
		Env:           "test",
		DBDriver:      DriverSQLite,
		SQLitePath:    path,
		MaxIdleConns:  1,
		MaxOpenConns:  1,
		ConnLifetime:  time.Hour,
		SlowQuery:     200 * time.Millisecond,
		RunMigrations: true,
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, raw, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %t\n", key, raw, defaultValue)
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return d
}
