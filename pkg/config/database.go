package config

import (
	"fmt"
	"net/url"
	"time"
)

// Migration modes of DB_MIGRATION_MODE
const (
	MigrationModeSQL  = "sql"
	MigrationModeAuto = "auto"
)

// DatabaseConfig holds the connection of the file index and the token registry
type DatabaseConfig struct {
	Username string
	Password string
	Host     string
	Port     string
	Name     string
	SSLMode  string
	TimeZone string

	PoolMinSize    int
	PoolMaxSize    int
	ConnectTimeout time.Duration
	MaxIdleTime    time.Duration
	MaxLifetime    time.Duration
	PrepareCached  bool
	SlowQuery      time.Duration

	// MigrateOnBoot applies migrations whenever a command opens the database
	MigrateOnBoot  bool
	MigrationMode  string
	MigrationsPath string
}

// DSN returns the PostgreSQL connection URL
func (c *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Username, c.Password),
		Host:   c.Host + ":" + c.Port,
		Path:   "/" + c.Name,
	}
	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	q.Set("TimeZone", c.TimeZone)
	u.RawQuery = q.Encode()
	return u.String()
}

// AutoMigrate reports whether models are migrated by gorm instead of SQL files
func (c *DatabaseConfig) AutoMigrate() bool {
	return c.MigrationMode == MigrationModeAuto
}

// LoadDatabaseConfig loads database configuration from environment variables.
// Development environments default to gorm auto-migration.
func LoadDatabaseConfig(environment string) *DatabaseConfig {
	mode := MigrationModeSQL
	if environment == "development" {
		mode = MigrationModeAuto
	}

	return &DatabaseConfig{
		Username: getEnv("DB_USERNAME", "canto"),
		Password: getEnv("DB_PASSWORD", ""),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		Name:     getEnv("DB_NAME", "canto_fal"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
		TimeZone: getEnv("DB_TIMEZONE", "UTC"),

		PoolMinSize:    getEnvAsInt("DB_POOL_MIN_SIZE", 2),
		PoolMaxSize:    getEnvAsInt("DB_POOL_MAX_SIZE", 10),
		ConnectTimeout: getEnvAsDuration("DB_CONNECT_TIMEOUT", 10*time.Second),
		MaxIdleTime:    getEnvAsDuration("DB_MAX_IDLE_TIME", 30*time.Minute),
		MaxLifetime:    getEnvAsDuration("DB_MAX_LIFETIME", time.Hour),
		PrepareCached:  getEnvAsBool("DB_PREPARE_CACHED", true),
		SlowQuery:      getEnvAsDuration("DB_SLOW_QUERY", time.Second),

		MigrateOnBoot:  getEnvAsBool("DB_MIGRATE_ON_BOOT", true),
		MigrationMode:  getEnv("DB_MIGRATION_MODE", mode),
		MigrationsPath: getEnv("DB_MIGRATIONS_PATH", "migrations"),
	}
}

// Validate checks the values that cannot be defaulted
func (c *DatabaseConfig) Validate() error {
	if c.MigrationMode != MigrationModeSQL && c.MigrationMode != MigrationModeAuto {
		return fmt.Errorf("%w: unknown migration mode %q", ErrInvalidConfiguration, c.MigrationMode)
	}
	if c.PoolMaxSize < c.PoolMinSize {
		return fmt.Errorf("%w: DB_POOL_MAX_SIZE below DB_POOL_MIN_SIZE", ErrInvalidConfiguration)
	}
	return nil
}
