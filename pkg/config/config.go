package config

import (
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/jacobsenj/canto-fal/pkg/redis"
)

// AppConfig holds all configuration settings for the application
type AppConfig struct {
	// Server settings
	Port            string
	Host            string
	Environment     string
	Release         string
	RequestTimeout  int
	ShutdownTimeout int

	// TempDir holds uploads and local copies of remote files
	TempDir string

	// Logging settings
	LogLevel  string
	SentryDSN string

	// Database settings (from database.go)
	Database *DatabaseConfig

	// Redis settings (from redis.go)
	Redis *redis.Config

	// S3 settings (from s3.go), nil when no credentials are configured
	S3 *S3Config

	// Cache settings (from cache.go)
	Cache *CacheConfig

	// RegistryBackend stores access tokens, "database" or "redis"
	RegistryBackend string

	// HTTP API settings (from api.go)
	API *APIConfig

	// Storage driver settings (from driver.go)
	Drivers []*DriverConfig
}

const (
	RegistryBackendDatabase = "database"
	RegistryBackendRedis    = "redis"
)

var (
	appConfig *AppConfig
	loadErr   error
	once      sync.Once
)

// LoadConfig loads all configuration from environment variables. Broken
// storage configurations fail the load.
func LoadConfig() (*AppConfig, error) {
	once.Do(func() {
		// Load environment variables from .env file if it exists
		loadEnvFile()
		environment := getEnv("ENVIRONMENT", "development")

		appConfig = &AppConfig{
			Port:            getEnv("PORT", "8000"),
			Host:            getEnv("HOST", "localhost"),
			Environment:     environment,
			Release:         getEnv("APP_VERSION", ""),
			RequestTimeout:  getEnvAsInt("REQUEST_TIMEOUT", 30),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 10),

			TempDir: getEnv("TEMP_DIR", os.TempDir()),

			LogLevel:  getEnv("LOG_LEVEL", "info"),
			SentryDSN: getEnv("SENTRY_DSN", ""),

			Database: LoadDatabaseConfig(environment),
			Redis:    LoadRedisConfig(),
			S3:       LoadS3Config(),
			Cache:    LoadCacheConfig(),
			API:      LoadAPIConfig(),

			RegistryBackend: getEnv("REGISTRY_BACKEND", RegistryBackendDatabase),
		}
		appConfig.Drivers, loadErr = LoadDriverConfigs()
	})

	return appConfig, loadErr
}

// GetConfig returns the already loaded configuration
// Panics if config not yet loaded
func GetConfig() *AppConfig {
	if appConfig == nil {
		panic("Configuration not loaded. Call LoadConfig() first")
	}
	return appConfig
}

// Driver returns the driver configuration of a storage
func (c *AppConfig) Driver(storageID int) (*DriverConfig, bool) {
	for _, d := range c.Drivers {
		if d.StorageID == storageID {
			return d, true
		}
	}
	return nil, false
}

// IsDevelopment returns true if the app is in development mode
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if the app is in production mode
func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

// loadEnvFile tries to load environment variables from .env file
func loadEnvFile() {
	envFiles := []string{
		".env." + os.Getenv("ENVIRONMENT") + ".local", // .env.development.local
		".env.local",                       // .env.local
		".env." + os.Getenv("ENVIRONMENT"), // .env.development
		".env",                             // .env
	}

	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			err = godotenv.Load(file)
			if err == nil {
				log.Printf("Loaded environment from %s", file)
				break
			}
		}
	}
}
