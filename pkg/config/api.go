package config

import "time"

// APIConfig holds settings of the HTTP surface
type APIConfig struct {
	JWTSecret      string
	JWTIssuer      string
	JWTLifetime    time.Duration
	CSRFSecret     string
	CSRFSecure     bool
	CSRFDomain     string
	AllowedOrigins []string
	TrustedProxies []string
}

// LoadAPIConfig loads HTTP API configuration from environment variables
func LoadAPIConfig() *APIConfig {
	return &APIConfig{
		JWTSecret:      getEnv("JWT_SECRET", ""),
		JWTIssuer:      getEnv("JWT_ISSUER", "canto-fal"),
		JWTLifetime:    getEnvAsDuration("JWT_LIFETIME", time.Hour),
		CSRFSecret:     getEnv("CSRF_SECRET", ""),
		CSRFSecure:     getEnvAsBool("CSRF_SECURE", false),
		CSRFDomain:     getEnv("CSRF_DOMAIN", "localhost"),
		AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		TrustedProxies: getEnvAsSlice("TRUSTED_PROXIES", nil),
	}
}
