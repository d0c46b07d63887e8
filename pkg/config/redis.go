package config

import (
	redis "github.com/jacobsenj/canto-fal/pkg/redis"
)

// LoadRedisConfig overlays REDIS_* variables on the client defaults
func LoadRedisConfig() *redis.Config {
	c := redis.DefaultConfig()

	c.Host = getEnv("REDIS_HOST", c.Host)
	c.Password = getEnv("REDIS_PASSWORD", c.Password)
	c.KeyPrefix = getEnv("REDIS_KEY_PREFIX", c.KeyPrefix)

	if port := getEnvAsInt("REDIS_PORT", c.Port); port > 0 {
		c.Port = port
	}
	if db := getEnvAsInt("REDIS_DB", c.DB); db >= 0 {
		c.DB = db
	}
	if conns := getEnvAsInt("REDIS_MAX_CONNECTIONS", c.MaxConnections); conns > 0 {
		c.MaxConnections = conns
	}

	c.ConnTimeout = getEnvAsDuration("REDIS_CONN_TIMEOUT", c.ConnTimeout)
	c.ReadTimeout = getEnvAsDuration("REDIS_READ_TIMEOUT", c.ReadTimeout)
	c.WriteTimeout = getEnvAsDuration("REDIS_WRITE_TIMEOUT", c.WriteTimeout)
	c.HealthCheckInterval = getEnvAsDuration("REDIS_HEALTH_CHECK_INTERVAL", c.HealthCheckInterval)

	return c
}
