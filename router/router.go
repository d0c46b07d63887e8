package router

import (
	"context"
	"errors"
	"net/http"
	"time"

	csrfAPI "github.com/jacobsenj/canto-fal/api/v1/csrf"
	filesAPI "github.com/jacobsenj/canto-fal/api/v1/files"
	"github.com/jacobsenj/canto-fal/internal/driver"
	"github.com/jacobsenj/canto-fal/internal/jwt"
	log "github.com/jacobsenj/canto-fal/internal/logger"
	"github.com/jacobsenj/canto-fal/internal/metrics"
	"github.com/jacobsenj/canto-fal/internal/middleware"
	"github.com/jacobsenj/canto-fal/pkg/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// csrfMaxAge is the lifetime of CSRF cookies and tokens
const csrfMaxAge = time.Hour

// Deps are the services the router wires into handlers
type Deps struct {
	Logger  *log.Logger
	API     *config.APIConfig
	Drivers *driver.Factory
	TempDir string
	// Health reports whether backing services are reachable, nil skips the check
	Health func(ctx context.Context) error
}

// SetupEngine creates a new Gin engine with recovery and request metrics
func SetupEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), metrics.GinMiddleware())
	return r
}

// SetupCORS configures CORS settings
func SetupCORS(r *gin.Engine, cfg *config.APIConfig) error {
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return err
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-CSRF-TOKEN"}
	corsConfig.ExposeHeaders = []string{"Content-Disposition", "X-CSRF-Token"}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 24 * time.Hour

	r.Use(cors.New(corsConfig))
	return nil
}

// SetupCSRFProtection configures CSRF protection
func SetupCSRFProtection(r *gin.Engine, cfg *config.APIConfig, logger *log.Logger) error {
	if cfg.CSRFSecret == "" {
		logger.Error("CSRF_SECRET environment variable is required")
		return errors.New("CSRF_SECRET environment variable is required")
	}

	r.Use(middleware.CSRFMiddleware(middleware.CSRFOptions{
		Secret: cfg.CSRFSecret,
		Secure: cfg.CSRFSecure,
		Domain: cfg.CSRFDomain,
		MaxAge: csrfMaxAge,
	}, logger))
	return nil
}

// SetupOperationalRoutes exposes health and Prometheus endpoints
func SetupOperationalRoutes(r *gin.Engine, health func(ctx context.Context) error) {
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/health", func(c *gin.Context) {
		if health != nil {
			if err := health(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// SetupCsrfRoutes configures CSRF-related routes
func SetupCsrfRoutes(r *gin.Engine, logger *log.Logger) {
	v1 := r.Group("/api/v1")
	csrfAPI.RegisterPublicRoutes(v1, csrfAPI.NewHandler(logger, csrfMaxAge))
}

// SetupFilesRoutes configures the storage routes behind JWT authentication
func SetupFilesRoutes(r *gin.Engine, deps Deps, jwtService *jwt.JWTService) {
	v1 := r.Group("/api/v1")
	v1.Use(
		middleware.ContentSecurityPolicy(driver.ImageSourceDomains(deps.Drivers.Configs)),
		middleware.JWTAuthMiddleware(jwtService),
	)

	filesHandler := filesAPI.NewHandler(deps.Drivers, deps.TempDir, deps.Logger)
	filesAPI.RegisterProtectedRoutes(v1, filesHandler)
}

// SetupRouter creates and configures the main router with all routes
func SetupRouter(deps Deps) (*gin.Engine, error) {
	jwtService, err := jwt.NewJWTService(deps.API.JWTSecret, deps.API.JWTIssuer, deps.API.JWTLifetime)
	if err != nil {
		deps.Logger.WithError(err).Error("Failed to initialize JWT service")
		return nil, err
	}

	r := SetupEngine()
	SetupOperationalRoutes(r, deps.Health)

	if err := SetupCORS(r, deps.API); err != nil {
		deps.Logger.WithError(err).Error("Failed to setup CORS")
		return nil, err
	}
	if err := SetupCSRFProtection(r, deps.API, deps.Logger); err != nil {
		deps.Logger.WithError(err).Error("Failed to setup CSRF protection")
		return nil, err
	}

	SetupCsrfRoutes(r, deps.Logger)
	SetupFilesRoutes(r, deps, jwtService)

	deps.Logger.Info("Router setup completed successfully")
	return r, nil
}
