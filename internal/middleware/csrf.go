package middleware

import (
	"net/http"
	"time"

	"github.com/jacobsenj/canto-fal/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
	"github.com/sirupsen/logrus"
)

// CSRFOptions configures CSRFMiddleware
type CSRFOptions struct {
	Secret string
	Secure bool
	Domain string
	MaxAge time.Duration
}

// CSRFMiddleware protects unsafe methods with a double submit token
func CSRFMiddleware(opts CSRFOptions, log *logger.Logger) gin.HandlerFunc {
	protect := csrf.Protect(
		[]byte(opts.Secret),
		csrf.Secure(opts.Secure),
		csrf.HttpOnly(true),
		csrf.Path("/"),
		csrf.CookieName("csrfToken"),
		csrf.MaxAge(int(opts.MaxAge.Seconds())),
		csrf.SameSite(csrf.SameSiteStrictMode),
		csrf.Domain(opts.Domain),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.WithFields(logrus.Fields{
				"path":      r.URL.Path,
				"method":    r.Method,
				"userAgent": r.UserAgent(),
				"reason":    csrf.FailureReason(r),
			}).Error("CSRF token mismatch")

			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"CSRF token mismatch"}`))
		})),
	)

	return func(c *gin.Context) {
		passed := false
		protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r
			c.Next()
		})).ServeHTTP(c.Writer, c.Request)
		if !passed {
			c.Abort()
		}
	}
}
