package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jacobsenj/canto-fal/internal/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) (*gin.Engine, *jwt.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc, err := jwt.NewJWTService("secret", "canto-fal", time.Hour)
	require.NoError(t, err)

	r := gin.New()
	r.Use(ContentSecurityPolicy([]string{"acme.canto.com", "*.cloudfront.net"}))
	protected := r.Group("/files", JWTAuthMiddleware(svc))
	protected.GET("", ScopeRequiredMiddleware(jwt.ScopeFilesRead), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(SubjectKey))
	})
	protected.DELETE("", ScopeRequiredMiddleware(jwt.ScopeFilesWrite), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r, svc
}

func serve(r http.Handler, method, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/files", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMissingTokenIsUnauthorized(t *testing.T) {
	r, _ := newEngine(t)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "garbage").Code)
}

func TestScopesAreEnforced(t *testing.T) {
	r, svc := newEngine(t)
	token, err := svc.GenerateToken("editor", []string{jwt.ScopeFilesRead})
	require.NoError(t, err)

	w := serve(r, http.MethodGet, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "editor", w.Body.String())

	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodDelete, token).Code)
}

func TestContentSecurityPolicyHeader(t *testing.T) {
	r, _ := newEngine(t)
	w := serve(r, http.MethodGet, "")
	assert.Equal(t, "img-src 'self' data: acme.canto.com *.cloudfront.net", w.Header().Get("Content-Security-Policy"))
}
