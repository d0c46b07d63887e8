package csrf

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jacobsenj/canto-fal/internal/logger"
	"github.com/jacobsenj/canto-fal/internal/middleware"
	"github.com/jacobsenj/canto-fal/pkg/status"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(middleware.CSRFMiddleware(middleware.CSRFOptions{
		Secret: "0123456789abcdef0123456789abcdef",
		Domain: "localhost",
		MaxAge: time.Hour,
	}, logger.Discard()))

	h := NewHandler(logger.Discard(), time.Hour)
	h.now = func() time.Time { return time.Unix(1700000000, 0) }

	v1 := r.Group("/api/v1")
	RegisterPublicRoutes(v1, h)
	v1.POST("/echo", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func TestTokenIsIssued(t *testing.T) {
	r := newEngine()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/csrf", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, status.StatusOK, resp.Code)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, resp.Token, w.Header().Get("X-CSRF-Token"))
	assert.Equal(t, TokenHeader, resp.Header)
	assert.Equal(t, int64(1700003600), resp.ExpiresAt)
}

func TestUnsafeMethodsNeedToken(t *testing.T) {
	r := newEngine()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/echo", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	issued := httptest.NewRecorder()
	r.ServeHTTP(issued, httptest.NewRequest(http.MethodGet, "/api/v1/csrf", nil))
	require.Equal(t, http.StatusOK, issued.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/echo", nil)
	req.Header.Set("X-CSRF-Token", issued.Header().Get("X-CSRF-Token"))
	for _, cookie := range issued.Result().Cookies() {
		req.AddCookie(cookie)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
