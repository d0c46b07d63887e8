package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jacobsenj/canto-fal/internal/driver"
	"github.com/jacobsenj/canto-fal/internal/logger"
	"github.com/jacobsenj/canto-fal/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDeps() Deps {
	return Deps{
		Logger: logger.Discard(),
		API: &config.APIConfig{
			JWTSecret:      "secret",
			JWTIssuer:      "canto-fal",
			JWTLifetime:    time.Hour,
			CSRFSecret:     "0123456789abcdef0123456789abcdef",
			CSRFDomain:     "localhost",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Drivers: &driver.Factory{
			Configs: []*config.DriverConfig{{StorageID: 2, CantoName: "acme", CantoDomain: "canto.com"}},
			Log:     logger.Discard(),
		},
	}
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestSetupRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r, err := SetupRouter(testDeps())
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, get(r, "/health").Code)
	assert.Equal(t, http.StatusOK, get(r, "/metrics").Code)
	assert.Equal(t, http.StatusOK, get(r, "/api/v1/csrf").Code)

	w := get(r, "/api/v1/storages/2/tree")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "img-src 'self' data: acme.canto.com *.cloudfront.net", w.Header().Get("Content-Security-Policy"))
}

func TestUnhealthyBackends(t *testing.T) {
	gin.SetMode(gin.TestMode)
	deps := testDeps()
	deps.Health = func(ctx context.Context) error { return errors.New("down") }

	r, err := SetupRouter(deps)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, get(r, "/health").Code)
}

func TestMissingSecretsAreRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)

	deps := testDeps()
	deps.API.CSRFSecret = ""
	_, err := SetupRouter(deps)
	assert.Error(t, err)

	deps = testDeps()
	deps.API.JWTSecret = ""
	_, err = SetupRouter(deps)
	assert.Error(t, err)
}
