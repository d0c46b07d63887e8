package csrf

import (
	"errors"
	"net/http"
	"time"

	"github.com/jacobsenj/canto-fal/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
)

// Handler hands out CSRF tokens for the write routes
type Handler struct {
	logger *logger.Logger
	maxAge time.Duration
	now    func() time.Time
}

// NewHandler creates a new CSRF handler, tokens are announced as valid for maxAge
func NewHandler(log *logger.Logger, maxAge time.Duration) *Handler {
	return &Handler{
		logger: log,
		maxAge: maxAge,
		now:    time.Now,
	}
}

// HandleCSRFToken returns the token of the current request, also as TokenHeader
func (h *Handler) HandleCSRFToken(c *gin.Context) {
	token := csrf.Token(c.Request)
	if token == "" {
		h.logger.SecureLog(errors.New("returned empty token"), "Failed to generate CSRF token", "/csrf")
		c.JSON(http.StatusInternalServerError, newErrorResponse("Internal server error, please try again later"))
		return
	}

	c.Header(TokenHeader, token)
	c.JSON(http.StatusOK, newTokenResponse(token, h.now().Add(h.maxAge).Unix()))
}
