package csrf

import (
	"github.com/gin-gonic/gin"
)

// RegisterPublicRoutes registers the token endpoint, it needs no authentication
func RegisterPublicRoutes(r *gin.RouterGroup, h *Handler) {
	r.GET("/csrf", h.HandleCSRFToken)
}
