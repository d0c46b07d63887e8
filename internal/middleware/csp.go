package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// ContentSecurityPolicy allows images from the given sources besides the own origin
func ContentSecurityPolicy(imageSources []string) gin.HandlerFunc {
	policy := "img-src " + strings.Join(append([]string{"'self'", "data:"}, imageSources...), " ")

	return func(c *gin.Context) {
		c.Header("Content-Security-Policy", policy)
		c.Next()
	}
}
