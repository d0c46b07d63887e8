package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/jacobsenj/canto-fal/internal/jwt"

	"github.com/gin-gonic/gin"
)

// Context keys set by JWTAuthMiddleware
const (
	SubjectKey = "subject"
	ScopesKey  = "scopes"
	ClaimsKey  = "claims"
)

// JWTAuthMiddleware creates a middleware for JWT authentication
func JWTAuthMiddleware(jwtService *jwt.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractTokenFromSources(c, "Authorization", "accessToken")
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "Authentication required"})
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"detail": "Access token expired or invalid",
				"code":   "token_expired",
			})
			c.Abort()
			return
		}

		setClaimsInContext(c, claims)
		c.Next()
	}
}

// ScopeRequiredMiddleware rejects requests whose token lacks scope
func ScopeRequiredMiddleware(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		scopesRaw, exists := c.Get(ScopesKey)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "Authentication required"})
			c.Abort()
			return
		}

		scopes, ok := scopesRaw.([]string)
		if !ok || !slices.Contains(scopes, scope) {
			c.JSON(http.StatusForbidden, gin.H{"detail": "You don't have permission to access this resource"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// Helper function to extract token from multiple sources (header or cookie)
func extractTokenFromSources(c *gin.Context, headerName, cookieName string) string {
	header := c.GetHeader(headerName)
	if headerName == "Authorization" && header != "" {
		parts := strings.Split(header, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	} else if header != "" {
		return header
	}

	cookie, err := c.Cookie(cookieName)
	if err == nil && cookie != "" {
		return cookie
	}

	return ""
}

func setClaimsInContext(c *gin.Context, claims *jwt.Claims) {
	c.Set(SubjectKey, claims.Subject)
	c.Set(ScopesKey, claims.Scopes)
	c.Set(ClaimsKey, claims.RegisteredClaims)
}
