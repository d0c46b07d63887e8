// internal/jwt/types.go
package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Scopes granted to API clients
const (
	ScopeFilesRead  = "files-read"
	ScopeFilesWrite = "files-write"
)

// Claims represents the JWT claims of an API client
type Claims struct {
	Scopes []string `json:"scopes"`
	jwt.RegisteredClaims
}

// JWTService issues and validates HMAC signed tokens
type JWTService struct {
	secret []byte
	issuer string
	expiry time.Duration
	now    func() time.Time
}
