// Package token keeps the Canto access token of every storage fresh.
package token

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jacobsenj/canto-fal/internal/logger"
	"github.com/jacobsenj/canto-fal/internal/registry"

	"github.com/sirupsen/logrus"
)

const (
	// Namespace is the registry namespace of all token entries
	Namespace = "cantoFal"

	// DefaultLifetime is how long a token is reused before it is renewed. Canto tokens live 30 days.
	DefaultLifetime = 2505600 * time.Second

	tokenKeyFormat      = "accessTokenForStorage%d"
	validUntilKeyFormat = "accessTokenForStorage%dValidUntil"
)

// Authorizer performs the client credentials grant
type Authorizer interface {
	AuthorizeWithClientCredentials(ctx context.Context, userID, scope string) (string, error)
}

// Credentials identify the user the token is issued for
type Credentials struct {
	UserID string
	Scope  string
}

// Manager hands out valid tokens, renewing them through the Authorizer when they expire
type Manager struct {
	registry registry.Registry
	auth     Authorizer
	lifetime time.Duration
	now      func() time.Time
	log      *logger.Logger
}

// Option customizes a Manager
type Option func(*Manager)

// WithLifetime overrides DefaultLifetime
func WithLifetime(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.lifetime = d
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a token manager
func NewManager(reg registry.Registry, auth Authorizer, log *logger.Logger, opts ...Option) *Manager {
	m := &Manager{
		registry: reg,
		auth:     auth,
		lifetime: DefaultLifetime,
		now:      time.Now,
		log:      log,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TokenKey returns the registry key of the token of a storage
func TokenKey(storageID int) string {
	return fmt.Sprintf(tokenKeyFormat, storageID)
}

// ValidUntilKey returns the registry key of the expiry of a storage's token
func ValidUntilKey(storageID int) string {
	return fmt.Sprintf(validUntilKeyFormat, storageID)
}

// EnsureValidToken returns the cached token or authorizes again when it is missing or expired
func (m *Manager) EnsureValidToken(ctx context.Context, storageID int, creds Credentials) (string, error) {
	now := m.now().Unix()

	token, found, err := m.registry.Get(ctx, Namespace, TokenKey(storageID))
	if err != nil {
		return "", err
	}

	validUntil := int64(0)
	if raw, ok, err := m.registry.Get(ctx, Namespace, ValidUntilKey(storageID)); err != nil {
		return "", err
	} else if ok {
		validUntil, _ = strconv.ParseInt(raw, 10, 64)
	}

	if found && token != "" && validUntil > now {
		return token, nil
	}

	m.log.WithFields(logrus.Fields{
		"storage":     storageID,
		"valid_until": validUntil,
	}).Info("Authorizing against Canto")

	token, err = m.auth.AuthorizeWithClientCredentials(ctx, creds.UserID, creds.Scope)
	if err != nil {
		return "", fmt.Errorf("%w for storage %d: %v", ErrAuthorizationFailed, storageID, err)
	}

	if err := m.registry.Set(ctx, Namespace, TokenKey(storageID), token); err != nil {
		return "", err
	}
	expiry := now + int64(m.lifetime/time.Second)
	if err := m.registry.Set(ctx, Namespace, ValidUntilKey(storageID), strconv.FormatInt(expiry, 10)); err != nil {
		return "", err
	}

	return token, nil
}
