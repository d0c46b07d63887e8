package token

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jacobsenj/canto-fal/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRegistry map[string]string

func (m memoryRegistry) Get(ctx context.Context, namespace, key string) (string, bool, error) {
	v, ok := m[namespace+"/"+key]
	return v, ok, nil
}

func (m memoryRegistry) Set(ctx context.Context, namespace, key, value string) error {
	m[namespace+"/"+key] = value
	return nil
}

type countingAuthorizer struct {
	calls int
	err   error
}

func (a *countingAuthorizer) AuthorizeWithClientCredentials(ctx context.Context, userID, scope string) (string, error) {
	a.calls++
	if a.err != nil {
		return "", a.err
	}
	return "token-" + string(rune('0'+a.calls)), nil
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func TestTokenReusedUntilLifetimeEnds(t *testing.T) {
	reg := memoryRegistry{}
	auth := &countingAuthorizer{}
	start := time.Unix(1_700_000_000, 0)
	c := &clock{now: start}
	m := NewManager(reg, auth, logger.Discard(), WithClock(c.Now))
	ctx := context.Background()
	creds := Credentials{UserID: "me", Scope: "admin"}

	token, err := m.EnsureValidToken(ctx, 7, creds)
	require.NoError(t, err)
	assert.Equal(t, "token-1", token)
	assert.Equal(t, 1, auth.calls)
	assert.Equal(t, "1702505600", reg["cantoFal/accessTokenForStorage7ValidUntil"])

	c.now = start.Add(DefaultLifetime - time.Second)
	token, err = m.EnsureValidToken(ctx, 7, creds)
	require.NoError(t, err)
	assert.Equal(t, "token-1", token)
	assert.Equal(t, 1, auth.calls)

	c.now = start.Add(DefaultLifetime + time.Second)
	token, err = m.EnsureValidToken(ctx, 7, creds)
	require.NoError(t, err)
	assert.Equal(t, "token-2", token)
	assert.Equal(t, 2, auth.calls)
}

func TestTokensArePerStorage(t *testing.T) {
	reg := memoryRegistry{}
	auth := &countingAuthorizer{}
	m := NewManager(reg, auth, logger.Discard())

	_, err := m.EnsureValidToken(context.Background(), 1, Credentials{})
	require.NoError(t, err)
	_, err = m.EnsureValidToken(context.Background(), 2, Credentials{})
	require.NoError(t, err)

	assert.Equal(t, 2, auth.calls)
	assert.Contains(t, reg, "cantoFal/accessTokenForStorage1")
	assert.Contains(t, reg, "cantoFal/accessTokenForStorage2")
}

func TestCustomLifetime(t *testing.T) {
	reg := memoryRegistry{}
	c := &clock{now: time.Unix(100, 0)}
	m := NewManager(reg, &countingAuthorizer{}, logger.Discard(), WithClock(c.Now), WithLifetime(time.Minute))

	_, err := m.EnsureValidToken(context.Background(), 1, Credentials{})
	require.NoError(t, err)
	assert.Equal(t, "160", reg["cantoFal/accessTokenForStorage1ValidUntil"])
}

func TestAuthorizationFailure(t *testing.T) {
	m := NewManager(memoryRegistry{}, &countingAuthorizer{err: errors.New("bad secret")}, logger.Discard())

	_, err := m.EnsureValidToken(context.Background(), 1, Credentials{})
	assert.ErrorIs(t, err, ErrAuthorizationFailed)
}
