package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-at-least-32-chars-long"

func TestGenerateAndValidateToken(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig(testSecret))

	token, expiresAt, err := svc.GenerateAccessToken("user-1", "User One", "buyer", "IT", "u1@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	user, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.UserID)
	assert.Equal(t, "User One", user.Name)
	assert.Equal(t, "buyer", user.Role)
	assert.Equal(t, "IT", user.Department)
	assert.Equal(t, "u1@example.com", user.Email)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	issuer := NewJWTService(DefaultJWTConfig(testSecret))
	verifier := NewJWTService(DefaultJWTConfig("another-secret-key-32-chars-long!!"))

	token, _, err := issuer.GenerateAccessToken("user-1", "User One", "buyer", "", "")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	cfg := DefaultJWTConfig(testSecret)
	cfg.AccessTokenTTL = -time.Minute
	svc := NewJWTService(cfg)

	token, _, err := svc.GenerateAccessToken("user-1", "User One", "buyer", "", "")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig(testSecret))

	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}
