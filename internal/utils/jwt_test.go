package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManagerRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", "storefront")

	token, claims, err := tm.Generate(JWTClaims{UserID: "u1", Email: "a@b.c", Role: "user", Purpose: TokenPurposeAccess}, time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	got, err := tm.Validate(token, TokenPurposeAccess)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "u1", got.Subject)
	assert.Equal(t, claims.ID, got.ID)
}

func TestTokenManagerRejects(t *testing.T) {
	tm := NewTokenManager("test-secret", "storefront")
	other := NewTokenManager("other-secret", "storefront")

	token, _, err := tm.Generate(JWTClaims{UserID: "u1", Purpose: TokenPurposeReset}, time.Hour)
	require.NoError(t, err)

	_, err = tm.Validate(token, TokenPurposeAccess)
	assert.Error(t, err)

	_, err = other.Validate(token, TokenPurposeReset)
	assert.Error(t, err)

	expired, _, err := tm.Generate(JWTClaims{UserID: "u1", Purpose: TokenPurposeAccess}, -time.Minute)
	require.NoError(t, err)
	_, err = tm.Validate(expired, TokenPurposeAccess)
	assert.Error(t, err)
}
