package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("0123456789abcdef", time.Hour)
	tok, err := m.Generate(7, "depo", []string{"manage_orders"})
	require.NoError(t, err)

	claims, err := m.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.True(t, claims.HasPermission("manage_orders"))
	assert.False(t, claims.HasPermission("manage_settings"))
}

func TestTokenManager_RejectsForeignAndExpired(t *testing.T) {
	m := NewTokenManager("0123456789abcdef", time.Hour)
	other := NewTokenManager("fedcba9876543210", time.Hour)
	tok, err := other.Generate(1, "x", nil)
	require.NoError(t, err)
	_, err = m.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewTokenManager("0123456789abcdef", -time.Minute)
	tok, err = expired.Generate(1, "x", nil)
	require.NoError(t, err)
	_, err = m.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPassword(t *testing.T) {
	h, err := HashPassword("gizli-sifre")
	require.NoError(t, err)
	assert.True(t, CheckPassword(h, "gizli-sifre"))
	assert.False(t, CheckPassword(h, "yanlis"))
}
