package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/lingua/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const exampleIssuer = "lingua"

func TestValidateIssuer(t *testing.T) {
	c := &jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer: "lingua",
		},
	}

	t.Run("matching issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer("lingua"))
	})

	t.Run("empty expected issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer(""))
	})

	t.Run("mismatched issuer", func(t *testing.T) {
		require.ErrorIs(t, c.ValidateIssuer("someone-else"), jwtx.ErrIssuer)
	})
}

func TestValidateAudience(t *testing.T) {
	c := &jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Audience: []string{"web", "mobile"},
		},
	}

	require.NoError(t, c.ValidateAudience([]string{"mobile"}))
	require.NoError(t, c.ValidateAudience(nil))
	require.ErrorIs(t, c.ValidateAudience([]string{"admin-cli"}), jwtx.ErrAudience)
}

func TestValidateExpiry(t *testing.T) {
	now := time.Now().UTC()
	c := &jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	require.NoError(t, c.ValidateExpiry(now, 0))
	require.ErrorIs(t, c.ValidateExpiry(now.Add(2*time.Minute), 0), jwtx.ErrExpired)
	require.NoError(t, c.ValidateExpiry(now.Add(70*time.Second), 30*time.Second))
	require.ErrorIs(t, c.ValidateExpiry(now.Add(-time.Minute), 0), jwtx.ErrNotYetValid)
}

func TestNewSessionClaims(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := jwtx.NewSessionClaims(jwtx.SessionParams{
		Subject:  "user-1",
		Username: "ana",
		Role:     "admin",
		AMR:      []string{jwtx.AMRPassword},
		Issuer:   exampleIssuer,
	}, now)

	require.Equal(t, "user-1", c.Subject)
	require.Equal(t, "admin", c.Role)
	require.Equal(t, now.Add(jwtx.DefaultAccessTokenTTL), c.ExpiresAt.Time)
	require.NotEmpty(t, c.ID)
}
