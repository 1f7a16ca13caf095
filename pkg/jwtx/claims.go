package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAccessTokenTTL is the lifetime of a session token.
const DefaultAccessTokenTTL = 12 * time.Hour

// Authentication methods recorded in the amr claim.
const (
	AMRPassword = "pwd"
	AMROTP      = "otp"
)

// Claims are the session token claims.
type Claims struct {
	jwt.RegisteredClaims

	// Role is the user's role at issue time ("user", "admin"). The server
	// re-reads the stored role when building a navigation snapshot, so a
	// demoted admin loses access without waiting for expiry.
	Role string `json:"role,omitempty"`

	Username      string   `json:"username,omitempty"`
	PreferredName string   `json:"preferred_name,omitempty"`
	AMR           []string `json:"amr,omitempty"`
}

// SessionParams describes the token to mint.
type SessionParams struct {
	Subject       string
	Username      string
	PreferredName string
	Role          string
	AMR           []string
	Issuer        string
	Audience      []string
	TTL           time.Duration
}

// NewSessionClaims builds claims for p issued at now.
func NewSessionClaims(p SessionParams, now time.Time) Claims {
	ttl := p.TTL
	if ttl <= 0 {
		ttl = DefaultAccessTokenTTL
	}
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    p.Issuer,
			Subject:   p.Subject,
			Audience:  jwt.ClaimStrings(p.Audience),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Role:          p.Role,
		Username:      p.Username,
		PreferredName: p.PreferredName,
		AMR:           p.AMR,
	}
}

// NewJTI returns a URL-safe random identifier for the jti claim.
func NewJTI() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks the issuer when one is expected.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected != "" && c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateAudience requires at least one expected audience to be present.
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 {
		return nil
	}
	for _, want := range expected {
		if slices.Contains(c.Audience, want) {
			return nil
		}
	}
	return ErrAudience
}

// ValidateExpiry checks exp and nbf with the given leeway for clock skew.
func (c *Claims) ValidateExpiry(now time.Time, leeway time.Duration) error {
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}
	return nil
}
