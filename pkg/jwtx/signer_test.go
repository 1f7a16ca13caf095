package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/lingua/pkg/cryptox"
	"github.com/aussiebroadwan/lingua/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newSigner(t *testing.T, kid string) *jwtx.Signer {
	t.Helper()
	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	s, err := jwtx.NewSigner(kid, pemKey)
	require.NoError(t, err)
	return s
}

func TestSignAndVerify(t *testing.T) {
	signer := newSigner(t, "test-key")
	require.Equal(t, "test-key", signer.KID())

	claims := jwtx.NewSessionClaims(jwtx.SessionParams{
		Subject:       "user-456",
		Username:      "learner",
		PreferredName: "Learner",
		Role:          "user",
		AMR:           []string{jwtx.AMRPassword, jwtx.AMROTP},
		Issuer:        exampleIssuer,
		Audience:      []string{"web"},
		TTL:           5 * time.Minute,
	}, time.Now().UTC())

	token, err := signer.Sign(claims)
	require.NoError(t, err)

	keyset := jwtx.NewKeySet()
	require.False(t, keyset.IsReady())
	require.NoError(t, keyset.Add(signer.PublicJWK()))
	require.True(t, keyset.IsReady())

	jwks := keyset.PublicJWKS()
	require.Len(t, jwks.Keys, 1)
	require.Equal(t, "OKP", jwks.Keys[0].Kty)
	require.Equal(t, "Ed25519", jwks.Keys[0].Crv)

	got, err := jwtx.NewVerifier(keyset, exampleIssuer, []string{"web"}).Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-456", got.Subject)
	require.Equal(t, "user", got.Role)
	require.Equal(t, "learner", got.Username)
	require.Equal(t, []string{"pwd", "otp"}, got.AMR)
}

func TestVerifyRejects(t *testing.T) {
	signer := newSigner(t, "k1")
	other := newSigner(t, "k2")

	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.Add(signer.PublicJWK()))
	v := jwtx.NewVerifier(keyset, exampleIssuer, nil)

	now := time.Now().UTC()
	valid := jwtx.NewSessionClaims(jwtx.SessionParams{Subject: "u", Issuer: exampleIssuer}, now)

	t.Run("unknown kid", func(t *testing.T) {
		tok, err := other.Sign(valid)
		require.NoError(t, err)
		_, err = v.Verify(tok)
		require.ErrorIs(t, err, jwtx.ErrUnknownKID)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		c := valid
		c.Issuer = "elsewhere"
		tok, err := signer.Sign(c)
		require.NoError(t, err)
		_, err = v.Verify(tok)
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})

	t.Run("expired", func(t *testing.T) {
		c := jwtx.NewSessionClaims(jwtx.SessionParams{Subject: "u", Issuer: exampleIssuer, TTL: time.Minute}, now.Add(-time.Hour))
		tok, err := signer.Sign(c)
		require.NoError(t, err)
		_, err = v.Verify(tok)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := v.Verify("not.a.token")
		require.Error(t, err)
	})
}

func TestKeySetRejectsBadKeys(t *testing.T) {
	ks := jwtx.NewKeySet()
	require.Error(t, ks.Add(jwtx.JWK{Kty: "RSA"}))
	require.Error(t, ks.Add(jwtx.JWK{Kty: "OKP", Crv: "Ed25519", X: "AAAA"}))

	_, err := ks.Get("missing")
	require.ErrorIs(t, err, jwtx.ErrNoKey)
}
