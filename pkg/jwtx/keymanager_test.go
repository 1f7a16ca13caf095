package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/lingua/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestEphemeralKeyManager(t *testing.T) {
	_, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{})
	require.Error(t, err)

	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Issuer: exampleIssuer, NumKeys: 3})
	require.NoError(t, err)
	require.Equal(t, 3, km.NumSigners())
	require.Len(t, km.KeySet.PublicJWKS().Keys, 3)

	for _, k := range km.KeySet.PublicJWKS().Keys {
		require.True(t, strings.HasPrefix(k.Kid, "lingua-"))
	}

	// Every signer must verify through the shared verifier.
	for range 10 {
		tok, err := km.Sign(jwtx.NewSessionClaims(jwtx.SessionParams{Subject: "u", Issuer: exampleIssuer}, time.Now()))
		require.NoError(t, err)
		_, err = km.Verifier.Verify(tok)
		require.NoError(t, err)
	}
}

func TestEphemeralKeyManagerClampsKeys(t *testing.T) {
	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Issuer: exampleIssuer})
	require.NoError(t, err)
	require.Equal(t, 2, km.NumSigners())

	km, err = jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Issuer: exampleIssuer, NumKeys: 50})
	require.NoError(t, err)
	require.Equal(t, 10, km.NumSigners())
}
