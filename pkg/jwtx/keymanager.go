package jwtx

import (
	"fmt"
	"math/rand/v2"

	"github.com/aussiebroadwan/lingua/pkg/cryptox"
)

// KeyManager owns the in-memory signing keys of one instance. Keys are
// ephemeral: a restart invalidates every outstanding session.
type KeyManager struct {
	Verifier *Verifier
	KeySet   *KeySet

	signers []*Signer
}

// KeyManagerOptions configures a KeyManager.
type KeyManagerOptions struct {
	Issuer   string
	Audience []string

	// NumKeys is clamped to [1, 10]; zero means 2.
	NumKeys int
}

// NewEphemeralKeyManager generates fresh signing keys.
func NewEphemeralKeyManager(opts KeyManagerOptions) (*KeyManager, error) {
	if opts.Issuer == "" {
		return nil, fmt.Errorf("jwtx: Issuer is required")
	}

	n := opts.NumKeys
	switch {
	case n <= 0:
		n = 2
	case n > 10:
		n = 10
	}

	keyset := NewKeySet()
	signers := make([]*Signer, 0, n)
	for i := range n {
		kid, err := cryptox.GenerateToken(cryptox.TokenSize128)
		if err != nil {
			return nil, fmt.Errorf("jwtx: key id: %w", err)
		}
		pemKey, err := cryptox.GenerateEd25519Key()
		if err != nil {
			return nil, err
		}
		s, err := NewSigner("lingua-"+kid, pemKey)
		if err != nil {
			return nil, fmt.Errorf("jwtx: signer %d: %w", i+1, err)
		}
		if err := keyset.Add(s.PublicJWK()); err != nil {
			return nil, fmt.Errorf("jwtx: add signer %d: %w", i+1, err)
		}
		signers = append(signers, s)
	}

	return &KeyManager{
		Verifier: NewVerifier(keyset, opts.Issuer, opts.Audience),
		KeySet:   keyset,
		signers:  signers,
	}, nil
}

// Signer returns one of the signing keys at random.
func (km *KeyManager) Signer() *Signer {
	if len(km.signers) == 1 {
		return km.signers[0]
	}
	return km.signers[rand.IntN(len(km.signers))]
}

// Sign signs claims with a randomly chosen key.
func (km *KeyManager) Sign(c Claims) (string, error) {
	return km.Signer().Sign(c)
}

// NumSigners returns how many signing keys are active.
func (km *KeyManager) NumSigners() int { return len(km.signers) }
