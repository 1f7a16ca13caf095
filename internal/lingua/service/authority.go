package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/aussiebroadwan/lingua/internal/lingua/domain"
	"github.com/aussiebroadwan/lingua/internal/lingua/store"
	"github.com/aussiebroadwan/lingua/pkg/cryptox"
	"github.com/aussiebroadwan/lingua/pkg/guard"
	"github.com/aussiebroadwan/lingua/pkg/idx"
	"github.com/aussiebroadwan/lingua/pkg/jwtx"
)

// AdminSeed creates an admin account at startup when the database has no
// users. It is skipped when Username is empty.
type AdminSeed struct {
	Username string
	Password string
}

// Authority issues and verifies session tokens. Its signing keys are
// created by Init, which the application runs in the background after
// the listener is up; until it finishes every session reports Loading.
type Authority struct {
	Store    store.Store
	Issuer   string
	Audience []string
	TTL      time.Duration
	NumKeys  int
	Seed     AdminSeed
	Logger   *slog.Logger

	// InitDelay postpones Init. Used to exercise the loading state.
	InitDelay time.Duration

	ready   *guard.Latch
	keys    atomic.Pointer[jwtx.KeyManager]
	initErr atomic.Pointer[error]
}

func NewAuthority(s store.Store, issuer string, ttl time.Duration, logger *slog.Logger) *Authority {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authority{
		Store:  s,
		Issuer: issuer,
		TTL:    ttl,
		Logger: logger,
		ready:  guard.NewLatch(),
	}
}

// Ready is closed once Init has returned, whether or not it succeeded.
func (a *Authority) Ready() <-chan struct{} { return a.ready.Done() }

func (a *Authority) IsReady() bool { return a.ready.IsOpen() }

// Failed reports why Init could not create the signing keys, or nil.
func (a *Authority) Failed() error {
	if p := a.initErr.Load(); p != nil {
		return *p
	}
	return nil
}

// Init generates the signing keys and seeds the admin account. It always
// opens the ready latch before returning. When the keys cannot be created
// the authority stays unable to verify tokens, so every session resolves
// as signed out instead of waiting for a latch that never opens. A failed
// admin seed leaves tokens working.
func (a *Authority) Init(ctx context.Context) error {
	if a.InitDelay > 0 {
		select {
		case <-time.After(a.InitDelay):
		case <-ctx.Done():
			return a.fail(ctx.Err())
		}
	}

	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
		Issuer:   a.Issuer,
		Audience: a.Audience,
		NumKeys:  a.NumKeys,
	})
	if err != nil {
		return a.fail(fmt.Errorf("init signing keys: %w", err))
	}
	a.keys.Store(km)

	seedErr := a.seedAdmin(ctx)
	a.ready.Open()
	a.Logger.Info("auth initialised", "signing_keys", km.NumSigners())
	return seedErr
}

func (a *Authority) fail(err error) error {
	a.initErr.Store(&err)
	a.ready.Open()
	a.Logger.Error("auth initialisation failed", "error", err)
	return err
}

func (a *Authority) seedAdmin(ctx context.Context) error {
	if a.Seed.Username == "" {
		return nil
	}
	n, err := a.Store.Users().CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if n > 0 {
		return nil
	}

	hash, err := cryptox.HashPassword(a.Seed.Password)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	now := time.Now().UTC()
	err = a.Store.Users().CreateUser(ctx, domain.User{
		ID:            idx.New().String(),
		Username:      a.Seed.Username,
		PreferredName: a.Seed.Username,
		PasswordHash:  hash,
		Role:          domain.RoleAdmin,
		Level:         domain.LevelA1,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil && !errors.Is(err, store.ErrAlreadyExists) {
		return fmt.Errorf("seed admin: %w", err)
	}
	a.Logger.Info("seeded admin account", "username", a.Seed.Username)
	return nil
}

// Issue mints a session token for u.
func (a *Authority) Issue(u domain.User, amr []string) (string, time.Time, error) {
	km := a.keys.Load()
	if km == nil {
		return "", time.Time{}, ErrAuthNotReady
	}
	claims := jwtx.NewSessionClaims(jwtx.SessionParams{
		Subject:       u.ID,
		Username:      u.Username,
		PreferredName: u.PreferredName,
		Role:          u.Role,
		AMR:           amr,
		Issuer:        a.Issuer,
		Audience:      a.Audience,
		TTL:           a.TTL,
	}, time.Now().UTC())

	tok, err := km.Sign(claims)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return tok, claims.ExpiresAt.Time, nil
}

// Verify checks a session token. It implements httpx.TokenVerifier.
func (a *Authority) Verify(token string) (jwtx.Claims, error) {
	km := a.keys.Load()
	if km == nil {
		return jwtx.Claims{}, ErrAuthNotReady
	}
	return km.Verifier.Verify(token)
}

// JWKS returns the public verification keys.
func (a *Authority) JWKS() jwtx.JWKS {
	km := a.keys.Load()
	if km == nil {
		return jwtx.JWKS{Keys: []jwtx.JWK{}}
	}
	return km.KeySet.PublicJWKS()
}

// constantTimeEqual compares secrets without leaking their length early.
func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
