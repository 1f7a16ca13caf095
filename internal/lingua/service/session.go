package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aussiebroadwan/lingua/internal/lingua/store"
	"github.com/aussiebroadwan/lingua/pkg/guard"
	"github.com/aussiebroadwan/lingua/pkg/httpx"
	"github.com/aussiebroadwan/lingua/pkg/slogx"
)

// SessionResolver turns a session token into the auth snapshot the
// navigation guard reads.
type SessionResolver struct {
	Auth  *Authority
	Store store.Store
}

// Resolve returns the session for token. The token is only verified when
// the snapshot is read, so a session created while auth is still loading
// resolves correctly once it is ready.
func (r *SessionResolver) Resolve(ctx context.Context, token string) *Session {
	return &Session{r: r, ctx: ctx, token: token}
}

// CurrentRole returns the stored role of userID. It implements
// httpx.RoleLookup, so API calls and page navigation agree on the role.
func (r *SessionResolver) CurrentRole(ctx context.Context, userID string) (string, error) {
	u, err := r.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("%w: %s", httpx.ErrUnknownSubject, userID)
	}
	if err != nil {
		return "", err
	}
	return u.Role, nil
}

// Session is one request's view of the auth state. It implements
// guard.Session.
type Session struct {
	r     *SessionResolver
	ctx   context.Context
	token string

	mu     sync.Mutex
	cached *guard.Snapshot
}

func (s *Session) Ready() <-chan struct{} { return s.r.Auth.Ready() }

// Snapshot reports Loading until auth is initialised. After that the
// result is computed once and cached for the request.
func (s *Session) Snapshot() guard.Snapshot {
	if !s.r.Auth.IsReady() {
		return guard.Snapshot{Loading: true}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached == nil {
		snap := s.resolve()
		s.cached = &snap
	}
	return *s.cached
}

func (s *Session) resolve() guard.Snapshot {
	if s.token == "" {
		return guard.Snapshot{}
	}

	claims, err := s.r.Auth.Verify(s.token)
	if err != nil {
		slogx.FromContext(s.ctx).Debug("session token rejected", "error", err)
		return guard.Snapshot{}
	}

	// The stored role wins over the token's, so role changes apply at once.
	role, err := s.r.CurrentRole(s.ctx, claims.Subject)
	if err != nil {
		if !errors.Is(err, httpx.ErrUnknownSubject) {
			slogx.FromContext(s.ctx).Error("load session user", "error", err)
		}
		return guard.Snapshot{}
	}

	return guard.Snapshot{
		Authenticated: true,
		Profile:       &guard.Profile{Role: role},
	}
}
