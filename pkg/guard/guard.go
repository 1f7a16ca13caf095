// Package guard decides, for every page navigation, whether the caller may
// proceed to the requested view or must be redirected elsewhere.
//
// A Guard holds no per-navigation state. Each Check reads the caller's auth
// snapshot afresh, optionally after waiting for the auth provider to finish
// initialising, and applies the route metadata rules in a fixed order.
package guard

import (
	"context"
	"log/slog"
	"time"
)

// Redirect targets.
const (
	LoginPath     = "/auth/login"
	DashboardPath = "/dashboard"
	AdminPath     = "/admin"
)

// RoleAdmin is the profile role with access to admin routes.
const RoleAdmin = "admin"

// DefaultReadyTimeout bounds how long a navigation waits for auth
// initialisation before deciding with whatever state is available.
const DefaultReadyTimeout = 5 * time.Second

// Meta is the access metadata attached to a route record.
type Meta struct {
	RequiresAuth  bool   `yaml:"requiresAuth,omitempty" json:"requiresAuth,omitempty"`
	RequiresGuest bool   `yaml:"requiresGuest,omitempty" json:"requiresGuest,omitempty"`
	RequiresAdmin bool   `yaml:"requiresAdmin,omitempty" json:"requiresAdmin,omitempty"`
	Role          string `yaml:"role,omitempty" json:"role,omitempty"`
}

// Profile is the part of the user profile the guard cares about.
type Profile struct {
	Role string
}

// Snapshot is a point-in-time view of the caller's auth state.
type Snapshot struct {
	Authenticated bool
	Loading       bool
	Profile       *Profile
}

// Role returns the profile role or "" when there is no profile.
func (s Snapshot) Role() string {
	if s.Profile == nil {
		return ""
	}
	return s.Profile.Role
}

// Session is the auth provider as seen by the guard. The guard only reads
// from it.
type Session interface {
	// Snapshot returns the current auth state.
	Snapshot() Snapshot

	// Ready is closed once auth initialisation has completed.
	Ready() <-chan struct{}
}

// Target is the destination of a navigation: the requested path and the
// metadata of every matched route record, root first.
type Target struct {
	Path  string
	Chain []Meta
}

// Intent is one pending navigation.
type Intent struct {
	To   Target
	From string
}

// Requirements is the metadata of a matched chain folded into one value.
type Requirements struct {
	Auth  bool
	Guest bool
	Admin bool
	Role  string
}

// Fold merges a matched chain. Boolean flags apply when any record sets
// them. The role comes from the record closest to the leaf that sets one.
func Fold(chain []Meta) Requirements {
	var req Requirements
	for _, m := range chain {
		req.Auth = req.Auth || m.RequiresAuth
		req.Guest = req.Guest || m.RequiresGuest
		req.Admin = req.Admin || m.RequiresAdmin
	}
	for i := len(chain) - 1; i >= 0; i-- {
		if chain[i].Role != "" {
			req.Role = chain[i].Role
			break
		}
	}
	return req
}

// Guard applies route access rules to navigations.
type Guard struct {
	// ReadyTimeout bounds the wait for auth initialisation. Zero means
	// DefaultReadyTimeout.
	ReadyTimeout time.Duration

	// Observer, if set, is called with every decision.
	Observer Observer

	Logger *slog.Logger
}

// Observer receives every decision the guard makes.
type Observer interface {
	Observe(Decision)
}

// New returns a Guard with the given ready timeout.
func New(readyTimeout time.Duration, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{ReadyTimeout: readyTimeout, Logger: logger}
}

// Check decides the outcome of a navigation. It always returns a decision.
func (g *Guard) Check(ctx context.Context, s Session, in Intent) Decision {
	start := time.Now()
	snap := s.Snapshot()

	var end waitEnd
	if snap.Loading {
		end = g.awaitReady(ctx, s)
		snap = s.Snapshot()
	}

	d := Evaluate(Fold(in.To.Chain), snap)
	d.Path = in.To.Path
	d.From = in.From
	d.Waited = time.Since(start)
	d.TimedOut = end == waitTimedOut
	d.Cancelled = end == waitCancelled

	switch end {
	case waitTimedOut:
		g.logger().Warn("auth initialisation not complete, deciding with current state",
			"path", in.To.Path,
			"waited", d.Waited,
			"outcome", d.Outcome,
		)
	case waitCancelled:
		g.logger().Debug("navigation cancelled while waiting for auth",
			"path", in.To.Path,
			"waited", d.Waited,
		)
	}
	if g.Observer != nil {
		g.Observer.Observe(d)
	}
	return d
}

type waitEnd int

const (
	waitReady waitEnd = iota
	waitTimedOut
	waitCancelled
)

// awaitReady blocks until the session is ready, the timeout elapses or ctx
// is done, and reports which came first.
func (g *Guard) awaitReady(ctx context.Context, s Session) waitEnd {
	timeout := g.ReadyTimeout
	if timeout <= 0 {
		timeout = DefaultReadyTimeout
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-s.Ready():
		return waitReady
	case <-timer.C:
		return waitTimedOut
	case <-ctx.Done():
		return waitCancelled
	}
}

func (g *Guard) logger() *slog.Logger {
	if g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

// Evaluate applies the access rules to a snapshot. First match wins.
func Evaluate(req Requirements, snap Snapshot) Decision {
	authed := snap.Authenticated
	role := snap.Role()

	switch {
	case req.Guest && authed:
		return redirect(homeFor(role), ReasonGuestOnly)

	case req.Auth && !authed:
		return redirect(LoginPath, ReasonAuthRequired)

	case req.Admin && (!authed || role != RoleAdmin):
		if !authed {
			return redirect(LoginPath, ReasonAdminRequired)
		}
		return redirect(DashboardPath, ReasonAdminRequired)

	case req.Role != "" && authed && role != req.Role:
		return redirect(homeFor(role), ReasonRoleMismatch)
	}

	return Decision{Outcome: Proceed, Reason: ReasonAllowed}
}

func homeFor(role string) string {
	if role == RoleAdmin {
		return AdminPath
	}
	return DashboardPath
}

func redirect(location string, reason Reason) Decision {
	return Decision{Outcome: Redirect, Location: location, Reason: reason}
}
