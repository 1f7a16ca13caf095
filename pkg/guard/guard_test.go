package guard_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/lingua/pkg/guard"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeSession serves a snapshot that flips from loading to resolved when
// its latch opens.
type fakeSession struct {
	latch    *guard.Latch
	resolved guard.Snapshot
	reads    atomic.Int32
}

func newSession(resolved guard.Snapshot, ready bool) *fakeSession {
	s := &fakeSession{latch: guard.NewLatch(), resolved: resolved}
	if ready {
		s.latch.Open()
	}
	return s
}

func (s *fakeSession) Snapshot() guard.Snapshot {
	s.reads.Add(1)
	if !s.latch.IsOpen() {
		return guard.Snapshot{Loading: true}
	}
	return s.resolved
}

func (s *fakeSession) Ready() <-chan struct{} { return s.latch.Done() }

var (
	anonymous = guard.Snapshot{}
	member    = guard.Snapshot{Authenticated: true, Profile: &guard.Profile{Role: "user"}}
	admin     = guard.Snapshot{Authenticated: true, Profile: &guard.Profile{Role: "admin"}}
)

func intent(path string, chain ...guard.Meta) guard.Intent {
	return guard.Intent{To: guard.Target{Path: path, Chain: chain}}
}

func TestCheckRules(t *testing.T) {
	t.Parallel()

	requiresAuth := guard.Meta{RequiresAuth: true}
	requiresGuest := guard.Meta{RequiresGuest: true}
	requiresAdmin := guard.Meta{RequiresAuth: true, RequiresAdmin: true}
	adminRole := guard.Meta{RequiresAuth: true, Role: "admin"}

	tests := []struct {
		name     string
		snap     guard.Snapshot
		chain    []guard.Meta
		outcome  guard.Outcome
		location string
		reason   guard.Reason
	}{
		{"auth route, anonymous", anonymous, []guard.Meta{requiresAuth}, guard.Redirect, guard.LoginPath, guard.ReasonAuthRequired},
		{"auth route, member", member, []guard.Meta{requiresAuth}, guard.Proceed, "", guard.ReasonAllowed},
		{"guest route, anonymous", anonymous, []guard.Meta{requiresGuest}, guard.Proceed, "", guard.ReasonAllowed},
		{"guest route, member", member, []guard.Meta{requiresGuest}, guard.Redirect, guard.DashboardPath, guard.ReasonGuestOnly},
		{"guest route, admin", admin, []guard.Meta{requiresGuest}, guard.Redirect, guard.AdminPath, guard.ReasonGuestOnly},
		{"admin route, anonymous", anonymous, []guard.Meta{requiresAdmin}, guard.Redirect, guard.LoginPath, guard.ReasonAuthRequired},
		{"admin flag only, anonymous", anonymous, []guard.Meta{{RequiresAdmin: true}}, guard.Redirect, guard.LoginPath, guard.ReasonAdminRequired},
		{"admin route, member", member, []guard.Meta{requiresAdmin}, guard.Redirect, guard.DashboardPath, guard.ReasonAdminRequired},
		{"admin route, admin", admin, []guard.Meta{requiresAdmin}, guard.Proceed, "", guard.ReasonAllowed},
		{"role admin, member", member, []guard.Meta{adminRole}, guard.Redirect, guard.DashboardPath, guard.ReasonRoleMismatch},
		{"role user, admin", admin, []guard.Meta{{Role: "user"}}, guard.Redirect, guard.AdminPath, guard.ReasonRoleMismatch},
		{"role set, anonymous", anonymous, []guard.Meta{{Role: "admin"}}, guard.Proceed, "", guard.ReasonAllowed},
		{"public route, anonymous", anonymous, []guard.Meta{{}}, guard.Proceed, "", guard.ReasonAllowed},
		{"no chain", member, nil, guard.Proceed, "", guard.ReasonAllowed},
		{"authed without profile on admin route", guard.Snapshot{Authenticated: true}, []guard.Meta{requiresAdmin}, guard.Redirect, guard.DashboardPath, guard.ReasonAdminRequired},
	}

	g := guard.New(time.Second, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := g.Check(context.Background(), newSession(tt.snap, true), intent("/x", tt.chain...))
			require.Equal(t, tt.outcome, d.Outcome)
			require.Equal(t, tt.location, d.Location)
			require.Equal(t, tt.reason, d.Reason)
			require.Equal(t, "/x", d.Path)
			require.False(t, d.TimedOut)
		})
	}
}

func TestFoldChain(t *testing.T) {
	t.Parallel()

	t.Run("flags from any record", func(t *testing.T) {
		req := guard.Fold([]guard.Meta{{RequiresAuth: true}, {}, {RequiresAdmin: true}})
		require.True(t, req.Auth)
		require.True(t, req.Admin)
		require.False(t, req.Guest)
	})

	t.Run("leaf role wins", func(t *testing.T) {
		req := guard.Fold([]guard.Meta{{Role: "admin"}, {Role: "user"}})
		require.Equal(t, "user", req.Role)
	})

	t.Run("parent role inherited", func(t *testing.T) {
		req := guard.Fold([]guard.Meta{{Role: "admin"}, {}})
		require.Equal(t, "admin", req.Role)
	})
}

func TestCheckWaitsForReady(t *testing.T) {
	t.Parallel()

	s := newSession(member, false)
	g := guard.New(5*time.Second, nil)

	go func() {
		time.Sleep(20 * time.Millisecond)
		s.latch.Open()
	}()

	d := g.Check(context.Background(), s, intent("/dashboard", guard.Meta{RequiresAuth: true}))
	require.Equal(t, guard.Proceed, d.Outcome)
	require.False(t, d.TimedOut)
	require.GreaterOrEqual(t, d.Waited, 20*time.Millisecond)
	require.Less(t, d.Waited, 5*time.Second)
}

func TestCheckBoundedWait(t *testing.T) {
	t.Parallel()

	t.Run("protected route redirects to login when auth never loads", func(t *testing.T) {
		s := newSession(member, false)
		g := guard.New(30*time.Millisecond, nil)

		d := g.Check(context.Background(), s, intent("/dashboard", guard.Meta{RequiresAuth: true}))
		require.True(t, d.TimedOut)
		require.Equal(t, guard.Redirect, d.Outcome)
		require.Equal(t, guard.LoginPath, d.Location)
	})

	t.Run("public route proceeds when auth never loads", func(t *testing.T) {
		s := newSession(member, false)
		g := guard.New(30*time.Millisecond, nil)

		d := g.Check(context.Background(), s, intent("/", guard.Meta{}))
		require.True(t, d.TimedOut)
		require.Equal(t, guard.Proceed, d.Outcome)
	})
}

func TestCheckCancelledNavigation(t *testing.T) {
	t.Parallel()

	s := newSession(member, false)
	g := guard.New(time.Minute, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan guard.Decision, 1)
	go func() {
		done <- g.Check(ctx, s, intent("/dashboard", guard.Meta{RequiresAuth: true}))
	}()

	cancel()

	select {
	case d := <-done:
		require.True(t, d.Cancelled)
		require.False(t, d.TimedOut)
		require.Equal(t, guard.LoginPath, d.Location)
	case <-time.After(2 * time.Second):
		t.Fatal("guard did not return after cancellation")
	}
}

func TestCheckIsStateless(t *testing.T) {
	t.Parallel()

	s := newSession(anonymous, true)
	g := guard.New(time.Second, nil)
	in := intent("/dashboard", guard.Meta{RequiresAuth: true})

	require.Equal(t, guard.Redirect, g.Check(context.Background(), s, in).Outcome)

	s.resolved = member
	require.Equal(t, guard.Proceed, g.Check(context.Background(), s, in).Outcome)
	require.Equal(t, int32(2), s.reads.Load())
}

func TestMetricsObserve(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m, err := guard.NewMetrics(reg)
	require.NoError(t, err)

	g := guard.New(10*time.Millisecond, nil)
	g.Observer = m

	g.Check(context.Background(), newSession(anonymous, true), intent("/dashboard", guard.Meta{RequiresAuth: true}))
	g.Check(context.Background(), newSession(member, true), intent("/dashboard", guard.Meta{RequiresAuth: true}))
	g.Check(context.Background(), newSession(member, false), intent("/", guard.Meta{}))

	n, err := testutil.GatherAndCount(reg, "lingua_guard_decisions_total")
	require.NoError(t, err)
	require.Equal(t, 2, n) // two label sets: redirect/auth_required, proceed/allowed

	require.Equal(t, 1.0, timeouts(t, reg))

	// A navigation abandoned by the client is not a timeout.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := g.Check(ctx, newSession(member, false), intent("/", guard.Meta{}))
	require.True(t, d.Cancelled)
	require.Equal(t, 1.0, timeouts(t, reg))

	_, err = guard.NewMetrics(reg)
	require.Error(t, err, "registering twice must fail")
}

func timeouts(t *testing.T, reg *prometheus.Registry) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() == "lingua_guard_ready_timeouts_total" {
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	t.Fatal("ready timeouts counter not registered")
	return 0
}

func TestLatch(t *testing.T) {
	t.Parallel()

	l := guard.NewLatch()
	require.False(t, l.IsOpen())

	l.Open()
	l.Open()
	require.True(t, l.IsOpen())

	select {
	case <-l.Done():
	default:
		t.Fatal("done channel should be closed")
	}
}
