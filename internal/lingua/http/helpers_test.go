package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	linguahttp "github.com/aussiebroadwan/lingua/internal/lingua/http"
	"github.com/aussiebroadwan/lingua/internal/lingua/service"
	"github.com/aussiebroadwan/lingua/internal/lingua/store/drivers/sqlite"
	"github.com/aussiebroadwan/lingua/pkg/guard"
	"github.com/aussiebroadwan/lingua/pkg/linguasdk"
	"github.com/aussiebroadwan/lingua/pkg/routes"
	"github.com/aussiebroadwan/lingua/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

const (
	bootstrapToken = "bootstrap-secret"
	testPassword   = "correct horse"
)

const pageRoutes = `
routes:
  - path: /
    name: home
    view: home
  - path: /auth
    meta: {requiresGuest: true}
    children:
      - path: login
        name: login
        view: login
  - path: /dashboard
    name: dashboard
    view: dashboard
    meta: {requiresAuth: true}
  - path: /stories/:id
    name: story
    view: story
    meta: {requiresAuth: true}
  - path: /admin
    name: admin
    view: admin
    meta: {requiresAuth: true, requiresAdmin: true}
  - path: /:catchAll(.*)*
    name: not-found
    view: not-found
`

type textView string

func (v textView) Render(w http.ResponseWriter, _ *http.Request, m routes.Match) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte("<h1>" + string(v) + "</h1>"))
}

type env struct {
	srv      *httptest.Server
	store    *sqlite.Store
	auth     *service.Authority
	registry *prometheus.Registry
	client   *linguasdk.Client
}

type envOption func(*linguahttp.Router)

// newEnv starts a full router over an in-memory store. Auth is initialised
// unless skipInit is set.
func newEnv(t *testing.T, skipInit bool, opts ...envOption) *env {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	auth := service.NewAuthority(st, "lingua-test", time.Hour, slogx.Discard())
	auth.NumKeys = 1
	if !skipInit {
		require.NoError(t, auth.Init(context.Background()))
	}

	tbl, err := routes.LoadBytes([]byte(pageRoutes))
	require.NoError(t, err)
	views := routes.NewViews()
	for _, name := range tbl.Views() {
		views.Register(name, func() (routes.View, error) { return textView(name), nil })
	}

	reg := prometheus.NewRegistry()
	metrics, err := guard.NewMetrics(reg)
	require.NoError(t, err)

	r := linguahttp.NewRouter(st, auth, "test", slogx.Discard())
	r.Routes = routes.NewHolder(tbl)
	r.Views = views
	r.Guard = guard.New(time.Second, slogx.Discard())
	r.Guard.Observer = metrics
	r.Registry = reg
	r.Limits = linguahttp.Limits{}
	r.BootstrapService = &service.BootstrapService{Store: st, Token: bootstrapToken}
	for _, o := range opts {
		o(r)
	}
	require.NoError(t, r.ApplyRoutes())

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &env{
		srv:      srv,
		store:    st,
		auth:     auth,
		registry: reg,
		client:   linguasdk.NewClient(srv.URL),
	}
}

// signup registers and logs in a user, returning an authenticated client.
func (e *env) signup(t *testing.T, username string) (*linguasdk.Client, *linguasdk.UserResponse) {
	t.Helper()
	ctx := context.Background()

	u, err := e.client.Register(ctx, linguasdk.RegisterRequest{Username: username, Password: testPassword})
	require.NoError(t, err)

	c, _, err := e.client.Login(ctx, linguasdk.LoginRequest{Username: username, Password: testPassword})
	require.NoError(t, err)
	return c, u
}

// admin bootstraps the first admin and returns its client.
func (e *env) admin(t *testing.T) (*linguasdk.Client, *linguasdk.UserResponse) {
	t.Helper()
	ctx := context.Background()

	u, err := e.client.Bootstrap(ctx, bootstrapToken, linguasdk.BootstrapRequest{Username: "admin", Password: testPassword})
	require.NoError(t, err)

	c, _, err := e.client.Login(ctx, linguasdk.LoginRequest{Username: "admin", Password: testPassword})
	require.NoError(t, err)
	return c, u
}
