package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/lingua/internal/lingua/domain"
	"github.com/aussiebroadwan/lingua/internal/lingua/service"
	"github.com/aussiebroadwan/lingua/internal/lingua/store"
	"github.com/aussiebroadwan/lingua/pkg/guard"
	"github.com/aussiebroadwan/lingua/pkg/httpx"
	"github.com/aussiebroadwan/lingua/pkg/linguasdk"
	"github.com/aussiebroadwan/lingua/pkg/routes"
	"github.com/aussiebroadwan/lingua/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/aussiebroadwan/lingua/api/lingua" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Limits are the rate limit profiles applied per endpoint group.
type Limits struct {
	Auth  httpx.Limit
	Write httpx.Limit
	Read  httpx.Limit
}

// DefaultLimits reads the RATELIMIT_* overrides over the httpx profiles.
func DefaultLimits() Limits {
	return Limits{
		Auth:  httpx.LimitFromEnv("auth", httpx.AuthLimit),
		Write: httpx.LimitFromEnv("write", httpx.WriteLimit),
		Read:  httpx.LimitFromEnv("read", httpx.ReadLimit),
	}
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware
	metrics     *httpMetrics

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	Auth     *service.Authority
	Sessions *service.SessionResolver
	Guard    *guard.Guard
	Routes   *routes.Holder
	Views    *routes.Views

	// Registry serves /metrics and records request metrics. Nil disables
	// both.
	Registry *prometheus.Registry

	Limits        Limits
	SecureCookies bool

	AccountService    *service.AccountService
	MFAService        *service.MFAService
	BootstrapService  *service.BootstrapService
	StoryService      *service.StoryService
	VocabularyService *service.VocabularyService
	SyncService       *service.SyncService
	BannerService     *service.BannerService
	UserAdminService  *service.UserAdminService
}

func NewRouter(
	st store.Store,
	auth *service.Authority,
	buildVersion string,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
		Auth:         auth,
		Sessions:     &service.SessionResolver{Auth: auth, Store: st},
		Limits:       DefaultLimits(),
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

// ApplyRoutes registers every handler. Services left nil get defaults over
// the router's store.
func (r *Router) ApplyRoutes() error {
	r.defaults()

	if r.Registry != nil {
		m, err := newHTTPMetrics(r.Registry)
		if err != nil {
			return err
		}
		r.metrics = m
		r.Mux.Handle("GET /metrics", promhttp.HandlerFor(r.Registry, promhttp.HandlerOpts{}))
	}

	r.registerAccounts()
	r.registerMFA()
	r.registerBootstrap()
	r.registerStories()
	r.registerVocabulary()
	r.registerSync()
	r.registerAdmin()
	r.registerSystem()
	r.registerPages()

	r.Mux.Handle("GET /swagger/", httpSwagger.Handler())
	r.Mux.Handle("GET /v1/", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		linguasdk.ErrNotFound.WriteError(w)
	}))
	return nil
}

func (r *Router) defaults() {
	st := r.store
	if r.MFAService == nil {
		r.MFAService = &service.MFAService{Store: st, Issuer: "Lingua"}
	}
	if r.AccountService == nil {
		r.AccountService = &service.AccountService{Store: st, Auth: r.Auth, MFA: r.MFAService}
	}
	if r.BootstrapService == nil {
		r.BootstrapService = &service.BootstrapService{Store: st}
	}
	if r.StoryService == nil {
		r.StoryService = &service.StoryService{Store: st}
	}
	if r.VocabularyService == nil {
		r.VocabularyService = &service.VocabularyService{Store: st}
	}
	if r.SyncService == nil {
		r.SyncService = &service.SyncService{Store: st}
	}
	if r.BannerService == nil {
		r.BannerService = &service.BannerService{Store: st}
	}
	if r.UserAdminService == nil {
		r.UserAdminService = &service.UserAdminService{Store: st}
	}
	if r.Guard == nil {
		r.Guard = guard.New(guard.DefaultReadyTimeout, r.logger)
	}
	if r.Views == nil {
		r.Views = routes.NewViews()
	}
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Lingua API
//	@version		0.1.0
//	@description	Graded reading, SM-2 vocabulary review and offline sync for language learners.
//	@description
//	@description				Session tokens are EdDSA (Ed25519) JWTs, verifiable with the JWKS endpoint.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/lingua
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) handle(pattern, name string, h http.Handler) {
	r.Mux.Handle(pattern, r.metrics.instrument(name, h))
}

// user is the middleware stack for signed-in endpoints.
func (r *Router) user(h http.HandlerFunc, l httpx.Limit) http.Handler {
	return httpx.Chain(h,
		httpx.Authenticate(r.Auth),
		httpx.CurrentRole(r.Sessions.CurrentRole),
		httpx.RateLimitByUser(l),
	)
}

// admin is user plus the admin role.
func (r *Router) admin(h http.HandlerFunc, l httpx.Limit) http.Handler {
	return httpx.Chain(h,
		httpx.Authenticate(r.Auth),
		httpx.CurrentRole(r.Sessions.CurrentRole),
		httpx.RequireRole(domain.RoleAdmin),
		httpx.RateLimitByUser(l),
	)
}

func (r *Router) registerAccounts() {
	h := &AccountHandler{Accounts: r.AccountService, SecureCookies: r.SecureCookies}

	// Credential endpoints share the strict per-IP budget.
	r.handle("POST /v1/auth/register", "register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister), httpx.RateLimitByIP(r.Limits.Auth)))
	r.handle("POST /v1/auth/login", "login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin), httpx.RateLimitByIP(r.Limits.Auth)))
	r.handle("POST /v1/auth/logout", "logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout), httpx.RateLimitByIP(r.Limits.Read)))

	r.handle("GET /v1/me", "me", r.user(h.HandleMe, r.Limits.Read))
	r.handle("PATCH /v1/me", "me_update", r.user(h.HandleUpdate, r.Limits.Write))

	r.handle("GET /.well-known/jwks.json", "jwks",
		httpx.Chain(JWKSHandler(r.Auth), httpx.RateLimitByIP(r.Limits.Read)))
}

func (r *Router) registerMFA() {
	h := &MFAHandler{MFAService: r.MFAService}

	r.handle("POST /v1/mfa/totp/enroll", "mfa_enroll", r.user(h.HandleEnroll, r.Limits.Write))
	// Code checks get the credential budget.
	r.handle("POST /v1/mfa/totp/verify", "mfa_verify", r.user(h.HandleVerify, r.Limits.Auth))
	r.handle("DELETE /v1/mfa/totp", "mfa_remove", r.user(h.HandleRemove, r.Limits.Auth))
}

func (r *Router) registerBootstrap() {
	h := &BootstrapHandler{BootstrapService: r.BootstrapService}
	r.handle("POST /v1/bootstrap", "bootstrap",
		httpx.Chain(h, httpx.RateLimitByIP(r.Limits.Auth)))
}

func (r *Router) registerStories() {
	h := &StoriesHandler{Stories: r.StoryService}

	r.handle("GET /v1/stories", "stories_list", r.user(h.HandleList, r.Limits.Read))
	r.handle("GET /v1/stories/{id}", "stories_get", r.user(h.HandleGet, r.Limits.Read))
	r.handle("POST /v1/stories", "stories_create", r.admin(h.HandleCreate, r.Limits.Write))
	r.handle("DELETE /v1/stories/{id}", "stories_delete", r.admin(h.HandleDelete, r.Limits.Write))
}

func (r *Router) registerVocabulary() {
	h := &VocabularyHandler{Vocabulary: r.VocabularyService}

	r.handle("POST /v1/vocabulary", "vocabulary_add", r.user(h.HandleAdd, r.Limits.Write))
	r.handle("GET /v1/vocabulary", "vocabulary_list", r.user(h.HandleList, r.Limits.Read))
	r.handle("GET /v1/vocabulary/due", "vocabulary_due", r.user(h.HandleDue, r.Limits.Read))
	r.handle("POST /v1/vocabulary/{id}/review", "vocabulary_review", r.user(h.HandleReview, r.Limits.Write))
	r.handle("DELETE /v1/vocabulary/{id}", "vocabulary_delete", r.user(h.HandleDelete, r.Limits.Write))
}

func (r *Router) registerSync() {
	h := &SyncHandler{Sync: r.SyncService}

	r.handle("POST /v1/sync", "sync_push", r.user(h.HandlePush, r.Limits.Write))
	r.handle("GET /v1/sync", "sync_pull", r.user(h.HandlePull, r.Limits.Read))
}

func (r *Router) registerAdmin() {
	b := &BannersHandler{Banners: r.BannerService}

	r.handle("GET /v1/banners/active", "banners_active",
		httpx.Chain(http.HandlerFunc(b.HandleActive), httpx.RateLimitByIP(r.Limits.Read)))

	r.handle("GET /v1/admin/banners", "banners_list", r.admin(b.HandleList, r.Limits.Read))
	r.handle("POST /v1/admin/banners", "banners_create", r.admin(b.HandleCreate, r.Limits.Write))
	r.handle("PUT /v1/admin/banners/{id}", "banners_update", r.admin(b.HandleUpdate, r.Limits.Write))
	r.handle("DELETE /v1/admin/banners/{id}", "banners_delete", r.admin(b.HandleDelete, r.Limits.Write))

	u := &UsersHandler{Users: r.UserAdminService}
	r.handle("GET /v1/admin/users", "users_list", r.admin(u.HandleList, r.Limits.Read))
	r.handle("PUT /v1/admin/users/{id}/role", "users_role", r.admin(u.HandleSetRole, r.Limits.Write))
	r.handle("DELETE /v1/admin/users/{id}", "users_delete", r.admin(u.HandleDelete, r.Limits.Write))
}

func (r *Router) registerSystem() {
	// Probes are not rate limited so orchestrators can poll freely.
	r.handle("GET /livez", "livez", LivezHandler(r.startTime, r.buildVersion))
	r.handle("GET /readyz", "readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.Auth, r.Routes))
}

func (r *Router) registerPages() {
	if r.Routes == nil {
		return
	}
	h := &PagesHandler{
		Routes:   r.Routes,
		Views:    r.Views,
		Guard:    r.Guard,
		Sessions: r.Sessions,
	}
	r.handle("GET /", "pages", httpx.Chain(h, httpx.RateLimitByIP(r.Limits.Read)))
}
