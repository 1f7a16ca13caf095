package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	httpapi "github.com/aussiebroadwan/lingua/internal/lingua/http"
	"github.com/aussiebroadwan/lingua/internal/lingua/service"
	"github.com/aussiebroadwan/lingua/internal/lingua/store/drivers/sqlite"
	"github.com/aussiebroadwan/lingua/pkg/cryptox"
	"github.com/aussiebroadwan/lingua/pkg/guard"
	"github.com/aussiebroadwan/lingua/pkg/routes"
	"github.com/aussiebroadwan/lingua/pkg/slogx"
	"github.com/aussiebroadwan/lingua/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

// BuildVersion is overridden at build time with -ldflags "-X".
var BuildVersion = "v0.1.0"

// Application wires the lingua service together.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       *sqlite.Store
	auth     *service.Authority
	routes   *routes.Holder
	views    *routes.Views
	registry *prometheus.Registry

	housekeepingService *service.HousekeepingService

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
	router   *httpapi.Router
}

// New opens the database, loads the route table and builds the HTTP
// server. Auth is not initialised until Run.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "lingua",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		registry: prometheus.NewRegistry(),
	}

	if err := cryptox.LoadPepper(cfg.PepperFile); err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initRoutes(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.initHTTP(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	return app, nil
}

// Run serves until ctx is cancelled or a component fails, then shuts down.
// Auth initialisation starts once the listener is accepting connections;
// until it finishes navigations wait on the guard and readyz reports 503.
func (app *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", app.cfg.Port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	app.mu.Lock()
	app.listener = ln
	app.mu.Unlock()

	app.logger.Info("lingua starting", "addr", ln.Addr().String(), "version", BuildVersion)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := app.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		err := app.auth.Init(ctx)
		switch {
		case err == nil:
			return nil
		case ctx.Err() != nil:
			return nil
		case app.auth.Failed() == nil:
			// Tokens work; only the admin seed failed.
			app.logger.Error("auth initialised with errors", "error", err)
			return nil
		default:
			return err
		}
	})

	g.Go(func() error {
		return app.housekeepingService.Run(ctx)
	})

	if app.cfg.RoutesFile != "" {
		g.Go(func() error {
			return routes.Watch(ctx, app.cfg.RoutesFile, app.routes, app.views.Check, app.logger)
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		return app.shutdownServer()
	})

	err = g.Wait()

	if cerr := app.db.Close(); cerr != nil {
		app.logger.Error("error closing database", "error", cerr)
	}
	app.logger.Info("lingua stopped")
	return err
}

// Addr is the listening address once Run has started.
func (app *Application) Addr() net.Addr {
	app.mu.Lock()
	defer app.mu.Unlock()
	if app.listener == nil {
		return nil
	}
	return app.listener.Addr()
}

func (app *Application) shutdownServer() error {
	app.logger.Info("shutting down lingua...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
		return err
	}
	return nil
}

// initDatabase opens the database and applies migrations.
func (app *Application) initDatabase() error {
	db, err := OpenStore(app.cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// OpenStore opens the SQLite database file. The driver adds the WAL and
// busy timeout pragmas.
func OpenStore(path string) (*sqlite.Store, error) {
	return sqlite.NewStore("file:" + path)
}

// initRoutes loads the page route table. A configured route file that does
// not exist yet is seeded from the embedded table.
func (app *Application) initRoutes() error {
	var (
		tbl *routes.Table
		err error
	)
	if path := app.cfg.RoutesFile; path != "" {
		if err := seedRoutesFile(path); err != nil {
			return fmt.Errorf("failed to seed route file: %w", err)
		}
		tbl, err = routes.LoadFile(path)
	} else {
		tbl, err = web.Routes()
	}
	if err != nil {
		return fmt.Errorf("failed to load route table: %w", err)
	}

	app.routes = routes.NewHolder(tbl)
	app.logger.Info("route table loaded", "entries", len(tbl.Entries()), "file", app.cfg.RoutesFile)
	return nil
}

func seedRoutesFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, web.RoutesYAML(), 0o600)
}

// initHTTP builds the services, router and server.
func (app *Application) initHTTP() error {
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app.auth = service.NewAuthority(app.db, app.cfg.Issuer, app.cfg.TokenTTL, app.logger)
	app.auth.NumKeys = app.cfg.NumKeys
	app.auth.InitDelay = app.cfg.AuthInitDelay
	app.auth.Seed = service.AdminSeed{Username: app.cfg.AdminUsername, Password: app.cfg.AdminPassword}

	app.views = web.Views()
	if err := app.views.Check(app.routes.Table()); err != nil {
		return fmt.Errorf("route table references missing views: %w", err)
	}

	guardMetrics, err := guard.NewMetrics(app.registry)
	if err != nil {
		return err
	}
	g := guard.New(app.cfg.GuardTimeout, app.logger)
	g.Observer = guardMetrics

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.Retention,
	)

	mfa := &service.MFAService{Store: app.db, Issuer: "Lingua"}

	router := httpapi.NewRouter(app.db, app.auth, BuildVersion, app.logger)
	router.Guard = g
	router.Routes = app.routes
	router.Views = app.views
	router.Registry = app.registry
	router.SecureCookies = app.cfg.SecureCookies

	// Wire services to router
	router.MFAService = mfa
	router.AccountService = &service.AccountService{Store: app.db, Auth: app.auth, MFA: mfa}
	router.BootstrapService = &service.BootstrapService{Store: app.db, Token: app.cfg.BootstrapToken}
	router.StoryService = &service.StoryService{Store: app.db}
	router.VocabularyService = &service.VocabularyService{Store: app.db}
	router.SyncService = &service.SyncService{Store: app.db}
	router.BannerService = &service.BannerService{Store: app.db}
	router.UserAdminService = &service.UserAdminService{Store: app.db}
	if err := router.ApplyRoutes(); err != nil {
		return err
	}
	app.router = router

	app.server = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return nil
}
