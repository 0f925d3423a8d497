// Package app assembles the AklujEats web host: storage, views, API docs,
// sessions, the middleware chain and the controller routes.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/aklujeats/aklujeats/internal/api"
	"github.com/aklujeats/aklujeats/internal/config"
	"github.com/aklujeats/aklujeats/internal/cookie"
	"github.com/aklujeats/aklujeats/internal/db"
	"github.com/aklujeats/aklujeats/internal/db/sqlstore"
	"github.com/aklujeats/aklujeats/internal/docs"
	"github.com/aklujeats/aklujeats/internal/logger"
	"github.com/aklujeats/aklujeats/internal/metrics"
	"github.com/aklujeats/aklujeats/internal/middleware"
	"github.com/aklujeats/aklujeats/internal/mvc"
	"github.com/aklujeats/aklujeats/internal/scheduler"
	"github.com/aklujeats/aklujeats/internal/services"
	"github.com/aklujeats/aklujeats/internal/session"
	"github.com/aklujeats/aklujeats/internal/web"
)

const (
	sessionCleanupInterval = time.Minute
	limiterCleanupInterval = 5 * time.Minute
)

type options struct {
	database     db.Database
	sessionStore session.Store
}

// Option customizes New
type Option func(*options)

// WithDatabase uses database instead of building one from the configuration
func WithDatabase(database db.Database) Option {
	return func(o *options) { o.database = database }
}

// WithSessionStore uses store for sessions instead of the configured one
func WithSessionStore(store session.Store) Option {
	return func(o *options) { o.sessionStore = store }
}

// App is a fully wired web host
type App struct {
	cfg       *config.Config
	engine    *gin.Engine
	database  db.Database
	registry  *mvc.Registry
	limiter   *middleware.RateLimiter
	scheduler *scheduler.Scheduler
}

// New builds the host from cfg. Nothing is connected yet: the database opens
// on first use and listeners start in Run.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	// Relational database, opened lazily
	database := o.database
	if database == nil {
		var err error
		database, err = db.New(cfg.SQLConfig(), cfg.NoSQLConfig())
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %w", err)
		}
	}

	engine := gin.New()
	// Routes match regardless of case: /admin/login is redirected to /Admin/Login
	engine.RedirectFixedPath = true
	engine.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("Recovered from panic on %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
		c.AbortWithStatus(http.StatusInternalServerError)
	}))
	engine.Use(middleware.RequestLogger())
	if cfg.Metrics.Enabled {
		engine.Use(metrics.Middleware(cfg.Metrics.Path))
	}

	// Views and controllers
	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}
	engine.SetHTMLTemplate(tmpl)

	// API schema and documentation UI, in every environment
	docs.Configure(cfg.APIDocs.Title, cfg.APIDocs.Version, cfg.APIDocs.Description)

	// Sessions
	store := o.sessionStore
	if store == nil {
		store = newSessionStore(cfg.Session)
	}
	cookies := cookie.NewPolicy(cfg.CookiePolicy.ConsentRequired, cfg.CookiePolicy.ConsentCookieName)
	sessions := session.NewManager(store, session.Options{
		CookieName:  cfg.Session.CookieName,
		IdleTimeout: cfg.Session.IdleTimeout,
		HTTPOnly:    cfg.Session.HTTPOnly,
		Secure:      cfg.Session.Secure,
		Essential:   cfg.Session.Essential,
	}, cookies)

	// Middleware chain
	registry := mvc.NewRegistry()
	engine.Use(middleware.HTTPSRedirect(cfg.Server.HTTPSPort))
	if _, err := os.Stat(cfg.Server.StaticDir); err != nil {
		logger.Warning("Static directory %s is not available: %v", cfg.Server.StaticDir, err)
	}
	engine.Use(static.Serve("/", static.LocalFile(cfg.Server.StaticDir, false)))
	engine.Use(sessions.Middleware())
	engine.Use(registry.Routing())
	engine.Use(middleware.Authorize(cfg.Auth.LoginPath))

	// Routes
	limiter := middleware.NewRateLimiter(cfg.Auth.LoginAttemptsPerMinute, cfg.Auth.LoginBurst)
	router := mvc.NewRouter(engine, registry)
	admin := web.NewAdminController(database, cookies, limiter, cfg.Auth.LoginPath)
	if err := router.MapControllerRoute("default", cfg.Routing.DefaultPattern, admin); err != nil {
		return nil, fmt.Errorf("failed to map default route: %w", err)
	}
	if err := router.MapControllers(api.NewServer(database, cookies).Controllers()...); err != nil {
		return nil, fmt.Errorf("failed to map API controllers: %w", err)
	}
	docs.Register(engine)
	if cfg.Metrics.Enabled {
		engine.GET(cfg.Metrics.Path, gin.WrapH(metrics.Handler()))
	}

	a := &App{
		cfg:      cfg,
		engine:   engine,
		database: database,
		registry: registry,
		limiter:  limiter,
	}
	if cfg.Scheduler.StaleOrderSweep != "" && cfg.Orders.AutoCancelAfter > 0 {
		a.scheduler = scheduler.New(services.NewOrderService(database), cfg.Scheduler.StaleOrderSweep, cfg.Orders.AutoCancelAfter)
	}

	logger.Debug("Mapped %d endpoints", len(registry.Endpoints()))
	return a, nil
}

func newSessionStore(cfg config.SessionConfig) session.Store {
	if cfg.Store == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		logger.Info("Sessions stored in Redis at %s", cfg.Redis.Addr)
		return session.NewRedisStore(client, "")
	}
	return session.NewMemoryStore(sessionCleanupInterval)
}

// Handler returns the HTTP handler of the host
func (a *App) Handler() http.Handler {
	return a.engine
}

// Registry returns the mapped endpoints
func (a *App) Registry() *mvc.Registry {
	return a.registry
}

// Database returns the storage used by the host
func (a *App) Database() db.Database {
	return a.database
}

// Run serves HTTP (and HTTPS when a certificate is configured) until ctx is
// cancelled, then drains connections for at most the shutdown timeout.
func (a *App) Run(ctx context.Context) error {
	if a.cfg.SQLDatabase.AutoMigrate {
		if err := Migrate(a.cfg); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.limiter.StartCleanup(ctx, limiterCleanupInterval)

	if a.scheduler != nil {
		if err := a.scheduler.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer a.scheduler.Stop()
	}

	type listener struct {
		server *http.Server
		tls    bool
	}
	listeners := []listener{{server: &http.Server{Addr: a.cfg.Server.HTTPAddr, Handler: a.engine}}}
	if a.cfg.Server.TLSEnabled() {
		listeners = append(listeners, listener{server: &http.Server{Addr: a.cfg.Server.HTTPSAddr, Handler: a.engine}, tls: true})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, l := range listeners {
		g.Go(func() error {
			var err error
			if l.tls {
				logger.Info("Listening for HTTPS on %s", l.server.Addr)
				err = l.server.ListenAndServeTLS(a.cfg.Server.TLSCertFile, a.cfg.Server.TLSKeyFile)
			} else {
				logger.Info("Listening for HTTP on %s", l.server.Addr)
				err = l.server.ListenAndServe()
			}
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		for _, l := range listeners {
			if err := l.server.Shutdown(shutdownCtx); err != nil {
				logger.Warning("Failed to shut down %s gracefully: %v", l.server.Addr, err)
			}
		}
		return nil
	})

	err := g.Wait()

	disconnectCtx, cancelDisconnect := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancelDisconnect()
	if derr := a.database.Disconnect(disconnectCtx); derr != nil {
		logger.Warning("Failed to disconnect database: %v", derr)
	}

	return err
}

// Migrate applies pending schema migrations for the configured SQL provider.
// The in-memory provider has no schema.
func Migrate(cfg *config.Config) error {
	sqlCfg := cfg.SQLConfig()
	if sqlCfg.Provider == "memory" {
		return nil
	}

	conn, err := sqlstore.OpenDB(sqlCfg, true)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := db.RunMigrations(conn.DB, sqlCfg.Provider); err != nil {
		return err
	}
	logger.Info("Database schema is up to date")
	return nil
}
