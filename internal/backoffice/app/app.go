package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	httpapi "github.com/elmagroup/backoffice/internal/backoffice/http"
	"github.com/elmagroup/backoffice/internal/backoffice/mailer"
	"github.com/elmagroup/backoffice/internal/backoffice/metrics"
	"github.com/elmagroup/backoffice/internal/backoffice/service"
	"github.com/elmagroup/backoffice/internal/backoffice/store"
	"github.com/elmagroup/backoffice/internal/backoffice/store/drivers/postgres"
	"github.com/elmagroup/backoffice/internal/backoffice/store/drivers/sqlite"
	"github.com/elmagroup/backoffice/pkg/cryptox"
	"github.com/elmagroup/backoffice/pkg/slogx"
)

const (
	// BuildVersion is overridden at build time via -ldflags.
	BuildVersion = "v0.1.0"

	serviceName = "backoffice"
)

// Application is the back-office service with all of its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	keys     *SessionKeys
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	mailer   mailer.Mailer

	auditLogger      *service.AuditLogger
	userService      *service.UserService
	sessionService   *service.SessionService
	rolesService     *service.RolesService
	inviteService    *service.InviteService
	bootstrapService *service.BootstrapService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with every dependency initialized.
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: serviceName,
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	keys, err := InitSessionKeys(app.cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize session keys: %w", err)
	}
	app.keys = keys

	if err := app.initMailer(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initMetrics()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler exposes the router, mainly for tests.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("backoffice service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"database", app.cfg.DatabaseDriver,
	)

	if bootstrapped, err := app.bootstrapService.IsBootstrapped(context.Background()); err == nil && !bootstrapped {
		if app.cfg.BootstrapToken == "" {
			app.logger.Warn("no users exist and BOOTSTRAP_TOKEN is unset: nobody can be granted privileges")
		} else {
			app.logger.Info("waiting for bootstrap on POST /v1/bootstrap")
		}
	}

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains in-flight requests and closes the database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down backoffice service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("backoffice service stopped")
	return nil
}

// initDatabase opens the configured store and applies migrations.
func (app *Application) initDatabase() error {
	var (
		db  store.Store
		err error
	)
	switch app.cfg.DatabaseDriver {
	case DriverPostgres:
		db, err = postgres.NewStore(app.cfg.DatabaseURL)
	default:
		db, err = sqlite.NewStore(fmt.Sprintf("file:%s", app.cfg.DatabaseFile))
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// initMailer picks SMTP delivery when a host is configured and falls back
// to logging otherwise.
func (app *Application) initMailer() error {
	if app.cfg.SMTPHost == "" {
		app.logger.Warn("SMTP_HOST not set: invite emails will only be logged")
		app.mailer = mailer.LogMailer{}
		return nil
	}

	m, err := mailer.NewSMTPMailer(mailer.SMTPConfig{
		Host:     app.cfg.SMTPHost,
		Port:     app.cfg.SMTPPort,
		Username: app.cfg.SMTPUsername,
		Password: app.cfg.SMTPPassword,
		From:     app.cfg.SMTPFrom,
		Timeout:  10 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize mailer: %w", err)
	}
	app.mailer = m
	app.logger.Info("smtp mailer configured", "host", app.cfg.SMTPHost, "port", app.cfg.SMTPPort)
	return nil
}

func (app *Application) initMetrics() {
	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.metrics = metrics.New(app.registry, serviceName)
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.auditLogger = &service.AuditLogger{Store: app.db, Metrics: app.metrics}

	app.userService = &service.UserService{Store: app.db}
	app.sessionService = &service.SessionService{
		Store:   app.db,
		Signer:  app.keys.Signer,
		Issuer:  app.cfg.SessionIssuer,
		TTL:     app.cfg.SessionTTL,
		Metrics: app.metrics,
	}
	app.rolesService = &service.RolesService{
		Store:   app.db,
		Audit:   app.auditLogger,
		Metrics: app.metrics,
	}
	app.inviteService = &service.InviteService{
		Store:              app.db,
		Audit:              app.auditLogger,
		Mailer:             app.mailer,
		Metrics:            app.metrics,
		DefaultExpiryHours: app.cfg.InviteDefaultExpiryHours,
		MaxExpiryHours:     app.cfg.InviteMaxExpiryHours,
		RedeemURL:          app.cfg.InviteRedeemURL,
	}
	app.bootstrapService = &service.BootstrapService{
		Store: app.db,
		Audit: app.auditLogger,
		Token: app.cfg.BootstrapToken,
	}
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keys.KeySet,
		app.keys.Verifier,
		BuildVersion,
		app.db,
		app.metrics,
		app.registry,
		app.logger,
	)

	router.UserService = app.userService
	router.SessionService = app.sessionService
	router.RolesService = app.rolesService
	router.InviteService = app.inviteService
	router.BootstrapService = app.bootstrapService
	router.AuditLogger = app.auditLogger
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
