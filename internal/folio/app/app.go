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

	httpapi "github.com/foliokit/folio/internal/folio/http"
	"github.com/foliokit/folio/internal/folio/service"
	"github.com/foliokit/folio/internal/folio/store"
	"github.com/foliokit/folio/internal/folio/store/drivers/sqlite"
	"github.com/foliokit/folio/pkg/httpx"
	"github.com/foliokit/folio/pkg/jwtx"
	"github.com/foliokit/folio/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the folio backend with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db          store.Store
	tokens      *jwtx.HS256
	adminPolicy *httpx.NetworkPolicy

	// Services
	provisionService    *service.ProvisionService
	inviteService       *service.InviteService
	userService         *service.UserService
	portfolioService    *service.PortfolioService
	projectService      *service.ProjectService
	bootstrapService    *service.BootstrapService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "folio",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tokens, err := jwtx.NewHS256([]byte(cfg.TokenSecret), cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token signer: %w", err)
	}
	app.tokens = tokens

	policy, err := httpx.ParseNetworkPolicy(cfg.AdminAllowedRanges)
	if err != nil {
		return nil, fmt.Errorf("failed to parse admin network policy: %w", err)
	}
	app.adminPolicy = policy

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()

	// Seed the first admin before serving so the invite workflow is usable
	// on a fresh install.
	if err := app.bootstrapService.SeedAdmin(
		context.Background(),
		app.logger,
		cfg.AdminSeedName,
		cfg.AdminSeedEmail,
		cfg.AdminSeedPassword,
	); err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to seed admin: %w", err)
	}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("folio service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
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

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down folio service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("folio service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_time_format=sqlite", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
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

// initServices initializes all business logic services.
func (app *Application) initServices() {
	hash := app.cfg.HashParams()

	app.provisionService = &service.ProvisionService{
		Store:    app.db,
		Signer:   app.tokens,
		Hash:     hash,
		Issuer:   app.cfg.Issuer,
		TokenTTL: app.cfg.TokenTTL,
	}
	app.inviteService = &service.InviteService{
		Store:      app.db,
		Hash:       hash,
		DefaultTTL: app.cfg.InviteTTL,
	}
	app.userService = &service.UserService{Store: app.db, Hash: hash}
	app.portfolioService = &service.PortfolioService{Store: app.db}
	app.projectService = &service.ProjectService{Store: app.db}
	app.bootstrapService = &service.BootstrapService{Store: app.db, Hash: hash}

	app.housekeepingService = service.NewHousekeepingService(
		app.inviteService,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.tokens,
		BuildVersion,
		app.db,
		app.adminPolicy,
		app.cfg.TokenTTL,
		app.logger,
	)

	// Wire services to router
	router.ProvisionService = app.provisionService
	router.InviteService = app.inviteService
	router.UserService = app.userService
	router.PortfolioService = app.portfolioService
	router.ProjectService = app.projectService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
