// Package internal wires configuration, storage, and the HTTP surface into a
// runnable application.
package internal

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"sitepulse/internal/auth"
	"sitepulse/internal/config"
	"sitepulse/internal/database"
	"sitepulse/internal/geoip"
	"sitepulse/internal/http"
	"sitepulse/internal/jobs"
	"sitepulse/internal/logging"
)

// Application owns the long-lived components of the server process.
type Application struct {
	Config    *config.Config
	Logger    *slog.Logger
	DBManager *database.Manager
	Fiber     *fiber.App

	geo       *geoip.Resolver
	scheduler *jobs.Scheduler
}

// NewApp builds the application from global config.
func NewApp() (*Application, error) {
	return NewAppWithConfig(config.GetConfig())
}

// NewAppWithConfig builds the application from the provided config: logger,
// database (with migrations), GeoIP resolver, handlers and routes.
func NewAppWithConfig(cfg *config.Config) (*Application, error) {
	logger := logging.NewLogger(cfg)

	dbManager := database.NewManager(cfg, logger)
	if err := dbManager.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := dbManager.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	geo := geoip.NewResolver(cfg.GeoDBPath, logger)

	issuer := auth.NewTokenIssuer(cfg.PrivateKey, time.Duration(cfg.GetTokenTTLSeconds())*time.Second)
	handler := http.NewHandler(dbManager.GetConnection(), logger, cfg, geo, issuer)

	fiberApp := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		DisableStartupMessage: cfg.IsProduction(),
	})
	MountRoutes(fiberApp, handler, issuer, cfg)

	return &Application{
		Config:    cfg,
		Logger:    logger,
		DBManager: dbManager,
		Fiber:     fiberApp,
		geo:       geo,
		scheduler: jobs.NewScheduler(dbManager.GetConnection(), logger, cfg),
	}, nil
}

// Start listens on the configured port and blocks until the server stops.
func (a *Application) Start() error {
	a.scheduler.Start()

	addr := ":" + a.Config.AppPort
	a.Logger.Info("Starting server",
		slog.String("app", a.Config.AppName),
		slog.String("addr", addr),
		slog.String("environment", a.Config.Environment))
	return a.Fiber.Listen(addr)
}

// Shutdown stops the HTTP server and closes the database and GeoIP reader.
func (a *Application) Shutdown() error {
	a.Logger.Info("Shutting down")

	a.scheduler.Stop()
	if err := a.Fiber.Shutdown(); err != nil {
		a.Logger.Error("Failed to stop HTTP server", slog.Any("error", err))
	}
	a.geo.Close()
	return a.DBManager.Close()
}
