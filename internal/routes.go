package internal

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"sitepulse/internal/auth"
	"sitepulse/internal/config"
	"sitepulse/internal/http"
)

// Ingestion endpoints are fully permissive: the tracking snippet posts from
// arbitrary origins.
var publicCORSConfig = cors.Config{
	AllowOrigins: "*",
	AllowMethods: "POST,GET,OPTIONS",
	AllowHeaders: "Origin, Content-Type, Accept, Authorization, Referrer, User-Agent",
}

const collectRateLimit = 70 // requests per minute per IP, production only

// MountRoutes mounts all API routes on the fiber app.
func MountRoutes(app *fiber.App, handler *http.Handler, issuer *auth.TokenIssuer, cfg *config.Config) {
	app.Get("/_health", handler.HealthAction)

	collect := app.Group("/api/collect", cors.New(publicCORSConfig))
	if cfg.IsProduction() {
		collect.Use(limiter.New(limiter.Config{
			Max:        collectRateLimit,
			Expiration: time.Minute,
		}))
	}
	collect.Post("/", handler.CollectEventAction)

	api := app.Group("/api")
	api.Post("/auth/register", handler.RegisterAction)
	api.Post("/auth/login", handler.LoginAction)

	protected := api.Use(auth.RequireAuth(issuer))
	protected.Get("/visits", handler.VisitsAction)
	protected.Get("/analytics", handler.AnalyticsAction)
	protected.Get("/realtime", handler.RealtimeAction)
	protected.Get("/export", handler.ExportAction)
	protected.Get("/events", handler.ListEventsAction)
	protected.Get("/websites", handler.ListWebsitesAction)
	protected.Post("/websites", handler.CreateWebsiteAction)
	protected.Delete("/websites/:id", handler.DeleteWebsiteAction)
}
