// Package http contains the fiber request handlers for the public ingestion
// API and the authenticated dashboard API.
package http

import (
	"errors"
	"log/slog"
	"net"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"sitepulse/internal/analytics"
	"sitepulse/internal/auth"
	"sitepulse/internal/config"
	"sitepulse/internal/events"
	"sitepulse/internal/geoip"
	"sitepulse/internal/websites"
)

// Handler bundles the dependencies shared by all request handlers. It is
// constructed once in app assembly and holds no per-request state.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
	cfg    *config.Config
	geo    *geoip.Resolver
	tokens *auth.TokenIssuer
}

// NewHandler creates the handler set with its dependencies.
func NewHandler(db *gorm.DB, logger *slog.Logger, cfg *config.Config, geo *geoip.Resolver, tokens *auth.TokenIssuer) *Handler {
	return &Handler{db: db, logger: logger, cfg: cfg, geo: geo, tokens: tokens}
}

// HealthAction reports process liveness.
func (h *Handler) HealthAction(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// requireWebsite resolves the websiteId query parameter to a website owned
// by the authenticated user. Foreign and unknown websites both yield a 404.
func (h *Handler) requireWebsite(c *fiber.Ctx) (*websites.Website, error) {
	websiteID, err := parseWebsiteID(c.Query("websiteId"))
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Website ID is required",
		})
	}

	website, err := websites.GetWebsiteForUser(h.db, websiteID, auth.AuthenticatedUserID(c))
	if err != nil {
		var notFound *websites.WebsiteNotFoundError
		if errors.As(err, &notFound) {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Website not found",
			})
		}
		h.logger.Error("Failed to look up website", slog.Any("error", err))
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	return website, nil
}

// storeError maps an aggregation failure to a response: store outages are
// server errors, anything else is a bad request surfaced as-is.
func (h *Handler) storeError(c *fiber.Ctx, err error) error {
	var unavailable *analytics.StoreUnavailableError
	if errors.As(err, &unavailable) {
		h.logger.Error("Event store unavailable", slog.Any("error", err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Event store unavailable",
		})
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func parseWebsiteID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, events.NewMissingFieldError("websiteId")
	}
	return uint(id), nil
}

// getClientIP extracts the visitor address, preferring the first value of
// X-Forwarded-For, then X-Real-IP, then the connection's remote address.
func getClientIP(c *fiber.Ctx) string {
	if forwarded := c.Get("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return first
		}
	}

	if realIP := c.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	remoteAddr := c.Context().RemoteAddr().String()
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
