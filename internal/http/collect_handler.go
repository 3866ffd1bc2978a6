package http

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"sitepulse/internal/events"
	"sitepulse/internal/websites"
)

type collectRequest struct {
	WebsiteID    uint   `json:"websiteId"`
	SessionID    string `json:"sessionId"`
	EventType    string `json:"eventType"`
	EventName    string `json:"eventName"`
	Path         string `json:"path"`
	Referrer     string `json:"referrer"`
	ScreenWidth  int    `json:"screenWidth"`
	ScreenHeight int    `json:"screenHeight"`
	Country      string `json:"country"`
	City         string `json:"city"`
}

// CollectEventAction ingests one tracking event from the snippet. The
// endpoint is unauthenticated and answers 202 as soon as the row is stored.
func (h *Handler) CollectEventAction(c *fiber.Ctx) error {
	var req collectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	input := &events.CollectEventInput{
		WebsiteID:    req.WebsiteID,
		SessionID:    req.SessionID,
		EventType:    req.EventType,
		EventName:    req.EventName,
		Path:         req.Path,
		Referrer:     req.Referrer,
		UserAgent:    c.Get("User-Agent"),
		ScreenWidth:  req.ScreenWidth,
		ScreenHeight: req.ScreenHeight,
		Country:      req.Country,
		City:         req.City,
		IPAddress:    getClientIP(c),
	}

	event, err := events.CollectEvent(h.db, h.logger, h.geo, input)
	if err != nil {
		var validation *events.ValidationError
		if errors.As(err, &validation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": validation.Error(),
			})
		}
		var notFound *websites.WebsiteNotFoundError
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Website not found",
			})
		}
		h.logger.Error("Failed to collect event", slog.Any("error", err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store event",
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"success":   true,
		"sessionId": event.SessionID,
	})
}
