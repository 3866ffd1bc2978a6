package http

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"sitepulse/internal/events"
)

const (
	defaultEventsPageSize = 50
	maxEventsPageSize     = 200
)

// ListEventsAction serves the raw event browser: filtered, paginated events
// for one website, newest first. Defaults to the last 7 days.
func (h *Handler) ListEventsAction(c *fiber.Ctx) error {
	website, err := h.requireWebsite(c)
	if website == nil {
		return err
	}

	now := time.Now()
	filters := events.EventFilters{
		WebsiteID:       website.ID,
		FromDate:        now.AddDate(0, 0, -7),
		ToDate:          now,
		PathFilter:      c.Query("path"),
		ReferrerFilter:  c.Query("referrer"),
		SessionFilter:   c.Query("sessionId"),
		TypeFilter:      c.Query("eventType"),
		EventNameFilter: c.Query("eventName"),
		Limit:           c.QueryInt("limit", defaultEventsPageSize),
		Offset:          c.QueryInt("offset", 0),
	}

	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid from date",
			})
		}
		filters.FromDate = from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid to date",
			})
		}
		filters.ToDate = to
	}

	if filters.Limit <= 0 {
		filters.Limit = defaultEventsPageSize
	}
	if filters.Limit > maxEventsPageSize {
		filters.Limit = maxEventsPageSize
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	result, err := events.GetFilteredEvents(h.db, filters)
	if err != nil {
		h.logger.Error("Failed to list events", slog.Any("error", err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list events",
		})
	}

	return c.JSON(fiber.Map{
		"events": result.Events,
		"total":  result.Total,
		"limit":  filters.Limit,
		"offset": filters.Offset,
	})
}
