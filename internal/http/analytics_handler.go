package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"sitepulse/internal/analytics"
	"sitepulse/internal/timeframe"
)

// AnalyticsAction serves the full dashboard aggregate over a lookback window.
// The range query parameter is one of 24h, 7d, 30d or 90d and defaults to 7d.
func (h *Handler) AnalyticsAction(c *fiber.Ctx) error {
	website, err := h.requireWebsite(c)
	if website == nil {
		return err
	}

	start, end, err := timeframe.LookbackRange(c.Query("range", "7d"), time.Now())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	data, err := analytics.GetAnalyticsData(h.db, website.ID, analytics.TimeRange{Start: start, End: end})
	if err != nil {
		return h.storeError(c, err)
	}

	return c.JSON(data)
}

// RealtimeAction serves the live visitor view for a website.
func (h *Handler) RealtimeAction(c *fiber.Ctx) error {
	website, err := h.requireWebsite(c)
	if website == nil {
		return err
	}

	data, err := analytics.GetRealtimeData(h.db, website.ID)
	if err != nil {
		return h.storeError(c, err)
	}

	return c.JSON(data)
}
