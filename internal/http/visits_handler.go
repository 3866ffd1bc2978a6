package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"sitepulse/internal/analytics"
	"sitepulse/internal/timeframe"
)

// VisitsAction serves the visit series backing the dashboard's main chart.
// Query parameters: websiteId, period (day|month|year, default day) and
// includeEvents (true to count custom events alongside page views).
func (h *Handler) VisitsAction(c *fiber.Ctx) error {
	website, err := h.requireWebsite(c)
	if website == nil {
		return err
	}

	period, err := timeframe.ParsePeriod(c.Query("period", string(timeframe.PeriodDay)))
	if err != nil {
		var invalid *timeframe.InvalidPeriodError
		if errors.As(err, &invalid) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": invalid.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid period",
		})
	}

	includeEvents := c.Query("includeEvents") == "true"

	series, err := analytics.GetVisitSeries(h.db, website.ID, period, includeEvents)
	if err != nil {
		return h.storeError(c, err)
	}

	return c.JSON(series)
}
