package http

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pariz/gountries"

	"sitepulse/internal/events"
)

var countryQuery = gountries.New()

// countryName expands an ISO 3166-1 alpha-2 code to a display name, falling
// back to the raw code for anything the dataset does not know.
func countryName(code string) string {
	if code == "" {
		return ""
	}
	country, err := countryQuery.FindCountryByAlpha(code)
	if err != nil {
		return code
	}
	return country.Name.Common
}

var exportHeader = []string{
	"Date", "Event Type", "Event Name", "Path", "Referrer",
	"Country", "Screen Width", "Screen Height", "Session ID",
}

// ExportAction streams a website's raw events as CSV (default) or JSON.
// Optional from/to query parameters bound the window; rows are newest first
// and capped by config.
func (h *Handler) ExportAction(c *fiber.Ctx) error {
	website, err := h.requireWebsite(c)
	if website == nil {
		return err
	}

	from, to, err := parseExportWindow(c.Query("from"), c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	matched, err := events.GetEventsForExport(h.db, website.ID, from, to, h.cfg.ExportMaxEvents)
	if err != nil {
		h.logger.Error("Failed to export events", slog.Any("error", err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to export events",
		})
	}

	if c.Query("format") == "json" {
		return c.JSON(fiber.Map{"events": matched, "count": len(matched)})
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(exportHeader); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to write export",
		})
	}
	for _, event := range matched {
		record := []string{
			event.CreatedAt.Format(time.RFC3339),
			event.EventType,
			event.EventName,
			event.Path,
			event.Referrer,
			countryName(event.Country),
			strconv.Itoa(event.ScreenWidth),
			strconv.Itoa(event.ScreenHeight),
			event.SessionID,
		}
		if err := writer.Write(record); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to write export",
			})
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to write export",
		})
	}

	filename := fmt.Sprintf("events-%d-%s.csv", website.ID, time.Now().Format("2006-01-02"))
	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(buf.Bytes())
}

func parseExportWindow(fromRaw, toRaw string) (time.Time, time.Time, error) {
	var from, to time.Time
	var err error

	if fromRaw != "" {
		from, err = time.Parse(time.RFC3339, fromRaw)
		if err != nil {
			return from, to, fmt.Errorf("invalid from date: %s", fromRaw)
		}
	}
	if toRaw != "" {
		to, err = time.Parse(time.RFC3339, toRaw)
		if err != nil {
			return from, to, fmt.Errorf("invalid to date: %s", toRaw)
		}
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return from, to, fmt.Errorf("to date precedes from date")
	}
	return from, to, nil
}
