package http

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"sitepulse/internal/auth"
	"sitepulse/internal/websites"
)

type createWebsiteRequest struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

// ListWebsitesAction lists the authenticated user's websites with their
// event counts, newest first.
func (h *Handler) ListWebsitesAction(c *fiber.Ctx) error {
	list, err := websites.GetWebsitesWithStats(h.db, auth.AuthenticatedUserID(c))
	if err != nil {
		h.logger.Error("Failed to list websites", slog.Any("error", err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list websites",
		})
	}
	return c.JSON(fiber.Map{"websites": list})
}

// CreateWebsiteAction registers a new website for the authenticated user.
func (h *Handler) CreateWebsiteAction(c *fiber.Ctx) error {
	var req createWebsiteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Domain = strings.TrimSpace(strings.ToLower(req.Domain))
	if req.Name == "" || req.Domain == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name and domain are required",
		})
	}

	website := &websites.Website{
		Name:   req.Name,
		Domain: req.Domain,
		UserID: auth.AuthenticatedUserID(c),
	}
	if err := websites.CreateWebsite(h.db, website); err != nil {
		h.logger.Error("Failed to create website", slog.Any("error", err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create website",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(website)
}

// DeleteWebsiteAction removes a website and its events. Only the owner can
// delete; anyone else sees a 404.
func (h *Handler) DeleteWebsiteAction(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid website id",
		})
	}

	if _, err := websites.GetWebsiteForUser(h.db, uint(id), auth.AuthenticatedUserID(c)); err != nil {
		var notFound *websites.WebsiteNotFoundError
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Website not found",
			})
		}
		h.logger.Error("Failed to look up website", slog.Any("error", err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	if err := websites.DeleteWebsite(h.db, uint(id)); err != nil {
		h.logger.Error("Failed to delete website", slog.Any("error", err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete website",
		})
	}

	return c.JSON(fiber.Map{"success": true})
}
