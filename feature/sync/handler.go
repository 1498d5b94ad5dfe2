package sync

import (
	"catalog-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the sync status API.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the status routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/api")
	group.Get("/status", h.HandleStatus)
	group.Get("/state", h.HandleState)
}

// HandleStatus returns the most recent pass report.
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	report := h.service.LastPass()
	if report == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no pass has completed yet",
		})
	}
	return c.JSON(report)
}

// HandleState returns a summary of the persisted fingerprint state.
func (h *Handler) HandleState(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	summary, err := h.service.StateSummary(c.Context())
	if err != nil {
		l.Error("state summary failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(summary)
}
