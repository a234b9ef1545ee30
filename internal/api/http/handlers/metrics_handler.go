package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/digsafe/locate-ticket-service/internal/observability"
)

// MetricsHandler reports in-memory counters (admin only).
type MetricsHandler struct {
	metrics *observability.Metrics
}

// NewMetricsHandler constructs handler.
func NewMetricsHandler(metrics *observability.Metrics) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// Snapshot GET /internal/metrics.
func (h *MetricsHandler) Snapshot(c *fiber.Ctx) error {
	requests, errCounts := h.metrics.Snapshot()
	return c.JSON(fiber.Map{"data": fiber.Map{
		"requests": requests,
		"errors":   errCounts,
	}})
}
