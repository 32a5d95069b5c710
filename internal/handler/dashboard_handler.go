package handler

import (
	"go-inventory-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

const (
	defaultMovementDays = 7
	maxMovementDays     = 365
)

type DashboardHandler struct {
	service service.DashboardService
	log     zerolog.Logger
}

func NewDashboardHandler(s service.DashboardService, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{service: s, log: log}
}

// GetStockMovement returns per-day inbound/outbound quantity for charts.
// @Summary daily inbound and outbound quantity
// @Tags dashboard
// @Produce json
// @Param days query int false "days back, at most 365" default(7)
// @Success 200 {object} map[string]interface{} "period and []model.StockMovementData under data"
// @Router /api/dashboard/stock-movement [get]
func (h *DashboardHandler) GetStockMovement(c *fiber.Ctx) error {
	days := c.QueryInt("days", defaultMovementDays)
	if days <= 0 {
		days = defaultMovementDays
	}
	if days > maxMovementDays {
		days = maxMovementDays
	}

	data, err := h.service.GetStockMovement(c.UserContext(), days)
	if err != nil {
		return respondError(c, h.log, err, "Failed to fetch stock movement")
	}

	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}

// GetDashboardStats returns product count, low stock count and total valuation.
// @Summary catalog overview
// @Tags dashboard
// @Produce json
// @Success 200 {object} model.DashboardStats
// @Router /api/dashboard/stats [get]
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardStats(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err, "Failed to fetch dashboard stats")
	}

	return c.JSON(stats)
}
