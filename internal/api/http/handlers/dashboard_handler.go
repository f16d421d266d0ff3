package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-desk/internal/api/dto"
	"github.com/spec-kit/ticket-desk/internal/service"
	"github.com/spec-kit/ticket-desk/internal/timefmt"
)

// DashboardHandler serves the dashboard and reports projections.
type DashboardHandler struct {
	service   *service.TicketService
	formatter timefmt.Formatter
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(ticketService *service.TicketService, formatter timefmt.Formatter) *DashboardHandler {
	return &DashboardHandler{service: ticketService, formatter: formatter}
}

// Dashboard GET /dashboard.
func (h *DashboardHandler) Dashboard(c *fiber.Ctx) error {
	d := h.service.Dashboard(c.UserContext())
	return c.JSON(fiber.Map{"data": dto.DashboardResponse{
		Stats:  d.Stats,
		Recent: ticketResponses(h.formatter, d.Recent),
	}})
}

// Reports GET /reports.
func (h *DashboardHandler) Reports(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.service.Report(c.UserContext())})
}
