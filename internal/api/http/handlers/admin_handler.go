package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-desk/internal/service"
	"github.com/spec-kit/ticket-desk/internal/timefmt"
)

// AdminHandler exposes bulk maintenance of the ticket collection.
type AdminHandler struct {
	service   *service.TicketService
	formatter timefmt.Formatter
}

// NewAdminHandler constructs handler.
func NewAdminHandler(ticketService *service.TicketService, formatter timefmt.Formatter) *AdminHandler {
	return &AdminHandler{service: ticketService, formatter: formatter}
}

// Reset POST /admin/tickets/reset.
func (h *AdminHandler) Reset(c *fiber.Ctx) error {
	tickets := h.service.ResetTickets(c.UserContext(), actorFrom(c))
	return c.JSON(fiber.Map{"data": ticketResponses(h.formatter, tickets)})
}

// Clear POST /admin/tickets/clear.
func (h *AdminHandler) Clear(c *fiber.Ctx) error {
	h.service.ClearTickets(c.UserContext(), actorFrom(c))
	return c.JSON(fiber.Map{"data": fiber.Map{"count": 0}})
}

// Sync POST /admin/tickets/sync.
func (h *AdminHandler) Sync(c *fiber.Ctx) error {
	tickets, found := h.service.Sync(c.UserContext())
	return c.JSON(fiber.Map{"data": fiber.Map{
		"found":   found,
		"tickets": ticketResponses(h.formatter, tickets),
	}})
}
