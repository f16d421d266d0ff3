package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-desk/internal/api/dto"
	"github.com/spec-kit/ticket-desk/internal/auth"
	"github.com/spec-kit/ticket-desk/internal/domain"
	"github.com/spec-kit/ticket-desk/internal/events"
	"github.com/spec-kit/ticket-desk/internal/repository"
	"github.com/spec-kit/ticket-desk/internal/service"
	"github.com/spec-kit/ticket-desk/internal/timefmt"
	apperrors "github.com/spec-kit/ticket-desk/pkg/util/errorutil"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service   *service.TicketService
	prefs     repository.PreferencesRepository
	formatter timefmt.Formatter
}

// NewTicketsHandler constructs handler. prefs supplies the saved search
// term and tab when a list request omits them.
func NewTicketsHandler(ticketService *service.TicketService, prefs repository.PreferencesRepository, formatter timefmt.Formatter) *TicketsHandler {
	return &TicketsHandler{service: ticketService, prefs: prefs, formatter: formatter}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), actorFrom(c), service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Category:    req.Category,
		Assignee:    req.Assignee,
		Tags:        req.Tags,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(h.formatter, ticket)})
}

// ListTickets GET /tickets. Without search or tab parameters the saved
// preferences apply; an explicit empty value clears them for this request.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	args := c.Context().QueryArgs()
	search, tab := c.Query("search"), c.Query("tab")
	if h.prefs != nil {
		if !args.Has("search") {
			search = h.prefs.Search(c.UserContext())
		}
		if !args.Has("tab") {
			tab = h.prefs.ActiveTab(c.UserContext())
		}
	}

	query := service.TicketQuery{
		Search:   search,
		Tab:      tab,
		Priority: domain.TicketPriority(c.Query("priority")),
		Category: c.Query("category"),
		Assignee: c.Query("assignee"),
		Sort:     service.SortField(strings.ToLower(c.Query("sort"))),
		Desc:     strings.EqualFold(c.Query("order"), "desc"),
	}
	tickets, err := h.service.Query(c.UserContext(), query)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponses(h.formatter, tickets)})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(h.formatter, ticket)})
}

// UpdateTicket PATCH /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}

	ticket, err := h.service.UpdateTicket(c.UserContext(), actorFrom(c), c.Params("id"), domain.TicketPatch{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		Category:    req.Category,
		Assignee:    req.Assignee,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(h.formatter, ticket)})
}

// DeleteTicket DELETE /tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	if err := h.service.DeleteTicket(c.UserContext(), actorFrom(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// AddComment POST /tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.AddComment(c.UserContext(), actorFrom(c), c.Params("id"), req.Author, req.Content)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(h.formatter, ticket)})
}

func actorFrom(c *fiber.Ctx) events.Actor {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return events.Actor{}
	}
	return events.ActorFromUser(&principal.User)
}

func ticketResponses(f timefmt.Formatter, tickets []domain.Ticket) []dto.TicketResponse {
	items := make([]dto.TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		items = append(items, ticketResponse(f, t))
	}
	return items
}

func ticketResponse(f timefmt.Formatter, ticket domain.Ticket) dto.TicketResponse {
	tags := ticket.Tags
	if tags == nil {
		tags = []string{}
	}
	now := f.Now()
	comments := make([]dto.CommentResponse, 0, len(ticket.Comments))
	for _, cm := range ticket.Comments {
		comments = append(comments, dto.CommentResponse{
			ID:               cm.ID,
			Author:           cm.Author,
			Content:          cm.Content,
			Timestamp:        cm.Timestamp,
			TimestampDisplay: f.Format(cm.Timestamp),
			TimeAgo:          timefmt.DetailedAgo(cm.Timestamp, now),
		})
	}
	return dto.TicketResponse{
		ID:             ticket.ID,
		Title:          ticket.Title,
		Description:    ticket.Description,
		Priority:       ticket.Priority,
		Status:         ticket.Status,
		Category:       ticket.Category,
		Assignee:       ticket.Assignee,
		Tags:           tags,
		CreatedAt:      ticket.Created,
		UpdatedAt:      ticket.Updated,
		CreatedDisplay: f.Format(ticket.Created),
		UpdatedDisplay: f.Format(ticket.Updated),
		Recent:         timefmt.IsRecent(ticket.Created, now),
		Comments:       comments,
	}
}
