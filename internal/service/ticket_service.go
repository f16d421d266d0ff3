package service

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-desk/internal/clock"
	"github.com/spec-kit/ticket-desk/internal/domain"
	"github.com/spec-kit/ticket-desk/internal/events"
	"github.com/spec-kit/ticket-desk/internal/repository"
	apperrors "github.com/spec-kit/ticket-desk/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows and derived views.
type TicketService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	clock      clock.Clock
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Dispatcher events.Dispatcher
	Clock      clock.Clock
	Logger     *zap.Logger
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	Category    string
	Assignee    string
	Tags        []string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
		clock:      deps.Clock,
		logger:     logger,
	}
}

// List returns the collection in stored order, newest first.
func (s *TicketService) List(ctx context.Context) []domain.Ticket {
	return s.tickets.List(ctx)
}

// Get returns a ticket or a NOT_FOUND error.
func (s *TicketService) Get(ctx context.Context, id string) (domain.Ticket, error) {
	ticket, found := s.tickets.GetByID(ctx, id)
	if !found {
		return domain.Ticket{}, ticketNotFound(id)
	}
	return ticket, nil
}

// CreateTicket validates input and stores a new Open ticket.
func (s *TicketService) CreateTicket(ctx context.Context, actor events.Actor, input TicketCreateInput) (domain.Ticket, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Category = strings.TrimSpace(input.Category)
	input.Assignee = strings.TrimSpace(input.Assignee)

	details := map[string]any{}
	if input.Title == "" {
		details["title"] = "Title is required"
	}
	if input.Description == "" {
		details["description"] = "Description is required"
	}
	if !input.Priority.Valid() {
		details["priority"] = "Priority must be Low, Medium or High"
	}
	if input.Category == "" {
		details["category"] = "Category is required"
	}
	if len(details) > 0 {
		return domain.Ticket{}, apperrors.NewValidationError("invalid ticket", details)
	}
	if input.Assignee == "" {
		input.Assignee = domain.AutoAssigned
	}

	ticket := s.tickets.Create(ctx, domain.NewTicket{
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		Category:    input.Category,
		Assignee:    input.Assignee,
		Tags:        input.Tags,
	})

	s.publish(ctx, events.EventTicketCreated, ticket.ID, actor, events.TicketCreatedPayload{
		Title:    ticket.Title,
		Priority: ticket.Priority,
		Category: ticket.Category,
		Assignee: ticket.Assignee,
	})
	return ticket, nil
}

// UpdateTicket applies patch. An empty patch only refreshes the updated time.
func (s *TicketService) UpdateTicket(ctx context.Context, actor events.Actor, id string, patch domain.TicketPatch) (domain.Ticket, error) {
	details := map[string]any{}
	if patch.Priority != nil && !patch.Priority.Valid() {
		details["priority"] = "Priority must be Low, Medium or High"
	}
	if patch.Status != nil && !patch.Status.Valid() {
		details["status"] = "Status must be Open, In Progress or Resolved"
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		details["title"] = "Title is required"
	}
	if patch.Description != nil && strings.TrimSpace(*patch.Description) == "" {
		details["description"] = "Description is required"
	}
	if len(details) > 0 {
		return domain.Ticket{}, apperrors.NewValidationError("invalid ticket update", details)
	}

	before, found := s.tickets.GetByID(ctx, id)
	if !found {
		return domain.Ticket{}, ticketNotFound(id)
	}
	ticket, found := s.tickets.Update(ctx, id, patch)
	if !found {
		return domain.Ticket{}, ticketNotFound(id)
	}

	payload := events.TicketUpdatedPayload{Fields: patchFields(patch)}
	if before.Status != ticket.Status {
		payload.OldStatus = before.Status
		payload.NewStatus = ticket.Status
	}
	s.publish(ctx, events.EventTicketUpdated, id, actor, payload)
	return ticket, nil
}

// DeleteTicket removes a ticket permanently.
func (s *TicketService) DeleteTicket(ctx context.Context, actor events.Actor, id string) error {
	if !s.tickets.Delete(ctx, id) {
		return ticketNotFound(id)
	}
	s.publish(ctx, events.EventTicketDeleted, id, actor, nil)
	return nil
}

// AddComment appends a comment. An empty author falls back to the actor.
func (s *TicketService) AddComment(ctx context.Context, actor events.Actor, id, author, content string) (domain.Ticket, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Ticket{}, apperrors.NewValidationError("comment content is required", nil)
	}
	author = strings.TrimSpace(author)
	if author == "" {
		author = actor.Name
	}
	if author == "" {
		author = "Anonymous"
	}

	ticket, found := s.tickets.AddComment(ctx, id, author, content)
	if !found {
		return domain.Ticket{}, ticketNotFound(id)
	}

	comment := ticket.Comments[len(ticket.Comments)-1]
	s.publish(ctx, events.EventTicketCommentAdded, id, actor, events.TicketCommentAddedPayload{
		CommentID:   comment.ID,
		Author:      comment.Author,
		BodyPreview: preview(comment.Content, 80),
	})
	return ticket, nil
}

// ResetTickets restores the seed collection.
func (s *TicketService) ResetTickets(ctx context.Context, actor events.Actor) []domain.Ticket {
	tickets := s.tickets.Reset(ctx)
	s.publish(ctx, events.EventTicketsReset, "", actor, events.CollectionPayload{Count: len(tickets)})
	return tickets
}

// ClearTickets empties the collection.
func (s *TicketService) ClearTickets(ctx context.Context, actor events.Actor) {
	s.tickets.Clear(ctx)
	s.publish(ctx, events.EventTicketsCleared, "", actor, events.CollectionPayload{})
}

// Sync reloads the collection from storage.
func (s *TicketService) Sync(ctx context.Context) ([]domain.Ticket, bool) {
	tickets, ok := s.tickets.Sync(ctx)
	if ok {
		s.publish(ctx, events.EventTicketsSynced, "", events.Actor{}, events.CollectionPayload{Count: len(tickets)})
	}
	return tickets, ok
}

func (s *TicketService) publish(ctx context.Context, eventType events.EventType, ticketID string, actor events.Actor, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	event := events.New(eventType, ticketID, actor, s.clock.Now(), payload)
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed",
			zap.String("event_type", string(eventType)),
			zap.String("ticket_id", ticketID),
			zap.Error(err))
	}
}

func ticketNotFound(id string) error {
	return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
}

func patchFields(p domain.TicketPatch) []string {
	fields := []string{}
	if p.Title != nil {
		fields = append(fields, "title")
	}
	if p.Description != nil {
		fields = append(fields, "description")
	}
	if p.Priority != nil {
		fields = append(fields, "priority")
	}
	if p.Status != nil {
		fields = append(fields, "status")
	}
	if p.Category != nil {
		fields = append(fields, "category")
	}
	if p.Assignee != nil {
		fields = append(fields, "assignee")
	}
	return fields
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// sortTickets orders tickets in place by field, keeping collection order
// for ties.
func sortTickets(tickets []domain.Ticket, field SortField, desc bool) {
	less := func(a, b domain.Ticket) int {
		switch field {
		case SortCreated:
			return a.Created.Compare(b.Created)
		case SortUpdated:
			return a.Updated.Compare(b.Updated)
		case SortPriority:
			return a.Priority.Rank() - b.Priority.Rank()
		case SortID:
			if c := repository.TicketNumber(a.ID) - repository.TicketNumber(b.ID); c != 0 {
				return c
			}
			return strings.Compare(a.ID, b.ID)
		}
		return 0
	}
	sort.SliceStable(tickets, func(i, j int) bool {
		c := less(tickets[i], tickets[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
}
