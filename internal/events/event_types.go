package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/ticket-desk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated      EventType = "ticket_created"
	EventTicketUpdated      EventType = "ticket_updated"
	EventTicketDeleted      EventType = "ticket_deleted"
	EventTicketCommentAdded EventType = "ticket_comment_added"
	EventTicketsReset       EventType = "tickets_reset"
	EventTicketsCleared     EventType = "tickets_cleared"
	EventTicketsSynced      EventType = "tickets_synced"
	EventSessionLoggedIn    EventType = "session_logged_in"
	EventSessionRegistered  EventType = "session_registered"
	EventSessionLoggedOut   EventType = "session_logged_out"
	EventProfileUpdated     EventType = "profile_updated"
)

// Actor identifies who caused an event. Empty for system actions.
type Actor struct {
	UserID string `json:"user_id,omitempty"`
	Name   string `json:"name,omitempty"`
}

// ActorFromUser builds an Actor; a nil user yields the system actor.
func ActorFromUser(u *domain.User) Actor {
	if u == nil {
		return Actor{}
	}
	return Actor{UserID: u.ID, Name: u.Name}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// New stamps an event with a fresh id.
func New(eventType EventType, ticketID string, actor Actor, at time.Time, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		Actor:     actor,
		Timestamp: at,
		Payload:   payload,
	}
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title    string                `json:"title"`
	Priority domain.TicketPriority `json:"priority"`
	Category string                `json:"category"`
	Assignee string                `json:"assignee"`
}

// TicketUpdatedPayload lists the fields a patch replaced.
type TicketUpdatedPayload struct {
	Fields    []string            `json:"fields"`
	OldStatus domain.TicketStatus `json:"old_status,omitempty"`
	NewStatus domain.TicketStatus `json:"new_status,omitempty"`
}

// TicketCommentAddedPayload payload.
type TicketCommentAddedPayload struct {
	CommentID   string `json:"comment_id"`
	Author      string `json:"author"`
	BodyPreview string `json:"body_preview"`
}

// CollectionPayload describes bulk operations on the ticket collection.
type CollectionPayload struct {
	Count int `json:"count"`
}
