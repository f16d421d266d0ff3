package dto

import (
	"time"

	"github.com/spec-kit/ticket-desk/internal/domain"
	"github.com/spec-kit/ticket-desk/internal/timefmt"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	Category    string                `json:"category"`
	Assignee    string                `json:"assignee"`
	Tags        []string              `json:"tags"`
}

// UpdateTicketRequest payload. Omitted fields are left unchanged.
type UpdateTicketRequest struct {
	Title       *string                `json:"title"`
	Description *string                `json:"description"`
	Priority    *domain.TicketPriority `json:"priority"`
	Status      *domain.TicketStatus   `json:"status"`
	Category    *string                `json:"category"`
	Assignee    *string                `json:"assignee"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Author  string `json:"author"`
	Content string `json:"content"`
}

// TicketResponse is a ticket with rendered timestamps.
type TicketResponse struct {
	ID             string                `json:"id"`
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	Priority       domain.TicketPriority `json:"priority"`
	Status         domain.TicketStatus   `json:"status"`
	Category       string                `json:"category"`
	Assignee       string                `json:"assignee"`
	Tags           []string              `json:"tags"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
	CreatedDisplay timefmt.Display       `json:"created_display"`
	UpdatedDisplay timefmt.Display       `json:"updated_display"`
	Recent         bool                  `json:"recent"`
	Comments       []CommentResponse     `json:"comments"`
}

// CommentResponse represents one comment.
type CommentResponse struct {
	ID               string          `json:"id"`
	Author           string          `json:"author"`
	Content          string          `json:"content"`
	Timestamp        time.Time       `json:"timestamp"`
	TimestampDisplay timefmt.Display `json:"timestamp_display"`
	TimeAgo          string          `json:"time_ago"`
}

// DashboardResponse is the landing page payload.
type DashboardResponse struct {
	Stats  domain.TicketStats `json:"stats"`
	Recent []TicketResponse   `json:"recent"`
}

// ActivityResponse is one profile activity entry.
type ActivityResponse struct {
	Action   string `json:"action"`
	TicketID string `json:"ticket_id"`
	TimeAgo  string `json:"time_ago"`
}

// ProfileResponse is the profile page payload.
type ProfileResponse struct {
	User            UserResponse       `json:"user"`
	Assigned        []TicketResponse   `json:"assigned"`
	TicketsCreated  int                `json:"tickets_created"`
	TicketsResolved int                `json:"tickets_resolved"`
	RecentActivity  []ActivityResponse `json:"recent_activity"`
}
