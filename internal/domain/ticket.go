package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusResolved   TicketStatus = "Resolved"
)

// Valid reports whether s is one of the known statuses.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved:
		return true
	}
	return false
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "Low"
	TicketPriorityMedium TicketPriority = "Medium"
	TicketPriorityHigh   TicketPriority = "High"
)

// Valid reports whether p is one of the known priorities.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return true
	}
	return false
}

// Rank orders priorities from Low (1) to High (3). Unknown values rank 0.
func (p TicketPriority) Rank() int {
	switch p {
	case TicketPriorityLow:
		return 1
	case TicketPriorityMedium:
		return 2
	case TicketPriorityHigh:
		return 3
	}
	return 0
}

// AutoAssigned is the assignee used when none was chosen.
const AutoAssigned = "Auto-assigned"

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID          string         `json:"id" yaml:"id"`
	Title       string         `json:"title" yaml:"title"`
	Description string         `json:"description" yaml:"description"`
	Priority    TicketPriority `json:"priority" yaml:"priority"`
	Status      TicketStatus   `json:"status" yaml:"status"`
	Category    string         `json:"category" yaml:"category"`
	Assignee    string         `json:"assignee" yaml:"assignee"`
	Created     time.Time      `json:"created" yaml:"created"`
	Updated     time.Time      `json:"updated" yaml:"updated"`
	Comments    []Comment      `json:"comments" yaml:"comments"`
	Tags        []string       `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Clone returns a deep copy so comment and tag slices are never shared.
func (t Ticket) Clone() Ticket {
	out := t
	if t.Comments != nil {
		out.Comments = make([]Comment, len(t.Comments))
		copy(out.Comments, t.Comments)
	}
	if t.Tags != nil {
		out.Tags = make([]string, len(t.Tags))
		copy(out.Tags, t.Tags)
	}
	return out
}

// Comment is a timestamped note owned by exactly one ticket.
type Comment struct {
	ID        string    `json:"id" yaml:"id"`
	Author    string    `json:"author" yaml:"author"`
	Content   string    `json:"content" yaml:"content"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// NewTicket carries the caller-supplied fields of a ticket. The repository
// assigns the id, status and timestamps.
type NewTicket struct {
	Title       string
	Description string
	Priority    TicketPriority
	Category    string
	Assignee    string
	Tags        []string
}

// TicketPatch lists fields to replace on update. Nil fields are left alone.
type TicketPatch struct {
	Title       *string
	Description *string
	Priority    *TicketPriority
	Status      *TicketStatus
	Category    *string
	Assignee    *string
}

// Apply copies the non-nil fields onto t.
func (p TicketPatch) Apply(t *Ticket) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Assignee != nil {
		t.Assignee = *p.Assignee
	}
}

// TicketStats holds aggregate counts over a ticket collection.
type TicketStats struct {
	Total        int `json:"total" yaml:"total"`
	Open         int `json:"open" yaml:"open"`
	InProgress   int `json:"inProgress" yaml:"inProgress"`
	Resolved     int `json:"resolved" yaml:"resolved"`
	HighPriority int `json:"highPriority" yaml:"highPriority"`
}
