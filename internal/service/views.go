package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/spec-kit/ticket-desk/internal/domain"
	"github.com/spec-kit/ticket-desk/internal/repository"
	apperrors "github.com/spec-kit/ticket-desk/pkg/util/errorutil"
)

// SortField names a sortable ticket attribute.
type SortField string

const (
	SortNone     SortField = ""
	SortCreated  SortField = "created"
	SortUpdated  SortField = "updated"
	SortPriority SortField = "priority"
	SortID       SortField = "id"
)

// Ticket list tabs.
const (
	TabAll        = "all"
	TabOpen       = "open"
	TabInProgress = "inprogress"
	TabResolved   = "resolved"
)

// TicketQuery filters and orders the ticket list. Zero values match all
// tickets in collection order.
type TicketQuery struct {
	Search   string
	Tab      string
	Priority domain.TicketPriority
	Category string
	Assignee string
	Sort     SortField
	Desc     bool
}

// Dashboard is the landing page summary.
type Dashboard struct {
	Stats  domain.TicketStats `json:"stats"`
	Recent []domain.Ticket    `json:"recent"`
}

// Report aggregates the collection for the reports page.
type Report struct {
	Stats            domain.TicketStats            `json:"stats" yaml:"stats"`
	ByPriority       map[domain.TicketPriority]int `json:"byPriority" yaml:"byPriority"`
	ByStatus         map[domain.TicketStatus]int   `json:"byStatus" yaml:"byStatus"`
	ByCategory       map[string]int                `json:"byCategory" yaml:"byCategory"`
	ByAssignee       map[string]int                `json:"byAssignee" yaml:"byAssignee"`
	ResolutionRate   float64                       `json:"resolutionRate" yaml:"resolutionRate"`
	OpenHighPriority int                           `json:"openHighPriority" yaml:"openHighPriority"`
}

// Activity is one line of the profile activity feed.
type Activity struct {
	Action   string    `json:"action"`
	TicketID string    `json:"ticketId"`
	Time     time.Time `json:"time"`
}

// Profile summarizes a user's involvement with the tickets.
type Profile struct {
	User            domain.User     `json:"user"`
	Assigned        []domain.Ticket `json:"assigned"`
	TicketsCreated  int             `json:"ticketsCreated"`
	TicketsResolved int             `json:"ticketsResolved"`
	RecentActivity  []Activity      `json:"recentActivity"`
}

const profileActivityLimit = 3

// Query returns the tickets matching q. Search is a case-insensitive
// substring match on title or description.
func (s *TicketService) Query(ctx context.Context, q TicketQuery) ([]domain.Ticket, error) {
	tab := strings.ToLower(strings.TrimSpace(q.Tab))
	switch tab {
	case "", TabAll, TabOpen, TabInProgress, TabResolved:
	default:
		return nil, apperrors.NewValidationError("invalid tab", map[string]any{"tab": q.Tab})
	}
	switch q.Sort {
	case SortNone, SortCreated, SortUpdated, SortPriority, SortID:
	default:
		return nil, apperrors.NewValidationError("invalid sort field", map[string]any{"sort": q.Sort})
	}
	if q.Priority != "" && !q.Priority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": q.Priority})
	}

	search := strings.ToLower(q.Search)
	out := []domain.Ticket{}
	for _, t := range s.tickets.List(ctx) {
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Title), search) &&
			!strings.Contains(strings.ToLower(t.Description), search) {
			continue
		}
		if tab != "" && tab != TabAll && statusTab(t.Status) != tab {
			continue
		}
		if q.Priority != "" && t.Priority != q.Priority {
			continue
		}
		if q.Category != "" && t.Category != q.Category {
			continue
		}
		if q.Assignee != "" && t.Assignee != q.Assignee {
			continue
		}
		out = append(out, t)
	}

	if q.Sort != SortNone {
		sortTickets(out, q.Sort, q.Desc)
	}
	return out, nil
}

// Dashboard returns stats plus the first few unresolved tickets.
func (s *TicketService) Dashboard(ctx context.Context) Dashboard {
	return Dashboard{
		Stats:  s.tickets.Stats(ctx),
		Recent: s.tickets.Recent(ctx, repository.DefaultRecentLimit),
	}
}

// Report computes the reports page aggregates from the live collection.
func (s *TicketService) Report(ctx context.Context) Report {
	tickets := s.tickets.List(ctx)
	report := Report{
		Stats:      repository.ComputeStats(tickets),
		ByPriority: map[domain.TicketPriority]int{},
		ByStatus:   map[domain.TicketStatus]int{},
		ByCategory: map[string]int{},
		ByAssignee: map[string]int{},
	}
	for _, t := range tickets {
		report.ByPriority[t.Priority]++
		report.ByStatus[t.Status]++
		report.ByCategory[t.Category]++
		report.ByAssignee[t.Assignee]++
	}
	report.OpenHighPriority = report.Stats.HighPriority
	if report.Stats.Total > 0 {
		rate := float64(report.Stats.Resolved) / float64(report.Stats.Total) * 100
		report.ResolutionRate = math.Round(rate*10) / 10
	}
	return report
}

// Profile builds the profile page for user. Every ticket counts as created
// by the user; assignment matches the full name or its first word.
func (s *TicketService) Profile(ctx context.Context, user domain.User) Profile {
	tickets := s.tickets.List(ctx)
	profile := Profile{
		User:           user,
		Assigned:       []domain.Ticket{},
		TicketsCreated: len(tickets),
		RecentActivity: []Activity{},
	}

	firstName := ""
	if fields := strings.Fields(user.Name); len(fields) > 0 {
		firstName = fields[0]
	}
	for _, t := range tickets {
		if t.Assignee == user.Name || (firstName != "" && strings.Contains(t.Assignee, firstName)) {
			profile.Assigned = append(profile.Assigned, t)
			if t.Status == domain.TicketStatusResolved {
				profile.TicketsResolved++
			}
		}
	}

	for i, t := range tickets {
		if i == profileActivityLimit {
			break
		}
		action := "Created ticket"
		if t.Status == domain.TicketStatusResolved {
			action = "Resolved ticket"
		}
		profile.RecentActivity = append(profile.RecentActivity, Activity{Action: action, TicketID: t.ID, Time: t.Updated})
	}
	return profile
}

func statusTab(status domain.TicketStatus) string {
	return strings.ReplaceAll(strings.ToLower(string(status)), " ", "")
}
