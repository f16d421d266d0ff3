package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-desk/internal/clock"
	"github.com/spec-kit/ticket-desk/internal/domain"
	"github.com/spec-kit/ticket-desk/internal/persistence"
	"github.com/spec-kit/ticket-desk/internal/store"
)

// TicketsKey is the storage key of the ticket collection.
const TicketsKey = "tickets"

// DefaultRecentLimit is the number of unresolved tickets the dashboard shows.
const DefaultRecentLimit = 3

// TicketRepository owns the ticket collection. Operations never fail: a
// missing ticket is reported through the found flag and storage problems
// are logged by the store adapter. Returned tickets are copies.
type TicketRepository interface {
	List(ctx context.Context) []domain.Ticket
	Create(ctx context.Context, input domain.NewTicket) domain.Ticket
	Update(ctx context.Context, id string, patch domain.TicketPatch) (domain.Ticket, bool)
	Delete(ctx context.Context, id string) bool
	AddComment(ctx context.Context, id, author, content string) (domain.Ticket, bool)
	GetByID(ctx context.Context, id string) (domain.Ticket, bool)
	Stats(ctx context.Context) domain.TicketStats
	Recent(ctx context.Context, limit int) []domain.Ticket
	Reset(ctx context.Context) []domain.Ticket
	Clear(ctx context.Context)
	Sync(ctx context.Context) ([]domain.Ticket, bool)
}

type ticketRepository struct {
	tickets *store.Value[[]domain.Ticket]
	clock   clock.Clock
}

// NewTicketRepository binds the collection under TicketsKey. The seed
// tickets are the fallback when nothing valid is stored.
func NewTicketRepository(kv persistence.KV, clk clock.Clock, logger *zap.Logger) TicketRepository {
	return &ticketRepository{
		tickets: store.Bind(kv, TicketsKey, SeedTickets(clk.Now()), logger),
		clock:   clk,
	}
}

func (r *ticketRepository) List(ctx context.Context) []domain.Ticket {
	return cloneAll(r.tickets.Get(ctx))
}

func (r *ticketRepository) Create(ctx context.Context, input domain.NewTicket) domain.Ticket {
	var created domain.Ticket
	r.tickets.Update(ctx, func(cur []domain.Ticket) []domain.Ticket {
		now := r.clock.Now()
		created = domain.Ticket{
			ID:          nextTicketID(cur),
			Title:       input.Title,
			Description: input.Description,
			Priority:    input.Priority,
			Status:      domain.TicketStatusOpen,
			Category:    input.Category,
			Assignee:    input.Assignee,
			Created:     now,
			Updated:     now,
			Comments:    []domain.Comment{},
			Tags:        append([]string(nil), input.Tags...),
		}
		next := make([]domain.Ticket, 0, len(cur)+1)
		next = append(next, created)
		return append(next, cur...)
	})
	return created.Clone()
}

func (r *ticketRepository) Update(ctx context.Context, id string, patch domain.TicketPatch) (domain.Ticket, bool) {
	return r.mutate(ctx, id, func(t *domain.Ticket) {
		patch.Apply(t)
		t.Updated = r.clock.Now()
	})
}

func (r *ticketRepository) Delete(ctx context.Context, id string) bool {
	found := false
	r.tickets.Update(ctx, func(cur []domain.Ticket) []domain.Ticket {
		next := make([]domain.Ticket, 0, len(cur))
		for _, t := range cur {
			if t.ID == id {
				found = true
				continue
			}
			next = append(next, t)
		}
		if !found {
			return cur
		}
		return next
	})
	return found
}

func (r *ticketRepository) AddComment(ctx context.Context, id, author, content string) (domain.Ticket, bool) {
	return r.mutate(ctx, id, func(t *domain.Ticket) {
		now := r.clock.Now()
		comments := make([]domain.Comment, 0, len(t.Comments)+1)
		comments = append(comments, t.Comments...)
		t.Comments = append(comments, domain.Comment{
			ID:        nextCommentID(t.Comments, now.UnixMilli()),
			Author:    author,
			Content:   content,
			Timestamp: now,
		})
		t.Updated = now
	})
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (domain.Ticket, bool) {
	for _, t := range r.tickets.Get(ctx) {
		if t.ID == id {
			return t.Clone(), true
		}
	}
	return domain.Ticket{}, false
}

func (r *ticketRepository) Stats(ctx context.Context) domain.TicketStats {
	return ComputeStats(r.tickets.Get(ctx))
}

func (r *ticketRepository) Recent(ctx context.Context, limit int) []domain.Ticket {
	if limit <= 0 {
		return []domain.Ticket{}
	}
	out := make([]domain.Ticket, 0, limit)
	for _, t := range r.tickets.Get(ctx) {
		if len(out) == limit {
			break
		}
		if t.Status != domain.TicketStatusResolved {
			out = append(out, t.Clone())
		}
	}
	return out
}

func (r *ticketRepository) Reset(ctx context.Context) []domain.Ticket {
	seed := SeedTickets(r.clock.Now())
	r.tickets.Set(ctx, seed)
	return cloneAll(seed)
}

func (r *ticketRepository) Clear(ctx context.Context) {
	r.tickets.Set(ctx, []domain.Ticket{})
}

// Sync reloads the collection from storage. It reports whether a stored
// collection was found; otherwise the in-memory one is kept.
func (r *ticketRepository) Sync(ctx context.Context) ([]domain.Ticket, bool) {
	cur, ok := r.tickets.Reload(ctx)
	return cloneAll(cur), ok
}

// mutate replaces the ticket with the given id by a modified copy.
func (r *ticketRepository) mutate(ctx context.Context, id string, fn func(*domain.Ticket)) (domain.Ticket, bool) {
	var (
		result domain.Ticket
		found  bool
	)
	r.tickets.Update(ctx, func(cur []domain.Ticket) []domain.Ticket {
		for i := range cur {
			if cur[i].ID != id {
				continue
			}
			next := append([]domain.Ticket(nil), cur...)
			updated := cur[i].Clone()
			fn(&updated)
			next[i] = updated
			result, found = updated.Clone(), true
			return next
		}
		return cur
	})
	return result, found
}

// ComputeStats counts tickets by status. HighPriority only counts tickets
// that are not yet resolved.
func ComputeStats(tickets []domain.Ticket) domain.TicketStats {
	stats := domain.TicketStats{Total: len(tickets)}
	for _, t := range tickets {
		switch t.Status {
		case domain.TicketStatusOpen:
			stats.Open++
		case domain.TicketStatusInProgress:
			stats.InProgress++
		case domain.TicketStatusResolved:
			stats.Resolved++
		}
		if t.Priority == domain.TicketPriorityHigh && t.Status != domain.TicketStatusResolved {
			stats.HighPriority++
		}
	}
	return stats
}

// nextTicketID returns TK-<max+1>, zero-padded to three digits. Ids whose
// numeric part cannot be parsed count as 0.
func nextTicketID(tickets []domain.Ticket) string {
	maxID := 0
	for _, t := range tickets {
		if n := TicketNumber(t.ID); n > maxID {
			maxID = n
		}
	}
	return fmt.Sprintf("TK-%03d", maxID+1)
}

// TicketNumber returns the numeric part of a ticket id, or 0.
func TicketNumber(id string) int {
	rest := strings.TrimLeftFunc(id, func(r rune) bool { return !unicode.IsDigit(r) })
	end := strings.IndexFunc(rest, func(r rune) bool { return !unicode.IsDigit(r) })
	if end >= 0 {
		rest = rest[:end]
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0
	}
	return n
}

// nextCommentID derives the id from the clock, moving past any id already
// used on the ticket.
func nextCommentID(existing []domain.Comment, millis int64) string {
	used := make(map[string]struct{}, len(existing))
	for _, c := range existing {
		used[c.ID] = struct{}{}
	}
	for {
		id := strconv.FormatInt(millis, 10)
		if _, taken := used[id]; !taken {
			return id
		}
		millis++
	}
}

func cloneAll(tickets []domain.Ticket) []domain.Ticket {
	out := make([]domain.Ticket, len(tickets))
	for i, t := range tickets {
		out[i] = t.Clone()
	}
	return out
}
