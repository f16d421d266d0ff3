package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-desk/internal/clock"
	"github.com/spec-kit/ticket-desk/internal/domain"
	"github.com/spec-kit/ticket-desk/internal/events"
	"github.com/spec-kit/ticket-desk/internal/persistence"
	"github.com/spec-kit/ticket-desk/internal/repository"
	apperrors "github.com/spec-kit/ticket-desk/pkg/util/errorutil"
)

var epoch = time.Date(2026, time.October, 15, 12, 0, 0, 0, time.UTC)

type ticketFixture struct {
	svc       *TicketService
	clock     *clock.FakeClock
	published []events.Event
}

func newTicketFixture(t *testing.T) *ticketFixture {
	t.Helper()
	f := &ticketFixture{clock: clock.Fake(epoch)}
	dispatcher := events.NewInMemoryDispatcher()
	record := func(_ context.Context, e events.Event) error {
		f.published = append(f.published, e)
		return nil
	}
	for _, et := range []events.EventType{
		events.EventTicketCreated, events.EventTicketUpdated, events.EventTicketDeleted,
		events.EventTicketCommentAdded, events.EventTicketsReset, events.EventTicketsCleared,
		events.EventTicketsSynced,
	} {
		dispatcher.Subscribe(et, record)
	}

	repo := repository.NewTicketRepository(persistence.NewMemoryKV(), f.clock, zap.NewNop())
	f.svc = NewTicketService(TicketDependencies{
		TicketRepo: repo,
		Dispatcher: dispatcher,
		Clock:      f.clock,
		Logger:     zap.NewNop(),
	})
	return f
}

func (f *ticketFixture) lastEvent(t *testing.T) events.Event {
	t.Helper()
	if len(f.published) == 0 {
		t.Fatal("no events published")
	}
	return f.published[len(f.published)-1]
}

var jane = events.Actor{UserID: "1", Name: "Jane Roe"}

func TestCreateTicket(t *testing.T) {
	ctx := context.Background()
	f := newTicketFixture(t)

	got, err := f.svc.CreateTicket(ctx, jane, TicketCreateInput{
		Title:       "  X ",
		Description: "Y",
		Priority:    domain.TicketPriorityLow,
		Category:    "Bug",
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	if got.ID != "TK-007" || got.Title != "X" || got.Assignee != domain.AutoAssigned {
		t.Fatalf("created = %+v", got)
	}
	ev := f.lastEvent(t)
	if ev.Type != events.EventTicketCreated || ev.TicketID != "TK-007" || ev.Actor != jane {
		t.Fatalf("event = %+v", ev)
	}
}

func TestCreateTicketValidation(t *testing.T) {
	f := newTicketFixture(t)
	_, err := f.svc.CreateTicket(context.Background(), jane, TicketCreateInput{Priority: "Urgent"})

	domainErr := apperrors.ToDomainError(err)
	if domainErr == nil || domainErr.Code != "VALIDATION_FAILED" {
		t.Fatalf("err = %v, want validation error", err)
	}
	for _, field := range []string{"title", "description", "priority", "category"} {
		if _, ok := domainErr.Details[field]; !ok {
			t.Errorf("missing detail for %s", field)
		}
	}
	if len(f.published) != 0 {
		t.Fatalf("events published on failure: %v", f.published)
	}
}

func TestUpdateTicketPublishesStatusChange(t *testing.T) {
	ctx := context.Background()
	f := newTicketFixture(t)
	status := domain.TicketStatusResolved

	got, err := f.svc.UpdateTicket(ctx, jane, "TK-001", domain.TicketPatch{Status: &status})
	if err != nil {
		t.Fatalf("UpdateTicket: %v", err)
	}
	if got.Status != status {
		t.Fatalf("status = %s", got.Status)
	}
	payload, ok := f.lastEvent(t).Payload.(events.TicketUpdatedPayload)
	if !ok || payload.OldStatus != domain.TicketStatusOpen || payload.NewStatus != status {
		t.Fatalf("payload = %+v", f.lastEvent(t).Payload)
	}
	if len(payload.Fields) != 1 || payload.Fields[0] != "status" {
		t.Fatalf("fields = %v", payload.Fields)
	}
}

func TestUpdateTicketRejectsUnknownStatus(t *testing.T) {
	f := newTicketFixture(t)
	status := domain.TicketStatus("Closed")
	_, err := f.svc.UpdateTicket(context.Background(), jane, "TK-001", domain.TicketPatch{Status: &status})
	if d := apperrors.ToDomainError(err); d == nil || d.Code != "VALIDATION_FAILED" {
		t.Fatalf("err = %v", err)
	}
}

func TestMissingTicketIsNotFound(t *testing.T) {
	ctx := context.Background()
	f := newTicketFixture(t)

	if _, err := f.svc.Get(ctx, "TK-404"); !apperrors.IsNotFound(err) {
		t.Fatalf("Get err = %v", err)
	}
	if _, err := f.svc.UpdateTicket(ctx, jane, "TK-404", domain.TicketPatch{}); !apperrors.IsNotFound(err) {
		t.Fatalf("Update err = %v", err)
	}
	if err := f.svc.DeleteTicket(ctx, jane, "TK-404"); !apperrors.IsNotFound(err) {
		t.Fatalf("Delete err = %v", err)
	}
	if _, err := f.svc.AddComment(ctx, jane, "TK-404", "", "hi"); !apperrors.IsNotFound(err) {
		t.Fatalf("AddComment err = %v", err)
	}
	if len(f.published) != 0 {
		t.Fatalf("events for missing ticket: %v", f.published)
	}
}

func TestAddCommentDefaultsAuthorToActor(t *testing.T) {
	f := newTicketFixture(t)
	got, err := f.svc.AddComment(context.Background(), jane, "TK-003", " ", "Looking into it")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	last := got.Comments[len(got.Comments)-1]
	if last.Author != "Jane Roe" || last.Content != "Looking into it" {
		t.Fatalf("comment = %+v", last)
	}

	if _, err := f.svc.AddComment(context.Background(), jane, "TK-003", "", "  "); err == nil {
		t.Fatal("expected error for empty content")
	}
}

func TestQuery(t *testing.T) {
	ctx := context.Background()
	f := newTicketFixture(t)

	tests := []struct {
		name string
		q    TicketQuery
		want []string
	}{
		{"all", TicketQuery{}, []string{"TK-001", "TK-002", "TK-003", "TK-004", "TK-005", "TK-006"}},
		{"search title", TicketQuery{Search: "DATABASE"}, []string{"TK-006"}},
		{"search description", TicketQuery{Search: "large datasets"}, []string{"TK-002"}},
		{"in progress tab", TicketQuery{Tab: TabInProgress}, []string{"TK-002", "TK-005"}},
		{"resolved tab", TicketQuery{Tab: "Resolved"}, []string{"TK-004"}},
		{"priority", TicketQuery{Priority: domain.TicketPriorityHigh}, []string{"TK-001", "TK-004"}},
		{"category", TicketQuery{Category: "Feature"}, []string{"TK-003", "TK-005"}},
		{"sort priority desc", TicketQuery{Sort: SortPriority, Desc: true, Category: "Bug"}, []string{"TK-001", "TK-004"}},
		{"sort created asc", TicketQuery{Sort: SortCreated}, []string{"TK-006", "TK-005", "TK-004", "TK-003", "TK-002", "TK-001"}},
		{"sort id desc", TicketQuery{Sort: SortID, Desc: true, Tab: TabOpen}, []string{"TK-006", "TK-003", "TK-001"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svc.Query(ctx, tt.q)
			if err != nil {
				t.Fatalf("Query: %v", err)
			}
			var ids []string
			for _, tk := range got {
				ids = append(ids, tk.ID)
			}
			if len(ids) != len(tt.want) {
				t.Fatalf("ids = %v, want %v", ids, tt.want)
			}
			for i := range ids {
				if ids[i] != tt.want[i] {
					t.Fatalf("ids = %v, want %v", ids, tt.want)
				}
			}
		})
	}
}

func TestQueryRejectsBadInput(t *testing.T) {
	f := newTicketFixture(t)
	for _, q := range []TicketQuery{{Tab: "closed"}, {Sort: "title"}, {Priority: "Urgent"}} {
		if _, err := f.svc.Query(context.Background(), q); err == nil {
			t.Errorf("Query(%+v) succeeded", q)
		}
	}
}

func TestDashboard(t *testing.T) {
	f := newTicketFixture(t)
	d := f.svc.Dashboard(context.Background())
	if d.Stats.Total != 6 || len(d.Recent) != 3 || d.Recent[0].ID != "TK-001" {
		t.Fatalf("dashboard = %+v", d)
	}
}

func TestReport(t *testing.T) {
	ctx := context.Background()
	f := newTicketFixture(t)

	r := f.svc.Report(ctx)
	if r.ByPriority[domain.TicketPriorityHigh] != 2 || r.ByCategory["Performance"] != 2 {
		t.Fatalf("report = %+v", r)
	}
	if r.ByStatus[domain.TicketStatusOpen] != 3 || r.OpenHighPriority != 1 {
		t.Fatalf("report = %+v", r)
	}
	if r.ResolutionRate != 16.7 {
		t.Fatalf("resolution rate = %v, want 16.7", r.ResolutionRate)
	}

	f.svc.ClearTickets(ctx, jane)
	if r := f.svc.Report(ctx); r.ResolutionRate != 0 || r.Stats.Total != 0 {
		t.Fatalf("empty report = %+v", r)
	}
}

func TestProfile(t *testing.T) {
	f := newTicketFixture(t)
	p := f.svc.Profile(context.Background(), domain.User{ID: "9", Name: "Emma Stone"})

	if len(p.Assigned) != 1 || p.Assigned[0].ID != "TK-004" {
		t.Fatalf("assigned = %+v", p.Assigned)
	}
	if p.TicketsCreated != 6 || p.TicketsResolved != 1 {
		t.Fatalf("counts = %d created, %d resolved", p.TicketsCreated, p.TicketsResolved)
	}
	if len(p.RecentActivity) != 3 || p.RecentActivity[0].Action != "Created ticket" {
		t.Fatalf("activity = %+v", p.RecentActivity)
	}
}

func TestResetClearSync(t *testing.T) {
	ctx := context.Background()
	f := newTicketFixture(t)

	f.svc.ClearTickets(ctx, jane)
	if len(f.svc.List(ctx)) != 0 || f.lastEvent(t).Type != events.EventTicketsCleared {
		t.Fatal("clear did not empty the collection")
	}
	if n := len(f.svc.ResetTickets(ctx, jane)); n != 6 {
		t.Fatalf("reset returned %d", n)
	}
	if _, ok := f.svc.Sync(ctx); !ok || f.lastEvent(t).Type != events.EventTicketsSynced {
		t.Fatal("sync did not find the stored collection")
	}
}
