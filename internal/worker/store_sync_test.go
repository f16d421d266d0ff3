package worker

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-desk/internal/clock"
	"github.com/spec-kit/ticket-desk/internal/domain"
)

type syncFunc func(ctx context.Context) ([]domain.Ticket, bool)

func (f syncFunc) Sync(ctx context.Context) ([]domain.Ticket, bool) { return f(ctx) }

func TestStoreSyncRunsOnEveryTick(t *testing.T) {
	clk := clock.Fake(time.Date(2026, time.October, 15, 0, 0, 0, 0, time.UTC))
	calls := make(chan struct{}, 8)
	syncer := syncFunc(func(context.Context) ([]domain.Ticket, bool) {
		calls <- struct{}{}
		return nil, true
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := StartStoreSync(ctx, clk, 30*time.Second, syncer, zap.NewNop())

	for i := 0; i < 2; i++ {
		clk.Advance(30 * time.Second)
		select {
		case <-calls:
		case <-time.After(2 * time.Second):
			t.Fatalf("no sync after tick %d", i+1)
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sync loop did not stop")
	}
	if clk.Pending() != 0 {
		t.Fatalf("ticker still pending: %d", clk.Pending())
	}
}

func TestStoreSyncDisabled(t *testing.T) {
	clk := clock.Fake(time.Now())
	done := StartStoreSync(context.Background(), clk, 0, syncFunc(func(context.Context) ([]domain.Ticket, bool) {
		t.Fatal("sync ran while disabled")
		return nil, false
	}), zap.NewNop())

	select {
	case <-done:
	default:
		t.Fatal("disabled sync should report done immediately")
	}
	if clk.Pending() != 0 {
		t.Fatal("disabled sync registered a ticker")
	}
}
