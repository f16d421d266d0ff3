package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-desk/internal/clock"
	"github.com/spec-kit/ticket-desk/internal/domain"
)

// Syncer reloads state from the shared store.
type Syncer interface {
	Sync(ctx context.Context) ([]domain.Ticket, bool)
}

// StartStoreSync calls syncer.Sync every interval until ctx ends, picking
// up writes made by other processes sharing the backend. It returns a
// channel closed when the loop exits. A non-positive interval disables it.
func StartStoreSync(ctx context.Context, clk clock.Clock, interval time.Duration, syncer Syncer, logger *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	if interval <= 0 || syncer == nil {
		close(done)
		return done
	}

	ticker := clk.NewTicker(interval)
	logger.Info("store sync started", zap.Duration("interval", interval))

	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				logger.Info("store sync stopped")
				return
			case <-ticker.C:
				tickets, ok := syncer.Sync(ctx)
				if ok {
					logger.Debug("store synced", zap.Int("tickets", len(tickets)))
				}
			}
		}
	}()
	return done
}
