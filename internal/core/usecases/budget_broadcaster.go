package usecases

import (
	"context"
	"log/slog"
	"time"

	"github.com/samirrijal/checkout/internal/core/domain"
	"github.com/samirrijal/checkout/internal/core/ports"
	"github.com/samirrijal/checkout/internal/core/slo"
)

// BudgetBroadcaster periodically publishes error-budget snapshots.
type BudgetBroadcaster struct {
	reporter *slo.Reporter
	events   ports.EventPublisher
	interval time.Duration
	now      func() time.Time
}

// NewBudgetBroadcaster creates a new BudgetBroadcaster.
func NewBudgetBroadcaster(reporter *slo.Reporter, events ports.EventPublisher, interval time.Duration) *BudgetBroadcaster {
	return &BudgetBroadcaster{reporter: reporter, events: events, interval: interval, now: time.Now}
}

// Run publishes a snapshot every interval until ctx is cancelled.
func (b *BudgetBroadcaster) Run(ctx context.Context) {
	if b.interval <= 0 {
		return
	}
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := b.PublishOnce(ctx); err != nil {
				slog.Warn("publish budget snapshot failed", "error", err)
			}
		}
	}
}

// PublishOnce publishes the current snapshot.
func (b *BudgetBroadcaster) PublishOnce(ctx context.Context) error {
	event := &domain.BudgetEvent{
		Time:     b.now().UTC(),
		Snapshot: b.reporter.Snapshot(),
	}
	return b.events.PublishBudgetSnapshot(ctx, event)
}
