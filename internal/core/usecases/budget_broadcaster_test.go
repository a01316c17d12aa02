package usecases_test

import (
	"context"
	"testing"
	"time"

	"github.com/samirrijal/checkout/internal/core/slo"
	"github.com/samirrijal/checkout/internal/core/usecases"
)

func TestBudgetBroadcaster_PublishOnce(t *testing.T) {
	rec := slo.NewRecorder()
	rec.Record(10, true)
	rec.Record(20, false)

	pub := &mockPublisher{}
	b := usecases.NewBudgetBroadcaster(slo.NewReporter(rec), pub, time.Second)

	if err := b.PublishOnce(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pub.budgets) != 1 {
		t.Fatalf("expected 1 event, got %d", len(pub.budgets))
	}
	snap := pub.budgets[0].Snapshot
	if snap.TotalRequests != 2 || snap.ErrorRate != 0.5 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestBudgetBroadcaster_RunStopsOnCancel(t *testing.T) {
	pub := &mockPublisher{}
	b := usecases.NewBudgetBroadcaster(slo.NewReporter(slo.NewRecorder()), pub, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(done)
	}()

	time.Sleep(40 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.budgets) == 0 {
		t.Error("expected at least one published snapshot")
	}
}
