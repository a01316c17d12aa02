package ports

import (
	"context"

	"github.com/samirrijal/checkout/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, event *domain.OrderCreatedEvent) error
	PublishBudgetSnapshot(ctx context.Context, event *domain.BudgetEvent) error
}

// CacheService provides key/value storage with TTL.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// SampleSink exports recorded checkout samples to an external collector.
type SampleSink interface {
	ObserveCheckout(durationMs float64, success bool)
	OrderCreated()
}
