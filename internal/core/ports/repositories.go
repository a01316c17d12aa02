package ports

import (
	"context"

	"github.com/samirrijal/checkout/internal/core/domain"
)

// OrderRepository persists recent orders.
type OrderRepository interface {
	Save(ctx context.Context, order *domain.Order) error
	// Recent returns up to limit of the newest orders, oldest first.
	Recent(ctx context.Context, limit int) ([]domain.Order, error)
}
