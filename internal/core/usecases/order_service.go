package usecases

import (
	"context"

	"github.com/samirrijal/checkout/internal/core/domain"
	"github.com/samirrijal/checkout/internal/core/ports"
)

// RecentOrdersLimit is the number of orders returned by List.
const RecentOrdersLimit = 25

// OrderService handles order listing.
type OrderService struct {
	orders ports.OrderRepository
}

// NewOrderService creates a new OrderService.
func NewOrderService(orders ports.OrderRepository) *OrderService {
	return &OrderService{orders: orders}
}

// List returns the most recent orders, oldest first.
func (s *OrderService) List(ctx context.Context) ([]domain.Order, error) {
	return s.Recent(ctx, RecentOrdersLimit)
}

// Recent returns up to limit recent orders; limit is clamped to 1..RecentOrdersLimit.
func (s *OrderService) Recent(ctx context.Context, limit int) ([]domain.Order, error) {
	if limit <= 0 || limit > RecentOrdersLimit {
		limit = RecentOrdersLimit
	}
	orders, err := s.orders.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}
