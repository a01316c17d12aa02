package memory

import (
	"context"
	"sync"

	"github.com/samirrijal/checkout/internal/core/domain"
)

// DefaultOrderCapacity is the number of orders kept in memory.
const DefaultOrderCapacity = 50

// OrderRepo implements ports.OrderRepository as a bounded FIFO.
type OrderRepo struct {
	mu       sync.RWMutex
	orders   []domain.Order
	capacity int
}

// NewOrderRepo creates an OrderRepo holding at most capacity orders.
func NewOrderRepo(capacity int) *OrderRepo {
	if capacity <= 0 {
		capacity = DefaultOrderCapacity
	}
	return &OrderRepo{orders: make([]domain.Order, 0, capacity), capacity: capacity}
}

func (r *OrderRepo) Save(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.orders) == r.capacity {
		copy(r.orders, r.orders[1:])
		r.orders = r.orders[:len(r.orders)-1]
	}
	r.orders = append(r.orders, *order)
	return nil
}

func (r *OrderRepo) Recent(ctx context.Context, limit int) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	start := 0
	if limit > 0 && len(r.orders) > limit {
		start = len(r.orders) - limit
	}
	out := make([]domain.Order, len(r.orders)-start)
	copy(out, r.orders[start:])
	return out, nil
}
