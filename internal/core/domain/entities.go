package domain

import (
	"time"
)

// Order is a completed checkout.
type Order struct {
	ID        string    `json:"id"`
	Items     []any     `json:"items"`
	Total     float64   `json:"total"`
	CreatedAt time.Time `json:"createdAt"`
}

// CheckoutRequest is a validated checkout payload.
type CheckoutRequest struct {
	Items []any
	Total float64
	// IdempotencyKey is optional; empty disables replay protection.
	IdempotencyKey string
}

// CheckoutResult is the outcome of a checkout submission.
type CheckoutResult struct {
	Order    *Order
	Replayed bool // served from the idempotency store, no new work done
}

// BudgetSnapshot is a point-in-time error-budget report.
// Field names and rounding are consumed by external clients.
type BudgetSnapshot struct {
	TotalRequests   uint64  `json:"totalRequests"`
	ErrorRate       float64 `json:"errorRate"`       // 4 dp
	P95LatencyMs    float64 `json:"p95LatencyMs"`    // 2 dp
	RemainingBudget float64 `json:"remainingBudget"` // 4 dp
}

// OrderCreatedEvent is published after an order is stored.
type OrderCreatedEvent struct {
	OrderID   string    `json:"orderId"`
	Total     float64   `json:"total"`
	ItemCount int       `json:"itemCount"`
	CreatedAt time.Time `json:"createdAt"`
}

// BudgetEvent wraps a snapshot for broadcast.
type BudgetEvent struct {
	Time     time.Time      `json:"time"`
	Snapshot BudgetSnapshot `json:"snapshot"`
}
