package http

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/checkout/internal/core/slo"
	"github.com/samirrijal/checkout/internal/core/usecases"
)

// Pinger is implemented by backing stores that support a readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// AppInfo is reported by the health endpoints.
type AppInfo struct {
	Env     string
	Version string
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	App       AppInfo
	Checkout  *usecases.CheckoutService
	Orders    *usecases.OrderService
	Budget    *slo.Reporter
	NATS      *nats.Conn // nil when no broker is configured
	DB        Pinger     // nil when orders are kept in memory
	Cache     Pinger     // nil when no idempotency store is configured
	RateLimit int        // requests per minute per IP; 0 disables
}
