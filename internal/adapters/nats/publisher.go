package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/checkout/internal/core/domain"
)

const (
	// SubjectOrderCreated carries domain.OrderCreatedEvent payloads.
	SubjectOrderCreated = "checkout.orders.created"
	// SubjectBudgetSnapshot carries domain.BudgetEvent payloads.
	SubjectBudgetSnapshot = "checkout.slo.snapshot"
)

// Publisher implements ports.EventPublisher using NATS JetStream for orders
// and core NATS for budget snapshots.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and ensures the orders stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := connect(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := &nats.StreamConfig{
		Name:      "CHECKOUT_ORDERS",
		Subjects:  []string{"checkout.orders.>"},
		Retention: nats.LimitsPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(cfg); err != nil {
			conn.Close()
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

func (p *Publisher) PublishOrderCreated(ctx context.Context, event *domain.OrderCreatedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectOrderCreated, data, nats.Context(ctx))
	return err
}

// PublishBudgetSnapshot is fire-and-forget; snapshots are recomputed on every tick.
func (p *Publisher) PublishBudgetSnapshot(ctx context.Context, event *domain.BudgetEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.conn.Publish(SubjectBudgetSnapshot, data)
}

// Conn exposes the underlying connection for subscribers such as the WebSocket relay.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

func connect(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("checkout-api"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
