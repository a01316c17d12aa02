package usecases

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/checkout/internal/core/domain"
	"github.com/samirrijal/checkout/internal/core/ports"
	"github.com/samirrijal/checkout/internal/core/slo"
	"github.com/samirrijal/checkout/internal/pkg/logging"
	"github.com/samirrijal/checkout/internal/pkg/telemetry"
)

// ErrInvalidPayload is returned when items is not an array or total is not a number.
var ErrInvalidPayload = errors.New("invalid payload")

const idempotencyKeyPrefix = "checkout:idem:"

// CheckoutConfig controls the simulated processing delay and idempotency TTL.
type CheckoutConfig struct {
	MinDelay          time.Duration
	MaxDelay          time.Duration
	IdempotencyTTLSec int
}

// CheckoutService validates checkouts, simulates processing and records
// every outcome into the SLO recorder.
type CheckoutService struct {
	orders   ports.OrderRepository
	recorder *slo.Recorder
	sink     ports.SampleSink
	events   ports.EventPublisher
	cache    ports.CacheService
	cfg      CheckoutConfig
	tracer   trace.Tracer

	now   func() time.Time
	delay func() time.Duration
}

// NewCheckoutService creates a new CheckoutService. sink, events and cache may be nil.
func NewCheckoutService(
	orders ports.OrderRepository,
	recorder *slo.Recorder,
	sink ports.SampleSink,
	events ports.EventPublisher,
	cache ports.CacheService,
	cfg CheckoutConfig,
) *CheckoutService {
	s := &CheckoutService{
		orders:   orders,
		recorder: recorder,
		sink:     sink,
		events:   events,
		cache:    cache,
		cfg:      cfg,
		tracer:   otel.Tracer("checkout"),
		now:      time.Now,
	}
	s.delay = s.randomDelay
	return s
}

// Submit processes a raw checkout body. Exactly one sample is recorded per
// call unless the result is replayed from the idempotency store.
func (s *CheckoutService) Submit(ctx context.Context, body []byte, idempotencyKey string) (*domain.CheckoutResult, error) {
	if order := s.replay(ctx, idempotencyKey); order != nil {
		return &domain.CheckoutResult{Order: order, Replayed: true}, nil
	}

	start := s.now()
	ctx, span := s.tracer.Start(ctx, telemetry.SpanCheckoutSubmit)
	defer span.End()

	log := logging.FromContext(ctx)

	order, err := s.process(ctx, body)
	elapsed := s.now().Sub(start)

	if err != nil {
		span.SetAttributes(attribute.Bool(telemetry.AttrError, true))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error("Checkout failure", "error", err)
		s.record(ctx, elapsed, false)
		return nil, err
	}

	span.SetAttributes(attribute.String(telemetry.AttrOrderID, order.ID))
	log.Info("Order completed", "orderId", order.ID, "total", order.Total, "itemCount", len(order.Items))
	s.record(ctx, elapsed, true)
	s.remember(ctx, idempotencyKey, order)

	return &domain.CheckoutResult{Order: order}, nil
}

func (s *CheckoutService) process(ctx context.Context, body []byte) (*domain.Order, error) {
	req, err := ParseCheckoutRequest(body)
	if err != nil {
		return nil, err
	}

	if err := sleepCtx(ctx, s.delay()); err != nil {
		return nil, fmt.Errorf("simulate processing: %w", err)
	}

	order := &domain.Order{
		ID:        "ord_" + uuid.NewString(),
		Items:     req.Items,
		Total:     req.Total,
		CreatedAt: s.now().UTC(),
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}

	if s.sink != nil {
		s.sink.OrderCreated()
	}
	if s.events != nil {
		event := &domain.OrderCreatedEvent{
			OrderID:   order.ID,
			Total:     order.Total,
			ItemCount: len(order.Items),
			CreatedAt: order.CreatedAt,
		}
		if err := s.events.PublishOrderCreated(ctx, event); err != nil {
			logging.FromContext(ctx).Warn("publish order event failed", "orderId", order.ID, "error", err)
		}
	}

	return order, nil
}

// record feeds the SLO recorder and forwards the recorded sample to the sink.
func (s *CheckoutService) record(ctx context.Context, elapsed time.Duration, success bool) {
	durationMs := float64(elapsed.Nanoseconds()) / 1e6
	sample, err := s.recorder.Record(durationMs, success)
	if err != nil {
		logging.FromContext(ctx).Warn("checkout sample rejected", "error", err)
		return
	}
	if s.sink != nil {
		s.sink.ObserveCheckout(sample.DurationMs, sample.Success)
	}
}

func (s *CheckoutService) replay(ctx context.Context, key string) *domain.Order {
	if s.cache == nil || key == "" {
		return nil
	}
	data, err := s.cache.Get(ctx, idempotencyKeyPrefix+key)
	if err != nil {
		return nil
	}
	var order domain.Order
	if err := json.Unmarshal(data, &order); err != nil {
		// unreadable entry; drop it so this attempt is processed normally
		_ = s.cache.Delete(ctx, idempotencyKeyPrefix+key)
		return nil
	}
	return &order
}

func (s *CheckoutService) remember(ctx context.Context, key string, order *domain.Order) {
	if s.cache == nil || key == "" {
		return
	}
	data, err := json.Marshal(order)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, idempotencyKeyPrefix+key, data, s.cfg.IdempotencyTTLSec); err != nil {
		logging.FromContext(ctx).Warn("store idempotency key failed", "error", err)
	}
}

func (s *CheckoutService) randomDelay() time.Duration {
	lo, hi := s.cfg.MinDelay, s.cfg.MaxDelay
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(rand.Int63n(int64(hi-lo)))
}

// ParseCheckoutRequest validates a checkout body. A missing items field
// defaults to an empty list; items must otherwise be a JSON array and total
// must be a JSON number.
func ParseCheckoutRequest(body []byte) (domain.CheckoutRequest, error) {
	var raw struct {
		Items json.RawMessage `json:"items"`
		Total json.RawMessage `json:"total"`
	}
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return domain.CheckoutRequest{}, ErrInvalidPayload
		}
	}

	items := []any{}
	if raw.Items != nil {
		if !bytes.HasPrefix(bytes.TrimSpace(raw.Items), []byte("[")) {
			return domain.CheckoutRequest{}, ErrInvalidPayload
		}
		if err := json.Unmarshal(raw.Items, &items); err != nil {
			return domain.CheckoutRequest{}, ErrInvalidPayload
		}
	}

	total := bytes.TrimSpace(raw.Total)
	if len(total) == 0 || bytes.Equal(total, []byte("null")) {
		return domain.CheckoutRequest{}, ErrInvalidPayload
	}
	var amount float64
	if err := json.Unmarshal(total, &amount); err != nil {
		return domain.CheckoutRequest{}, ErrInvalidPayload
	}

	return domain.CheckoutRequest{Items: items, Total: amount}, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
