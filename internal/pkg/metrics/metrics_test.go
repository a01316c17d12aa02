package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/samirrijal/checkout/internal/core/domain"
)

func TestSink_ObserveCheckout(t *testing.T) {
	beforeOK := testutil.ToFloat64(checkoutRequests.WithLabelValues(OutcomeSuccess))
	beforeErr := testutil.ToFloat64(checkoutRequests.WithLabelValues(OutcomeError))

	var s Sink
	s.ObserveCheckout(42, true)
	s.ObserveCheckout(13, false)
	s.ObserveCheckout(7, false)

	if got := testutil.ToFloat64(checkoutRequests.WithLabelValues(OutcomeSuccess)) - beforeOK; got != 1 {
		t.Errorf("expected 1 success, got %v", got)
	}
	if got := testutil.ToFloat64(checkoutRequests.WithLabelValues(OutcomeError)) - beforeErr; got != 2 {
		t.Errorf("expected 2 errors, got %v", got)
	}
}

func TestSink_OrderCreated(t *testing.T) {
	before := testutil.ToFloat64(ordersCreated)
	Sink{}.OrderCreated()
	if got := testutil.ToFloat64(ordersCreated) - before; got != 1 {
		t.Errorf("expected 1 order, got %v", got)
	}
}

func TestRegisterBudgetGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	snap := domain.BudgetSnapshot{TotalRequests: 10, ErrorRate: 0.1, P95LatencyMs: 123.45, RemainingBudget: 0}
	RegisterBudgetGauges(reg, func() domain.BudgetSnapshot { return snap })

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	got := map[string]float64{}
	for _, mf := range families {
		got[mf.GetName()] = mf.GetMetric()[0].GetGauge().GetValue()
	}

	want := map[string]float64{
		"checkout_slo_error_rate":       0.1,
		"checkout_slo_p95_latency_ms":   123.45,
		"checkout_slo_remaining_budget": 0,
	}
	for name, v := range want {
		if got[name] != v {
			t.Errorf("%s = %v, want %v", name, got[name], v)
		}
	}
}

type fakePoolStat struct{}

func (fakePoolStat) AcquiredConns() int32 { return 2 }
func (fakePoolStat) IdleConns() int32     { return 3 }
func (fakePoolStat) TotalConns() int32    { return 5 }

func TestUpdateDBPoolMetrics(t *testing.T) {
	UpdateDBPoolMetrics(fakePoolStat{})
	if got := testutil.ToFloat64(DBPoolConnsOpen); got != 5 {
		t.Errorf("expected 5 open conns, got %v", got)
	}
	if got := testutil.ToFloat64(DBPoolConnsIdle); got != 3 {
		t.Errorf("expected 3 idle conns, got %v", got)
	}

	// unknown types are ignored
	UpdateDBPoolMetrics(struct{}{})
}
