package slo

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/samirrijal/checkout/internal/core/domain"
)

// Reporter computes error-budget snapshots from a Recorder.
type Reporter struct {
	recorder *Recorder
}

// NewReporter creates a Reporter reading from rec.
func NewReporter(rec *Recorder) *Reporter {
	return &Reporter{recorder: rec}
}

// Snapshot returns the current error rate, p95 latency and remaining budget.
// It never fails; a fresh recorder yields zeroed fields and the full budget.
func (rp *Reporter) Snapshot() domain.BudgetSnapshot {
	st := rp.recorder.state()

	denominator := st.totalRequests
	if denominator == 0 {
		denominator = 1
	}
	errorRate := float64(st.totalErrors) / float64(denominator)

	return domain.BudgetSnapshot{
		TotalRequests:   st.totalRequests,
		ErrorRate:       round(errorRate, 4),
		P95LatencyMs:    round(percentile(st.window, Percentile), 2),
		RemainingBudget: round(math.Max(0, SLOErrorTarget-errorRate), 4),
	}
}

// percentile selects the element at floor(len*p) of the sorted samples,
// clamped to the last index. Not interpolated.
func percentile(samples []float64, p float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	idx := int(math.Floor(float64(len(sorted)) * p))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// round rounds half away from zero on the shortest decimal form of v,
// so 12.345 becomes 12.35 rather than 12.34.
func round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}
