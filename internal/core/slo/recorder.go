package slo

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

const (
	// SLOErrorTarget is the target error rate (2%).
	SLOErrorTarget = 0.02
	// WindowCapacity is the number of most recent latency samples kept.
	WindowCapacity = 200
	// Percentile selects the reported latency order statistic.
	Percentile = 0.95
)

// ErrInvalidArgument is returned by Record for non-finite or negative durations.
var ErrInvalidArgument = errors.New("invalid argument")

// Sample is a single recorded observation, returned as-is so callers can
// forward it to metric exporters.
type Sample struct {
	DurationMs float64
	Success    bool
}

// Recorder tracks the most recent latency samples and cumulative
// request/error counts. Safe for concurrent use.
type Recorder struct {
	mu sync.Mutex

	// ring buffer: samples[head] is the oldest entry once size == len(samples)
	samples []float64
	head    int
	size    int

	totalRequests uint64
	totalErrors   uint64
}

// NewRecorder creates a Recorder with a window of WindowCapacity samples.
func NewRecorder() *Recorder {
	return newRecorder(WindowCapacity)
}

func newRecorder(capacity int) *Recorder {
	return &Recorder{samples: make([]float64, capacity)}
}

// Record counts one request and appends its duration to the window,
// evicting the oldest sample when the window is full.
func (r *Recorder) Record(durationMs float64, success bool) (Sample, error) {
	if math.IsNaN(durationMs) || math.IsInf(durationMs, 0) || durationMs < 0 {
		return Sample{}, fmt.Errorf("%w: duration %v ms", ErrInvalidArgument, durationMs)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.totalRequests++
	if !success {
		r.totalErrors++
	}

	capacity := len(r.samples)
	if r.size < capacity {
		r.samples[(r.head+r.size)%capacity] = durationMs
		r.size++
	} else {
		r.samples[r.head] = durationMs
		r.head = (r.head + 1) % capacity
	}

	return Sample{DurationMs: durationMs, Success: success}, nil
}

// state is a consistent copy of the recorder taken under a single lock.
type state struct {
	totalRequests uint64
	totalErrors   uint64
	window        []float64 // oldest first
}

func (r *Recorder) state() state {
	r.mu.Lock()
	defer r.mu.Unlock()

	return state{
		totalRequests: r.totalRequests,
		totalErrors:   r.totalErrors,
		window:        r.windowLocked(),
	}
}

func (r *Recorder) windowLocked() []float64 {
	out := make([]float64, r.size)
	capacity := len(r.samples)
	for i := 0; i < r.size; i++ {
		out[i] = r.samples[(r.head+i)%capacity]
	}
	return out
}
