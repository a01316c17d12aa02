package slo

import (
	"errors"
	"math"
	"sync"
	"testing"
)

func TestRecorder_BoundedWindowKeepsMostRecent(t *testing.T) {
	r := NewRecorder()
	const n = 537

	for i := 0; i < n; i++ {
		if _, err := r.Record(float64(i), true); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
		if st := r.state(); len(st.window) > WindowCapacity {
			t.Fatalf("window grew to %d after %d records", len(st.window), i+1)
		}
	}

	st := r.state()
	if len(st.window) != WindowCapacity {
		t.Fatalf("expected %d samples, got %d", WindowCapacity, len(st.window))
	}
	for i, v := range st.window {
		want := float64(n - WindowCapacity + i)
		if v != want {
			t.Fatalf("window[%d] = %v, want %v", i, v, want)
		}
	}
}

func TestRecorder_PartialWindowOrder(t *testing.T) {
	r := newRecorder(4)
	for _, d := range []float64{5, 1, 3} {
		r.Record(d, true)
	}

	got := r.state().window
	want := []float64{5, 1, 3}
	if len(got) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("window[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	r.Record(7, true)
	r.Record(9, true)
	got = r.state().window
	want = []float64{1, 3, 7, 9}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("after wrap window[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRecorder_Counters(t *testing.T) {
	r := NewRecorder()
	failures := 0

	for i := 0; i < 250; i++ {
		success := i%7 != 0
		if !success {
			failures++
		}
		r.Record(1, success)

		st := r.state()
		if st.totalRequests != uint64(i+1) {
			t.Fatalf("totalRequests = %d, want %d", st.totalRequests, i+1)
		}
		if st.totalErrors > st.totalRequests {
			t.Fatalf("totalErrors %d exceeds totalRequests %d", st.totalErrors, st.totalRequests)
		}
	}

	if got := r.state().totalErrors; got != uint64(failures) {
		t.Errorf("totalErrors = %d, want %d", got, failures)
	}
}

func TestRecorder_ReturnsRecordedSample(t *testing.T) {
	r := NewRecorder()

	s, err := r.Record(42.125, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.DurationMs != 42.125 || s.Success {
		t.Errorf("unexpected sample %+v", s)
	}
}

func TestRecorder_RejectsInvalidDurations(t *testing.T) {
	r := NewRecorder()

	for _, d := range []float64{-1, -0.001, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := r.Record(d, true)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Record(%v): expected ErrInvalidArgument, got %v", d, err)
		}
	}

	st := r.state()
	if st.totalRequests != 0 || st.totalErrors != 0 || len(st.window) != 0 {
		t.Errorf("rejected records mutated state: %+v", st)
	}
}

func TestRecorder_AcceptsZeroDuration(t *testing.T) {
	r := NewRecorder()
	if _, err := r.Record(0, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRecorder_ConcurrentRecord(t *testing.T) {
	for run := 0; run < 20; run++ {
		r := NewRecorder()
		var wg sync.WaitGroup

		for i := 0; i < 1000; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				r.Record(float64(i%300), i%2 == 0)
			}(i)
		}
		wg.Wait()

		st := r.state()
		if st.totalRequests != 1000 {
			t.Fatalf("run %d: totalRequests = %d, want 1000", run, st.totalRequests)
		}
		if st.totalErrors != 500 {
			t.Fatalf("run %d: totalErrors = %d, want 500", run, st.totalErrors)
		}
		if len(st.window) != WindowCapacity {
			t.Fatalf("run %d: window holds %d samples", run, len(st.window))
		}
	}
}
