package metrics

import (
	"sync"
	"testing"
)

func TestIncAndGet(t *testing.T) {
	m := New(Config{Enabled: true})

	m.Inc(MetricLoginSuccess)
	m.Inc(MetricLoginSuccess)
	m.Inc(MetricLoginFailure)

	if got := m.Get(MetricLoginSuccess); got != 2 {
		t.Fatalf("expected 2 login successes, got %d", got)
	}
	if got := m.Get(MetricLoginFailure); got != 1 {
		t.Fatalf("expected 1 login failure, got %d", got)
	}
}

func TestDisabledMetricsAreNoOps(t *testing.T) {
	m := New(Config{Enabled: false})

	m.Inc(MetricLoginSuccess)
	if got := m.Get(MetricLoginSuccess); got != 0 {
		t.Fatalf("disabled metrics should stay zero, got %d", got)
	}

	snap := m.Snapshot()
	if len(snap.Counters) != 0 {
		t.Fatalf("disabled snapshot should be empty, got %d entries", len(snap.Counters))
	}
}

func TestNilMetricsSafe(t *testing.T) {
	var m *Metrics
	m.Inc(MetricLogout)
	if m.Get(MetricLogout) != 0 {
		t.Fatal("nil metrics should read zero")
	}
	if snap := m.Snapshot(); len(snap.Counters) != 0 {
		t.Fatal("nil metrics snapshot should be empty")
	}
}

func TestOutOfRangeIDIgnored(t *testing.T) {
	m := New(Config{Enabled: true})
	m.Inc(MetricIDCount + 5)
	if got := m.Get(MetricIDCount + 5); got != 0 {
		t.Fatalf("out of range id should read zero, got %d", got)
	}
}

func TestConcurrentInc(t *testing.T) {
	m := New(Config{Enabled: true})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				m.Inc(MetricAccessDenied)
			}
		}()
	}
	wg.Wait()

	if got := m.Get(MetricAccessDenied); got != 8000 {
		t.Fatalf("expected 8000, got %d", got)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	m := New(Config{Enabled: true})
	m.Inc(MetricResetConsumed)

	snap := m.Snapshot()
	m.Inc(MetricResetConsumed)

	if snap.Counters[MetricResetConsumed] != 1 {
		t.Fatalf("snapshot should be frozen at 1, got %d", snap.Counters[MetricResetConsumed])
	}
}
