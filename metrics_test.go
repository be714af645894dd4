package goCred

import (
	"sync"
	"testing"
	"time"
)

func TestMetricsDisabledNoIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricVerifyAccepted)

	if got := m.Value(MetricVerifyAccepted); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestMetricsEnabledIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(MetricVerifyAccepted)
	m.Inc(MetricVerifyAccepted)
	m.Inc(MetricVerifyAccepted)

	if got := m.Value(MetricVerifyAccepted); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}

func TestMetricsConcurrentIncrementSafe(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const goroutines = 32
	const perG = 4000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				m.Inc(MetricVerifyRejectedWrongPassword)
			}
		}()
	}
	wg.Wait()

	want := uint64(goroutines * perG)
	if got := m.Value(MetricVerifyRejectedWrongPassword); got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestMetricsHistogramBucketCorrectness(t *testing.T) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})

	observations := []time.Duration{
		5 * time.Millisecond,
		10 * time.Millisecond,
		25 * time.Millisecond,
		50 * time.Millisecond,
		100 * time.Millisecond,
		250 * time.Millisecond,
		500 * time.Millisecond,
		700 * time.Millisecond,
	}

	for _, d := range observations {
		m.Observe(MetricVerifyLatency, d)
	}

	buckets := m.Snapshot().Histograms[MetricVerifyLatency]
	if len(buckets) != 8 {
		t.Fatalf("expected 8 buckets, got %d", len(buckets))
	}
	for i, c := range buckets {
		if c != 1 {
			t.Fatalf("bucket %d: expected 1, got %d", i, c)
		}
	}
}

func TestMetricsHistogramSum(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})
	m.Observe(MetricVerifyLatency, 3*time.Millisecond)
	m.Observe(MetricVerifyLatency, 40*time.Millisecond)
	m.Observe(MetricVerifyLatency, -time.Millisecond)

	if got := m.Snapshot().HistogramSums[MetricVerifyLatency]; got != 43*time.Millisecond {
		t.Fatalf("expected sum 43ms, got %s", got)
	}
}

func TestMetricsObserveIgnoresCounters(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})
	m.Observe(MetricVerifyAccepted, time.Millisecond)

	if _, ok := m.Snapshot().Histograms[MetricVerifyAccepted]; ok {
		t.Fatal("counter ids must not produce histograms")
	}
}

func TestMetricsLatencyRequiresEnabled(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false, EnableLatencyHistograms: true})
	if m.LatencyEnabled() {
		t.Fatal("latency must stay off while metrics are disabled")
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.Inc(MetricVerifyAccepted)
	m.Observe(MetricVerifyLatency, time.Second)
	if m.Value(MetricVerifyAccepted) != 0 || m.Enabled() {
		t.Fatal("nil metrics must be inert")
	}
}

func TestMetricIDString(t *testing.T) {
	if MetricVerifyRejectedNoSuchUser.String() != "verify_rejected_no_such_user" {
		t.Fatalf("unexpected name %q", MetricVerifyRejectedNoSuchUser.String())
	}
	if metricIDCount.String() != "unknown" {
		t.Fatal("out-of-range id must be unknown")
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		if id.String() == "" {
			t.Fatalf("metric %d has no name", id)
		}
	}
}

func BenchmarkMetricsInc(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			m.Inc(MetricVerifyAccepted)
		}
	})
}
