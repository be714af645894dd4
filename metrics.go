package goCred

import (
	"sync/atomic"
	"time"
)

// MetricID identifies one engine counter or histogram.
type MetricID uint16

const (
	// MetricVerifyAccepted counts Verify calls that matched the stored hash.
	MetricVerifyAccepted MetricID = iota
	// MetricVerifyRejectedNoSuchUser counts Verify calls for an unknown email.
	MetricVerifyRejectedNoSuchUser
	// MetricVerifyRejectedWrongPassword counts Verify calls with a mismatched password.
	MetricVerifyRejectedWrongPassword
	// MetricVerifyRejectedCorruptRecord counts Verify calls that hit an undecodable record.
	MetricVerifyRejectedCorruptRecord
	// MetricVerifyRejectedInactive counts correct passwords for deactivated records.
	MetricVerifyRejectedInactive
	// MetricVerifyUnavailable counts Verify calls that failed on the store.
	MetricVerifyUnavailable
	// MetricVerifyInvalidInput counts Verify calls refused before any store call.
	MetricVerifyInvalidInput
	MetricEnrollSuccess
	MetricEnrollDuplicate
	MetricPasswordChangeSuccess
	MetricPasswordChangeInvalidOld
	MetricPasswordChangeConflict
	// MetricVerifyLatency is the only histogram. It records wall time of
	// Verify calls that reached a verdict.
	MetricVerifyLatency
	metricIDCount
)

var metricNames = [metricIDCount]string{
	MetricVerifyAccepted:              "verify_accepted",
	MetricVerifyRejectedNoSuchUser:    "verify_rejected_no_such_user",
	MetricVerifyRejectedWrongPassword: "verify_rejected_wrong_password",
	MetricVerifyRejectedCorruptRecord: "verify_rejected_corrupt_record",
	MetricVerifyRejectedInactive:      "verify_rejected_inactive",
	MetricVerifyUnavailable:           "verify_unavailable",
	MetricVerifyInvalidInput:          "verify_invalid_input",
	MetricEnrollSuccess:               "enroll_success",
	MetricEnrollDuplicate:             "enroll_duplicate",
	MetricPasswordChangeSuccess:       "password_change_success",
	MetricPasswordChangeInvalidOld:    "password_change_invalid_old",
	MetricPasswordChangeConflict:      "password_change_conflict",
	MetricVerifyLatency:               "verify_latency",
}

// String returns the snake_case metric name, or "unknown".
func (id MetricID) String() string {
	if id >= metricIDCount {
		return "unknown"
	}
	return metricNames[id]
}

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets  [histBucketCount]uint64
	sumNanos uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds lock-free counters and the verify latency histogram.
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of all counters and histograms.
// HistogramSums holds the total observed duration per histogram.
type MetricsSnapshot struct {
	Counters      map[MetricID]uint64
	Histograms    map[MetricID][]uint64
	HistogramSums map[MetricID]time.Duration
}

// NewMetrics describes the newmetrics operation and its observable behavior.
//
// NewMetrics never fails; latency histograms are only recorded when both
// Enabled and EnableLatencyHistograms are set.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether the verify latency histogram is recorded.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc adds one to the counter for id. Unknown ids are ignored.
// Inc is safe for concurrent use.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe describes the observe operation and its observable behavior.
//
// Observe only records [MetricVerifyLatency]; other ids are ignored.
// Observe is safe for concurrent use.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricVerifyLatency {
		return
	}

	if d < 0 {
		d = 0
	}
	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
	atomic.AddUint64(&m.histograms[id].sumNanos, uint64(d))
}

// Value returns the current counter for id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter and, when enabled, the latency buckets.
// Buckets are per-bucket counts, not cumulative.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:      map[MetricID]uint64{},
			Histograms:    map[MetricID][]uint64{},
			HistogramSums: map[MetricID]time.Duration{},
		}
	}

	s := MetricsSnapshot{
		Counters:      make(map[MetricID]uint64, int(metricIDCount)),
		Histograms:    make(map[MetricID][]uint64, 1),
		HistogramSums: make(map[MetricID]time.Duration, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		if id == MetricVerifyLatency {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricVerifyLatency].buckets[i])
		}
		s.Histograms[MetricVerifyLatency] = buckets
		s.HistogramSums[MetricVerifyLatency] = time.Duration(atomic.LoadUint64(&m.histograms[MetricVerifyLatency].sumNanos))
	}

	return s
}

// bucketIndex maps d onto the 5/10/25/50/100/250/500ms/+Inf buckets.
func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
