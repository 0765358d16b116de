package credlock

import (
	"sync/atomic"
	"time"
)

// MetricID identifies a counter or histogram tracked by [Metrics].
type MetricID uint16

const (
	// MetricSetSuccess counts digests produced by Set and SetConfirmed.
	MetricSetSuccess MetricID = iota
	// MetricSetRejected counts Set attempts rejected on input validation.
	MetricSetRejected
	// MetricVerifyMatch counts verifications that matched.
	MetricVerifyMatch
	// MetricVerifyNoMatch counts verifications with a wrong secret or an
	// absent stored digest.
	MetricVerifyNoMatch
	// MetricVerifyInvalid counts verifications against undecodable digests.
	MetricVerifyInvalid
	// MetricVerifyRateLimited counts guarded verifications denied by the
	// attempt budget.
	MetricVerifyRateLimited
	// MetricRotateSuccess counts completed rotations.
	MetricRotateSuccess
	// MetricRotateInvalidCurrent counts rotations with a wrong current secret.
	MetricRotateInvalidCurrent
	// MetricRotateReuseRejected counts rotations rejected for reusing the
	// current secret.
	MetricRotateReuseRejected
	// MetricUpgradeFlagged counts NeedsUpgrade calls that reported true.
	MetricUpgradeFlagged
	// MetricTicketIssued counts issued rotation tickets.
	MetricTicketIssued
	// MetricTicketRedeemed counts redeemed rotation tickets.
	MetricTicketRedeemed
	// MetricTicketRejected counts rejected ticket redemptions, including
	// replays.
	MetricTicketRejected
	// MetricVerifyLatency is the verify wall-time histogram.
	MetricVerifyLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

// Counters are padded to a cache line each so concurrent verifications
// on different cores do not false-share.
type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds lock-free operation counters and the verify latency
// histogram. A nil or disabled Metrics is inert: every method is a
// no-op, so instrumentation never alters operation behavior.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of all counters and histogram
// buckets, safe to retain and serialize.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricVerifyLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricVerifyLatency].buckets[i])
		}
		s.Histograms[MetricVerifyLatency] = buckets
	}

	return s
}

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
