package internaldefs

import (
	"github.com/credlock/credlock"
)

// CounterDef binds a [credlock.MetricID] to the metric name and help text
// exporters publish it under.
type CounterDef struct {
	ID   credlock.MetricID
	Name string
	Help string
}

// HistogramDef binds a [credlock.MetricID] to the histogram name and help
// text exporters publish it under.
type HistogramDef struct {
	ID   credlock.MetricID
	Name string
	Help string
}

// CounterDefs lists every counter in export order.
var CounterDefs = []CounterDef{
	{ID: credlock.MetricSetSuccess, Name: "credlock_set_success_total", Help: "Digests produced by Set and SetConfirmed."},
	{ID: credlock.MetricSetRejected, Name: "credlock_set_rejected_total", Help: "Set attempts rejected on input validation."},
	{ID: credlock.MetricVerifyMatch, Name: "credlock_verify_match_total", Help: "Verifications that matched."},
	{ID: credlock.MetricVerifyNoMatch, Name: "credlock_verify_no_match_total", Help: "Verifications with a wrong secret or an absent digest."},
	{ID: credlock.MetricVerifyInvalid, Name: "credlock_verify_invalid_total", Help: "Verifications against undecodable digests."},
	{ID: credlock.MetricVerifyRateLimited, Name: "credlock_verify_rate_limited_total", Help: "Guarded verifications denied by the attempt budget."},
	{ID: credlock.MetricRotateSuccess, Name: "credlock_rotate_success_total", Help: "Completed credential rotations."},
	{ID: credlock.MetricRotateInvalidCurrent, Name: "credlock_rotate_invalid_current_total", Help: "Rotations with a wrong current secret."},
	{ID: credlock.MetricRotateReuseRejected, Name: "credlock_rotate_reuse_rejected_total", Help: "Rotations rejected for reusing the current secret."},
	{ID: credlock.MetricUpgradeFlagged, Name: "credlock_upgrade_flagged_total", Help: "Digests flagged for cost upgrade."},
	{ID: credlock.MetricTicketIssued, Name: "credlock_ticket_issued_total", Help: "Issued rotation tickets."},
	{ID: credlock.MetricTicketRedeemed, Name: "credlock_ticket_redeemed_total", Help: "Redeemed rotation tickets."},
	{ID: credlock.MetricTicketRejected, Name: "credlock_ticket_rejected_total", Help: "Rejected ticket redemptions, including replays."},
}

// HistogramDefs lists every histogram in export order.
var HistogramDefs = []HistogramDef{
	{ID: credlock.MetricVerifyLatency, Name: "credlock_verify_latency_seconds", Help: "Verify latency histogram."},
}

// HistogramBounds holds the upper bound of each latency bucket in seconds,
// matching the bucket layout of [credlock.Metrics].
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix holds instrument-name-safe forms of HistogramBounds.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies raw snapshot buckets into a fixed-size array,
// tolerating short or missing slices.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into the cumulative form
// Prometheus histograms expect.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
