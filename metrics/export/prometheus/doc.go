// Package prometheus provides Prometheus collectors for credlock metrics.
//
// [NewPrometheusExporter] accepts a [credlock.Manager] and exposes an [http.Handler]
// that renders all credlock counters and histograms in Prometheus text exposition
// format. Counter names are prefixed credlock_*_total; the single histogram is
// credlock_verify_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate manager state.
package prometheus
