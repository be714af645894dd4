// Package prometheus exposes goCred engine metrics to Prometheus.
//
// [Collector] reads engine snapshots at scrape time and plugs into any
// client_golang registry. [PrometheusExporter] wraps a Collector in a private
// registry for a bare /metrics endpoint or a one-off text dump.
// Counter names are prefixed gocred_*_total; the single histogram is
// gocred_verify_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in the global Prometheus registry. Callers register
//     the Collector or mount the Handler.
//   - Mutate engine state.
package prometheus
