// Package otel binds goCred engine counters and the verify latency histogram
// to an OpenTelemetry meter.
//
// [New] registers one observable counter per operation (verify, enroll,
// password_change) whose data points carry an "outcome" attribute, and a
// bucket gauge whose points carry the Prometheus-style "le" bound. A single
// callback reads [goCred.Engine.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the MeterProvider. Callers supply the Meter.
//   - Mutate engine state.
package otel
