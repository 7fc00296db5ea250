// Package metrics exposes Prometheus counters for the alert node and an
// optional HTTP endpoint serving them.
package metrics
