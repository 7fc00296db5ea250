package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oshokin/alert-node/internal/domain/alert"
	"github.com/oshokin/alert-node/internal/logger"
)

// Command results used as the "result" label.
const (
	ResultAlert    = "alert"
	ResultIgnored  = "ignored"
	ResultOverflow = "overflow"
)

// shutdownTimeout bounds the graceful stop of the metrics server.
const shutdownTimeout = 2 * time.Second

// Metrics holds the node collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry     *prometheus.Registry
	commands     *prometheus.CounterVec
	cycles       prometheus.Counter
	cycleSeconds prometheus.Histogram
	writeErrors  prometheus.Counter
}

// New creates the collectors and registers them, together with the Go and
// process collectors, on registry. A nil registry gets a fresh one.
func New(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: registry,
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alert_node_commands_total",
				Help: "Lines received on the serial channel by result",
			},
			[]string{"result"},
		),
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "alert_node_cycles_total",
			Help: "Completed alert cycles",
		}),
		cycleSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "alert_node_cycle_seconds",
			Help:    "Wall-clock length of completed alert cycles",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		}),
		writeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "alert_node_output_write_errors_total",
			Help: "Failed writes to the alert output line",
		}),
	}

	registry.MustRegister(
		m.commands,
		m.cycles,
		m.cycleSeconds,
		m.writeErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveCommand counts one received line.
func (m *Metrics) ObserveCommand(result string) {
	if m == nil {
		return
	}

	m.commands.WithLabelValues(result).Inc()
}

// ObserveCycle records a completed alert cycle.
func (m *Metrics) ObserveCycle(report alert.Report) {
	if m == nil {
		return
	}

	m.cycles.Inc()
	m.cycleSeconds.Observe(report.Elapsed().Seconds())
	m.writeErrors.Add(float64(report.WriteErrors))
}

// Handler returns the HTTP handler serving the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Serve exposes /metrics on address until ctx is canceled.
func (m *Metrics) Serve(ctx context.Context, address string) error {
	ctx = logger.WithName(ctx, "metrics")

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", address, err)
	}

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx) //nolint:contextcheck // Parent is already canceled.
	}()

	logger.InfoKV(ctx, "Metrics endpoint listening", "address", lis.Addr().String())

	if err = srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve metrics: %w", err)
	}

	return nil
}
