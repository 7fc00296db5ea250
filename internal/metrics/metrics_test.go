package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/alert-node/internal/domain/alert"
)

// TestNilMetricsIsNoop ensures a node without metrics can call every observer.
func TestNilMetricsIsNoop(t *testing.T) {
	t.Parallel()

	var m *Metrics

	require.NotPanics(t, func() {
		m.ObserveCommand(ResultAlert)
		m.ObserveCycle(alert.Report{})
	})
}

// TestObserve checks counters and the histogram after a few observations.
func TestObserve(t *testing.T) {
	t.Parallel()

	m := New(prometheus.NewRegistry())

	m.ObserveCommand(ResultAlert)
	m.ObserveCommand(ResultIgnored)
	m.ObserveCommand(ResultIgnored)

	start := time.Unix(0, 0)
	m.ObserveCycle(alert.Report{Started: start, Finished: start.Add(5200 * time.Millisecond), Pulses: 13, WriteErrors: 2})

	require.InDelta(t, 1, testutil.ToFloat64(m.commands.WithLabelValues(ResultAlert)), 0)
	require.InDelta(t, 2, testutil.ToFloat64(m.commands.WithLabelValues(ResultIgnored)), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.cycles), 0)
	require.InDelta(t, 2, testutil.ToFloat64(m.writeErrors), 0)
	require.Equal(t, 1, testutil.CollectAndCount(m.cycleSeconds))
}

// TestHandler verifies the registry is exposed in the text format.
func TestHandler(t *testing.T) {
	t.Parallel()

	m := New(nil)
	m.ObserveCommand(ResultOverflow)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `alert_node_commands_total{result="overflow"} 1`)
}
