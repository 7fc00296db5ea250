package integration

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/alert-node/internal/domain/alert"
	"github.com/oshokin/alert-node/internal/hardware/gpio"
	"github.com/oshokin/alert-node/internal/metrics"
	"github.com/oshokin/alert-node/internal/service/node"
	"github.com/oshokin/alert-node/internal/service/sender"
)

// readTimeout emulates the serial read timeout on an idle line.
const readTimeout = 20 * time.Millisecond

// wire is one direction of an in-memory serial cable.
type wire struct {
	mu   sync.Mutex
	data []byte
}

func (w *wire) write(b []byte) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.data = append(w.data, b...)

	return len(b)
}

func (w *wire) read(b []byte) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := copy(b, w.data)
	w.data = w.data[n:]

	return n
}

// end is one side of the cable: it reads from rx and writes to tx.
type end struct {
	rx, tx *wire
}

// Read returns received bytes or times out like an idle serial port.
func (e end) Read(b []byte) (int, error) {
	if n := e.rx.read(b); n > 0 {
		return n, nil
	}

	time.Sleep(readTimeout)

	return 0, io.EOF
}

// Write sends b to the other side.
func (e end) Write(b []byte) (int, error) {
	return e.tx.write(b), nil
}

// cable returns the host and node ends of a connected serial line.
func cable() (host, device end) {
	toNode, toHost := new(wire), new(wire)

	return end{rx: toHost, tx: toNode}, end{rx: toNode, tx: toHost}
}

// TestLoopback_SendAndAcknowledge runs a node and the sender over an in-memory line.
func TestLoopback_SendAndAcknowledge(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		host, device := cable()
		output := gpio.NewSimulated(ctx, alert.DefaultPin)
		m := metrics.New(prometheus.NewRegistry())

		driver, err := node.NewDriver(device, output, alert.DefaultSettings(), node.WithMetrics(m))
		require.NoError(t, err)
		require.NoError(t, driver.Setup(ctx))

		done := make(chan error, 1)

		go func() {
			done <- driver.Listen(ctx)
		}()

		// Noise first: it must not trigger anything.
		_, err = host.Write([]byte("status\n"))
		require.NoError(t, err)

		elapsed, err := sender.Send(ctx, host, 10*time.Second)
		require.NoError(t, err)
		require.GreaterOrEqual(t, elapsed, alert.DefaultDuration)
		require.Less(t, elapsed, alert.DefaultDuration+2*alert.DefaultTogglePeriod+2*readTimeout)

		require.Equal(t, alert.DefaultSettings().ExpectedPulses(), output.Pulses())
		require.Equal(t, alert.Low, output.Level())

		// A lowercase command is ignored.
		_, err = host.Write([]byte("alert\n"))
		require.NoError(t, err)

		_, err = sender.Send(ctx, host, time.Second)
		require.ErrorIs(t, err, sender.ErrAckTimeout)

		// The second ALERT from the timed-out Send is still processed.
		time.Sleep(6 * time.Second)
		require.Equal(t, 2*alert.DefaultSettings().ExpectedPulses(), output.Pulses())

		cancel()
		require.NoError(t, <-done)

		rec := httptest.NewRecorder()
		m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		body := rec.Body.String()
		require.Contains(t, body, `alert_node_commands_total{result="alert"} 2`)
		require.Contains(t, body, `alert_node_commands_total{result="ignored"} 2`)
		require.Contains(t, body, "alert_node_cycles_total 2")
	})
}
