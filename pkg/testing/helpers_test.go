package testutil

import (
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exchangeWith(t *testing.T, s *FakeServer, payload []byte, wait time.Duration) ([]byte, error) {
	t.Helper()

	conn, err := net.Dial("udp4", net.JoinHostPort(s.Host(), s.PortString()))
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write(payload)
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(wait)))
	buf := make([]byte, 1500)
	n, err := conn.Read(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func TestFakeServer_ReplyWith(t *testing.T) {
	reply := []byte{0x24, 0x02, 0x00, 0xEC}
	s := NewFakeServer(t, ReplyWith(reply))

	got, err := exchangeWith(t, s, []byte("ping"), time.Second)

	require.NoError(t, err)
	assert.Equal(t, reply, got)
	assert.Equal(t, "127.0.0.1", s.Host())
	assert.NotZero(t, s.Port())
}

func TestFakeServer_RecordsRequests(t *testing.T) {
	s := NewFakeServer(t, ReplyWith([]byte{1}))

	_, err := exchangeWith(t, s, []byte("first"), time.Second)
	require.NoError(t, err)
	_, err = exchangeWith(t, s, []byte("second"), time.Second)
	require.NoError(t, err)

	requests := s.Requests()
	require.Len(t, requests, 2)
	assert.Equal(t, []byte("first"), requests[0])
	assert.Equal(t, []byte("second"), requests[1])
}

func TestFakeServer_NoReply(t *testing.T) {
	s := NewFakeServer(t, NoReply())

	_, err := exchangeWith(t, s, []byte("ping"), 100*time.Millisecond)

	require.Error(t, err)
	netErr, ok := err.(net.Error)
	require.True(t, ok, "expected net.Error, got %T", err)
	assert.True(t, netErr.Timeout())

	WaitForCondition(t, func() bool { return len(s.Requests()) == 1 }, time.Second, "request recorded")
}

func TestFakeServer_HandlerSeesRequest(t *testing.T) {
	s := NewFakeServer(t, func(request []byte) []byte {
		out := make([]byte, len(request))
		for i, b := range request {
			out[len(request)-1-i] = b
		}
		return out
	})

	got, err := exchangeWith(t, s, []byte{1, 2, 3}, time.Second)

	require.NoError(t, err)
	assert.Equal(t, []byte{3, 2, 1}, got)
}

func TestAssertMetricValue(t *testing.T) {
	reg := prometheus.NewRegistry()

	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sntp_test_gauge",
		Help: "Test gauge for value assertion",
	})
	reg.MustRegister(gauge)
	gauge.Set(42.5)

	AssertMetricValue(t, reg, "sntp_test_gauge", nil, 42.5)

	counterVec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sntp_test_total",
			Help: "Test counter with labels",
		},
		[]string{"result"},
	)
	reg.MustRegister(counterVec)
	counterVec.WithLabelValues("success").Add(2)

	AssertMetricValue(t, reg, "sntp_test_total", map[string]string{"result": "success"}, 2)
}

func TestAssertMetricValue_Histogram(t *testing.T) {
	reg := prometheus.NewRegistry()

	hist := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "sntp_test_seconds",
		Help: "Test histogram",
	})
	reg.MustRegister(hist)
	hist.Observe(0.1)
	hist.Observe(0.2)

	AssertMetricValue(t, reg, "sntp_test_seconds", nil, 2)
}

func TestAssertMetricExists(t *testing.T) {
	reg := prometheus.NewRegistry()

	counterVec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sntp_test_exists_total",
			Help: "Test counter for existence check",
		},
		[]string{"result"},
	)
	reg.MustRegister(counterVec)
	counterVec.WithLabelValues("timeout").Inc()

	AssertMetricExists(t, reg, "sntp_test_exists_total", map[string]string{"result": "timeout"})
}

func TestWaitForCondition(t *testing.T) {
	start := time.Now()
	WaitForCondition(t, func() bool {
		return time.Since(start) > 20*time.Millisecond
	}, time.Second, "elapsed")
}

func TestValidatePrometheusMetricName(t *testing.T) {
	for _, name := range []string{
		"sntp_queries_total",
		"sntp_query_duration_seconds",
		"sntp_server_time_seconds",
	} {
		t.Run(name, func(t *testing.T) {
			ValidatePrometheusMetricName(t, name)
		})
	}
}
