package testutil

import (
	"net"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Handler builds the reply for a received request. A nil reply sends nothing.
type Handler func(request []byte) []byte

// ReplyWith answers every request with data
func ReplyWith(data []byte) Handler {
	return func([]byte) []byte {
		return data
	}
}

// NoReply swallows every request, so clients run into their timeout
func NoReply() Handler {
	return func([]byte) []byte {
		return nil
	}
}

// FakeServer is a loopback UDP endpoint standing in for an SNTP server
type FakeServer struct {
	conn     net.PacketConn
	handler  Handler
	mu       sync.Mutex
	requests [][]byte
	done     chan struct{}
}

// NewFakeServer starts a fake server on 127.0.0.1 and stops it when the test ends
func NewFakeServer(t *testing.T, handler Handler) *FakeServer {
	t.Helper()

	conn, err := net.ListenPacket("udp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to start fake server: %v", err)
	}

	s := &FakeServer{
		conn:    conn,
		handler: handler,
		done:    make(chan struct{}),
	}
	go s.serve()

	t.Cleanup(func() {
		_ = conn.Close()
		<-s.done
	})

	return s
}

func (s *FakeServer) serve() {
	defer close(s.done)

	buf := make([]byte, 1500)
	for {
		n, addr, err := s.conn.ReadFrom(buf)
		if err != nil {
			return
		}

		request := make([]byte, n)
		copy(request, buf[:n])

		s.mu.Lock()
		s.requests = append(s.requests, request)
		s.mu.Unlock()

		if reply := s.handler(request); reply != nil {
			_, _ = s.conn.WriteTo(reply, addr)
		}
	}
}

// Host returns the server IP address
func (s *FakeServer) Host() string {
	return s.conn.LocalAddr().(*net.UDPAddr).IP.String()
}

// Port returns the server UDP port
func (s *FakeServer) Port() uint16 {
	return uint16(s.conn.LocalAddr().(*net.UDPAddr).Port)
}

// PortString returns the server UDP port in decimal
func (s *FakeServer) PortString() string {
	return strconv.Itoa(int(s.Port()))
}

// Requests returns copies of the datagrams received so far
func (s *FakeServer) Requests() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([][]byte, len(s.requests))
	copy(out, s.requests)
	return out
}

// AssertMetricValue validates a Prometheus metric value
func AssertMetricValue(t *testing.T, registry prometheus.Gatherer, metricName string, labels map[string]string, expected float64) {
	t.Helper()

	metrics, err := registry.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}

	for _, mf := range metrics {
		if mf.GetName() != metricName {
			continue
		}

		for _, m := range mf.GetMetric() {
			if labelsMatch(m.GetLabel(), labels) {
				var value float64
				switch mf.GetType() {
				case dto.MetricType_GAUGE:
					value = m.GetGauge().GetValue()
				case dto.MetricType_COUNTER:
					value = m.GetCounter().GetValue()
				case dto.MetricType_HISTOGRAM:
					value = float64(m.GetHistogram().GetSampleCount())
				default:
					t.Fatalf("Unsupported metric type: %v", mf.GetType())
				}

				if value != expected {
					t.Errorf("Metric %s with labels %v: expected %f, got %f", metricName, labels, expected, value)
				}
				return
			}
		}
	}

	t.Errorf("Metric %s with labels %v not found", metricName, labels)
}

// AssertMetricExists checks if a metric exists with given labels
func AssertMetricExists(t *testing.T, registry prometheus.Gatherer, metricName string, labels map[string]string) {
	t.Helper()

	metrics, err := registry.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}

	for _, mf := range metrics {
		if mf.GetName() != metricName {
			continue
		}

		for _, m := range mf.GetMetric() {
			if labelsMatch(m.GetLabel(), labels) {
				return
			}
		}
	}

	t.Errorf("Metric %s with labels %v not found", metricName, labels)
}

// labelsMatch checks if metric labels match expected labels
func labelsMatch(metricLabels []*dto.LabelPair, expected map[string]string) bool {
	if len(metricLabels) != len(expected) {
		return false
	}

	for _, label := range metricLabels {
		expectedValue, exists := expected[label.GetName()]
		if !exists || expectedValue != label.GetValue() {
			return false
		}
	}

	return true
}

// WaitForCondition waits for a condition to be true with timeout
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration, message string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for !condition() {
		if time.Now().After(deadline) {
			t.Fatalf("Timeout waiting for condition: %s", message)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// ValidatePrometheusMetricName validates that a metric name follows Prometheus conventions
func ValidatePrometheusMetricName(t *testing.T, name string) {
	t.Helper()

	validName := regexp.MustCompile(`^[a-zA-Z_:][a-zA-Z0-9_:]*$`)
	if !validName.MatchString(name) {
		t.Errorf("Invalid metric name: %s (must match [a-zA-Z_:][a-zA-Z0-9_:]*)", name)
	}

	if !strings.HasPrefix(name, "sntp_") {
		t.Errorf("Metric name %s should have sntp_ prefix", name)
	}
}
