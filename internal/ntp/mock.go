package ntp

import (
	"context"
	"encoding/binary"
	"errors"
	"sync"
	"time"
)

// MockClient is a Querier returning canned datagrams for testing
type MockClient struct {
	mu         sync.RWMutex
	responses  map[string][]byte
	errors     map[string]error
	delays     map[string]time.Duration
	callCounts map[string]int
}

// NewMockClient creates a new mock client
func NewMockClient() *MockClient {
	return &MockClient{
		responses:  make(map[string][]byte),
		errors:     make(map[string]error),
		delays:     make(map[string]time.Duration),
		callCounts: make(map[string]int),
	}
}

// Exchange returns the datagram or error configured for host
func (m *MockClient) Exchange(ctx context.Context, host string) (*Response, error) {
	m.mu.Lock()
	m.callCounts[host]++
	delay, hasDelay := m.delays[host]
	m.mu.Unlock()

	if hasDelay {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, newError(ErrTimeout, host, nil)
		}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if err, ok := m.errors[host]; ok {
		return nil, err
	}

	data, ok := m.responses[host]
	if !ok {
		return nil, newError(ErrSendFailed, host, errors.New("server not configured in mock"))
	}
	if len(data) < MinResponseSize {
		return nil, shortResponse(len(data))
	}

	out := make([]byte, len(data))
	copy(out, data)
	return &Response{Server: host, Data: out}, nil
}

// SetupServerTime configures host to answer with the given Unix time
func (m *MockClient) SetupServerTime(host string, t time.Time) {
	m.SetupRawSeconds(host, uint32(t.Unix()+NTPEpochOffset))
}

// SetupRawSeconds configures host to answer with raw transmit seconds
func (m *MockClient) SetupRawSeconds(host string, raw uint32) {
	m.SetResponse(host, ResponsePacket(raw))
}

// SetupShortResponse configures host to answer with n bytes
func (m *MockClient) SetupShortResponse(host string, n int) {
	m.SetResponse(host, make([]byte, n))
}

// SetupUnreachableServer configures host to time out
func (m *MockClient) SetupUnreachableServer(host string) {
	m.SetError(host, newError(ErrTimeout, host, nil))
}

// SetResponse sets the raw datagram returned for host
func (m *MockClient) SetResponse(host string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.responses[host] = data
}

// SetError sets a custom error for host
func (m *MockClient) SetError(host string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.errors[host] = err
}

// SetDelay sets a delay before responding
func (m *MockClient) SetDelay(host string, delay time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.delays[host] = delay
}

// GetCallCount returns the number of exchanges made with host
func (m *MockClient) GetCallCount(host string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.callCounts[host]
}

// ResponsePacket builds a 48-byte server reply carrying raw transmit seconds
func ResponsePacket(raw uint32) []byte {
	packet := make([]byte, PacketSize)
	packet[0] = header(0, Version, 4) // server mode
	packet[1] = 2
	binary.BigEndian.PutUint32(packet[TransmitSecondsOffset:], raw)
	return packet
}
