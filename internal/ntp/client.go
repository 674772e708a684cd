package ntp

import (
	"context"
	"errors"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/maximewewer/sntp/pkg/logger"
	"github.com/maximewewer/sntp/pkg/mathutil"
)

// Querier performs one SNTP exchange with a server
type Querier interface {
	Exchange(ctx context.Context, host string) (*Response, error)
}

// Client sends a single SNTP request per Exchange call
type Client struct {
	timeout time.Duration
	port    uint16
}

// Response is the raw datagram returned by the server
type Response struct {
	Server  string
	Addr    net.Addr
	Data    []byte
	Elapsed time.Duration
}

// NewClient creates a client with the given read timeout and server port.
// Port 0 is kept as given; sending to it fails with ErrSendFailed.
func NewClient(timeout time.Duration, port uint16) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		timeout: timeout,
		port:    port,
	}
}

// NewDefaultClient creates a client using port 123 and a 5 second timeout
func NewDefaultClient() *Client {
	return NewClient(DefaultTimeout, DefaultPort)
}

// Timeout returns the read timeout
func (c *Client) Timeout() time.Duration { return c.timeout }

// Port returns the destination port
func (c *Client) Port() uint16 { return c.port }

// Exchange sends the client request to host and waits for one reply.
// The socket is closed on every return path.
func (c *Client) Exchange(ctx context.Context, host string) (*Response, error) {
	server := net.JoinHostPort(host, strconv.Itoa(int(c.port)))

	conn, err := net.ListenPacket("udp", ":0")
	if err != nil {
		return nil, newError(ErrBind, server, err)
	}
	defer conn.Close()

	logger.Exchange("bind", server, map[string]interface{}{
		"local_addr": conn.LocalAddr().String(),
	})

	start := time.Now()
	deadline := start.Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok {
		deadline = mathutil.EarliestTime(deadline, ctxDeadline)
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, newError(ErrBind, server, err)
	}

	addr, err := c.resolve(ctx, host)
	if err != nil {
		return nil, newError(ErrSendFailed, server, err)
	}

	request := NewRequest()
	sent, err := conn.WriteTo(request[:], addr)
	if err != nil {
		return nil, newError(ErrSendFailed, server, err)
	}
	if sent == 0 {
		return nil, newError(ErrSendFailed, server, errors.New("zero bytes written"))
	}

	logger.Exchange("send", server, map[string]interface{}{
		"remote_addr": addr.String(),
		"bytes":       sent,
	})

	buf := make([]byte, PacketSize)
	n, from, err := conn.ReadFrom(buf)
	elapsed := time.Since(start)
	if err != nil {
		if isTimeout(err) {
			logger.SafeDebug("ntp", "SNTP response timed out", map[string]interface{}{
				"server":  server,
				"timeout": c.timeout.String(),
				"elapsed": elapsed.String(),
			})
			return nil, newError(ErrTimeout, server, nil)
		}
		return nil, newError(ErrReceiveFailed, server, err)
	}

	logger.Exchange("receive", server, map[string]interface{}{
		"from":    from.String(),
		"bytes":   n,
		"elapsed": elapsed.String(),
	})

	if n < MinResponseSize {
		e := shortResponse(n)
		e.Server = server
		return nil, e
	}

	return &Response{
		Server:  server,
		Addr:    from,
		Data:    buf[:n],
		Elapsed: elapsed,
	}, nil
}

// resolve looks up host honoring ctx, preferring IPv4 since the wildcard
// socket may not carry IPv6 on every system
func (c *Client) resolve(ctx context.Context, host string) (*net.UDPAddr, error) {
	if ip := net.ParseIP(host); ip != nil {
		return &net.UDPAddr{IP: ip, Port: int(c.port)}, nil
	}

	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return nil, &net.DNSError{Err: "no addresses found", Name: host, IsNotFound: true}
	}

	chosen := addrs[0]
	for _, a := range addrs {
		if a.IP.To4() != nil {
			chosen = a
			break
		}
	}
	return &net.UDPAddr{IP: chosen.IP, Port: int(c.port), Zone: chosen.Zone}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Time decodes the transmit timestamp of the response
func (r *Response) Time() (time.Time, error) {
	return Decode(r.Data)
}
