package transport

import (
	"context"
	"net"
	"time"

	"github.com/muffinlabs/muffin-metrics"
)

// TCP sends payloads over an established stream connection.
type TCP struct {
	Addr         string
	DialTimeout  time.Duration
	WriteTimeout time.Duration
	Dial         DialFunc

	conn net.Conn
}

// Open establishes the stream connection. Refused, unreachable and timed
// out dials fail with *metrics.TransportError.
func (t *TCP) Open(ctx context.Context) error {
	conn, err := dialContext(ctx, t.Dial, t.DialTimeout, "tcp", t.Addr)
	if err != nil {
		return &metrics.TransportError{Op: "dial", Addr: t.Addr, Err: err}
	}
	t.conn = conn
	return nil
}

func (t *TCP) Write(p []byte) error {
	if t.conn == nil {
		return &metrics.TransportError{Op: "write", Addr: t.Addr, Err: net.ErrClosed}
	}
	if t.WriteTimeout > 0 {
		if err := t.conn.SetWriteDeadline(time.Now().Add(t.WriteTimeout)); err != nil {
			return &metrics.TransportError{Op: "write", Addr: t.Addr, Err: err}
		}
	}
	if _, err := t.conn.Write(p); err != nil {
		return &metrics.TransportError{Op: "write", Addr: t.Addr, Err: err}
	}
	return nil
}

func (t *TCP) Close() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}
