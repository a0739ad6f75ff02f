package transport

import (
	"context"
	"net"
	"time"

	"github.com/muffinlabs/muffin-metrics"
)

// UDP sends each payload as a single datagram on a connected socket.
// Datagram loss is not detected or reported; Write succeeds once the local
// send system call accepts the payload.
type UDP struct {
	Addr        string
	DialTimeout time.Duration
	Dial        DialFunc

	conn net.Conn
}

// Open resolves the remote address and binds the local socket. No packets
// are exchanged.
func (t *UDP) Open(ctx context.Context) error {
	conn, err := dialContext(ctx, t.Dial, t.DialTimeout, "udp", t.Addr)
	if err != nil {
		return &metrics.TransportError{Op: "dial", Addr: t.Addr, Err: err}
	}
	t.conn = conn
	return nil
}

func (t *UDP) Write(p []byte) error {
	if t.conn == nil {
		return &metrics.TransportError{Op: "write", Addr: t.Addr, Err: net.ErrClosed}
	}
	if _, err := t.conn.Write(p); err != nil {
		return &metrics.TransportError{Op: "write", Addr: t.Addr, Err: err}
	}
	return nil
}

func (t *UDP) Close() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}
