// Package fakesocket provides in-memory stand-ins for sockets and
// transports, used by tests that must observe exactly what would have hit
// the wire.
package fakesocket

import (
	"context"
	"errors"
	"net"
	"time"
)

// FakeAddr is a fake net.Addr
var FakeAddr = &net.UDPAddr{
	IP:   net.IPv4(127, 0, 0, 1),
	Port: 8181,
}

var ErrClosedConnection = errors.New("connection is closed")
var ErrAlreadyClosedConnection = errors.New("connection is already closed")

// FakeConn is a fake net.Conn capturing everything written to it.
type FakeConn struct {
	Writes [][]byte
	closed chan int
}

func NewFakeConn() *FakeConn {
	return &FakeConn{closed: make(chan int)}
}

// Dial is a dial function producing this connection, ignoring the address.
func (fc *FakeConn) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	return fc, nil
}

func (fc *FakeConn) isClosed() bool {
	select {
	case <-fc.closed:
		return true
	default:
		return false
	}
}

// Read dummy impl.
func (fc *FakeConn) Read(b []byte) (int, error) {
	if fc.isClosed() {
		return 0, ErrClosedConnection
	}
	return 0, nil
}

// Write records b.
func (fc *FakeConn) Write(b []byte) (int, error) {
	if fc.isClosed() {
		return 0, ErrClosedConnection
	}
	p := make([]byte, len(b))
	copy(p, b)
	fc.Writes = append(fc.Writes, p)
	return len(b), nil
}

// Close closes the connection once.
func (fc *FakeConn) Close() error {
	if fc.isClosed() {
		return ErrAlreadyClosedConnection
	}
	// Potential race, but it's a test fixture anyway
	close(fc.closed)
	return nil
}

// LocalAddr dummy impl.
func (fc *FakeConn) LocalAddr() net.Addr { return FakeAddr }

// RemoteAddr dummy impl.
func (fc *FakeConn) RemoteAddr() net.Addr { return FakeAddr }

// SetDeadline dummy impl.
func (fc *FakeConn) SetDeadline(t time.Time) error { return nil }

// SetReadDeadline dummy impl.
func (fc *FakeConn) SetReadDeadline(t time.Time) error { return nil }

// SetWriteDeadline dummy impl.
func (fc *FakeConn) SetWriteDeadline(t time.Time) error { return nil }

// FakeTransport is a metrics.Transport capturing every payload, with
// injectable failures for exercising the fail-silently policy.
type FakeTransport struct {
	OpenErr  error
	WriteErr error

	Opened int
	Closed int
	Writes [][]byte
}

func (ft *FakeTransport) Open(ctx context.Context) error {
	ft.Opened++
	return ft.OpenErr
}

func (ft *FakeTransport) Write(p []byte) error {
	if ft.WriteErr != nil {
		return ft.WriteErr
	}
	b := make([]byte, len(p))
	copy(b, p)
	ft.Writes = append(ft.Writes, b)
	return nil
}

func (ft *FakeTransport) Close() error {
	ft.Closed++
	return nil
}

// Payload returns the concatenation of all recorded writes in order.
func (ft *FakeTransport) Payload() []byte {
	var out []byte
	for _, w := range ft.Writes {
		out = append(out, w...)
	}
	return out
}
