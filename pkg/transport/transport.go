// Package transport implements payload delivery to metrics backends over
// UDP and TCP sockets. A transport is owned by exactly one client and is
// never pooled; reconnection after a failure is the caller's
// responsibility.
package transport

import (
	"context"
	"net"
	"time"

	"github.com/muffinlabs/muffin-metrics"
)

const (
	// DefaultDialTimeout is the default net.Dial timeout.
	DefaultDialTimeout = 5 * time.Second
	// DefaultWriteTimeout is the default socket write timeout.
	DefaultWriteTimeout = 30 * time.Second
)

// DialFunc establishes the underlying connection. It matches
// net.Dialer.DialContext and exists so tests can substitute fake sockets.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Options carries socket tuning shared by all transport kinds.
type Options struct {
	DialTimeout  time.Duration
	WriteTimeout time.Duration
	Dial         DialFunc // nil means net.Dialer
}

// New constructs the transport for a resolved backend.
func New(backend metrics.Backend, opts Options) metrics.Transport {
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = DefaultDialTimeout
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = DefaultWriteTimeout
	}
	switch backend.Transport {
	case metrics.TransportTCP:
		return &TCP{Addr: backend.Address(), DialTimeout: opts.DialTimeout, WriteTimeout: opts.WriteTimeout, Dial: opts.Dial}
	case metrics.TransportNull:
		return &Null{}
	default:
		return &UDP{Addr: backend.Address(), DialTimeout: opts.DialTimeout, Dial: opts.Dial}
	}
}

func dialContext(ctx context.Context, dial DialFunc, timeout time.Duration, network, address string) (net.Conn, error) {
	if dial == nil {
		d := &net.Dialer{Timeout: timeout}
		dial = d.DialContext
	}
	return dial(ctx, network, address)
}
