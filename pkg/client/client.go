// Package client implements the unit of work of metrics delivery: a
// client bound to one backend, encoding measurements and flushing them
// through a transport it owns exclusively. A client is used by one
// logical caller at a time and needs external synchronization for
// anything else.
package client

import (
	"bytes"
	"context"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/muffinlabs/muffin-metrics"
)

const (
	// DefaultPrefix is the global prefix prepended to every metric path.
	DefaultPrefix = "muffin."
	// DefaultMaxPacketSize is the byte ceiling per UDP write.
	DefaultMaxPacketSize = 512
)

// Options carries per-client policy, normally supplied by the registry.
type Options struct {
	Logger        logrus.FieldLogger
	Prefix        string
	FailSilently  bool
	MaxPacketSize int
	Rand          func() float64 // sampling source, nil means math/rand
}

// Client sends measurements to a single backend.
//
// In immediate mode (the default) every send encodes one entry and
// flushes it synchronously. Pipe switches the client to pipelined mode,
// where sends only append to the outgoing buffer and Close performs the
// single batched flush. Close is the guaranteed-release step and must run
// on every exit path, including error and cancellation paths.
type Client struct {
	backend   metrics.Backend
	transport metrics.Transport
	logger    logrus.FieldLogger

	prefix        string
	failSilently  bool
	maxPacketSize int
	randFloat     func() float64

	buf       []byte
	pipelined bool
	dead      bool
	closed    bool
}

// New constructs a client bound to a resolved backend and a transport for
// its address.
func New(backend metrics.Backend, transport metrics.Transport, opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.MaxPacketSize <= 0 {
		opts.MaxPacketSize = DefaultMaxPacketSize
	}
	if opts.Rand == nil {
		opts.Rand = rand.Float64
	}
	return &Client{
		backend:       backend,
		transport:     transport,
		logger:        opts.Logger,
		prefix:        opts.Prefix,
		failSilently:  opts.FailSilently,
		maxPacketSize: opts.MaxPacketSize,
		randFloat:     opts.Rand,
	}
}

// Backend returns the resolved backend this client is bound to.
func (c *Client) Backend() metrics.Backend {
	return c.backend
}

// Open readies the transport. A dial failure is surfaced unless the client
// runs fail-silently, in which case it is logged and the client degrades
// to a no-op.
func (c *Client) Open(ctx context.Context) error {
	if c.closed {
		return metrics.ErrClientClosed
	}
	if err := c.transport.Open(ctx); err != nil {
		if !c.failSilently {
			return err
		}
		c.logger.WithError(err).WithField("backend", c.backend.Name).Warn("metrics transport open failed, measurements will be dropped")
		c.dead = true
	}
	return nil
}

// Pipe switches the client into pipelined mode for the rest of its life:
// sends append to the outgoing buffer without I/O and the next Flush or
// Close writes the whole batch. Returns the client itself as the guard
// whose Close releases everything.
func (c *Client) Pipe() *Client {
	c.pipelined = true
	return c
}

// Send emits one measurement: "path value" on graphite backends,
// "bucket:value" on statsd backends.
func (c *Client) Send(stat string, value float64) error {
	return c.emit(metrics.Metric{Name: stat, Value: value, Rate: 1, Kind: metrics.RAW})
}

func (c *Client) emit(m metrics.Metric) error {
	if c.closed {
		return metrics.ErrClientClosed
	}
	if c.dead {
		return nil
	}
	if m.Rate < 1 && c.randFloat() > m.Rate {
		return nil
	}
	c.buf = appendEntry(c.buf, c.backend.Protocol, c.prefix, m)
	if c.pipelined {
		return nil
	}
	return c.Flush()
}

// Flush writes all buffered entries through the transport. An empty
// buffer performs zero writes. The buffer is cleared whether or not the
// flush succeeds; there is no automatic retry.
func (c *Client) Flush() error {
	if c.closed {
		return metrics.ErrClientClosed
	}
	if len(c.buf) == 0 || c.dead {
		c.buf = c.buf[:0]
		return nil
	}
	payload := c.buf
	var err error
	if c.backend.Transport == metrics.TransportUDP {
		err = c.writeDatagrams(payload)
	} else {
		err = c.transport.Write(payload)
	}
	c.buf = c.buf[:0]
	return c.fail(err)
}

// writeDatagrams cuts the payload at the last newline boundary at or
// before the packet ceiling and issues one write per cut. A single entry
// larger than the ceiling is sent whole, best effort, rather than
// silently dropped.
func (c *Client) writeDatagrams(payload []byte) error {
	for len(payload) > 0 {
		n := len(payload)
		if n > c.maxPacketSize {
			if cut := bytes.LastIndexByte(payload[:c.maxPacketSize], '\n'); cut >= 0 {
				n = cut + 1
			} else if i := bytes.IndexByte(payload, '\n'); i >= 0 {
				n = i + 1
			}
		}
		if err := c.transport.Write(payload[:n]); err != nil {
			return err
		}
		payload = payload[n:]
	}
	return nil
}

// Close flushes anything buffered, then releases the transport. It is
// idempotent; any send after Close fails with metrics.ErrClientClosed.
func (c *Client) Close() error {
	if c.closed {
		return nil
	}
	err := c.Flush()
	c.closed = true
	if cerr := c.transport.Close(); cerr != nil {
		c.logger.WithError(cerr).WithField("backend", c.backend.Name).Warn("metrics transport close failed")
	}
	return err
}

func (c *Client) fail(err error) error {
	if err == nil || !c.failSilently {
		return err
	}
	c.logger.WithError(err).WithFields(logrus.Fields{
		"backend": c.backend.Name,
		"address": c.backend.Address(),
	}).Warn("metrics flush failed")
	return nil
}
