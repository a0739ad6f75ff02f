package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muffinlabs/muffin-metrics"
	"github.com/muffinlabs/muffin-metrics/internal/fixtures"
	"github.com/muffinlabs/muffin-metrics/pkg/fakesocket"
)

func testBackend(kind metrics.TransportKind, proto metrics.Protocol) metrics.Backend {
	return metrics.Backend{
		Name:      "test",
		Transport: kind,
		Protocol:  proto,
		Host:      "127.0.0.1",
		Port:      8125,
	}
}

func newTestClient(t *testing.T, b metrics.Backend, opts Options) (*Client, *fakesocket.FakeTransport) {
	ft := &fakesocket.FakeTransport{}
	if opts.Logger == nil {
		opts.Logger = fixtures.NewTestLogger(t)
	}
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	c := New(b, ft, opts)
	require.NoError(t, c.Open(context.Background()))
	return c, ft
}

func TestSendGraphite(t *testing.T) {
	t.Parallel()
	c, ft := newTestClient(t, testBackend(metrics.TransportUDP, metrics.Graphite), Options{})
	require.NoError(t, c.Send("answer.to.the.ultimate.question", 42))
	require.Len(t, ft.Writes, 1)
	assert.Equal(t, "muffin.answer.to.the.ultimate.question 42\n", string(ft.Writes[0]))
}

func TestSendStatsdRaw(t *testing.T) {
	t.Parallel()
	c, ft := newTestClient(t, testBackend(metrics.TransportUDP, metrics.Statsd), Options{})
	require.NoError(t, c.Send("stats", 21))
	require.Len(t, ft.Writes, 1)
	assert.Equal(t, "muffin.stats:21\n", string(ft.Writes[0]))
}

func TestPipelineFlushesOnceOnClose(t *testing.T) {
	t.Parallel()
	c, ft := newTestClient(t, testBackend(metrics.TransportUDP, metrics.Graphite), Options{})
	pipe := c.Pipe()
	require.NoError(t, pipe.Send("answer.to.the.ultimate.question", 42))
	require.NoError(t, pipe.Send("some.some", 31))
	assert.Empty(t, ft.Writes, "pipelined sends must not hit the transport")

	require.NoError(t, pipe.Close())
	require.Len(t, ft.Writes, 1)
	assert.Equal(t, "muffin.answer.to.the.ultimate.question 42\nmuffin.some.some 31\n", string(ft.Writes[0]))
	assert.Equal(t, 1, ft.Closed)
}

func TestFlushEmptyBuffer(t *testing.T) {
	t.Parallel()
	c, ft := newTestClient(t, testBackend(metrics.TransportUDP, metrics.Graphite), Options{})
	require.NoError(t, c.Flush())
	assert.Empty(t, ft.Writes)
}

func TestDatagramSplitting(t *testing.T) {
	t.Parallel()
	c, ft := newTestClient(t, testBackend(metrics.TransportUDP, metrics.Graphite), Options{
		Prefix:        "p.",
		MaxPacketSize: 20,
	})
	pipe := c.Pipe()
	require.NoError(t, pipe.Send("aaaa", 1)) // "p.aaaa 1\n" = 9 bytes
	require.NoError(t, pipe.Send("bbbb", 2))
	require.NoError(t, pipe.Send("cccc", 3))
	require.NoError(t, pipe.Close())

	require.GreaterOrEqual(t, len(ft.Writes), 2)
	for _, w := range ft.Writes {
		assert.LessOrEqual(t, len(w), 20)
	}
	assert.Equal(t, "p.aaaa 1\np.bbbb 2\np.cccc 3\n", string(ft.Payload()))
}

func TestDatagramOversizedEntrySentAlone(t *testing.T) {
	t.Parallel()
	c, ft := newTestClient(t, testBackend(metrics.TransportUDP, metrics.Graphite), Options{
		Prefix:        "p.",
		MaxPacketSize: 10,
	})
	pipe := c.Pipe()
	require.NoError(t, pipe.Send("a", 1))
	require.NoError(t, pipe.Send("name.well.beyond.the.ceiling", 2))
	require.NoError(t, pipe.Send("b", 3))
	require.NoError(t, pipe.Close())

	require.Len(t, ft.Writes, 3)
	assert.Equal(t, "p.a 1\n", string(ft.Writes[0]))
	assert.Equal(t, "p.name.well.beyond.the.ceiling 2\n", string(ft.Writes[1]))
	assert.Equal(t, "p.b 3\n", string(ft.Writes[2]))
}

func TestTCPFlushIsOneWrite(t *testing.T) {
	t.Parallel()
	c, ft := newTestClient(t, testBackend(metrics.TransportTCP, metrics.Graphite), Options{
		Prefix:        "p.",
		MaxPacketSize: 10, // no datagram ceiling on streams
	})
	pipe := c.Pipe()
	require.NoError(t, pipe.Send("aaaaaaaaaa", 1))
	require.NoError(t, pipe.Send("bbbbbbbbbb", 2))
	require.NoError(t, pipe.Close())
	assert.Len(t, ft.Writes, 1)
}

func TestWriteErrorSurfaced(t *testing.T) {
	t.Parallel()
	c, ft := newTestClient(t, testBackend(metrics.TransportUDP, metrics.Graphite), Options{})
	ft.WriteErr = &metrics.TransportError{Op: "write", Addr: "127.0.0.1:8125", Err: fakesocket.ErrClosedConnection}

	err := c.Send("some.stat", 1)
	require.Error(t, err)
	var terr *metrics.TransportError
	assert.ErrorAs(t, err, &terr)

	// the buffer is cleared on failure, a later flush must not resend
	ft.WriteErr = nil
	require.NoError(t, c.Flush())
	assert.Empty(t, ft.Writes)
}

func TestWriteErrorSwallowedWhenFailingSilently(t *testing.T) {
	t.Parallel()
	c, ft := newTestClient(t, testBackend(metrics.TransportUDP, metrics.Graphite), Options{
		FailSilently: true,
	})
	ft.WriteErr = &metrics.TransportError{Op: "write", Addr: "127.0.0.1:8125", Err: fakesocket.ErrClosedConnection}
	assert.NoError(t, c.Send("some.stat", 1))
}

func TestSendAfterClose(t *testing.T) {
	t.Parallel()
	c, ft := newTestClient(t, testBackend(metrics.TransportUDP, metrics.Graphite), Options{})
	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Send("late.stat", 1), metrics.ErrClientClosed)
	assert.ErrorIs(t, c.Flush(), metrics.ErrClientClosed)

	// Close is idempotent
	require.NoError(t, c.Close())
	assert.Equal(t, 1, ft.Closed)
}

func TestOpenFailure(t *testing.T) {
	t.Parallel()
	openErr := &metrics.TransportError{Op: "dial", Addr: "127.0.0.1:8125", Err: fakesocket.ErrClosedConnection}

	ft := &fakesocket.FakeTransport{OpenErr: openErr}
	c := New(testBackend(metrics.TransportTCP, metrics.Graphite), ft, Options{Logger: fixtures.NewTestLogger(t)})
	require.Error(t, c.Open(context.Background()))

	ft = &fakesocket.FakeTransport{OpenErr: openErr}
	c = New(testBackend(metrics.TransportTCP, metrics.Graphite), ft, Options{
		Logger:       fixtures.NewTestLogger(t),
		FailSilently: true,
	})
	require.NoError(t, c.Open(context.Background()))
	assert.NoError(t, c.Send("some.stat", 1))
	assert.Empty(t, ft.Writes, "a silently dead client drops measurements")
	assert.NoError(t, c.Close())
}
