package client

import (
	"github.com/muffinlabs/muffin-metrics"
)

// StatsdClient is a Client bound to a statsd-protocol backend, carrying
// the statsd operation set. The registry hands one out only when the
// resolved wire protocol is statsd, so the capability split is checked at
// construction time, not per call.
type StatsdClient struct {
	Client
}

// NewStatsd constructs a statsd client. The caller is responsible for the
// backend actually speaking statsd.
func NewStatsd(backend metrics.Backend, transport metrics.Transport, opts Options) *StatsdClient {
	return &StatsdClient{Client: *New(backend, transport, opts)}
}

// Pipe switches the client into pipelined mode, see Client.Pipe.
func (c *StatsdClient) Pipe() *StatsdClient {
	c.Client.Pipe()
	return c
}

// Incr increments a counter bucket by count. A rate below 1 samples: the
// entry is sent with probability rate and encoded with a "|@rate" suffix
// so the receiver can compensate.
func (c *StatsdClient) Incr(stat string, count int64, rate float64) error {
	return c.emit(metrics.Metric{Name: stat, Value: float64(count), Rate: rate, Kind: metrics.COUNTER})
}

// Decr decrements a counter bucket by count.
func (c *StatsdClient) Decr(stat string, count int64, rate float64) error {
	return c.Incr(stat, -count, rate)
}

// Timing reports a duration in milliseconds.
func (c *StatsdClient) Timing(stat string, ms int64, rate float64) error {
	return c.emit(metrics.Metric{Name: stat, Value: float64(ms), Rate: rate, Kind: metrics.TIMER})
}

// Gauge sets a gauge bucket to value. Gauges are never sampled.
func (c *StatsdClient) Gauge(stat string, value float64) error {
	return c.emit(metrics.Metric{Name: stat, Value: value, Rate: 1, Kind: metrics.GAUGE})
}
