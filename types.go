package metrics

import (
	"context"
)

// Kind is an enumeration of all the possible kinds of metric entry.
type Kind byte

const (
	_ = iota
	// RAW is a plain value without a statsd type suffix
	RAW Kind = iota
	// COUNTER is statsd counter type
	COUNTER
	// GAUGE is statsd gauge type
	GAUGE
	// TIMER is statsd timer type
	TIMER
)

func (k Kind) String() string {
	switch k {
	case RAW:
		return "raw"
	case COUNTER:
		return "counter"
	case GAUGE:
		return "gauge"
	case TIMER:
		return "timer"
	}
	return "unknown"
}

// Protocol is the wire format spoken to a backend.
type Protocol byte

const (
	_ = iota
	// Graphite is the plaintext "path value" line protocol.
	Graphite Protocol = iota
	// Statsd is the "bucket:value|type" line protocol.
	Statsd
)

func (p Protocol) String() string {
	switch p {
	case Graphite:
		return "graphite"
	case Statsd:
		return "statsd"
	}
	return "unknown"
}

// TransportKind selects how payloads reach a backend.
type TransportKind byte

const (
	_ = iota
	// TransportUDP sends each payload as a single datagram.
	TransportUDP TransportKind = iota
	// TransportTCP sends payloads over an established stream.
	TransportTCP
	// TransportNull discards payloads.
	TransportNull
)

func (t TransportKind) String() string {
	switch t {
	case TransportUDP:
		return "udp"
	case TransportTCP:
		return "tcp"
	case TransportNull:
		return "null"
	}
	return "unknown"
}

// Metric represents a single measurement on its way to a backend.
type Metric struct {
	Name  string  // path or bucket, without the global prefix
	Value float64 // the numeric value of the metric
	Rate  float64 // sampling rate, 1 means always sent
	Kind  Kind    // the kind of metric
}

// Transport delivers encoded metric payloads to a single backend. A
// Transport is owned by exactly one client for its whole lifetime and is
// not safe for concurrent use.
type Transport interface {
	// Open prepares the transport for writes. For stream transports this
	// establishes the connection and may fail.
	Open(ctx context.Context) error
	// Write delivers one payload. Datagram transports issue one datagram
	// per call.
	Write(p []byte) error
	// Close releases the underlying socket. Close is idempotent.
	Close() error
}
