// Package registry holds the process-wide table of named metrics
// backends. A registry is built once at startup, from configuration or by
// explicit Register calls, and is read-only afterwards: concurrent reads
// need no locking, runtime mutation is not supported.
package registry

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/muffinlabs/muffin-metrics"
	"github.com/muffinlabs/muffin-metrics/internal/util"
	"github.com/muffinlabs/muffin-metrics/pkg/client"
	"github.com/muffinlabs/muffin-metrics/pkg/transport"
)

// TransportFactory builds the transport for a resolved backend. Tests
// substitute it to capture payloads without sockets.
type TransportFactory func(backend metrics.Backend) metrics.Transport

// Registry maps backend names to resolved backends and carries the
// delivery policy shared by every client it hands out. Fields are set
// before first use and never mutated afterwards.
type Registry struct {
	Default          string
	Prefix           string
	FailSilently     bool
	MaxUDPSize       int
	DialTimeout      time.Duration
	WriteTimeout     time.Duration
	Logger           logrus.FieldLogger
	TransportFactory TransportFactory

	backends  map[string]metrics.Backend
	firstName string
}

// New creates an empty registry with the default policy.
func New(logger logrus.FieldLogger) *Registry {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Registry{
		Prefix:       client.DefaultPrefix,
		MaxUDPSize:   client.DefaultMaxPacketSize,
		DialTimeout:  transport.DefaultDialTimeout,
		WriteTimeout: transport.DefaultWriteTimeout,
		Logger:       logger,
		backends:     make(map[string]metrics.Backend),
	}
}

// NewFromViper builds a registry from the "metrics" sub-tree of the given
// configuration.
func NewFromViper(v *viper.Viper, logger logrus.FieldLogger) (*Registry, error) {
	v = util.GetSubViper(v, ParamSection)
	v.SetDefault(ParamPrefix, client.DefaultPrefix)
	v.SetDefault(ParamMaxUDPSize, client.DefaultMaxPacketSize)
	v.SetDefault(ParamFailSilently, false)
	v.SetDefault(ParamDialTimeout, transport.DefaultDialTimeout)
	v.SetDefault(ParamWriteTimeout, transport.DefaultWriteTimeout)

	r := New(logger)
	r.Default = v.GetString(ParamDefault)
	r.Prefix = v.GetString(ParamPrefix)
	r.FailSilently = v.GetBool(ParamFailSilently)
	r.MaxUDPSize = v.GetInt(ParamMaxUDPSize)
	r.DialTimeout = v.GetDuration(ParamDialTimeout)
	r.WriteTimeout = v.GetDuration(ParamWriteTimeout)

	for name, uri := range v.GetStringMapString(ParamBackends) {
		if err := r.Register(name, uri); err != nil {
			return nil, err
		}
	}
	if r.Default != "" {
		if _, ok := r.backends[r.Default]; !ok {
			return nil, &metrics.ConfigurationError{URI: r.Default, Reason: "default backend is not registered"}
		}
	}
	// The configuration table is unordered, so an implicit default only
	// exists when it has exactly one entry.
	if len(r.backends) > 1 {
		r.firstName = ""
	}
	return r, nil
}

// Register resolves uri and adds (or overwrites) the named backend. The
// first backend registered becomes the default when none is configured
// explicitly.
func (r *Registry) Register(name, uri string) error {
	b, err := metrics.ParseBackend(name, uri)
	if err != nil {
		return err
	}
	if r.firstName == "" {
		r.firstName = name
	}
	r.backends[name] = b
	r.Logger.WithFields(logrus.Fields{
		"backend":   name,
		"transport": b.Transport,
		"protocol":  b.Protocol,
		"address":   b.Address(),
	}).Info("registered metrics backend")
	return nil
}

// Resolve returns the backend for name, or the default backend when name
// is empty. A name that resolves to nothing fails with
// *metrics.UnknownBackendError.
func (r *Registry) Resolve(name string) (metrics.Backend, error) {
	lookup := name
	if lookup == "" {
		lookup = r.Default
	}
	if lookup == "" {
		lookup = r.firstName
	}
	if lookup == "" {
		return metrics.Backend{}, &metrics.UnknownBackendError{}
	}
	b, ok := r.backends[lookup]
	if !ok {
		return metrics.Backend{}, &metrics.UnknownBackendError{Name: lookup}
	}
	return b, nil
}

// Client resolves the named backend (the default for "") and returns an
// opened client bound to it. Resolution failures are returned before any
// transport is opened; an open failure honors the fail-silently policy.
func (r *Registry) Client(ctx context.Context, name string) (*client.Client, error) {
	b, err := r.Resolve(name)
	if err != nil {
		return nil, err
	}
	c := client.New(b, r.transportFor(b), r.clientOptions())
	if err := c.Open(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// StatsdClient is the capability-checked variant of Client: it fails with
// *metrics.ConfigurationError when the resolved backend does not speak
// statsd.
func (r *Registry) StatsdClient(ctx context.Context, name string) (*client.StatsdClient, error) {
	b, err := r.Resolve(name)
	if err != nil {
		return nil, err
	}
	if b.Protocol != metrics.Statsd {
		return nil, &metrics.ConfigurationError{URI: b.Name, Reason: "backend does not speak statsd"}
	}
	c := client.NewStatsd(b, r.transportFor(b), r.clientOptions())
	if err := c.Open(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Send is the one-shot convenience: open a transient client on the named
// backend, send a single entry, close.
func (r *Registry) Send(ctx context.Context, stat string, value float64, name string) error {
	c, err := r.Client(ctx, name)
	if err != nil {
		return err
	}
	sendErr := c.Send(stat, value)
	if closeErr := c.Close(); sendErr == nil {
		sendErr = closeErr
	}
	return sendErr
}

func (r *Registry) transportFor(b metrics.Backend) metrics.Transport {
	if r.TransportFactory != nil {
		return r.TransportFactory(b)
	}
	return transport.New(b, transport.Options{
		DialTimeout:  r.DialTimeout,
		WriteTimeout: r.WriteTimeout,
	})
}

func (r *Registry) clientOptions() client.Options {
	return client.Options{
		Logger:        r.Logger,
		Prefix:        r.Prefix,
		FailSilently:  r.FailSilently,
		MaxPacketSize: r.MaxUDPSize,
	}
}
