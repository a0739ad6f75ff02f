package metrics

import (
	"errors"
	"fmt"
)

// ErrClientClosed is returned by any send attempted on a client past its
// terminal state. It is a programming error and is never suppressed by the
// fail-silently policy.
var ErrClientClosed = errors.New("metrics client is closed")

// ConfigurationError indicates a malformed backend URI or an impossible
// backend selection. It is raised at registry build time or first
// resolution, never at send time, and is never suppressed.
type ConfigurationError struct {
	URI    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid metrics backend %q: %s", e.URI, e.Reason)
}

// UnknownBackendError indicates a backend name that is not registered, or
// a defaulted lookup when no default backend is configured.
type UnknownBackendError struct {
	Name string
}

func (e *UnknownBackendError) Error() string {
	if e.Name == "" {
		return "no default metrics backend configured"
	}
	return fmt.Sprintf("unknown metrics backend %q", e.Name)
}

// TransportError indicates a connect or write failure on the way to a
// backend. It is surfaced to the caller unless the owning client runs with
// fail-silently set.
type TransportError struct {
	Op   string // "dial" or "write"
	Addr string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("metrics transport %s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
