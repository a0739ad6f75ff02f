package metrics

import (
	"net"
	"net/url"
	"strconv"
	"strings"
)

// Backend is a named, resolved delivery target for metrics. Once resolved
// its transport kind and wire protocol never change.
type Backend struct {
	Name      string
	Transport TransportKind
	Protocol  Protocol
	Host      string
	Port      uint16
}

// Address returns the host:port pair the transport dials.
func (b Backend) Address() string {
	return net.JoinHostPort(b.Host, strconv.Itoa(int(b.Port)))
}

// ParseBackend resolves a backend URI of the form
// <transport>[+statsd]://host:port into a Backend. Recognized transports
// are "udp", "tcp" and "null"; the "+statsd" suffix selects the statsd
// wire protocol, its absence selects graphite plaintext. The null
// transport discards everything, so its client speaks statsd and
// host/port are optional. Malformed input fails with *ConfigurationError.
func ParseBackend(name, uri string) (Backend, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return Backend{}, &ConfigurationError{URI: uri, Reason: err.Error()}
	}

	scheme := u.Scheme
	proto := Graphite
	if i := strings.IndexByte(scheme, '+'); i >= 0 {
		switch scheme[i+1:] {
		case "statsd":
			proto = Statsd
		default:
			return Backend{}, &ConfigurationError{URI: uri, Reason: "unknown protocol " + strconv.Quote(scheme[i+1:])}
		}
		scheme = scheme[:i]
	}

	var kind TransportKind
	switch scheme {
	case "udp":
		kind = TransportUDP
	case "tcp":
		kind = TransportTCP
	case "null":
		// Discard backends accept the statsd operations.
		return Backend{Name: name, Transport: TransportNull, Protocol: Statsd}, nil
	default:
		return Backend{}, &ConfigurationError{URI: uri, Reason: "unknown transport " + strconv.Quote(scheme)}
	}

	host := u.Hostname()
	if host == "" {
		return Backend{}, &ConfigurationError{URI: uri, Reason: "missing host"}
	}
	port, err := strconv.ParseUint(u.Port(), 10, 16)
	if err != nil || port == 0 {
		return Backend{}, &ConfigurationError{URI: uri, Reason: "missing or invalid port"}
	}

	return Backend{
		Name:      name,
		Transport: kind,
		Protocol:  proto,
		Host:      host,
		Port:      uint16(port),
	}, nil
}
