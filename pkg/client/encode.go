package client

import (
	"strconv"

	"github.com/muffinlabs/muffin-metrics"
)

// appendEntry encodes one metric entry and appends it to buf. Encoding is
// pure and never fails. Graphite plaintext is "<prefix><path> <value>\n";
// statsd is "<prefix><bucket>:<value>|<type>\n" where the RAW kind carries
// no type suffix and a sampling rate below 1 appends "|@<rate>". Values
// are formatted as plain decimal numbers with no excess zeros.
func appendEntry(buf []byte, proto metrics.Protocol, prefix string, m metrics.Metric) []byte {
	buf = append(buf, prefix...)
	buf = append(buf, m.Name...)
	if proto == metrics.Graphite {
		buf = append(buf, ' ')
		buf = strconv.AppendFloat(buf, m.Value, 'f', -1, 64)
		return append(buf, '\n')
	}
	buf = append(buf, ':')
	buf = strconv.AppendFloat(buf, m.Value, 'f', -1, 64)
	switch m.Kind {
	case metrics.COUNTER:
		buf = append(buf, "|c"...)
	case metrics.GAUGE:
		buf = append(buf, "|g"...)
	case metrics.TIMER:
		buf = append(buf, "|ms"...)
	}
	if m.Rate > 0 && m.Rate < 1 {
		buf = append(buf, "|@"...)
		buf = strconv.AppendFloat(buf, m.Rate, 'f', -1, 64)
	}
	return append(buf, '\n')
}
