package base

import (
	"fmt"

	"github.com/ValentinKolb/sKV/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
)

// transportMetrics are the counters of all reactors of one role
type transportMetrics struct {
	framesIn          *metrics.Counter
	framesOut         *metrics.Counter
	bytesIn           *metrics.Counter
	bytesOut          *metrics.Counter
	connections       *metrics.Counter
	accepted          *metrics.Counter
	handshakes        *metrics.Counter
	handshakeFailures *metrics.Counter
}

func newTransportMetrics(role transport.Role) *transportMetrics {
	name := func(metric string) string {
		return fmt.Sprintf(`skv_transport_%s{role=%q}`, metric, role.String())
	}
	return &transportMetrics{
		framesIn:          metrics.GetOrCreateCounter(name("frames_received_total")),
		framesOut:         metrics.GetOrCreateCounter(name("frames_sent_total")),
		bytesIn:           metrics.GetOrCreateCounter(name("bytes_received_total")),
		bytesOut:          metrics.GetOrCreateCounter(name("bytes_sent_total")),
		connections:       metrics.GetOrCreateCounter(name("open_connections")),
		accepted:          metrics.GetOrCreateCounter(name("connections_total")),
		handshakes:        metrics.GetOrCreateCounter(name("handshakes_total")),
		handshakeFailures: metrics.GetOrCreateCounter(name("handshake_failures_total")),
	}
}
