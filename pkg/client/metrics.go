package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	commandsSent      prometheus.Counter
	framesDecoded     prometheus.Counter
	decodeErrors      prometheus.Counter
	reconnects        prometheus.Counter
	reconnectFailures prometheus.Counter
}

// newMetrics registers the connection metrics. A nil registerer disables
// collection; all record methods tolerate a nil receiver.
func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		return nil
	}
	factory := promauto.With(reg)
	return &metrics{
		commandsSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "snapctl",
			Name:      "commands_sent_total",
			Help:      "Commands written to the server.",
		}),
		framesDecoded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "snapctl",
			Name:      "frames_decoded_total",
			Help:      "Inbound frames classified successfully.",
		}),
		decodeErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "snapctl",
			Name:      "frame_decode_errors_total",
			Help:      "Inbound frames that failed to decode.",
		}),
		reconnects: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "snapctl",
			Name:      "reconnects_total",
			Help:      "Successful reconnects after a transport failure.",
		}),
		reconnectFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "snapctl",
			Name:      "reconnect_failures_total",
			Help:      "Failed reconnect attempts.",
		}),
	}
}

func (m *metrics) commandSent() {
	if m != nil {
		m.commandsSent.Inc()
	}
}

func (m *metrics) frameDecoded() {
	if m != nil {
		m.framesDecoded.Inc()
	}
}

func (m *metrics) decodeError() {
	if m != nil {
		m.decodeErrors.Inc()
	}
}

func (m *metrics) reconnected() {
	if m != nil {
		m.reconnects.Inc()
	}
}

func (m *metrics) reconnectFailed() {
	if m != nil {
		m.reconnectFailures.Inc()
	}
}
