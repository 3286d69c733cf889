package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Direction labels for connection metrics.
const (
	Inbound  = "inbound"
	Outbound = "outbound"
)

// Metrics holds the collectors for one chat instance. Each instance registers
// on its own prometheus.Registry so several instances can share a process.
//
// Recording methods are safe for concurrent use and are no-ops on a nil
// *Metrics, so callers do not need to check whether metrics are enabled.
type Metrics struct {
	registry *prometheus.Registry

	connections      *prometheus.CounterVec
	rejected         *prometheus.CounterVec
	disconnects      prometheus.Counter
	terminations     prometheus.Counter
	acceptFailures   prometheus.Counter
	connectFailures  prometheus.Counter
	messagesReceived prometheus.Counter
	bytesReceived    prometheus.Counter
	messagesSent     prometheus.Counter
	sendFailures     prometheus.Counter
	active           prometheus.Gauge
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		connections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "peerchat",
				Subsystem: "connections",
				Name:      "established_total",
				Help:      "Peer connections registered.",
			},
			[]string{"direction"},
		),
		rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "peerchat",
				Subsystem: "connections",
				Name:      "rejected_total",
				Help:      "Peer connections closed because the registry was full.",
			},
			[]string{"direction"},
		),
		disconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "peerchat",
			Subsystem: "connections",
			Name:      "peer_closed_total",
			Help:      "Connections removed because the peer closed or errored.",
		}),
		terminations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "peerchat",
			Subsystem: "connections",
			Name:      "terminated_total",
			Help:      "Connections removed by the operator.",
		}),
		acceptFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "peerchat",
			Subsystem: "connections",
			Name:      "accept_failures_total",
			Help:      "Failed accept calls on the listener.",
		}),
		connectFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "peerchat",
			Subsystem: "connections",
			Name:      "connect_failures_total",
			Help:      "Failed outbound connection attempts.",
		}),
		messagesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "peerchat",
			Subsystem: "messages",
			Name:      "received_total",
			Help:      "Messages received from peers.",
		}),
		bytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "peerchat",
			Subsystem: "messages",
			Name:      "received_bytes_total",
			Help:      "Payload bytes received from peers.",
		}),
		messagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "peerchat",
			Subsystem: "messages",
			Name:      "sent_total",
			Help:      "Operator messages sent to peers.",
		}),
		sendFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "peerchat",
			Subsystem: "messages",
			Name:      "send_failures_total",
			Help:      "Operator messages that failed to send.",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "peerchat",
			Subsystem: "connections",
			Name:      "active",
			Help:      "Connections currently in the registry.",
		}),
	}

	m.registry.MustRegister(
		m.connections, m.rejected, m.disconnects, m.terminations,
		m.acceptFailures, m.connectFailures,
		m.messagesReceived, m.bytesReceived, m.messagesSent, m.sendFailures,
		m.active,
	)
	return m
}

// Handler serves the collectors in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Gatherer exposes the underlying registry.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

func (m *Metrics) ConnectionEstablished(direction string) {
	if m == nil {
		return
	}
	m.connections.WithLabelValues(direction).Inc()
}

func (m *Metrics) ConnectionRejected(direction string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(direction).Inc()
}

func (m *Metrics) PeerClosed() {
	if m == nil {
		return
	}
	m.disconnects.Inc()
}

func (m *Metrics) Terminated() {
	if m == nil {
		return
	}
	m.terminations.Inc()
}

func (m *Metrics) AcceptFailed() {
	if m == nil {
		return
	}
	m.acceptFailures.Inc()
}

func (m *Metrics) ConnectFailed() {
	if m == nil {
		return
	}
	m.connectFailures.Inc()
}

func (m *Metrics) MessageReceived(size int) {
	if m == nil {
		return
	}
	m.messagesReceived.Inc()
	m.bytesReceived.Add(float64(size))
}

func (m *Metrics) MessageSent() {
	if m == nil {
		return
	}
	m.messagesSent.Inc()
}

func (m *Metrics) SendFailed() {
	if m == nil {
		return
	}
	m.sendFailures.Inc()
}

// SetActive records the current registry size.
func (m *Metrics) SetActive(n int) {
	if m == nil {
		return
	}
	m.active.Set(float64(n))
}
