package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "arb"

// Metrics holds every collector exported by the ingester and scanner.
type Metrics struct {
	published    *prometheus.CounterVec
	skipped      *prometheus.CounterVec
	storeErrors  *prometheus.CounterVec
	streamErrors *prometheus.CounterVec
	restarts     *prometheus.CounterVec
	latency      *prometheus.GaugeVec
	status       *prometheus.GaugeVec

	opportunities *prometheus.CounterVec
	netProfit     *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	feedLabels := []string{"exchange", "symbol"}

	m := &Metrics{
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_published_total",
			Help:      "Ticker records written to the store.",
		}, feedLabels),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_skipped_total",
			Help:      "Book updates not published, by reason.",
		}, append(feedLabels, "reason")),
		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Failed store writes.",
		}, feedLabels),
		streamErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_errors_total",
			Help:      "Feed subscriptions lost, by failure kind.",
		}, append(feedLabels, "kind")),
		restarts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connector_restarts_total",
			Help:      "Subscriptions re-established after a failure.",
		}, feedLabels),
		latency: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feed_latency_ms",
			Help:      "Latency of the last published record.",
		}, feedLabels),
		status: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connector_status",
			Help:      "Connector status: 0 starting, 1 streaming, 2 backoff, 3 stopped.",
		}, feedLabels),
		opportunities: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "opportunities_total",
			Help:      "Profitable cross-exchange spreads seen by the scanner.",
		}, []string{"symbol", "buy", "sell"}),
		netProfit: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "net_profit",
			Help:      "Net profit of the last scan per direction, in quote currency.",
		}, []string{"symbol", "buy", "sell"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.published,
			m.skipped,
			m.storeErrors,
			m.streamErrors,
			m.restarts,
			m.latency,
			m.status,
			m.opportunities,
			m.netProfit,
		)
	}

	return m
}

// Published records a successful store write.
func (m *Metrics) Published(exchange, symbol string, latencyMs float64) {
	if m == nil {
		return
	}
	m.published.WithLabelValues(exchange, symbol).Inc()
	m.latency.WithLabelValues(exchange, symbol).Set(latencyMs)
}

// Skipped records an update that was not published.
func (m *Metrics) Skipped(exchange, symbol, reason string) {
	if m == nil {
		return
	}
	m.skipped.WithLabelValues(exchange, symbol, reason).Inc()
}

// StoreError records a failed store write.
func (m *Metrics) StoreError(exchange, symbol string) {
	if m == nil {
		return
	}
	m.storeErrors.WithLabelValues(exchange, symbol).Inc()
}

// StreamError records a lost subscription.
func (m *Metrics) StreamError(exchange, symbol, kind string) {
	if m == nil {
		return
	}
	m.streamErrors.WithLabelValues(exchange, symbol, kind).Inc()
}

// Restart records a re-established subscription.
func (m *Metrics) Restart(exchange, symbol string) {
	if m == nil {
		return
	}
	m.restarts.WithLabelValues(exchange, symbol).Inc()
}

// SetStatus sets the connector status gauge.
func (m *Metrics) SetStatus(exchange, symbol string, status int) {
	if m == nil {
		return
	}
	m.status.WithLabelValues(exchange, symbol).Set(float64(status))
}

// Opportunity records the outcome of one scanned direction.
func (m *Metrics) Opportunity(symbol, buy, sell string, netProfit float64) {
	if m == nil {
		return
	}
	m.netProfit.WithLabelValues(symbol, buy, sell).Set(netProfit)
	if netProfit > 0 {
		m.opportunities.WithLabelValues(symbol, buy, sell).Inc()
	}
}
