package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the ledger's Prometheus collectors
type Metrics struct {
	SettlementEvents   *prometheus.CounterVec
	WebhookAuthFailure prometheus.Counter
	DebitRejected      *prometheus.CounterVec
	TicketPurchases    *prometheus.CounterVec
	OutboxDelivery     *prometheus.CounterVec
	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg. A nil registerer
// leaves them unregistered, which tests use to avoid global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SettlementEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "settlement_events_total",
			Help: "Gateway events applied to the ledger by normalized status and outcome.",
		}, []string{"status", "outcome"}),
		WebhookAuthFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "webhook_signature_failures_total",
			Help: "Webhook notifications rejected for a missing or invalid signature.",
		}),
		DebitRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_debit_rejected_total",
			Help: "Wallet debits refused for insufficient funds.",
		}, []string{"category"}),
		TicketPurchases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ticket_purchases_total",
			Help: "Ticket purchase attempts by result.",
		}, []string{"result"}),
		OutboxDelivery: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "outbox_deliveries_total",
			Help: "Outbox notification deliveries by topic and result.",
		}, []string{"topic", "result"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	if reg != nil {
		reg.MustRegister(
			m.SettlementEvents,
			m.WebhookAuthFailure,
			m.DebitRejected,
			m.TicketPurchases,
			m.OutboxDelivery,
			m.HTTPRequests,
			m.HTTPDuration,
		)
	}
	return m
}

// nop is shared by callers that were built without metrics
var nop = New(nil)

// OrNop returns m, or an unregistered set when m is nil
func OrNop(m *Metrics) *Metrics {
	if m == nil {
		return nop
	}
	return m
}
