package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes application-level instruments.
type Metrics struct {
	invoicesCreated  *prometheus.CounterVec
	creditsConsumed  prometheus.Counter
	creditsRefunded  prometheus.Counter
	publicViews      prometheus.Counter
	rateLimitDenied  *prometheus.CounterVec
	invoicesOverdued prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		invoicesCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "invora",
			Name:      "invoices_created_total",
			Help:      "Invoices created by currency.",
		}, []string{"currency"}),
		creditsConsumed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "invora",
			Name:      "credits_consumed_total",
			Help:      "Invoice credits consumed.",
		}),
		creditsRefunded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "invora",
			Name:      "credits_refunded_total",
			Help:      "Invoice credits refunded on deletion.",
		}),
		publicViews: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "invora",
			Name:      "public_invoice_views_total",
			Help:      "Public invoice link views served.",
		}),
		rateLimitDenied: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "invora",
			Name:      "rate_limit_denied_total",
			Help:      "Requests rejected by the rate limiter.",
		}, []string{"scope"}),
		invoicesOverdued: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "invora",
			Name:      "invoices_marked_overdue_total",
			Help:      "Invoices transitioned to overdue by the sweeper.",
		}),
	}
}

func (m *Metrics) InvoiceCreated(currency string) {
	if m == nil {
		return
	}
	m.invoicesCreated.WithLabelValues(currency).Inc()
}

func (m *Metrics) CreditConsumed() {
	if m == nil {
		return
	}
	m.creditsConsumed.Inc()
}

func (m *Metrics) CreditRefunded() {
	if m == nil {
		return
	}
	m.creditsRefunded.Inc()
}

func (m *Metrics) PublicView() {
	if m == nil {
		return
	}
	m.publicViews.Inc()
}

func (m *Metrics) RateLimitDenied(scope string) {
	if m == nil {
		return
	}
	m.rateLimitDenied.WithLabelValues(scope).Inc()
}

func (m *Metrics) InvoiceMarkedOverdue() {
	if m == nil {
		return
	}
	m.invoicesOverdued.Inc()
}
