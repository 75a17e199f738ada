package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// EmailMetrics holds Prometheus counters for delivery observability.
// All counters are labeled by template_id for per-template dashboards.
// A nil *EmailMetrics is valid and records nothing, so library consumers
// and tests can skip metrics wiring entirely.
type EmailMetrics struct {
	sent     *prometheus.CounterVec
	failed   *prometheus.CounterVec
	resent   *prometheus.CounterVec
	previews *prometheus.CounterVec
}

// NewEmailMetrics creates and registers the delivery counters with the given
// registerer. Pass prometheus.DefaultRegisterer in production.
func NewEmailMetrics(reg prometheus.Registerer, namespace string) *EmailMetrics {
	if namespace == "" {
		namespace = "mailroom"
	}
	factory := promauto.With(reg)

	return &EmailMetrics{
		sent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_sent_total",
			Help:      "Total emails successfully dispatched to the provider",
		}, []string{"template_id"}),
		failed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_failed_total",
			Help:      "Total emails rejected by the provider",
		}, []string{"template_id"}),
		resent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_resent_total",
			Help:      "Total resend replays of prior delivery log entries",
		}, []string{"template_id"}),
		previews: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "email_previews_total",
			Help:      "Total template previews rendered",
		}, []string{"template_id"}),
	}
}

// EmailSent records a successful dispatch.
func (m *EmailMetrics) EmailSent(templateID string) {
	if m == nil {
		return
	}
	m.sent.WithLabelValues(templateID).Inc()
}

// EmailFailed records a provider rejection.
func (m *EmailMetrics) EmailFailed(templateID string) {
	if m == nil {
		return
	}
	m.failed.WithLabelValues(templateID).Inc()
}

// EmailResent records a resend replay.
func (m *EmailMetrics) EmailResent(templateID string) {
	if m == nil {
		return
	}
	m.resent.WithLabelValues(templateID).Inc()
}

// EmailPreviewed records a preview render.
func (m *EmailMetrics) EmailPreviewed(templateID string) {
	if m == nil {
		return
	}
	m.previews.WithLabelValues(templateID).Inc()
}
