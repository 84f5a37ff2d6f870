package metrics

import "github.com/prometheus/client_golang/prometheus"

// IngestMetrics exposes counters/histograms for the lead ingestion flow.
type IngestMetrics struct {
	webhooksTotal     *prometheus.CounterVec
	leadsTotal        *prometheus.CounterVec
	transformFallback *prometheus.CounterVec
	ingestLatency     *prometheus.HistogramVec
}

func NewIngestMetrics(reg prometheus.Registerer) *IngestMetrics {
	m := &IngestMetrics{
		webhooksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gymcrm",
			Subsystem: "ingest",
			Name:      "webhooks_total",
			Help:      "Total inbound lead webhooks",
		}, []string{"status"}),
		leadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gymcrm",
			Subsystem: "ingest",
			Name:      "leads_total",
			Help:      "Total lead submissions by processing outcome",
		}, []string{"outcome"}),
		transformFallback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gymcrm",
			Subsystem: "ingest",
			Name:      "transform_fallback_total",
			Help:      "Field transformations that fell back to the raw value",
		}, []string{"crm_field"}),
		ingestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gymcrm",
			Subsystem: "ingest",
			Name:      "latency_seconds",
			Help:      "Latency of lead job processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.webhooksTotal, m.leadsTotal, m.transformFallback, m.ingestLatency)
	return m
}

func (m *IngestMetrics) ObserveWebhook(status string) {
	if m == nil {
		return
	}
	m.webhooksTotal.WithLabelValues(status).Inc()
}

func (m *IngestMetrics) ObserveLead(outcome string) {
	if m == nil {
		return
	}
	m.leadsTotal.WithLabelValues(outcome).Inc()
}

func (m *IngestMetrics) ObserveTransformFallback(crmField string) {
	if m == nil {
		return
	}
	m.transformFallback.WithLabelValues(crmField).Inc()
}

func (m *IngestMetrics) ObserveIngestLatency(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.ingestLatency.WithLabelValues(outcome).Observe(seconds)
}
