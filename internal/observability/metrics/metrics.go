package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BotMetrics exposes counters for the WhatsApp assistant.
type BotMetrics struct {
	inboundTotal    *prometheus.CounterVec
	outboundTotal   *prometheus.CounterVec
	providerTotal   *prometheus.CounterVec
	providerLatency *prometheus.HistogramVec
	flowEvictions   prometheus.Counter
	queueLanes      prometheus.Gauge
	webhookLatency  *prometheus.HistogramVec
}

func NewBotMetrics(reg prometheus.Registerer) *BotMetrics {
	m := &BotMetrics{
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "whatsapp",
			Name:      "inbound_messages_total",
			Help:      "Inbound WhatsApp messages by classified intent",
		}, []string{"intent"}),
		outboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "whatsapp",
			Name:      "outbound_messages_total",
			Help:      "Outbound WhatsApp sends by status",
		}, []string{"status"}),
		providerTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "llm",
			Name:      "provider_attempts_total",
			Help:      "Text-generation provider attempts by outcome",
		}, []string{"provider", "outcome"}),
		providerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "llm",
			Name:      "provider_latency_seconds",
			Help:      "Latency of text-generation provider calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
		flowEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "conversation",
			Name:      "flow_evictions_total",
			Help:      "Per-user flow state entries evicted from the cache",
		}),
		queueLanes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "conversation",
			Name:      "queue_lanes",
			Help:      "Users with messages currently queued or in flight",
		}),
		webhookLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "whatsapp",
			Name:      "webhook_latency_seconds",
			Help:      "Latency of webhook handling",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.inboundTotal, m.outboundTotal, m.providerTotal, m.providerLatency,
		m.flowEvictions, m.queueLanes, m.webhookLatency)
	return m
}

func (m *BotMetrics) ObserveInbound(intent string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(intent).Inc()
}

func (m *BotMetrics) ObserveOutbound(status string) {
	if m == nil {
		return
	}
	m.outboundTotal.WithLabelValues(status).Inc()
}

// ObserveProviderAttempt satisfies llm.AttemptRecorder.
func (m *BotMetrics) ObserveProviderAttempt(provider, outcome string, latency time.Duration) {
	if m == nil {
		return
	}
	m.providerTotal.WithLabelValues(provider, outcome).Inc()
	m.providerLatency.WithLabelValues(provider).Observe(latency.Seconds())
}

func (m *BotMetrics) ObserveFlowEviction() {
	if m == nil {
		return
	}
	m.flowEvictions.Inc()
}

func (m *BotMetrics) SetQueueLanes(n int) {
	if m == nil {
		return
	}
	m.queueLanes.Set(float64(n))
}

func (m *BotMetrics) ObserveWebhookLatency(route string, d time.Duration) {
	if m == nil {
		return
	}
	m.webhookLatency.WithLabelValues(route).Observe(d.Seconds())
}
