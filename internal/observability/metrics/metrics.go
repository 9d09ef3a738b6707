package metrics

import "github.com/prometheus/client_golang/prometheus"

// ChatMetrics exposes counters/histograms for the answer pipeline.
type ChatMetrics struct {
	answersTotal      *prometheus.CounterVec
	answerLatency     *prometheus.HistogramVec
	rateLimitedTotal  prometheus.Counter
	pipelineErrsTotal prometheus.Counter
}

func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		answersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "convo",
			Subsystem: "chat",
			Name:      "answers_total",
			Help:      "Answers produced, by resolving pipeline stage",
		}, []string{"stage"}),
		answerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "convo",
			Subsystem: "chat",
			Name:      "answer_latency_seconds",
			Help:      "End-to-end latency of one answered question",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		rateLimitedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "convo",
			Subsystem: "chat",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the sliding-window limiter",
		}),
		pipelineErrsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "convo",
			Subsystem: "chat",
			Name:      "pipeline_errors_total",
			Help:      "Pipeline invocations that ended in an error response",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.answersTotal, m.answerLatency, m.rateLimitedTotal, m.pipelineErrsTotal)
	return m
}

func (m *ChatMetrics) ObserveAnswer(stage string) {
	if m == nil {
		return
	}
	m.answersTotal.WithLabelValues(stage).Inc()
}

func (m *ChatMetrics) ObserveAnswerLatency(stage string, seconds float64) {
	if m == nil {
		return
	}
	m.answerLatency.WithLabelValues(stage).Observe(seconds)
}

func (m *ChatMetrics) ObserveRateLimited() {
	if m == nil {
		return
	}
	m.rateLimitedTotal.Inc()
}

func (m *ChatMetrics) ObservePipelineError() {
	if m == nil {
		return
	}
	m.pipelineErrsTotal.Inc()
}

// BookingMetrics exposes counters for the booking orchestrator.
type BookingMetrics struct {
	bookingsTotal   *prometheus.CounterVec
	providerLatency *prometheus.HistogramVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "convo",
			Subsystem: "booking",
			Name:      "requests_total",
			Help:      "Booking attempts by provider and outcome",
		}, []string{"provider", "status"}),
		providerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "convo",
			Subsystem: "booking",
			Name:      "provider_latency_seconds",
			Help:      "Latency of scheduling provider calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider", "operation"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.providerLatency)
	return m
}

func (m *BookingMetrics) ObserveBooking(provider, status string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(provider, status).Inc()
}

func (m *BookingMetrics) ObserveProviderLatency(provider, operation string, seconds float64) {
	if m == nil {
		return
	}
	m.providerLatency.WithLabelValues(provider, operation).Observe(seconds)
}
