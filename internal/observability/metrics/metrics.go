package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for booking flows.
type BookingMetrics struct {
	opensTotal     *prometheus.CounterVec
	submitsTotal   *prometheus.CounterVec
	closesTotal    *prometheus.CounterVec
	recordFailures *prometheus.CounterVec
	submitLatency  *prometheus.HistogramVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		opensTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadflow",
			Subsystem: "booking",
			Name:      "opens_total",
			Help:      "Total booking forms opened",
		}, []string{"site", "program"}),
		submitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadflow",
			Subsystem: "booking",
			Name:      "submits_total",
			Help:      "Total booking submit attempts by outcome",
		}, []string{"site", "outcome"}),
		closesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadflow",
			Subsystem: "booking",
			Name:      "closes_total",
			Help:      "Total booking forms dismissed without submitting",
		}, []string{"site"}),
		recordFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadflow",
			Subsystem: "leads",
			Name:      "record_failures_total",
			Help:      "Total submissions that could not be recorded as leads",
		}, []string{"site"}),
		submitLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "leadflow",
			Subsystem: "booking",
			Name:      "submit_latency_seconds",
			Help:      "Latency of successful booking submissions",
			Buckets:   prometheus.DefBuckets,
		}, []string{"site"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.opensTotal, m.submitsTotal, m.closesTotal, m.recordFailures, m.submitLatency)
	return m
}

func (m *BookingMetrics) ObserveOpen(site, program string) {
	if m == nil {
		return
	}
	if program == "" {
		program = "none"
	}
	m.opensTotal.WithLabelValues(site, program).Inc()
}

// ObserveSubmit counts a submit attempt. Outcome is "submitted", "blocked" or "error".
func (m *BookingMetrics) ObserveSubmit(site, outcome string) {
	if m == nil {
		return
	}
	m.submitsTotal.WithLabelValues(site, outcome).Inc()
}

func (m *BookingMetrics) ObserveClose(site string) {
	if m == nil {
		return
	}
	m.closesTotal.WithLabelValues(site).Inc()
}

func (m *BookingMetrics) ObserveRecordFailure(site string) {
	if m == nil {
		return
	}
	m.recordFailures.WithLabelValues(site).Inc()
}

func (m *BookingMetrics) ObserveSubmitLatency(site string, seconds float64) {
	if m == nil {
		return
	}
	m.submitLatency.WithLabelValues(site).Observe(seconds)
}
