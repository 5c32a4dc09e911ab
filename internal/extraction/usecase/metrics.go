package usecase

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"parent-care-assistant/internal/extraction"
)

// Metrics reports which extraction path served each request.
type Metrics struct {
	total    *prometheus.CounterVec
	fallback *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// MustNewMetrics registers the extraction collectors on reg. Registering twice
// on the same registry reuses the existing collectors.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	total := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "care",
			Subsystem: "extraction",
			Name:      "total",
			Help:      "Extractions served, by the path that produced the result.",
		},
		[]string{"source"},
	)
	fallback := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "care",
			Subsystem: "extraction",
			Name:      "fallback_total",
			Help:      "Extractions that fell back to the rule table, by cause.",
		},
		[]string{"reason"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "care",
			Subsystem: "extraction",
			Name:      "duration_seconds",
			Help:      "Wall time of an extraction including any model attempt.",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"source"},
	)

	for _, c := range []prometheus.Collector{total, fallback, duration} {
		if err := reg.Register(c); err != nil {
			already, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				panic(err)
			}
			switch c {
			case total:
				total = already.ExistingCollector.(*prometheus.CounterVec)
			case fallback:
				fallback = already.ExistingCollector.(*prometheus.CounterVec)
			case duration:
				duration = already.ExistingCollector.(*prometheus.HistogramVec)
			}
		}
	}

	return &Metrics{total: total, fallback: fallback, duration: duration}
}

func (m *Metrics) observe(source extraction.Source, d time.Duration) {
	if m == nil {
		return
	}
	m.total.WithLabelValues(string(source)).Inc()
	m.duration.WithLabelValues(string(source)).Observe(d.Seconds())
}

func (m *Metrics) fellBack(reason string) {
	if m == nil {
		return
	}
	m.fallback.WithLabelValues(reason).Inc()
}
