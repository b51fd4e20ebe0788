// Package metrics exposes countdown state as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"countdown/internal/events"
	"countdown/internal/reminders"
)

const namespace = "countdown"

// Metrics owns a private registry so several instances can coexist in tests.
type Metrics struct {
	Registry *prometheus.Registry

	events       *prometheus.GaugeVec
	pending      prometheus.Gauge
	delivered    *prometheus.CounterVec
	pro          prometheus.Gauge
	tickDuration prometheus.Histogram
}

// New creates and registers every collector.
func New() *Metrics {
	m := &Metrics{Registry: prometheus.NewRegistry()}
	m.events = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "events",
		Help:      "Number of events by state",
	}, []string{"state"})
	m.pending = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "reminders_pending",
		Help:      "Reminders waiting in the spool",
	})
	m.delivered = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reminders_delivered_total",
		Help:      "Reminders delivered by kind",
	}, []string{"kind"})
	m.pro = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "pro",
		Help:      "1 when the pro tier is active",
	})
	m.tickDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "tick_duration_seconds",
		Help:      "Time spent in one watch tick",
		Buckets:   prometheus.DefBuckets,
	})
	m.Registry.MustRegister(m.events, m.pending, m.delivered, m.pro, m.tickDuration)
	for _, k := range reminders.AllKinds {
		m.delivered.WithLabelValues(string(k))
	}
	return m
}

// SetEventCounts publishes a CountByState result.
func (m *Metrics) SetEventCounts(counts map[events.State]int) {
	for _, s := range []events.State{events.StateUpcoming, events.StatePastDue, events.StateCompleted} {
		m.events.WithLabelValues(string(s)).Set(float64(counts[s]))
	}
}

// SetPending records the spool size.
func (m *Metrics) SetPending(n int) { m.pending.Set(float64(n)) }

// SetPro records the tier.
func (m *Metrics) SetPro(isPro bool) {
	if isPro {
		m.pro.Set(1)
		return
	}
	m.pro.Set(0)
}

// Delivered counts delivered reminders.
func (m *Metrics) Delivered(reqs []reminders.Request) {
	for _, r := range reqs {
		m.delivered.WithLabelValues(string(r.Kind)).Inc()
	}
}

// ObserveTick records how long a tick took.
func (m *Metrics) ObserveTick(d time.Duration) { m.tickDuration.Observe(d.Seconds()) }

// Handler serves /metrics and /healthz.
func (m *Metrics) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
