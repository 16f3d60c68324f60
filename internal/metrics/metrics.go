// Package metrics exposes the translator's Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeTranslated   = "translated"
	OutcomeUntranslated = "untranslated"
	OutcomeRegistered   = "registered"
	OutcomeRejected     = "rejected"
	OutcomeError        = "error"
	OutcomeInvoked      = "invoked"
)

// Metrics holds all translator metrics on a private registry.
type Metrics struct {
	translateTotal  *prometheus.CounterVec
	registerTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	dictionaryWords *prometheus.GaugeVec
	warmupsTotal    prometheus.Counter
	selfInvokes     *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates and registers the translator metrics.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		translateTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "translator_translate_requests_total",
				Help: "Translate requests by outcome and failure reason",
			},
			[]string{"outcome", "reason"},
		),
		registerTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "translator_register_requests_total",
				Help: "Register requests by outcome and failure reason",
			},
			[]string{"outcome", "reason"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "translator_request_duration_seconds",
				Help:    "Request handling latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		dictionaryWords: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "translator_dictionary_words",
				Help: "Number of words per dictionary language",
			},
			[]string{"lang"},
		),
		warmupsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "translator_warmups_total",
				Help: "Warmup events answered by this instance",
			},
		),
		selfInvokes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "translator_warmup_self_invocations_total",
				Help: "Warmup self-invocations by outcome",
			},
			[]string{"outcome"},
		),
		registry: registry,
	}

	registry.MustRegister(m.translateTotal, m.registerTotal, m.requestDuration, m.dictionaryWords,
		m.warmupsTotal, m.selfInvokes)
	return m
}

// RecordTranslate counts one translate request.
func (m *Metrics) RecordTranslate(outcome, reason string, d time.Duration) {
	if m == nil {
		return
	}
	m.translateTotal.WithLabelValues(outcome, reason).Inc()
	m.requestDuration.WithLabelValues("translate").Observe(d.Seconds())
}

// RecordRegister counts one register request.
func (m *Metrics) RecordRegister(outcome, reason string, d time.Duration) {
	if m == nil {
		return
	}
	m.registerTotal.WithLabelValues(outcome, reason).Inc()
	m.requestDuration.WithLabelValues("register").Observe(d.Seconds())
}

// SetDictionaryWords replaces the per-language word gauges.
func (m *Metrics) SetDictionaryWords(stats map[string]int) {
	if m == nil {
		return
	}
	m.dictionaryWords.Reset()
	for lang, n := range stats {
		m.dictionaryWords.WithLabelValues(lang).Set(float64(n))
	}
}

// RecordWarmup counts one warmup event and the outcome of its self-invocations.
func (m *Metrics) RecordWarmup(invoked, failed int) {
	if m == nil {
		return
	}
	m.warmupsTotal.Inc()
	if invoked > 0 {
		m.selfInvokes.WithLabelValues(OutcomeInvoked).Add(float64(invoked))
	}
	if failed > 0 {
		m.selfInvokes.WithLabelValues(OutcomeError).Add(float64(failed))
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
