package app

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the Prometheus registry and the app's collectors. It also
// implements authapi.Recorder so auth events land in the same registry.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	registrations *prometheus.CounterVec
	logins        *prometheus.CounterVec
}

// NewMetrics builds a registry with Go runtime and process collectors plus the
// app's own series.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chefcircle",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method and status class.",
		}, []string{"method", "class"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "chefcircle",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chefcircle",
			Subsystem: "auth",
			Name:      "registrations_total",
			Help:      "Registration attempts by outcome.",
		}, []string{"outcome"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chefcircle",
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(m.httpRequests, m.httpDuration, m.registrations, m.logins)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(method string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, statusClass(status)).Inc()
	m.httpDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func (m *Metrics) Registered()       { m.registrations.WithLabelValues("created").Inc() }
func (m *Metrics) RegisterRejected() { m.registrations.WithLabelValues("rejected").Inc() }
func (m *Metrics) LoginSucceeded()   { m.logins.WithLabelValues("success").Inc() }
func (m *Metrics) LoginFailed()      { m.logins.WithLabelValues("failure").Inc() }
