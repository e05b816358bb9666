package observability

import (
	"net/http"
	"time"

	"bate-papo/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the engine counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	joins           prometheus.Counter
	joinRollbacks   prometheus.Counter
	evictions       prometheus.Counter
	announceFailed  prometheus.Counter
	messagesPosted  *prometheus.CounterVec
	messagesEdited  prometheus.Counter
	messagesDeleted prometheus.Counter
	sweepDuration   prometheus.Histogram
	sweepsSkipped   prometheus.Counter
	workerRestarts  *prometheus.CounterVec
	requests        *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		joins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_participants_joined_total",
			Help: "Participants successfully registered.",
		}),
		joinRollbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_join_rollbacks_total",
			Help: "Joins undone because the entry announcement could not be stored.",
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_participants_evicted_total",
			Help: "Participants removed by the presence sweeper.",
		}),
		announceFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_departure_announcements_failed_total",
			Help: "Evictions whose departure message could not be stored.",
		}),
		messagesPosted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_messages_posted_total",
			Help: "Messages appended to the log, by type.",
		}, []string{"type"}),
		messagesEdited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_messages_edited_total",
			Help: "Messages edited by their author.",
		}),
		messagesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_messages_deleted_total",
			Help: "Messages deleted by their author.",
		}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "chat_sweep_duration_seconds",
			Help:    "Duration of one presence sweep.",
			Buckets: prometheus.DefBuckets,
		}),
		sweepsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_sweeps_skipped_total",
			Help: "Ticks dropped because the previous sweep was still running.",
		}),
		workerRestarts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_worker_restarts_total",
			Help: "Supervised worker restarts after an error or a panic.",
		}, []string{"worker"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
	}
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.joins, m.joinRollbacks, m.evictions, m.announceFailed,
		m.messagesPosted, m.messagesEdited, m.messagesDeleted,
		m.sweepDuration, m.sweepsSkipped, m.workerRestarts, m.requests,
	)
	return m
}

// Handler exposes the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry gives tests access to the gathered values.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) IncJoin() {
	if m != nil {
		m.joins.Inc()
	}
}

func (m *Metrics) IncJoinRollback() {
	if m != nil {
		m.joinRollbacks.Inc()
	}
}

func (m *Metrics) IncEviction() {
	if m != nil {
		m.evictions.Inc()
	}
}

func (m *Metrics) IncAnnounceFailed() {
	if m != nil {
		m.announceFailed.Inc()
	}
}

func (m *Metrics) IncPosted(kind domain.Kind) {
	if m != nil {
		m.messagesPosted.WithLabelValues(string(kind)).Inc()
	}
}

func (m *Metrics) IncEdited() {
	if m != nil {
		m.messagesEdited.Inc()
	}
}

func (m *Metrics) IncDeleted() {
	if m != nil {
		m.messagesDeleted.Inc()
	}
}

func (m *Metrics) ObserveSweep(d time.Duration) {
	if m != nil {
		m.sweepDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) IncSweepSkipped() {
	if m != nil {
		m.sweepsSkipped.Inc()
	}
}

func (m *Metrics) IncWorkerRestart(worker string) {
	if m != nil {
		m.workerRestarts.WithLabelValues(worker).Inc()
	}
}

func (m *Metrics) IncRequest(route, code string) {
	if m != nil {
		m.requests.WithLabelValues(route, code).Inc()
	}
}
