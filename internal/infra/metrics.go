package infra

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/s21platform/group-chat-service/internal/model"
	"github.com/s21platform/group-chat-service/internal/pkg/apperr"
	"github.com/s21platform/group-chat-service/internal/registry"
)

const (
	namespace     = "group_chat"
	windowBuckets = 60
)

// Metrics exports Prometheus collectors and keeps a one-minute rolling
// error rate for the health endpoint.
type Metrics struct {
	requests   *prometheus.CounterVec
	errors     *prometheus.CounterVec
	deliveries *prometheus.CounterVec
	queueDepth prometheus.Gauge

	mu      sync.Mutex
	now     func() time.Time
	buckets [windowBuckets]bucket
}

type bucket struct {
	second   int64
	total    int
	failures int
}

func NewMetrics(reg prometheus.Registerer, stats func() registry.Stats) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Handled REST requests and websocket commands by surface.",
		}, []string{"surface"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Failed requests by error kind.",
		}, []string{"surface", "kind"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Closed offline delivery records by final status.",
		}, []string{"status"}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "delivery_queue_depth",
			Help:      "Pending offline delivery records.",
		}),
		now: time.Now,
	}

	reg.MustRegister(m.requests, m.errors, m.deliveries, m.queueDepth)

	if stats != nil {
		reg.MustRegister(
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "live_connections",
				Help:      "Open live sessions.",
			}, func() float64 { return float64(stats().Connections) }),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "online_users",
				Help:      "Identities with at least one live session.",
			}, func() float64 { return float64(stats().Users) }),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "room_subscriptions",
				Help:      "Room subscriptions across all sessions.",
			}, func() float64 {
				total := 0
				for _, n := range stats().Rooms {
					total += n
				}
				return float64(total)
			}),
		)
	}
	return m
}

// Observe records the outcome of one request on surface. Only transient
// and fatal failures count against the error rate.
func (m *Metrics) Observe(surface string, kind apperr.Kind) {
	m.requests.WithLabelValues(surface).Inc()
	if kind != "" {
		m.errors.WithLabelValues(surface, string(kind)).Inc()
	}
	m.record(kind == apperr.KindTransient || kind == apperr.KindFatal)
}

func (m *Metrics) AddDeliveries(status model.DeliveryStatus, n int) {
	if n > 0 {
		m.deliveries.WithLabelValues(string(status)).Add(float64(n))
	}
}

func (m *Metrics) SetQueueDepth(n int) {
	m.queueDepth.Set(float64(n))
}

func (m *Metrics) record(failed bool) {
	sec := m.now().Unix()
	m.mu.Lock()
	defer m.mu.Unlock()

	b := &m.buckets[sec%windowBuckets]
	if b.second != sec {
		*b = bucket{second: sec}
	}
	b.total++
	if failed {
		b.failures++
	}
}

// ErrorRate is the share of failed requests over the last minute.
func (m *Metrics) ErrorRate() float64 {
	sec := m.now().Unix()
	m.mu.Lock()
	defer m.mu.Unlock()

	total, failures := 0, 0
	for _, b := range m.buckets {
		if sec-b.second < windowBuckets {
			total += b.total
			failures += b.failures
		}
	}
	if total == 0 {
		return 0
	}
	return float64(failures) / float64(total)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func MetricsHTTP(next http.Handler, m *Metrics) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.Observe("rest", kindOfStatus(rec.status))
	})
}

func kindOfStatus(status int) apperr.Kind {
	switch {
	case status < http.StatusBadRequest:
		return ""
	case status == http.StatusUnauthorized:
		return apperr.KindAuth
	case status == http.StatusForbidden:
		return apperr.KindForbidden
	case status == http.StatusNotFound:
		return apperr.KindNotFound
	case status == http.StatusTooManyRequests:
		return apperr.KindRateLimited
	case status == http.StatusServiceUnavailable:
		return apperr.KindTransient
	case status < http.StatusInternalServerError:
		return apperr.KindValidation
	default:
		return apperr.KindFatal
	}
}
