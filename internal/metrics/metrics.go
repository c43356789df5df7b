package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "teamchat"

// Metrics owns a private registry. All recording methods are safe on a nil receiver
// so components can run without metrics in tests.
type Metrics struct {
	registry    *prometheus.Registry
	httpReqCnt  *prometheus.CounterVec
	httpDur     *prometheus.HistogramVec
	httpInfl    prometheus.Gauge
	wsConns     prometheus.Gauge
	wsEvents    *prometheus.CounterVec
	wsDropped   prometheus.Counter
	msgSent     *prometheus.CounterVec
	accessDenyC *prometheus.CounterVec
}

func New() *Metrics {
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	httpReqCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "Total number of HTTP requests"}, []string{"method", "route", "status"})
	httpDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: "http_request_duration_seconds", Help: "Duration of HTTP requests in seconds", Buckets: prometheus.DefBuckets}, []string{"method", "route", "status"})
	httpInfl := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "http_requests_inflight"})
	r.MustRegister(httpReqCnt, httpDur, httpInfl)

	wsConns := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "ws_connections", Help: "Open realtime connections"})
	wsEvents := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "ws_events_total", Help: "Inbound realtime events by type and outcome"}, []string{"type", "outcome"})
	wsDropped := prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "ws_slow_consumers_total", Help: "Connections closed because their send queue was full"})
	r.MustRegister(wsConns, wsEvents, wsDropped)

	msgSent := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "messages_sent_total", Help: "Messages persisted by transport"}, []string{"transport"})
	accessDeny := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "access_denied_total", Help: "Denied group access attempts"}, []string{"action"})
	r.MustRegister(msgSent, accessDeny)

	return &Metrics{
		registry:    r,
		httpReqCnt:  httpReqCnt,
		httpDur:     httpDur,
		httpInfl:    httpInfl,
		wsConns:     wsConns,
		wsEvents:    wsEvents,
		wsDropped:   wsDropped,
		msgSent:     msgSent,
		accessDenyC: accessDeny,
	}
}

func (m *Metrics) ConnOpened() {
	if m == nil {
		return
	}
	m.wsConns.Inc()
}

func (m *Metrics) ConnClosed() {
	if m == nil {
		return
	}
	m.wsConns.Dec()
}

func (m *Metrics) Event(eventType, outcome string) {
	if m == nil {
		return
	}
	m.wsEvents.WithLabelValues(eventType, outcome).Inc()
}

func (m *Metrics) SlowConsumer() {
	if m == nil {
		return
	}
	m.wsDropped.Inc()
}

func (m *Metrics) MessageSent(transport string) {
	if m == nil {
		return
	}
	m.msgSent.WithLabelValues(transport).Inc()
}

func (m *Metrics) AccessDenied(action string) {
	if m == nil {
		return
	}
	m.accessDenyC.WithLabelValues(action).Inc()
}

// Middleware records request count and latency labelled by the chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.httpInfl.Inc()
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		code := strconv.Itoa(status)
		m.httpReqCnt.WithLabelValues(r.Method, route, code).Inc()
		m.httpDur.WithLabelValues(r.Method, route, code).Observe(time.Since(start).Seconds())
		m.httpInfl.Dec()
	})
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
