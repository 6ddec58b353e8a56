// Package metrics exposes the Prometheus collectors shared by handlers and services.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 聚合服务暴露的全部指标。
type Metrics struct {
	registry *prometheus.Registry

	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	llmRequests        *prometheus.CounterVec
	llmDuration        *prometheus.HistogramVec
	turns              *prometheus.CounterVec
	visionFallbacks    prometheus.Counter
	interviewsFinished prometheus.Counter
	profilesCreated    prometheus.Counter
	profileFormatFails prometheus.Counter
}

// New 创建独立的 registry，避免测试之间共享全局状态。
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cinematic_mirror",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cinematic_mirror",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		llmRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cinematic_mirror",
			Name:      "llm_requests_total",
			Help:      "Chat-model calls by provider and outcome.",
		}, []string{"provider", "outcome"}),
		llmDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cinematic_mirror",
			Name:      "llm_request_duration_seconds",
			Help:      "Chat-model call latency.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		}, []string{"provider"}),
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cinematic_mirror",
			Name:      "conversation_turns_total",
			Help:      "Completed user turns by conversation kind.",
		}, []string{"kind"}),
		visionFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cinematic_mirror",
			Name:      "vision_fallbacks_total",
			Help:      "Video-chat turns retried as text-only after the vision call failed.",
		}),
		interviewsFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cinematic_mirror",
			Name:      "interviews_finished_total",
			Help:      "Interviews that reached a terminal turn.",
		}),
		profilesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cinematic_mirror",
			Name:      "profiles_created_total",
			Help:      "Personality profiles persisted.",
		}),
		profileFormatFails: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cinematic_mirror",
			Name:      "profile_format_errors_total",
			Help:      "Profile generations rejected because the model output was not usable JSON.",
		}),
	}

	reg.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.llmRequests,
		m.llmDuration,
		m.turns,
		m.visionFallbacks,
		m.interviewsFinished,
		m.profilesCreated,
		m.profileFormatFails,
	)
	return m
}

// Handler 返回 /metrics 的 HTTP 处理器。
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveLLM 记录一次模型调用。
func (m *Metrics) ObserveLLM(provider string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.llmRequests.WithLabelValues(provider, outcome).Inc()
	m.llmDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// TurnCompleted counts one user turn of the given conversation kind.
func (m *Metrics) TurnCompleted(kind string) {
	if m == nil {
		return
	}
	m.turns.WithLabelValues(kind).Inc()
}

// VisionFallback counts a video-chat turn that fell back to text-only.
func (m *Metrics) VisionFallback() {
	if m == nil {
		return
	}
	m.visionFallbacks.Inc()
}

// InterviewFinished counts an interview reaching its final turn.
func (m *Metrics) InterviewFinished() {
	if m == nil {
		return
	}
	m.interviewsFinished.Inc()
}

// ProfileCreated counts a persisted profile.
func (m *Metrics) ProfileCreated() {
	if m == nil {
		return
	}
	m.profilesCreated.Inc()
}

// ProfileFormatFailed counts a rejected profile generation.
func (m *Metrics) ProfileFormatFailed() {
	if m == nil {
		return
	}
	m.profileFormatFails.Inc()
}

// Middleware records request counts keyed by the chi route pattern so that
// path parameters do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
