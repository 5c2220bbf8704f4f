package api

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_http_requests_total",
		Help: "HTTP requests by route pattern, method and status.",
	}, []string{"route", "method", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "portfolio_http_request_duration_seconds",
		Help:    "HTTP request latency by route pattern and method.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	pageViewsTracked = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_page_views_tracked_total",
		Help: "Page view tracking requests by outcome.",
	}, []string{"tracked"})

	chatAnswers = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_chat_answers_total",
		Help: "Chatbot answers by source.",
	}, []string{"source"})

	registerMetricsOnce sync.Once
)

// RegisterMetrics adds the API collectors to the default registry
func RegisterMetrics() {
	registerMetricsOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, pageViewsTracked, chatAnswers)
	})
}

func metricsHandler() http.Handler {
	return promhttp.Handler()
}

// metricsMiddleware records request counts and latency labelled by the chi
// route pattern, which keeps ids out of the label values.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		srw := &statusResponseWriter{ResponseWriter: w, status: 200}

		next.ServeHTTP(srw, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(srw.status)).Inc()
		httpDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
