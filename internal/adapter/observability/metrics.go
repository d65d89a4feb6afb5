package observability

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"route", "method"},
	)

	AIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_requests_total",
			Help: "Total number of AI requests by provider and operation",
		},
		[]string{"provider", "operation"},
	)
	AIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_request_duration_seconds",
			Help:    "AI request duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30, 60, 90},
		},
		[]string{"provider", "operation"},
	)
	AITransportErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_transport_errors_total",
			Help: "Transport failures by provider and kind",
		},
		[]string{"provider", "kind"},
	)
	AIProviderAvailable = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ai_provider_available",
			Help: "Result of the last availability probe (1 available, 0 not)",
		},
		[]string{"provider"},
	)

	// Task outcomes: outcome is success or fallback, reason names the failed stage.
	AITaskOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_task_outcomes_total",
			Help: "Interview task outcomes by task, outcome and reason",
		},
		[]string{"task", "outcome", "reason"},
	)
	AIEvaluationScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ai_evaluation_score",
			Help:    "Distribution of answer scores ([0,10])",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		},
	)

	AICacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_cache_lookups_total",
			Help: "Model response cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)
	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ai_circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 open, 2 half-open)",
		},
		[]string{"name"},
	)
	CircuitBreakerRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_circuit_breaker_rejected_total",
			Help: "Calls short-circuited by an open breaker",
		},
		[]string{"name"},
	)
	AIQuotaRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_quota_rejected_total",
			Help: "Model calls refused because the shared provider quota was spent",
		},
		[]string{"key"},
	)
)

func InitMetrics() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(AIRequestsTotal)
	prometheus.MustRegister(AIRequestDuration)
	prometheus.MustRegister(AITransportErrorsTotal)
	prometheus.MustRegister(AIProviderAvailable)
	prometheus.MustRegister(AITaskOutcomesTotal)
	prometheus.MustRegister(AIEvaluationScore)
	prometheus.MustRegister(AICacheLookupsTotal)
	prometheus.MustRegister(CircuitBreakerState)
	prometheus.MustRegister(CircuitBreakerRejectedTotal)
	prometheus.MustRegister(AIQuotaRejectedTotal)
}

// HTTPMetricsMiddleware records Prometheus metrics for each request.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		dur := time.Since(start).Seconds()
		// Route pattern may be unavailable outside chi router; guard nil
		var route string
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if route == "" {
			route = r.URL.Path
		}
		HTTPRequestsTotal.WithLabelValues(route, r.Method, http.StatusText(ww.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(dur)
	})
}

// ObserveAIRequest counts one transport call and its latency.
func ObserveAIRequest(provider, operation string, elapsed time.Duration) {
	AIRequestsTotal.WithLabelValues(provider, operation).Inc()
	AIRequestDuration.WithLabelValues(provider, operation).Observe(elapsed.Seconds())
}

// RecordTransportError counts a failed transport call by kind.
func RecordTransportError(provider, kind string) {
	AITransportErrorsTotal.WithLabelValues(provider, kind).Inc()
}

// RecordAvailability stores the last probe result.
func RecordAvailability(provider string, ok bool) {
	v := 0.0
	if ok {
		v = 1
	}
	AIProviderAvailable.WithLabelValues(provider).Set(v)
}

// RecordTaskOutcome counts a finished interview task.
func RecordTaskOutcome(task, outcome, reason string) {
	AITaskOutcomesTotal.WithLabelValues(task, outcome, reason).Inc()
}

// ObserveEvaluationScore records a final answer score.
func ObserveEvaluationScore(score int) {
	if score >= 0 && score <= 10 {
		AIEvaluationScore.Observe(float64(score))
	}
}

// RecordCacheLookup counts a response cache lookup.
func RecordCacheLookup(result string) {
	AICacheLookupsTotal.WithLabelValues(result).Inc()
}

// RecordCircuitBreakerState publishes a breaker state transition.
func RecordCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordCircuitBreakerRejection counts a short-circuited call.
func RecordCircuitBreakerRejection(name string) {
	CircuitBreakerRejectedTotal.WithLabelValues(name).Inc()
}

// RecordQuotaRejection counts a call refused by the provider quota.
func RecordQuotaRejection(key string) {
	AIQuotaRejectedTotal.WithLabelValues(key).Inc()
}
