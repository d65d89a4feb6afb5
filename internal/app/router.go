package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpserver "github.com/fairyhunter13/ai-mock-interview/internal/adapter/httpserver"
	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/observability"
	"github.com/fairyhunter13/ai-mock-interview/internal/config"
)

// ParseOrigins splits a comma-separated origin list, trimming spaces.
// An empty list means ["*"].
func ParseOrigins(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return []string{"*"}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// requestTimeout bounds a whole request. It leaves room for the slowest
// engine task to time out and still write its degraded answer.
func requestTimeout(cfg config.Config) time.Duration {
	slowest := cfg.AIEvaluateTimeout
	if cfg.AIGenerateTimeout > slowest {
		slowest = cfg.AIGenerateTimeout
	}
	return slowest + 10*time.Second
}

// BuildRouter constructs the HTTP handler with all middlewares and routes.
func BuildRouter(cfg config.Config, srv *httpserver.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(httpserver.Recoverer())
	r.Use(httpserver.RequestID())
	r.Use(httpserver.TraceMiddleware)
	r.Use(httpserver.AccessLog())
	r.Use(observability.HTTPMetricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   ParseOrigins(cfg.CORSAllowOrigins),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", httpserver.RequestIDHeader},
		ExposedHeaders:   []string{httpserver.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/v1", func(v1 chi.Router) {
		v1.Group(func(wr chi.Router) {
			if cfg.RateLimitPerMin > 0 {
				wr.Use(httprate.LimitByIP(cfg.RateLimitPerMin, time.Minute))
			}
			wr.Use(httpserver.TimeoutMiddleware(requestTimeout(cfg)))
			wr.Post("/resume/parse", srv.ParseResumeHandler())
			wr.Post("/questions", srv.QuestionsHandler())
			wr.Post("/answers/evaluate", srv.EvaluateAnswerHandler())
		})
		v1.Get("/ai/status", srv.AIStatusHandler())
	})

	r.Get("/healthz", httpserver.HealthzHandler)
	r.Get("/readyz", srv.ReadyzHandler())
	r.Handle("/metrics", promhttp.Handler())

	return httpserver.SecurityHeaders(r)
}
