package httpserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/fairyhunter13/ai-mock-interview/internal/config"
	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
)

// Interviewer is the engine surface the handlers need.
type Interviewer interface {
	ParseResume(ctx domain.Context, text string) domain.ParsedResume
	GenerateQuestions(ctx domain.Context, jobDescription, role string, skills []string) domain.GeneratedQuestionSet
	GenerateQuestionsFromContext(ctx domain.Context, jobDescription, role, resume string, skills []string) domain.GeneratedQuestionSet
	EvaluateAnswer(ctx domain.Context, req domain.EvaluationRequest) domain.AnswerEvaluation
	Available(ctx domain.Context) bool
}

// ReadinessCheck is one named dependency probe used by /readyz.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Server aggregates handler dependencies.
type Server struct {
	Cfg       config.Config
	Interview Interviewer
	Checks    []ReadinessCheck
}

// NewServer constructs an HTTP server with all handlers and checks wired.
func NewServer(cfg config.Config, interview Interviewer, checks ...ReadinessCheck) *Server {
	return &Server{Cfg: cfg, Interview: interview, Checks: checks}
}

func (s *Server) maxBody() int64 {
	if s.Cfg.MaxBodyKB > 0 {
		return s.Cfg.MaxBodyKB * 1024
	}
	return 1 << 20
}

// notAcceptable rejects requests that cannot take a JSON answer.
func notAcceptable(w http.ResponseWriter, r *http.Request) bool {
	a := r.Header.Get("Accept")
	if a == "" || strings.Contains(a, "*/*") || strings.Contains(a, "application/json") {
		return false
	}
	writeJSON(w, http.StatusNotAcceptable, errorEnvelope{Error: apiError{
		Code:    "INVALID_ARGUMENT",
		Message: "not acceptable",
		Details: map[string]any{"accept": a},
	}})
	return true
}

// ParseResumeHandler extracts structured data from resume text.
func (s *Server) ParseResumeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if notAcceptable(w, r) {
			return
		}
		var req ParseResumeRequest
		if details, err := decodeJSON(w, r, s.maxBody(), &req); err != nil {
			writeError(w, r, err, details)
			return
		}
		writeJSON(w, http.StatusOK, s.Interview.ParseResume(r.Context(), SanitizeString(req.Text)))
	}
}

// QuestionsHandler generates the ten interview questions.
func (s *Server) QuestionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if notAcceptable(w, r) {
			return
		}
		var req QuestionsRequest
		if details, err := decodeJSON(w, r, s.maxBody(), &req); err != nil {
			writeError(w, r, err, details)
			return
		}
		jd, role := SanitizeString(req.JobDescription), SanitizeString(req.Role)
		skills := sanitizeSkills(req.Skills)
		var set domain.GeneratedQuestionSet
		if resume := SanitizeString(req.ResumeText); resume != "" {
			set = s.Interview.GenerateQuestionsFromContext(r.Context(), jd, role, resume, skills)
		} else {
			set = s.Interview.GenerateQuestions(r.Context(), jd, role, skills)
		}
		writeJSON(w, http.StatusOK, set)
	}
}

// EvaluateAnswerHandler scores a candidate answer.
func (s *Server) EvaluateAnswerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if notAcceptable(w, r) {
			return
		}
		var req EvaluateAnswerRequest
		if details, err := decodeJSON(w, r, s.maxBody(), &req); err != nil {
			writeError(w, r, err, details)
			return
		}
		out := s.Interview.EvaluateAnswer(r.Context(), domain.EvaluationRequest{
			Question: SanitizeString(req.Question),
			Answer:   SanitizeString(req.Answer),
			Role:     SanitizeString(req.Role),
		})
		writeJSON(w, http.StatusOK, out)
	}
}

// AIStatusResponse is the body of GET /v1/ai/status.
type AIStatusResponse struct {
	Available bool   `json:"available"`
	Provider  string `json:"provider"`
	Model     string `json:"model"`
}

// AIStatusHandler reports whether the model backend answers its probe. It is
// always 200; callers build any "AI unavailable" messaging from the body.
func (s *Server) AIStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, AIStatusResponse{
			Available: s.Interview.Available(r.Context()),
			Provider:  s.Cfg.AIProvider,
			Model:     s.Cfg.ActiveModel(),
		})
	}
}

// HealthzHandler is a liveness probe.
func HealthzHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ReadyzHandler runs every readiness check and answers 503 if any fails.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Details string `json:"details,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		timeout := s.Cfg.AIProbeTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		checks := make([]check, 0, len(s.Checks))
		ok := true
		for _, c := range s.Checks {
			if err := c.Check(ctx); err != nil {
				checks = append(checks, check{Name: c.Name, OK: false, Details: err.Error()})
				ok = false
				continue
			}
			checks = append(checks, check{Name: c.Name, OK: true})
		}
		st := http.StatusOK
		if !ok {
			st = http.StatusServiceUnavailable
		}
		writeJSON(w, st, map[string]any{"checks": checks})
	}
}
