// Package usecase contains application business logic services.
package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/ai"
	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/ai/tokencount"
	aiobs "github.com/fairyhunter13/ai-mock-interview/internal/adapter/observability"
	"github.com/fairyhunter13/ai-mock-interview/internal/config"
	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
	"github.com/fairyhunter13/ai-mock-interview/internal/observability"
)

// Pipeline stages.
const (
	stageBuildPrompt   = "build_prompt"
	stageCallTransport = "call_transport"
	stageSanitize      = "sanitize"
	stageDecode        = "decode"
	stageNormalize     = "normalize"
)

// Fallback reasons, also used as the reason label of ai_task_outcomes_total.
const (
	ReasonTransportTimeout     = "transport_timeout"
	ReasonTransportUnavailable = "transport_unavailable"
	ReasonTransportStatus      = "transport_status"
	ReasonTransportEmpty       = "transport_empty"
	ReasonTransportError       = "transport_error"
	ReasonNoJSON               = "no_json"
	ReasonRefusal              = "refusal"
	ReasonNotObject            = "not_object"
	ReasonInsufficient         = "insufficient"
	ReasonEmptyInput           = "empty_input"
)

const (
	outcomeSuccess  = "success"
	outcomeFallback = "fallback"
)

// failure describes where a task left the happy path.
type failure struct {
	stage  string
	reason string
	err    error
}

// InterviewService turns interview tasks into model calls and always returns a
// usable typed result. It holds no per-call state and is safe for concurrent use.
type InterviewService struct {
	transport domain.Transport
	policy    config.Policy
	bank      ai.QuestionBank
	tokens    *tokencount.Counter
	tracer    trace.Tracer
}

// Option customizes an InterviewService.
type Option func(*InterviewService)

// WithQuestionBank replaces the embedded fallback question bank.
func WithQuestionBank(b ai.QuestionBank) Option {
	return func(s *InterviewService) { s.bank = b }
}

// WithTokenCounter sets the counter used for prompt size logging.
func WithTokenCounter(c *tokencount.Counter) Option {
	return func(s *InterviewService) {
		if c != nil {
			s.tokens = c
		}
	}
}

// NewInterviewService constructs the engine around a single transport.
func NewInterviewService(t domain.Transport, p config.Policy, opts ...Option) *InterviewService {
	s := &InterviewService{
		transport: t,
		policy:    p,
		bank:      ai.DefaultQuestionBank(),
		tokens:    tokencount.DefaultCounter,
		tracer:    otel.Tracer("usecase.interview"),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Available probes the backend with the probe timeout.
func (s *InterviewService) Available(ctx domain.Context) bool {
	if s.transport == nil {
		return false
	}
	ctx, span := s.tracer.Start(ctx, "interview.probe")
	defer span.End()
	ok := s.transport.ProbeAvailability(ctx, s.policy.ProbeTimeout)
	span.SetAttributes(attribute.Bool("ai.available", ok))
	return ok
}

// ParseResume extracts contact details, skills and records from resume text.
// Empty text yields the empty resume without a model call.
func (s *InterviewService) ParseResume(ctx domain.Context, text string) domain.ParsedResume {
	const task = domain.TaskResumeParse
	ctx, span := s.tracer.Start(ctx, "interview."+string(task))
	defer span.End()
	lg := observability.TaskLogger(ctx, string(task))

	text = ai.CollapseWhitespace(text)
	if text == "" {
		s.fallback(ctx, span, lg, task, failure{stage: stageBuildPrompt, reason: ReasonEmptyInput})
		return ai.FallbackResume()
	}

	obj, f := s.runObject(ctx, lg, ai.BuildResumePrompt(text), s.policy.GenerateTimeout)
	if f != nil {
		s.fallback(ctx, span, lg, task, *f)
		return ai.FallbackResume()
	}
	resume := ai.NormalizeResume(obj, s.policy.MaxSkills)
	s.success(span, lg, task, slog.Int("skills", len(resume.Skills)))
	return resume
}

// GenerateQuestions produces five technical and five behavioral questions for a role.
func (s *InterviewService) GenerateQuestions(ctx domain.Context, jobDescription, role string, skills []string) domain.GeneratedQuestionSet {
	p := ai.BuildQuestionsPrompt(jobDescription, role, skills)
	return s.questions(ctx, p, role, skills)
}

// GenerateQuestionsFromContext is GenerateQuestions with the candidate's resume
// text added to the prompt.
func (s *InterviewService) GenerateQuestionsFromContext(ctx domain.Context, jobDescription, role, resume string, skills []string) domain.GeneratedQuestionSet {
	p := ai.BuildContextQuestionsPrompt(jobDescription, role, resume, skills)
	return s.questions(ctx, p, role, skills)
}

func (s *InterviewService) questions(ctx domain.Context, p domain.Prompt, role string, skills []string) domain.GeneratedQuestionSet {
	const task = domain.TaskQuestionGeneration
	ctx, span := s.tracer.Start(ctx, "interview."+string(task))
	defer span.End()
	lg := observability.TaskLogger(ctx, string(task))

	fallback := func(f failure) domain.GeneratedQuestionSet {
		s.fallback(ctx, span, lg, task, f)
		return domain.GeneratedQuestionSet{Questions: s.bank.Questions(role, skills), Source: domain.SourceFallback}
	}

	obj, f := s.runObject(ctx, lg, p, s.policy.GenerateTimeout)
	if f != nil {
		return fallback(*f)
	}
	qs, ok := ai.NormalizeQuestions(obj["technical"], obj["behavioral"])
	if !ok {
		return fallback(failure{stage: stageNormalize, reason: ReasonInsufficient})
	}
	s.success(span, lg, task)
	return domain.GeneratedQuestionSet{Questions: qs, Source: domain.SourceModel}
}

// EvaluateAnswer scores an answer. Missing fields in an otherwise usable model
// answer take defaults; an unusable answer yields the degraded evaluation.
func (s *InterviewService) EvaluateAnswer(ctx domain.Context, req domain.EvaluationRequest) domain.AnswerEvaluation {
	const task = domain.TaskAnswerEvaluation
	ctx, span := s.tracer.Start(ctx, "interview."+string(task))
	defer span.End()
	lg := observability.TaskLogger(ctx, string(task))

	if strings.TrimSpace(req.Answer) == "" {
		s.fallback(ctx, span, lg, task, failure{stage: stageBuildPrompt, reason: ReasonEmptyInput})
		out := ai.NoAnswerEvaluation()
		aiobs.ObserveEvaluationScore(out.Score)
		return out
	}

	obj, f := s.runObject(ctx, lg, ai.BuildEvaluationPrompt(req.Question, req.Answer, req.Role), s.policy.EvaluateTimeout)
	if f != nil {
		s.fallback(ctx, span, lg, task, *f)
		out := ai.FallbackEvaluation(s.policy.FallbackScore)
		aiobs.ObserveEvaluationScore(out.Score)
		return out
	}

	feedback := ai.NormalizeString(obj["feedback"], 0)
	if feedback == "" {
		feedback = ai.DefaultFeedback
	}
	out := domain.AnswerEvaluation{
		Score:         ai.NormalizeScore(obj["score"], s.policy.DefaultScore),
		Feedback:      feedback,
		TopicsToCover: ai.NormalizeTopics(obj["topics_to_cover"]),
	}
	span.SetAttributes(attribute.Int("ai.score", out.Score))
	aiobs.ObserveEvaluationScore(out.Score)
	s.success(span, lg, task, slog.Int("score", out.Score))
	return out
}

// runObject performs call_transport, sanitize and decode for one prompt and
// returns the decoded top-level object.
func (s *InterviewService) runObject(ctx domain.Context, lg *slog.Logger, p domain.Prompt, timeout time.Duration) (map[string]any, *failure) {
	if s.transport == nil {
		return nil, &failure{stage: stageCallTransport, reason: ReasonTransportUnavailable, err: domain.ErrUpstreamUnavailable}
	}
	if lg.Enabled(ctx, slog.LevelDebug) {
		lg.Debug("prompt built",
			slog.Int("prompt_tokens", s.tokens.EstimatePrompt(p, s.policy.Model)),
			slog.Int("max_tokens", p.MaxTokens),
			slog.Duration("timeout", timeout))
	}

	resp, err := s.transport.GenerateText(ctx, p, timeout)
	if err != nil {
		kind := resp.ErrKind
		if kind == "" || kind == domain.TransportErrNone {
			kind = domain.ClassifyTransportError(err)
		}
		return nil, &failure{stage: stageCallTransport, reason: transportReason(kind), err: err}
	}

	block, ok := ai.ExtractJSONBlock(resp.Text)
	if !ok {
		f := &failure{stage: stageSanitize, reason: ReasonNoJSON}
		if r := ai.DetectRefusal(resp.Text); r.IsRefusal {
			f.reason = ReasonRefusal
			lg.Info("model refused", slog.String("refusal_type", r.RefusalType), slog.String("indicator", r.Indicator))
		}
		return nil, f
	}
	v, ok := ai.Decode(block)
	if !ok {
		return nil, &failure{stage: stageDecode, reason: ReasonNoJSON}
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, &failure{stage: stageDecode, reason: ReasonNotObject}
	}
	return obj, nil
}

func transportReason(kind domain.TransportErrorKind) string {
	switch kind {
	case domain.TransportErrTimeout:
		return ReasonTransportTimeout
	case domain.TransportErrUnavailable:
		return ReasonTransportUnavailable
	case domain.TransportErrStatus:
		return ReasonTransportStatus
	case domain.TransportErrEmpty:
		return ReasonTransportEmpty
	default:
		return ReasonTransportError
	}
}

func (s *InterviewService) success(span trace.Span, lg *slog.Logger, task domain.Task, attrs ...any) {
	aiobs.RecordTaskOutcome(string(task), outcomeSuccess, "")
	span.SetAttributes(attribute.String("ai.outcome", outcomeSuccess))
	span.SetStatus(codes.Ok, outcomeSuccess)
	lg.Debug("task completed", attrs...)
}

func (s *InterviewService) fallback(ctx context.Context, span trace.Span, lg *slog.Logger, task domain.Task, f failure) {
	aiobs.RecordTaskOutcome(string(task), outcomeFallback, f.reason)
	span.SetAttributes(
		attribute.String("ai.outcome", outcomeFallback),
		attribute.String("ai.fallback.stage", f.stage),
		attribute.String("ai.fallback.reason", f.reason),
	)
	attrs := []any{slog.String("stage", f.stage), slog.String("reason", f.reason)}
	if f.err != nil {
		span.RecordError(f.err)
		attrs = append(attrs, slog.Any("error", f.err))
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		lg.Info("task fallback after caller cancellation", attrs...)
		return
	}
	lg.Warn("task fallback", attrs...)
}
