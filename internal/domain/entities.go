package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrInternal            = errors.New("internal error")
	ErrUpstreamTimeout     = errors.New("upstream timeout")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrUpstreamStatus      = errors.New("upstream status")
	ErrUpstreamEmpty       = errors.New("upstream empty response")
)

// Context is an alias to keep ports readable.
type Context = context.Context

// Task names one of the three AI-backed operations.
type Task string

const (
	TaskResumeParse        Task = "resume_parse"
	TaskQuestionGeneration Task = "question_generation"
	TaskAnswerEvaluation   Task = "answer_evaluation"
)

// Prompt is a fully built request for the model. System may be empty.
type Prompt struct {
	Task      Task
	System    string
	User      string
	MaxTokens int
}

// TransportErrorKind classifies why a transport call did not produce text.
type TransportErrorKind string

const (
	TransportErrNone        TransportErrorKind = "none"
	TransportErrTimeout     TransportErrorKind = "timeout"
	TransportErrUnavailable TransportErrorKind = "unavailable"
	TransportErrStatus      TransportErrorKind = "status"
	TransportErrEmpty       TransportErrorKind = "empty"
	TransportErrUnknown     TransportErrorKind = "unknown"
)

// ClassifyTransportError maps an error returned by a Transport to its kind.
func ClassifyTransportError(err error) TransportErrorKind {
	switch {
	case err == nil:
		return TransportErrNone
	case errors.Is(err, ErrUpstreamTimeout), errors.Is(err, context.DeadlineExceeded):
		return TransportErrTimeout
	case errors.Is(err, ErrUpstreamUnavailable):
		return TransportErrUnavailable
	case errors.Is(err, ErrUpstreamStatus):
		return TransportErrStatus
	case errors.Is(err, ErrUpstreamEmpty):
		return TransportErrEmpty
	default:
		return TransportErrUnknown
	}
}

// RawModelResponse is the opaque text returned by a model plus call metadata.
// It lives for a single request and is discarded after normalization.
type RawModelResponse struct {
	Text     string
	Elapsed  time.Duration
	Model    string
	Provider string
	ErrKind  TransportErrorKind
	// Cached is set when the text was replayed without contacting the provider.
	Cached bool
}

// ParsedResume is the structured view of a resume.
// Invariants: every field is populated with a safe default; slices are never nil.
type ParsedResume struct {
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone"`
	Skills     []string `json:"skills"`
	Experience []any    `json:"experience"`
	Education  []any    `json:"education"`
}

// QuestionType enumerates interview question categories.
type QuestionType string

const (
	QuestionTechnical  QuestionType = "technical"
	QuestionBehavioral QuestionType = "behavioral"
)

// QuestionSource records whether a question set came from the model or the fallback bank.
// Consumers must not depend on it; both sources have the same shape.
type QuestionSource string

const (
	SourceModel    QuestionSource = "model"
	SourceFallback QuestionSource = "fallback"
)

// Question is a single interview question. Order is 1-based.
type Question struct {
	Text  string       `json:"question_text"`
	Type  QuestionType `json:"question_type"`
	Order int          `json:"order"`
}

// QuestionsPerType is the number of questions generated for each QuestionType.
const QuestionsPerType = 5

// GeneratedQuestionSet holds exactly 2*QuestionsPerType questions:
// technical ones (orders 1-5) followed by behavioral ones (orders 6-10).
type GeneratedQuestionSet struct {
	Questions []Question     `json:"questions"`
	Source    QuestionSource `json:"source"`
}

// AnswerEvaluation is the scored assessment of a candidate answer.
// Invariants: Score in [0,10]; Feedback non-empty; TopicsToCover is a flat string.
type AnswerEvaluation struct {
	Score         int    `json:"score"`
	Feedback      string `json:"feedback"`
	TopicsToCover string `json:"topics_to_cover"`
}

// EvaluationRequest is the input of an answer evaluation.
type EvaluationRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Role     string `json:"role"`
}

// Transport (port) is the call mechanism to the LLM backend.
// Implementations perform a single attempt and must honor timeout.
type Transport interface {
	// GenerateText sends the prompt and returns the raw model text. Errors wrap one of the
	// ErrUpstream* sentinels; the returned response carries the matching ErrKind.
	GenerateText(ctx Context, p Prompt, timeout time.Duration) (RawModelResponse, error)
	// ProbeAvailability reports whether the backend answers its status/list endpoint in time.
	ProbeAvailability(ctx Context, timeout time.Duration) bool
}
