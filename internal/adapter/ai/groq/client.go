// Package groq implements the hosted-API transport over Groq's
// OpenAI-compatible chat completions endpoint.
package groq

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/ai"
	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/observability"
	"github.com/fairyhunter13/ai-mock-interview/internal/config"
	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
)

// Provider is the metrics and log label of this transport.
const Provider = "groq"

// Client implements domain.Transport with a single chat completion per call.
type Client struct {
	api         *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// New constructs a Groq client from config. The API key is required by the
// caller; see app.NewAIBackend.
func New(cfg config.Config) *Client {
	oc := openai.DefaultConfig(cfg.GroqAPIKey)
	oc.BaseURL = strings.TrimRight(cfg.GroqBaseURL, "/")
	oc.HTTPClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	return &Client{
		api:         openai.NewClientWithConfig(oc),
		model:       cfg.GroqModel,
		temperature: cfg.AITemperature,
		maxTokens:   cfg.AIMaxTokens,
	}
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// GenerateText sends system and user messages and returns the first choice.
func (c *Client) GenerateText(ctx domain.Context, p domain.Prompt, timeout time.Duration) (domain.RawModelResponse, error) {
	out := domain.RawModelResponse{Model: c.model, Provider: Provider}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if p.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: p.System})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: p.User})

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.tokenBudget(p.MaxTokens),
	})
	out.Elapsed = time.Since(start)
	observability.ObserveAIRequest(Provider, "generate", out.Elapsed)
	if err != nil {
		return c.fail(out, classify(err))
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return c.fail(out, ai.EmptyError("groq.generate"))
	}
	if resp.Model != "" {
		out.Model = resp.Model
	}
	out.Text = resp.Choices[0].Message.Content
	out.ErrKind = domain.TransportErrNone
	slog.Debug("ai provider call completed",
		slog.String("provider", Provider),
		slog.String("task", string(p.Task)),
		slog.String("model", out.Model),
		slog.Duration("elapsed", out.Elapsed),
		slog.Int("prompt_tokens", resp.Usage.PromptTokens),
		slog.Int("completion_tokens", resp.Usage.CompletionTokens))
	return out, nil
}

// ProbeAvailability lists models; success within timeout means available.
func (c *Client) ProbeAvailability(ctx domain.Context, timeout time.Duration) bool {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	start := time.Now()
	_, err := c.api.ListModels(ctx)
	observability.ObserveAIRequest(Provider, "probe", time.Since(start))
	if err != nil {
		slog.Debug("ai provider probe failed", slog.String("provider", Provider), slog.Any("error", err))
	}
	observability.RecordAvailability(Provider, err == nil)
	return err == nil
}

// tokenBudget caps a task's requested completion size at AI_MAX_TOKENS.
func (c *Client) tokenBudget(requested int) int {
	if requested > 0 && (c.maxTokens <= 0 || requested < c.maxTokens) {
		return requested
	}
	return c.maxTokens
}

// classify maps go-openai errors onto the upstream sentinels.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		slog.Warn("ai provider non-2xx",
			slog.String("provider", Provider),
			slog.String("op", "generate"),
			slog.Int("status", apiErr.HTTPStatusCode),
			slog.String("message", apiErr.Message))
		return ai.StatusError("groq.generate", apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		slog.Warn("ai provider non-2xx",
			slog.String("provider", Provider),
			slog.String("op", "generate"),
			slog.Int("status", reqErr.HTTPStatusCode))
		return ai.StatusError("groq.generate", reqErr.HTTPStatusCode)
	}
	return ai.WrapTransportError("groq.generate", err)
}

func (c *Client) fail(out domain.RawModelResponse, err error) (domain.RawModelResponse, error) {
	out.ErrKind = domain.ClassifyTransportError(err)
	observability.RecordTransportError(Provider, string(out.ErrKind))
	return out, err
}
