// Package ollama implements the local-model transport backed by an Ollama server.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/ai"
	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/observability"
	"github.com/fairyhunter13/ai-mock-interview/internal/config"
	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
)

// Provider is the metrics and log label of this transport.
const Provider = "ollama"

const (
	maxBodyBytes   = 4 << 20
	maxSnippetSize = 512
)

// Client implements domain.Transport against /api/generate and /api/tags.
// It performs exactly one HTTP attempt per call.
type Client struct {
	baseURL     string
	model       string
	temperature float32
	numPredict  int
	hc          *http.Client
}

type generateRequest struct {
	Model   string          `json:"model"`
	System  string          `json:"system,omitempty"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float32 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// New constructs an Ollama client. Deadlines come from the per-call timeout,
// so the http.Client itself has none.
func New(cfg config.Config) *Client {
	return &Client{
		baseURL:     strings.TrimRight(cfg.OllamaHost, "/"),
		model:       cfg.OllamaModel,
		temperature: cfg.AITemperature,
		numPredict:  cfg.OllamaNumPredict,
		hc:          &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// GenerateText sends a non-streaming generate request.
func (c *Client) GenerateText(ctx domain.Context, p domain.Prompt, timeout time.Duration) (domain.RawModelResponse, error) {
	out := domain.RawModelResponse{Model: c.model, Provider: Provider}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	body, err := json.Marshal(generateRequest{
		Model:   c.model,
		System:  p.System,
		Prompt:  p.User,
		Stream:  false,
		Options: generateOptions{Temperature: c.temperature, NumPredict: c.tokenBudget(p.MaxTokens)},
	})
	if err != nil {
		return c.fail(out, ai.WrapTransportError("ollama.generate: marshal", err))
	}
	endpoint := c.baseURL + "/api/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return c.fail(out, ai.WrapTransportError("ollama.generate: request", err))
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.hc.Do(req)
	out.Elapsed = time.Since(start)
	observability.ObserveAIRequest(Provider, "generate", out.Elapsed)
	if err != nil {
		return c.fail(out, ai.WrapTransportError("ollama.generate", err))
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return c.fail(out, ai.WrapTransportError("ollama.generate: read body", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Warn("ai provider non-2xx",
			slog.String("provider", Provider),
			slog.String("op", "generate"),
			slog.Int("status", resp.StatusCode),
			slog.String("model", c.model),
			slog.String("endpoint", endpoint),
			slog.String("body", snippet(raw)))
		return c.fail(out, ai.StatusError("ollama.generate", resp.StatusCode))
	}

	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		slog.Error("ai provider decode error",
			slog.String("provider", Provider),
			slog.String("op", "generate"),
			slog.String("model", c.model),
			slog.Any("error", err))
		return c.fail(out, ai.EmptyError("ollama.generate: undecodable body"))
	}
	if strings.TrimSpace(gr.Response) == "" {
		return c.fail(out, ai.EmptyError("ollama.generate"))
	}
	if gr.Model != "" {
		out.Model = gr.Model
	}
	out.Text = gr.Response
	out.ErrKind = domain.TransportErrNone
	slog.Debug("ai provider call completed",
		slog.String("provider", Provider),
		slog.String("task", string(p.Task)),
		slog.String("model", out.Model),
		slog.Duration("elapsed", out.Elapsed),
		slog.Int("response_len", len(out.Text)))
	return out, nil
}

// ProbeAvailability lists the local models; any 2xx within timeout means available.
func (c *Client) ProbeAvailability(ctx domain.Context, timeout time.Duration) bool {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	start := time.Now()
	resp, err := c.hc.Do(req)
	observability.ObserveAIRequest(Provider, "probe", time.Since(start))
	ok := err == nil && resp.StatusCode >= 200 && resp.StatusCode < 300
	if err == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		_ = resp.Body.Close()
	} else {
		slog.Debug("ai provider probe failed", slog.String("provider", Provider), slog.Any("error", err))
	}
	observability.RecordAvailability(Provider, ok)
	return ok
}

// tokenBudget caps a task's requested completion size at num_predict.
func (c *Client) tokenBudget(requested int) int {
	if requested > 0 && (c.numPredict <= 0 || requested < c.numPredict) {
		return requested
	}
	return c.numPredict
}

func (c *Client) fail(out domain.RawModelResponse, err error) (domain.RawModelResponse, error) {
	out.ErrKind = domain.ClassifyTransportError(err)
	observability.RecordTransportError(Provider, string(out.ErrKind))
	return out, err
}

func snippet(b []byte) string {
	if len(b) > maxSnippetSize {
		b = b[:maxSnippetSize]
	}
	return string(b)
}
