// Package tokencount estimates prompt sizes for the interview tasks.
//
// It uses tiktoken-go with the offline BPE loader so counting never reaches
// the network. Local models do not share OpenAI's tokenizer; cl100k_base is
// used as an approximation for every model family.
package tokencount

import (
	"log/slog"
	"strings"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"

	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
)

const defaultEncoding = "cl100k_base"

var loaderOnce sync.Once

// Counter provides thread-safe token counting.
type Counter struct {
	encodingCache map[string]*tiktoken.Tiktoken
	mu            sync.RWMutex
}

// NewCounter creates a new token counter instance.
func NewCounter() *Counter {
	loaderOnce.Do(func() { tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader()) })
	return &Counter{encodingCache: make(map[string]*tiktoken.Tiktoken)}
}

// DefaultCounter is a global token counter instance.
var DefaultCounter = NewCounter()

func (c *Counter) encodingFor(model string) (*tiktoken.Tiktoken, error) {
	name := normalizeModelName(model)

	c.mu.RLock()
	if enc, ok := c.encodingCache[name]; ok {
		c.mu.RUnlock()
		return enc, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if enc, ok := c.encodingCache[name]; ok {
		return enc, nil
	}
	enc, err := tiktoken.EncodingForModel(name)
	if err != nil {
		slog.Debug("falling back to cl100k_base encoding", slog.String("model", model), slog.Any("error", err))
		enc, err = tiktoken.GetEncoding(defaultEncoding)
		if err != nil {
			return nil, err
		}
	}
	c.encodingCache[name] = enc
	return enc, nil
}

// normalizeModelName maps provider model ids (ollama tags, groq ids,
// org-prefixed ids) to a tiktoken model name.
func normalizeModelName(model string) string {
	model = strings.ToLower(strings.TrimSpace(model))
	if i := strings.LastIndex(model, "/"); i != -1 {
		model = model[i+1:]
	}
	// ollama tags such as "mistral:7b-instruct"
	if i := strings.Index(model, ":"); i != -1 {
		model = model[:i]
	}
	if strings.Contains(model, "gpt-3.5") {
		return "gpt-3.5-turbo"
	}
	return "gpt-4"
}

// CountTokens counts the tokens of text for model.
func (c *Counter) CountTokens(text, model string) (int, error) {
	enc, err := c.encodingFor(model)
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}

// CountChatTokens counts a system+user exchange including the per-message
// framing used by chat APIs. An empty system prompt adds no message.
func (c *Counter) CountChatTokens(systemPrompt, userPrompt, model string) (int, error) {
	enc, err := c.encodingFor(model)
	if err != nil {
		return 0, err
	}
	const tokensPerMessage = 3
	n := 3 // reply priming
	if systemPrompt != "" {
		n += tokensPerMessage + len(enc.Encode("system", nil, nil)) + len(enc.Encode(systemPrompt, nil, nil))
	}
	n += tokensPerMessage + len(enc.Encode("user", nil, nil)) + len(enc.Encode(userPrompt, nil, nil))
	return n, nil
}

// EstimatePrompt returns the prompt size in tokens, falling back to a
// four-characters-per-token estimate when no encoding is available.
func (c *Counter) EstimatePrompt(p domain.Prompt, model string) int {
	n, err := c.CountChatTokens(p.System, p.User, model)
	if err != nil {
		slog.Warn("failed to count prompt tokens, using estimate", slog.String("model", model), slog.Any("error", err))
		return (len(p.System) + len(p.User)) / 4
	}
	return n
}
