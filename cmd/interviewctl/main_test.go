package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
)

// fakeOllama serves a fixed model response and records the last prompt.
type fakeOllama struct {
	mu       sync.Mutex
	response string
	prompts  []string
}

func (f *fakeOllama) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

func (f *fakeOllama) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

// setupEnv points the CLI at a fake Ollama server. Tests using it must not
// run in parallel because configuration comes from the process environment.
func setupEnv(t *testing.T, response string) *fakeOllama {
	t.Helper()
	fake := &fakeOllama{response: response}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models":[]}`))
		case "/api/generate":
			var body struct {
				Prompt string `json:"prompt"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			fake.mu.Lock()
			fake.prompts = append(fake.prompts, body.Prompt)
			fake.mu.Unlock()
			_ = json.NewEncoder(w).Encode(map[string]any{"model": "mistral", "response": fake.response, "done": true})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	t.Setenv("APP_ENV", "test")
	t.Setenv("AI_PROVIDER", "ollama")
	t.Setenv("OLLAMA_HOST", srv.URL)
	t.Setenv("REDIS_URL", "")
	t.Setenv("AI_PROVIDER_RPM", "0")
	t.Setenv("FALLBACK_BANK_PATH", "")
	t.Setenv("LOG_LEVEL", "error")
	return fake
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	err := root.Execute()
	return out.String(), err
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestProbeCommand(t *testing.T) {
	setupEnv(t, "")

	out, err := run(t, "probe")
	require.NoError(t, err)
	assert.JSONEq(t, `{"available":true,"provider":"ollama","model":"mistral"}`, out)
}

func TestProbeCommand_Unavailable(t *testing.T) {
	setupEnv(t, "")
	t.Setenv("OLLAMA_HOST", "http://127.0.0.1:1")

	out, err := run(t, "probe")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unavailable")
	assert.Contains(t, out, `"available": false`)
}

func TestParseResumeCommand(t *testing.T) {
	setupEnv(t, "Here you go:\n```json\n{\"name\":\"Ada Lovelace\",\"email\":\"ada@example.com\",\"skills\":[\"Go\",\"SQL\"]}\n```")
	path := writeTemp(t, "resume.txt", "Ada Lovelace\nada@example.com\nSkills: Go, SQL")

	out, err := run(t, "parse-resume", "--file", path)
	require.NoError(t, err)

	var got domain.ParsedResume
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Ada Lovelace", got.Name)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Equal(t, []string{"Go", "SQL"}, got.Skills)
	assert.Equal(t, []any{}, got.Experience)
}

func TestQuestionsCommand(t *testing.T) {
	fake := setupEnv(t, "not json at all")
	jd := writeTemp(t, "jd.txt", "Build data pipelines")

	out, err := run(t, "questions", "--role", "Data Engineer", "--jd-file", jd, "--skills", "Spark,Kafka")
	require.NoError(t, err)

	var got domain.GeneratedQuestionSet
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, domain.SourceFallback, got.Source)
	require.Len(t, got.Questions, 10)
	assert.Equal(t, 1, fake.calls())
	assert.Contains(t, fake.lastPrompt(), "Data Engineer")
}

func TestQuestionsCommand_WithResume(t *testing.T) {
	fake := setupEnv(t, "not json at all")
	resume := writeTemp(t, "resume.txt", "Seven years running Kafka clusters")

	_, err := run(t, "questions", "--role", "Data Engineer", "--resume-file", resume)
	require.NoError(t, err)
	assert.Contains(t, fake.lastPrompt(), "Seven years running Kafka clusters")
}

func TestEvaluateCommand(t *testing.T) {
	fake := setupEnv(t, `{"score": 9, "feedback": "Clear and correct.", "topics_to_cover": ["channels", "select"]}`)

	out, err := run(t, "evaluate", "--question", "What is a goroutine?", "--answer", "A lightweight thread", "--role", "Backend")
	require.NoError(t, err)

	var got domain.AnswerEvaluation
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 9, got.Score)
	assert.Equal(t, "Clear and correct.", got.Feedback)
	assert.Equal(t, "channels, select", got.TopicsToCover)
	assert.Equal(t, 1, fake.calls())
}

func TestEvaluateCommand_EmptyAnswerSkipsModel(t *testing.T) {
	fake := setupEnv(t, `{"score": 9}`)

	out, err := run(t, "evaluate", "--question", "What is a goroutine?")
	require.NoError(t, err)
	assert.Contains(t, out, `"score": 0`)
	assert.Equal(t, 0, fake.calls())
}

func TestCommands_FlagErrors(t *testing.T) {
	setupEnv(t, "")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"parse_resume_missing_file", []string{"parse-resume"}, `required flag(s) "file" not set`},
		{"parse_resume_unreadable", []string{"parse-resume", "--file", filepath.Join(t.TempDir(), "missing.txt")}, "failed to read"},
		{"questions_missing_role", []string{"questions"}, `required flag(s) "role" not set`},
		{"evaluate_missing_question", []string{"evaluate", "--answer", "x"}, `required flag(s) "question" not set`},
		{"unexpected_args", []string{"probe", "extra"}, "unknown command"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.want), err.Error())
		})
	}
}

func TestConfigError(t *testing.T) {
	setupEnv(t, "")
	t.Setenv("AI_PROVIDER", "bard")

	_, err := run(t, "probe")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported AI_PROVIDER")
}
