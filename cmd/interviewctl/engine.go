package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/observability"
	"github.com/fairyhunter13/ai-mock-interview/internal/app"
	"github.com/fairyhunter13/ai-mock-interview/internal/config"
	"github.com/fairyhunter13/ai-mock-interview/internal/usecase"
	"github.com/fairyhunter13/ai-mock-interview/pkg/textx"
)

// engine is the service plus the backend it owns for one command run.
type engine struct {
	svc     *usecase.InterviewService
	backend app.AIBackend
}

func (e engine) Close() {
	if err := e.backend.Close(); err != nil {
		slog.Warn("failed to close redis client", slog.Any("error", err))
	}
}

// newEngine builds the engine from the environment. Logs go to stderr so
// stdout carries only the JSON result.
func newEngine(cmd *cobra.Command) (engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return engine{}, err
	}
	slog.SetDefault(observability.NewLogger(cmd.ErrOrStderr(), cfg))

	backend, err := app.NewAIBackend(cfg)
	if err != nil {
		return engine{}, err
	}
	return engine{svc: app.NewInterviewService(cfg, backend.Transport), backend: backend}, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return err
}

// readOptionalFile returns the sanitized file content, or "" for an empty path.
func readOptionalFile(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return textx.SanitizeText(string(b)), nil
}
