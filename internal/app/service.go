package app

import (
	"log/slog"

	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/ai"
	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/ai/tokencount"
	"github.com/fairyhunter13/ai-mock-interview/internal/config"
	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
	"github.com/fairyhunter13/ai-mock-interview/internal/usecase"
)

// NewInterviewService builds the engine from config. An invalid
// FALLBACK_BANK_PATH is logged and the embedded bank is kept.
func NewInterviewService(cfg config.Config, t domain.Transport) *usecase.InterviewService {
	opts := []usecase.Option{usecase.WithTokenCounter(tokencount.DefaultCounter)}
	if cfg.FallbackBankPath != "" {
		bank, err := ai.LoadQuestionBank(cfg.FallbackBankPath)
		if err != nil {
			slog.Warn("fallback bank override rejected, using embedded bank",
				slog.String("path", cfg.FallbackBankPath), slog.Any("error", err))
		} else {
			opts = append(opts, usecase.WithQuestionBank(bank))
			slog.Info("fallback bank loaded", slog.String("path", cfg.FallbackBankPath))
		}
	}
	return usecase.NewInterviewService(t, cfg.Policy(), opts...)
}
