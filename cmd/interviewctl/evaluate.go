package main

import (
	"github.com/spf13/cobra"

	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
)

func newEvaluateCmd() *cobra.Command {
	var req domain.EvaluationRequest
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score a candidate answer to one question",
		Long:  "Score an answer from 0 to 10 with feedback. An empty --answer is scored without calling the model.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := newEngine(cmd)
			if err != nil {
				return err
			}
			defer e.Close()
			return printJSON(cmd, e.svc.EvaluateAnswer(cmd.Context(), req))
		},
	}
	cmd.Flags().StringVar(&req.Question, "question", "", "The interview question")
	cmd.Flags().StringVar(&req.Answer, "answer", "", "The candidate's answer")
	cmd.Flags().StringVar(&req.Role, "role", "", "Target role")
	_ = cmd.MarkFlagRequired("question")
	return cmd
}
