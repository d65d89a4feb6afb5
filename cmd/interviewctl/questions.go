package main

import (
	"github.com/spf13/cobra"

	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
)

func newQuestionsCmd() *cobra.Command {
	var (
		role       string
		jdFile     string
		resumeFile string
		skills     []string
	)
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Generate ten interview questions for a role",
		Long: "Generate five technical and five behavioral questions. With --resume-file the " +
			"candidate's resume is included in the prompt.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			jd, err := readOptionalFile(jdFile)
			if err != nil {
				return err
			}
			resume, err := readOptionalFile(resumeFile)
			if err != nil {
				return err
			}
			e, err := newEngine(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			var set domain.GeneratedQuestionSet
			if resume != "" {
				set = e.svc.GenerateQuestionsFromContext(cmd.Context(), jd, role, resume, skills)
			} else {
				set = e.svc.GenerateQuestions(cmd.Context(), jd, role, skills)
			}
			return printJSON(cmd, set)
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "Target role, e.g. \"Backend Engineer\"")
	cmd.Flags().StringVar(&jdFile, "jd-file", "", "Path to the job description text file")
	cmd.Flags().StringSliceVar(&skills, "skills", nil, "Comma-separated skills to focus on")
	cmd.Flags().StringVar(&resumeFile, "resume-file", "", "Path to the candidate's resume text file")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}
