// Command interviewctl runs the interview engine from the command line
// against the configured model provider and prints the result as JSON.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "interviewctl",
		Short: "Mock-interview engine CLI",
		Long: "interviewctl parses resumes, generates interview questions and scores answers " +
			"using the provider configured through the environment (or a .env file). " +
			"Every command prints JSON; an unreachable provider yields fallback output, not an error.",
		SilenceUsage: true,
	}
	root.AddCommand(newProbeCmd(), newParseResumeCmd(), newQuestionsCmd(), newEvaluateCmd())
	return root
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
