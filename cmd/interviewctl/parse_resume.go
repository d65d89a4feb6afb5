package main

import (
	"github.com/spf13/cobra"
)

func newParseResumeCmd() *cobra.Command {
	var inputFile string
	cmd := &cobra.Command{
		Use:   "parse-resume",
		Short: "Extract structured fields from a plain-text resume",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			text, err := readOptionalFile(inputFile)
			if err != nil {
				return err
			}
			e, err := newEngine(cmd)
			if err != nil {
				return err
			}
			defer e.Close()
			return printJSON(cmd, e.svc.ParseResume(cmd.Context(), text))
		},
	}
	cmd.Flags().StringVarP(&inputFile, "file", "f", "", "Path to the resume text file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
