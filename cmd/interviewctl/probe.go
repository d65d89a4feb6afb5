package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type probeResult struct {
	Available bool   `json:"available"`
	Provider  string `json:"provider"`
	Model     string `json:"model"`
}

func newProbeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Check whether the model provider answers",
		Long:  "Run the provider's cheap availability probe. Exits non-zero when the provider is unavailable.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := newEngine(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			res := probeResult{
				Available: e.svc.Available(cmd.Context()),
				Provider:  e.backend.Provider,
				Model:     e.backend.Model,
			}
			if err := printJSON(cmd, res); err != nil {
				return err
			}
			if !res.Available {
				return fmt.Errorf("provider %s is unavailable", res.Provider)
			}
			return nil
		},
	}
}
