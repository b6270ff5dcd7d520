package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"terroir/internal/service"
)

func newSanitizeCmd() *cobra.Command {
	var showSteps bool
	cmd := &cobra.Command{
		Use:   "sanitize [file|-]",
		Short: "Repair near-JSON assistant output and print the result",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			cfg := loadImportConfig()
			svc := service.NewImportService(newPipeline(cfg.Import), nil, nil, nil, nil, nil, nil, cfg.Import, cfg.S3)
			res := svc.Sanitize(raw)
			fmt.Fprintln(cmd.OutOrStdout(), res.Sanitized)
			if showSteps {
				for _, s := range res.Steps {
					fmt.Fprintf(cmd.ErrOrStderr(), "%-22s %s\n", s.Name, s.Description)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showSteps, "steps", false, "List the repair passes that changed the text on stderr")
	return cmd
}
