package main

import (
	"context"

	"github.com/spf13/cobra"

	"terroir/internal/domain"
	"terroir/internal/report"
	"terroir/internal/service"
)

func newPreviewCmd() *cobra.Command {
	var flags struct {
		territory string
		dossier   string
		strict    bool
		format    string
		output    string
		check     bool
	}
	cmd := &cobra.Command{
		Use:   "preview [file|-]",
		Short: "Run the full import pipeline without persisting anything",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := report.ParseFormat(flags.format)
			if err != nil {
				return err
			}
			raw, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			cfg := loadImportConfig()
			svc := service.NewImportService(newPipeline(cfg.Import), nil, nil, nil, nil, nil, nil, cfg.Import, cfg.S3)
			pv, err := svc.Preview(context.Background(), &service.PreviewInput{
				Raw:     raw,
				Targets: targetsFlags(flags.territory, flags.dossier),
				Strict:  flags.strict,
			})
			if err != nil {
				return err
			}
			if err := writeReport(cmd, format, flags.output, pv); err != nil {
				return err
			}
			if flags.check && !pv.Validation.Valid {
				return domain.ErrValidationFailed
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.territory, "territory", "", "Territory identifier for contextual checks")
	f.StringVar(&flags.dossier, "dossier", "", "Dossier identifier for contextual checks")
	f.BoolVar(&flags.strict, "strict", false, "Apply strict minimums")
	f.StringVar(&flags.format, "format", "json", "Output format: json, yaml, csv, xlsx")
	f.StringVarP(&flags.output, "output", "o", "", "Write the report to a file instead of stdout")
	f.BoolVar(&flags.check, "check", false, "Exit non-zero when the document fails validation")
	return cmd
}
