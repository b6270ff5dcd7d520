package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"terroir/internal/config"
	"terroir/internal/domain"
	"terroir/internal/dossier"
	"terroir/internal/importer"
	"terroir/internal/logging"
	"terroir/internal/report"
)

var rootFlags struct {
	logLevel string
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "terroirctl",
		Short:         "Repair, validate and store territory dossiers drafted by research assistants",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logging.Setup(config.LogConfig{Level: rootFlags.logLevel, Format: "text"}, cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&rootFlags.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	root.Version = version

	root.AddCommand(newSanitizeCmd())
	root.AddCommand(newPreviewCmd())
	root.AddCommand(newCommitCmd())
	root.AddCommand(newRulesCmd())
	root.AddCommand(newTokenCmd())
	return root
}

// readInput reads the named file, or stdin when the name is empty or "-".
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(b), nil
}

// targetsFlags builds Targets from --territory/--dossier, nil when both are empty.
func targetsFlags(territory, dossierID string) *dossier.Targets {
	if territory == "" && dossierID == "" {
		return nil
	}
	return &dossier.Targets{TerritoryID: territory, DossierID: dossierID}
}

// writeReport renders pv to out, or to stdout when out is empty.
func writeReport(cmd *cobra.Command, format domain.ReportFormat, out string, pv *importer.Preview) error {
	if out == "" {
		if format == domain.ReportFormatXLSX {
			return fmt.Errorf("xlsx output requires -o <file>")
		}
		return report.Render(cmd.OutOrStdout(), format, pv)
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := report.Render(f, format, pv); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func newPipeline(cfg config.ImportConfig) *importer.Pipeline {
	return importer.New(importer.WithMaxInputBytes(cfg.MaxInputBytes))
}

// loadImportConfig reads the import settings, falling back to defaults when
// the environment holds no usable configuration.
func loadImportConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{Import: config.ImportConfig{MaxInputBytes: 2 << 20}}
	}
	return *cfg
}
