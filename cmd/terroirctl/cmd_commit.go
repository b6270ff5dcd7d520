package main

import (
	"context"
	"fmt"
	"os/user"

	"github.com/spf13/cobra"

	"terroir/internal/domain"
	"terroir/internal/integrity"
	"terroir/internal/report"
	"terroir/internal/repository/sqlite"
	"terroir/internal/service"
)

func newCommitCmd() *cobra.Command {
	var flags struct {
		territory string
		dossier   string
		strict    bool
		dbPath    string
		format    string
		actor     string
	}
	cmd := &cobra.Command{
		Use:   "commit [file|-]",
		Short: "Validate a dossier and store it in a local SQLite database",
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
			ctx := context.Background()
			db, err := sqlite.Open(ctx, flags.dbPath)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer db.Close()

			cfg := loadImportConfig()
			cfg.Import.ArchiveRaw = false
			svc := service.NewImportService(
				newPipeline(cfg.Import),
				sqlite.NewDossierRepo(db),
				sqlite.NewImportAuditRepo(db),
				nil,
				nil,
				integrity.NewNoopChecker(),
				nil,
				cfg.Import,
				cfg.S3,
			)

			actor := flags.actor
			if actor == "" {
				if u, err := user.Current(); err == nil {
					actor = u.Username
				}
			}
			res, err := svc.Commit(ctx, &service.CommitInput{
				Raw:     raw,
				Targets: targetsFlags(flags.territory, flags.dossier),
				Strict:  flags.strict,
				Actor:   actor,
			})
			if err != nil {
				return err
			}
			if !res.Committed {
				if err := writeReport(cmd, format, "", res.Preview); err != nil {
					return err
				}
				return domain.ErrValidationFailed
			}
			fmt.Fprintf(cmd.OutOrStdout(), "committed %s/%s revision %d (completeness %d, quality %d)\n",
				res.Record.TerritoryID, res.Record.DossierID, res.Record.Revision,
				res.Record.CompletenessScore, res.Record.QualityScore)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.territory, "territory", "", "Territory identifier (required)")
	f.StringVar(&flags.dossier, "dossier", "", "Dossier identifier (required)")
	f.BoolVar(&flags.strict, "strict", false, "Apply strict minimums")
	f.StringVar(&flags.dbPath, "db", "terroir.db", "SQLite store path")
	f.StringVar(&flags.format, "format", "json", "Report format printed when the commit is refused")
	f.StringVar(&flags.actor, "actor", "", "Operator recorded in the audit log (default: current user)")
	_ = cmd.MarkFlagRequired("territory")
	_ = cmd.MarkFlagRequired("dossier")
	return cmd
}
