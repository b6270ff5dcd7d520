package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"terroir/internal/importer"
)

func newRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the validation rules in execution order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tLEVEL\tSEVERITY\tNAME")
			for _, r := range importer.New().Rules() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Key, r.Level, r.Severity, r.Name)
			}
			return tw.Flush()
		},
	}
}
