package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/binpm/resolver/pkg/resolve"
	"github.com/binpm/resolver/pkg/resolve/export"
	"github.com/binpm/resolver/pkg/universe"
)

func newExportCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export <universe.yaml>",
		Short: "Dump the CNF encoding as DIMACS or DOT without solving",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uni, reqs, err := loadUniverseFile(args[0])
			if err != nil {
				return err
			}

			table := resolve.BuildTable(uni)
			builder := resolve.NewRuleBuilder(table, uni, universe.Config{JobType: universe.JobInstall}, reqs, log)
			builder.Build()

			switch format {
			case "dimacs":
				return export.WriteDIMACS(cmd.OutOrStdout(), table.N(), builder.Clauses())
			case "dot":
				return export.WriteDOT(cmd.OutOrStdout(), table, builder.Clauses())
			default:
				return os.ErrInvalid
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "dimacs", "dimacs or dot")
	return cmd
}
