package main

import (
	"fmt"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verdantcity/greenspace-cli/internal/report"
)

var reportXLSX bool

var reportCmd = &cobra.Command{
	Use:   "report <run-id>",
	Short: "Print the summary for a stored run",
	Long:  "Prints the category/area summary of a previous run, optionally exporting the per-feature breakdown as an XLSX workbook.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "load run")
		}

		fmt.Print(report.Summary(run))

		if reportXLSX {
			features, err := st.FeaturesByRun(ctx, run.ID)
			if err != nil {
				return eris.Wrap(err, "load features")
			}
			if err := ensureDir(cfg.Export.Dir); err != nil {
				return err
			}
			path := filepath.Join(cfg.Export.Dir, report.XLSXName(run.City))
			if err := report.WriteXLSX(path, run, features); err != nil {
				return err
			}
			zap.L().Info("workbook exported", zap.String("xlsx", path))
		}

		return nil
	},
}

func init() {
	reportCmd.Flags().BoolVar(&reportXLSX, "xlsx", false, "also export an XLSX workbook")
	rootCmd.AddCommand(reportCmd)
}
