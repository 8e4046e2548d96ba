package main

import (
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verdantcity/greenspace-cli/internal/render"
)

var renderOut string

var renderCmd = &cobra.Command{
	Use:   "render <run-id>",
	Short: "Re-render the map for a stored run",
	Long:  "Loads the persisted features of a previous run and regenerates the PNG and PDF map exports without re-reading the shapefiles.",
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
		features, err := st.FeaturesByRun(ctx, run.ID)
		if err != nil {
			return eris.Wrap(err, "load features")
		}

		opts := render.Options{
			City:     run.City,
			WidthIn:  cfg.Map.WidthIn,
			HeightIn: cfg.Map.HeightIn,
			DPI:      cfg.Export.DPI,
		}
		plt, err := render.BuildMap(features, opts)
		if err != nil {
			return eris.Wrap(err, "build map")
		}

		outDir := renderOut
		if outDir == "" {
			outDir = cfg.Export.Dir
		}
		if err := ensureDir(outDir); err != nil {
			return err
		}

		pngPath := filepath.Join(outDir, render.MapPNGName(run.City))
		if err := render.SavePNG(plt, pngPath, opts); err != nil {
			return err
		}
		pdfPath := filepath.Join(outDir, render.AnalysisPDFName(run.City))
		if err := render.SavePDF(plt, pdfPath, opts); err != nil {
			return err
		}

		zap.L().Info("map re-rendered",
			zap.String("run", run.ID),
			zap.String("png", pngPath),
			zap.String("pdf", pdfPath),
		)
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVar(&renderOut, "out", "", "output directory (defaults to export.dir)")
	rootCmd.AddCommand(renderCmd)
}
