package main

import (
	"fmt"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verdantcity/greenspace-cli/internal/analysis"
	"github.com/verdantcity/greenspace-cli/internal/classify"
	"github.com/verdantcity/greenspace-cli/internal/render"
	"github.com/verdantcity/greenspace-cli/internal/report"
)

var (
	analyzeCity      string
	analyzeWorkspace string
	analyzeNoMap     bool
	analyzeXLSX      bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the green space analysis for a city",
	Long:  "Locates the land-use and natural-feature shapefiles in the workspace, classifies and measures their polygons, stores the run, and exports the map as PNG and PDF.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		rules, err := classify.LoadRules(cfg.Classify.RulesPath)
		if err != nil {
			return eris.Wrap(err, "load classification rules")
		}

		workspace := analyzeWorkspace
		if workspace == "" {
			workspace = cfg.Workspace.Dir
		}

		p := analysis.New(st, classify.NewClassifier(rules), analysis.Options{
			Workspace:   workspace,
			Charset:     cfg.Workspace.Charset,
			ForcePlanar: cfg.Workspace.Planar,
		})

		run, features, err := p.Run(ctx, analyzeCity)
		if err != nil {
			return eris.Wrap(err, "analysis run")
		}

		fmt.Print(report.Summary(run))

		if err := ensureDir(cfg.Export.Dir); err != nil {
			return err
		}

		if !analyzeNoMap {
			opts := render.Options{
				City:     analyzeCity,
				WidthIn:  cfg.Map.WidthIn,
				HeightIn: cfg.Map.HeightIn,
				DPI:      cfg.Export.DPI,
			}
			plt, err := render.BuildMap(features, opts)
			if err != nil {
				return eris.Wrap(err, "build map")
			}

			pngPath := filepath.Join(cfg.Export.Dir, render.MapPNGName(analyzeCity))
			if err := render.SavePNG(plt, pngPath, opts); err != nil {
				return err
			}
			pdfPath := filepath.Join(cfg.Export.Dir, render.AnalysisPDFName(analyzeCity))
			if err := render.SavePDF(plt, pdfPath, opts); err != nil {
				return err
			}

			zap.L().Info("map exported",
				zap.String("png", pngPath),
				zap.String("pdf", pdfPath),
			)
		}

		if analyzeXLSX {
			xlsxPath := filepath.Join(cfg.Export.Dir, report.XLSXName(analyzeCity))
			if err := report.WriteXLSX(xlsxPath, run, features); err != nil {
				return err
			}
			zap.L().Info("workbook exported", zap.String("xlsx", xlsxPath))
		}

		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeCity, "city", "", "city name for titles and export filenames (required)")
	analyzeCmd.Flags().StringVar(&analyzeWorkspace, "workspace", "", "shapefile directory (defaults to workspace.dir)")
	analyzeCmd.Flags().BoolVar(&analyzeNoMap, "no-map", false, "skip the PNG/PDF map export")
	analyzeCmd.Flags().BoolVar(&analyzeXLSX, "xlsx", false, "also export an XLSX workbook")
	_ = analyzeCmd.MarkFlagRequired("city")
	rootCmd.AddCommand(analyzeCmd)
}
