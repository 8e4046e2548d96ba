package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verdantcity/greenspace-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "greenspace",
	Short: "Urban green space analysis from OpenStreetMap shapefiles",
	Long:  "Reads land-use and natural-feature shapefiles, classifies polygons into green space and residential areas, measures hectare coverage, and renders a static map with PNG and PDF exports.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
