package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verdantcity/greenspace-cli/internal/osm"
)

var (
	fetchURL       string
	fetchWorkspace string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download and extract an OSM shapefile archive",
	Long:  "Downloads a zipped shapefile extract (e.g. a Geofabrik *-free.shp.zip) into the workspace and unpacks the shapefile components. A previously downloaded archive is reused.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		workspace := fetchWorkspace
		if workspace == "" {
			workspace = cfg.Workspace.Dir
		}

		d := osm.NewDownloader(cfg.Fetch.MaxRPS)
		paths, err := d.FetchExtract(ctx, fetchURL, workspace)
		if err != nil {
			return eris.Wrap(err, "fetch extract")
		}

		zap.L().Info("extract ready",
			zap.String("workspace", workspace),
			zap.Int("shapefiles", len(paths)),
		)
		for _, p := range paths {
			fmt.Println(p)
		}
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchURL, "url", "", "URL of the .zip shapefile archive (required)")
	fetchCmd.Flags().StringVar(&fetchWorkspace, "workspace", "", "target directory (defaults to workspace.dir)")
	_ = fetchCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(fetchCmd)
}
