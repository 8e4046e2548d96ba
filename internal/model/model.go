// Package model defines the core types shared across the analysis pipeline.
package model

import (
	"time"

	"github.com/twpayne/go-geom"
)

// Category is the thematic class assigned to a polygon feature.
type Category string

// Feature categories.
const (
	CategoryGreenSpace  Category = "green_space"
	CategoryResidential Category = "residential"
)

// Source layers. Layer names follow the shapefile the feature came from.
const (
	LayerLanduse = "landuse"
	LayerNatural = "natural"
)

// RunStatus tracks the lifecycle of an analysis run.
type RunStatus string

// Run statuses.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Feature is a classified polygon with its computed area.
type Feature struct {
	ID       string             `json:"id"`
	Layer    string             `json:"layer"`
	FClass   string             `json:"fclass"`
	Name     string             `json:"name,omitempty"`
	Category Category           `json:"category"`
	AreaHa   float64            `json:"area_ha"`
	Geometry *geom.MultiPolygon `json:"-"`
}

// AnalysisResult summarizes a completed run.
type AnalysisResult struct {
	GreenSpaceHa        float64 `json:"green_space_ha"`
	ResidentialHa       float64 `json:"residential_ha"`
	GreenFeatures       int     `json:"green_features"`
	ResidentialFeatures int     `json:"residential_features"`
	GreenSharePct       float64 `json:"green_share_pct"`
}

// Run is one execution of the analysis pipeline for a city.
type Run struct {
	ID        string          `json:"id"`
	City      string          `json:"city"`
	Status    RunStatus       `json:"status"`
	Result    *AnalysisResult `json:"result,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Summarize totals feature areas per category. GreenSharePct is the green
// fraction of all classified area, as a percentage; zero when nothing was
// classified.
func Summarize(features []Feature) AnalysisResult {
	var res AnalysisResult
	for _, f := range features {
		switch f.Category {
		case CategoryGreenSpace:
			res.GreenSpaceHa += f.AreaHa
			res.GreenFeatures++
		case CategoryResidential:
			res.ResidentialHa += f.AreaHa
			res.ResidentialFeatures++
		}
	}
	if total := res.GreenSpaceHa + res.ResidentialHa; total > 0 {
		res.GreenSharePct = res.GreenSpaceHa / total * 100
	}
	return res
}
