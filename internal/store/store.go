// Package store persists analysis runs and their extracted features.
// SQLite is the default local geodatabase; Postgres is available for
// shared deployments.
package store

import (
	"context"

	"github.com/verdantcity/greenspace-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	City   string          `json:"city,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for analysis results.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, city string) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, result *model.AnalysisResult) error
	FailRun(ctx context.Context, runID string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Features
	SaveFeatures(ctx context.Context, runID string, features []model.Feature) error
	FeaturesByRun(ctx context.Context, runID string) ([]model.Feature, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
