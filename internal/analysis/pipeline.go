// Package analysis orchestrates the load → classify → measure → persist
// pipeline for one workspace of shapefiles.
package analysis

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/verdantcity/greenspace-cli/internal/area"
	"github.com/verdantcity/greenspace-cli/internal/classify"
	"github.com/verdantcity/greenspace-cli/internal/model"
	"github.com/verdantcity/greenspace-cli/internal/resilience"
	"github.com/verdantcity/greenspace-cli/internal/shapefile"
	"github.com/verdantcity/greenspace-cli/internal/store"
)

// Options configures a pipeline run.
type Options struct {
	// Workspace is the directory scanned for layer shapefiles.
	Workspace string

	// Charset names the DBF text encoding (empty = UTF-8).
	Charset string

	// ForcePlanar treats coordinates as meters even when they fit the
	// lon/lat range. By default the unit is auto-detected per layer.
	ForcePlanar bool
}

// Pipeline runs the analysis for one city at a time.
type Pipeline struct {
	store      store.Store
	classifier *classify.Classifier
	retry      resilience.RetryConfig
	opts       Options
}

// New creates a Pipeline. The retry configuration covers shapefile reads,
// which fail transiently while a desktop GIS tool holds a lock.
func New(st store.Store, classifier *classify.Classifier, opts Options) *Pipeline {
	return &Pipeline{
		store:      st,
		classifier: classifier,
		retry:      resilience.DefaultRetryConfig(),
		opts:       opts,
	}
}

// Run executes the full pipeline for a city: every layer the classifier
// references is located in the workspace, read, classified, and measured;
// the classified features and the summary land in the store. The returned
// features carry geometry for rendering.
func (p *Pipeline) Run(ctx context.Context, city string) (*model.Run, []model.Feature, error) {
	log := zap.L().With(zap.String("city", city), zap.String("workspace", p.opts.Workspace))
	log.Info("analysis: starting run")

	run, err := p.store.CreateRun(ctx, city)
	if err != nil {
		return nil, nil, eris.Wrap(err, "analysis: create run")
	}

	features, err := p.extract(ctx)
	if err != nil {
		p.failRun(ctx, run.ID, log)
		return nil, nil, err
	}

	result := model.Summarize(features)
	if result.GreenFeatures == 0 {
		log.Warn("analysis: no green spaces found, the analysis may be incomplete")
	}

	if err := p.store.SaveFeatures(ctx, run.ID, features); err != nil {
		p.failRun(ctx, run.ID, log)
		return nil, nil, eris.Wrap(err, "analysis: save features")
	}
	if err := p.store.CompleteRun(ctx, run.ID, &result); err != nil {
		p.failRun(ctx, run.ID, log)
		return nil, nil, eris.Wrap(err, "analysis: complete run")
	}

	run.Status = model.RunStatusCompleted
	run.Result = &result

	log.Info("analysis: run complete",
		zap.Int("green_features", result.GreenFeatures),
		zap.Int("residential_features", result.ResidentialFeatures),
		zap.Float64("green_space_ha", result.GreenSpaceHa),
		zap.Float64("residential_ha", result.ResidentialHa),
	)
	return run, features, nil
}

// failRun is best-effort: a run that cannot be marked failed is logged,
// not surfaced over the original error.
func (p *Pipeline) failRun(ctx context.Context, runID string, log *zap.Logger) {
	if err := p.store.FailRun(ctx, runID); err != nil {
		log.Warn("analysis: failed to mark run failed", zap.Error(err))
	}
}

// extract reads every referenced layer concurrently and returns the
// classified, measured features. A layer missing from the workspace is
// skipped with a warning; only all layers missing is an error.
func (p *Pipeline) extract(ctx context.Context) ([]model.Feature, error) {
	layers := p.classifier.Layers()

	var mu sync.Mutex
	var features []model.Feature
	var loaded int

	g, gctx := errgroup.WithContext(ctx)
	for _, layer := range layers {
		g.Go(func() error {
			layerFeatures, found, err := p.extractLayer(gctx, layer)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			if found {
				loaded++
			}
			features = append(features, layerFeatures...)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if loaded == 0 {
		return nil, eris.Errorf("analysis: no layer shapefiles (%v) found in %s", layers, p.opts.Workspace)
	}
	return features, nil
}

// extractLayer loads one layer shapefile. found is false when the workspace
// has no shapefile for the layer.
func (p *Pipeline) extractLayer(ctx context.Context, layer string) ([]model.Feature, bool, error) {
	log := zap.L().With(zap.String("layer", layer))

	path, err := shapefile.Find(p.opts.Workspace, layer)
	if err != nil {
		log.Warn("analysis: layer shapefile not found, skipping", zap.Error(err))
		return nil, false, nil
	}

	readOpts := shapefile.Options{
		Attrs:   []string{"fclass", "name"},
		Charset: p.opts.Charset,
	}
	retryCfg := p.retry
	retryCfg.OnRetry = resilience.RetryLogger("analysis", "read_"+layer)

	raw, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) ([]shapefile.RawFeature, error) {
		return shapefile.ReadPolygons(path, readOpts)
	})
	if err != nil {
		return nil, true, eris.Wrapf(err, "analysis: read layer %s", layer)
	}

	var features []model.Feature
	for _, rf := range raw {
		cat, ok := p.classifier.Classify(layer, rf.Attrs["fclass"])
		if !ok {
			continue
		}

		geographic := !p.opts.ForcePlanar && area.IsGeographic(rf.Geometry)
		features = append(features, model.Feature{
			ID:       uuid.New().String(),
			Layer:    layer,
			FClass:   rf.Attrs["fclass"],
			Name:     rf.Attrs["name"],
			Category: cat,
			AreaHa:   area.Hectares(rf.Geometry, geographic),
			Geometry: rf.Geometry,
		})
	}

	log.Info("analysis: layer extracted",
		zap.String("path", path),
		zap.Int("records", len(raw)),
		zap.Int("classified", len(features)),
	)
	return features, true, nil
}
