package store

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/verdantcity/greenspace-cli/internal/db"
	"github.com/verdantcity/greenspace-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	city       TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	result     JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS features (
	id       TEXT PRIMARY KEY,
	run_id   TEXT NOT NULL REFERENCES runs(id),
	layer    TEXT NOT NULL,
	fclass   TEXT NOT NULL,
	name     TEXT,
	category TEXT NOT NULL,
	area_ha  DOUBLE PRECISION NOT NULL CHECK (area_ha >= 0),
	geom     BYTEA
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_city ON runs(city);
CREATE INDEX IF NOT EXISTS idx_features_run_id ON features(run_id);
CREATE INDEX IF NOT EXISTS idx_features_category ON features(category);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, city string) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, city, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		id, city, string(model.RunStatusRunning), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.Run{
		ID:        id,
		City:      city,
		Status:    model.RunStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, result *model.AnalysisResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal result")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, result = $2, updated_at = $3 WHERE id = $4`,
		string(model.RunStatusCompleted), resultJSON, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: run %s not found", runID)
	}
	return nil
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, updated_at = $2 WHERE id = $3`,
		string(model.RunStatusFailed), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: run %s not found", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	var run model.Run
	var status string
	var resultJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, city, status, result, created_at, updated_at FROM runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.City, &status, &resultJSON, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, eris.Errorf("postgres: run %s not found", runID)
		}
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}

	run.Status = model.RunStatus(status)
	if len(resultJSON) > 0 {
		var result model.AnalysisResult
		if err := json.Unmarshal(resultJSON, &result); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal result")
		}
		run.Result = &result
	}
	return &run, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, city, status, result, created_at, updated_at FROM runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` AND status = $1`
	}
	if filter.City != "" {
		args = append(args, filter.City)
		query += ` AND city = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var run model.Run
		var status string
		var resultJSON []byte
		if err := rows.Scan(&run.ID, &run.City, &status, &resultJSON, &run.CreatedAt, &run.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		run.Status = model.RunStatus(status)
		if len(resultJSON) > 0 {
			var result model.AnalysisResult
			if err := json.Unmarshal(resultJSON, &result); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal result")
			}
			run.Result = &result
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate runs")
	}
	return runs, nil
}

// featureColumns matches the COPY column order used by SaveFeatures.
var featureColumns = []string{"id", "run_id", "layer", "fclass", "name", "category", "area_ha", "geom"}

func (s *PostgresStore) SaveFeatures(ctx context.Context, runID string, features []model.Feature) error {
	rows := make([][]any, 0, len(features))
	for _, f := range features {
		geomBytes, err := encodeGeometry(f.Geometry)
		if err != nil {
			return err
		}
		id := f.ID
		if id == "" {
			id = uuid.New().String()
		}
		rows = append(rows, []any{id, runID, f.Layer, f.FClass, f.Name, string(f.Category), f.AreaHa, geomBytes})
	}

	if _, err := db.CopyFrom(ctx, s.pool, "features", featureColumns, rows); err != nil {
		return eris.Wrapf(err, "postgres: save features for run %s", runID)
	}
	return nil
}

func (s *PostgresStore) FeaturesByRun(ctx context.Context, runID string) ([]model.Feature, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, layer, fclass, name, category, area_ha, geom FROM features WHERE run_id = $1 ORDER BY category, area_ha DESC`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: features for run %s", runID)
	}
	defer rows.Close()

	var features []model.Feature
	for rows.Next() {
		var f model.Feature
		var name *string
		var category string
		var geomBytes []byte
		if err := rows.Scan(&f.ID, &f.Layer, &f.FClass, &name, &category, &f.AreaHa, &geomBytes); err != nil {
			return nil, eris.Wrap(err, "postgres: scan feature")
		}
		if name != nil {
			f.Name = *name
		}
		f.Category = model.Category(category)
		if f.Geometry, err = decodeGeometry(geomBytes); err != nil {
			return nil, err
		}
		features = append(features, f)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate features")
	}
	return features, nil
}

