package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bibbank/mortgage-advisor/internal/domain/model"
	"github.com/bibbank/mortgage-advisor/internal/domain/port"
	pkgpostgres "github.com/bibbank/mortgage-advisor/pkg/postgres"
)

// RecommendationRunRepo implements port.RecommendationRunRepository. Runs are
// append-only audit records.
type RecommendationRunRepo struct {
	pool *pgxpool.Pool
}

// NewRecommendationRunRepo creates a new repository backed by PostgreSQL.
func NewRecommendationRunRepo(pool *pgxpool.Pool) *RecommendationRunRepo {
	return &RecommendationRunRepo{pool: pool}
}

// Save inserts the run and its pending events in one transaction.
func (r *RecommendationRunRepo) Save(ctx context.Context, run *model.RecommendationRun) error {
	snapshot, err := json.Marshal(run.Snapshot())
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	metrics, err := json.Marshal(run.Metrics())
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}
	outcome, err := json.Marshal(run.Outcome())
	if err != nil {
		return fmt.Errorf("marshal outcome: %w", err)
	}

	var topProductID *string
	if recs := run.Outcome().Recommendations; len(recs) > 0 {
		topProductID = &recs[0].ProductID
	}

	const insertSQL = `
		INSERT INTO recommendation_runs (
			id, application_id, top_product_id, snapshot, metrics, outcome, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`
	return pkgpostgres.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insertSQL,
			run.ID(), run.ApplicationID(), topProductID, snapshot, metrics, outcome, run.CreatedAt(),
		); err != nil {
			return fmt.Errorf("insert recommendation run: %w", err)
		}
		return insertOutbox(ctx, tx, run.Events())
	})
}

// FindByID retrieves one run.
func (r *RecommendationRunRepo) FindByID(ctx context.Context, id string) (*model.RecommendationRun, error) {
	const query = `
		SELECT id, application_id, snapshot, metrics, outcome, created_at
		FROM recommendation_runs
		WHERE id = $1
	`
	var (
		runID, applicationID            string
		snapshotRaw, metricsRaw, outRaw []byte
		createdAt                       time.Time
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(&runID, &applicationID, &snapshotRaw, &metricsRaw, &outRaw, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, port.ErrRecommendationNotFound
		}
		return nil, fmt.Errorf("scan recommendation run: %w", err)
	}

	var (
		snapshot model.ApplicationProfile
		metrics  model.ApplicationMetrics
		outcome  model.RecommendationOutcome
	)
	if err := json.Unmarshal(snapshotRaw, &snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot of run %s: %w", runID, err)
	}
	if err := json.Unmarshal(metricsRaw, &metrics); err != nil {
		return nil, fmt.Errorf("decode metrics of run %s: %w", runID, err)
	}
	if err := json.Unmarshal(outRaw, &outcome); err != nil {
		return nil, fmt.Errorf("decode outcome of run %s: %w", runID, err)
	}

	return model.ReconstructRecommendationRun(runID, applicationID, snapshot, metrics, outcome, createdAt.UTC()), nil
}
