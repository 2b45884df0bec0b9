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

// ApplicationRepo implements port.ApplicationRepository.
type ApplicationRepo struct {
	pool *pgxpool.Pool
}

// NewApplicationRepo creates a new repository backed by PostgreSQL.
func NewApplicationRepo(pool *pgxpool.Pool) *ApplicationRepo {
	return &ApplicationRepo{pool: pool}
}

// Save upserts the application with optimistic locking and writes its
// pending events to the outbox in the same transaction.
func (r *ApplicationRepo) Save(ctx context.Context, app *model.Application) error {
	profile := app.Profile()
	payload, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	const upsertSQL = `
		INSERT INTO applications (
			id, purpose, loan_amount, tenor_months, repayment_strategy,
			geo_location, profile, version, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (id) DO UPDATE SET
			profile    = EXCLUDED.profile,
			version    = EXCLUDED.version,
			updated_at = EXCLUDED.updated_at
		WHERE applications.version = EXCLUDED.version - 1
	`
	return pkgpostgres.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, upsertSQL,
			app.ID(), profile.Purpose.String(), profile.LoanAmount, profile.TenorMonths,
			profile.Strategy().String(), profile.GeoLocation, payload,
			app.Version(), app.CreatedAt(), app.UpdatedAt(),
		)
		if err != nil {
			return fmt.Errorf("upsert application: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("optimistic locking conflict on application %s", app.ID())
		}
		return insertOutbox(ctx, tx, app.Events())
	})
}

// FindByID retrieves a single application.
func (r *ApplicationRepo) FindByID(ctx context.Context, id string) (*model.Application, error) {
	const query = `
		SELECT id, profile, version, created_at, updated_at
		FROM applications
		WHERE id = $1
	`
	var (
		appID                string
		payload              []byte
		version              int
		createdAt, updatedAt time.Time
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(&appID, &payload, &version, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, port.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("scan application: %w", err)
	}

	var profile model.ApplicationProfile
	if err := json.Unmarshal(payload, &profile); err != nil {
		return nil, fmt.Errorf("decode profile of application %s: %w", appID, err)
	}
	return model.ReconstructApplication(appID, profile, version, createdAt.UTC(), updatedAt.UTC()), nil
}
