package postgres

import (
	"context"
	"embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bibbank/mortgage-advisor/internal/domain/event"
	"github.com/bibbank/mortgage-advisor/pkg/events"
	pkgpostgres "github.com/bibbank/mortgage-advisor/pkg/postgres"
)

// Migrations holds the schema, applied with pkg/postgres.RunMigrations.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations.
const MigrationsDir = "migrations"

const insertOutboxSQL = `
	INSERT INTO outbox (id, aggregate_id, aggregate_type, event_type, payload, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO NOTHING
`

// insertOutbox writes evts to the outbox; callers pass the transaction that
// stores the aggregate.
func insertOutbox(ctx context.Context, tx pkgpostgres.Execer, evts []event.DomainEvent) error {
	entries, err := events.NewOutboxEntries(evts)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := tx.Exec(ctx, insertOutboxSQL,
			e.ID, e.AggregateID, e.AggregateType, e.EventType, e.Payload, e.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert outbox event %s: %w", e.EventType, err)
		}
	}
	return nil
}

// OutboxRepo implements events.OutboxRepository.
type OutboxRepo struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewOutboxRepo creates a new outbox repository backed by PostgreSQL.
func NewOutboxRepo(pool *pgxpool.Pool) *OutboxRepo {
	return &OutboxRepo{pool: pool, now: time.Now}
}

// FetchUnpublished returns the oldest unpublished entries.
func (r *OutboxRepo) FetchUnpublished(ctx context.Context, batchSize int) ([]events.OutboxEntry, error) {
	const query = `
		SELECT id, aggregate_id, aggregate_type, event_type, payload, created_at
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at, id
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, batchSize)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var entries []events.OutboxEntry
	for rows.Next() {
		var e events.OutboxEntry
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.AggregateType, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// MarkPublished stamps the given entries as published.
func (r *OutboxRepo) MarkPublished(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	const query = `UPDATE outbox SET published_at = $2 WHERE id = ANY($1) AND published_at IS NULL`
	if _, err := r.pool.Exec(ctx, query, ids, r.now().UTC()); err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}
