package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bibbank/mortgage-advisor/internal/domain/event"
	"github.com/bibbank/mortgage-advisor/internal/domain/model"
	"github.com/bibbank/mortgage-advisor/internal/domain/port"
	pkgpostgres "github.com/bibbank/mortgage-advisor/pkg/postgres"
)

// ProductRepo implements port.ProductRepository. Product terms are stored as
// a JSON document; the columns next to it exist for filtering.
type ProductRepo struct {
	pool *pgxpool.Pool
}

// NewProductRepo creates a new repository backed by PostgreSQL.
func NewProductRepo(pool *pgxpool.Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

// List returns products ordered by bank and ID.
func (r *ProductRepo) List(ctx context.Context, includeInactive bool) ([]model.ProductCandidate, error) {
	const query = `
		SELECT id, data, active, updated_at
		FROM products
		WHERE active OR $1
		ORDER BY bank_id, id
	`
	rows, err := r.pool.Query(ctx, query, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []model.ProductCandidate
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

// FindByID retrieves one product, active or not.
func (r *ProductRepo) FindByID(ctx context.Context, id string) (model.ProductCandidate, error) {
	const query = `SELECT id, data, active, updated_at FROM products WHERE id = $1`
	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ProductCandidate{}, port.ErrProductNotFound
	}
	return p, err
}

// ReplaceCatalog upserts products, deactivates every product missing from
// the list and stores evts in the outbox, in one transaction.
func (r *ProductRepo) ReplaceCatalog(ctx context.Context, products []model.ProductCandidate, evts []event.DomainEvent) error {
	const upsertSQL = `
		INSERT INTO products (id, bank_id, purpose, data, active, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			bank_id    = EXCLUDED.bank_id,
			purpose    = EXCLUDED.purpose,
			data       = EXCLUDED.data,
			active     = EXCLUDED.active,
			updated_at = EXCLUDED.updated_at
	`
	const deactivateSQL = `
		UPDATE products SET active = FALSE, updated_at = $2
		WHERE active AND NOT (id = ANY($1))
	`

	ids := make([]string, 0, len(products))
	docs := make([][]byte, 0, len(products))
	for _, p := range products {
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("marshal product %s: %w", p.ID, err)
		}
		ids = append(ids, p.ID)
		docs = append(docs, data)
	}
	deactivatedAt := time.Now().UTC()
	if len(products) > 0 && !products[0].UpdatedAt.IsZero() {
		deactivatedAt = products[0].UpdatedAt
	}

	return pkgpostgres.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		for i, p := range products {
			if _, err := tx.Exec(ctx, upsertSQL, p.ID, p.Bank.ID, p.Purpose.String(), docs[i], p.Active, p.UpdatedAt); err != nil {
				return fmt.Errorf("upsert product %s: %w", p.ID, err)
			}
		}
		if _, err := tx.Exec(ctx, deactivateSQL, ids, deactivatedAt); err != nil {
			return fmt.Errorf("deactivate missing products: %w", err)
		}
		return insertOutbox(ctx, tx, evts)
	})
}

func scanProduct(s scannable) (model.ProductCandidate, error) {
	var (
		id        string
		data      []byte
		active    bool
		updatedAt time.Time
	)
	if err := s.Scan(&id, &data, &active, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ProductCandidate{}, err
		}
		return model.ProductCandidate{}, fmt.Errorf("scan product: %w", err)
	}

	var p model.ProductCandidate
	if err := json.Unmarshal(data, &p); err != nil {
		return model.ProductCandidate{}, fmt.Errorf("decode product %s: %w", id, err)
	}
	p.ID = id
	p.Active = active
	p.UpdatedAt = updatedAt.UTC()
	return p, nil
}

type scannable interface {
	Scan(dest ...any) error
}
