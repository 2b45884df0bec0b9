package testutil

import (
	"context"
	"io/fs"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	pgutil "github.com/bibbank/mortgage-advisor/pkg/postgres"
)

// PostgresContainer wraps a testcontainers PostgreSQL instance.
type PostgresContainer struct {
	Container *postgres.PostgresContainer
	DSN       string
	Pool      *pgxpool.Pool
}

// NewPostgresContainer starts a PostgreSQL container for testing. The test is
// skipped in -short mode. The container is terminated when the test ends.
func NewPostgresContainer(ctx context.Context, t *testing.T) *PostgresContainer {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("advisor_test"),
		postgres.WithUsername("advisor"),
		postgres.WithPassword("advisor"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	pc := &PostgresContainer{Container: pgContainer}
	t.Cleanup(func() { pc.cleanup(t) })

	pc.DSN, err = pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	pc.Pool, err = pgxpool.New(ctx, pc.DSN)
	if err != nil {
		t.Fatalf("failed to create pgxpool: %v", err)
	}
	if err := pc.Pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping postgres: %v", err)
	}

	return pc
}

// Migrate applies the migrations under dir in fsys.
func (pc *PostgresContainer) Migrate(t *testing.T, fsys fs.FS, dir string) {
	t.Helper()
	if err := pgutil.RunMigrations(pc.DSN, fsys, dir); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
}

// MigrateDown rolls back every migration under dir in fsys.
func (pc *PostgresContainer) MigrateDown(t *testing.T, fsys fs.FS, dir string) {
	t.Helper()
	if err := pgutil.RunMigrationsDown(pc.DSN, fsys, dir); err != nil {
		t.Fatalf("failed to roll back migrations: %v", err)
	}
}

// Truncate empties tables between subtests.
func (pc *PostgresContainer) Truncate(t *testing.T, tables ...string) {
	t.Helper()
	for _, table := range tables {
		if _, err := pc.Pool.Exec(context.Background(), "TRUNCATE TABLE "+table+" CASCADE"); err != nil {
			t.Fatalf("failed to truncate %s: %v", table, err)
		}
	}
}

func (pc *PostgresContainer) cleanup(t *testing.T) {
	t.Helper()

	if pc.Pool != nil {
		pc.Pool.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := pc.Container.Terminate(ctx); err != nil {
		t.Logf("warning: failed to terminate postgres container: %v", err)
	}
}
