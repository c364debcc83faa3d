//go:build integration

package containers

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"chronicle/internal/platform/postgres"
)

// PostgresContainer wraps a testcontainers PostgreSQL instance with the
// chronicle schema applied.
type PostgresContainer struct {
	Container testcontainers.Container
	URL       string
	Pool      *pgxpool.Pool
}

// NewPostgresContainer starts a PostgreSQL container scoped to the test and
// applies the embedded schema.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("chronicle"),
		tcpostgres.WithUsername("chronicle"),
		tcpostgres.WithPassword("chronicle"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	pool, err := postgres.Connect(ctx, url)
	if err != nil {
		t.Fatalf("failed to connect to postgres: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(ctx, postgres.Schema()); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	return &PostgresContainer{Container: container, URL: url, Pool: pool}
}

// TruncateAll clears every table and resets the sequences. Use between tests
// to ensure isolation.
func (p *PostgresContainer) TruncateAll(ctx context.Context) error {
	_, err := p.Pool.Exec(ctx, `
		TRUNCATE articles, article_suppliers, identity_mappings, kmv_entries, kv_entries, vault_strings;
		INSERT INTO vault_strings (id, value) VALUES (1, '') ON CONFLICT (id) DO NOTHING;
		SELECT setval('vault_string_id_seq', 1, true);
		SELECT setval('business_key_seq', 1, false);
		SELECT setval('row_id_seq', 1, false);
	`)
	return err
}
