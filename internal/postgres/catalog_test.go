package postgres

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/turbolytics/curator/internal/replication"
)

func TestIntegrationCatalog(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	// Start a PostgreSQL container
	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16",
		tcpostgres.WithInitScripts(filepath.Join("testdata", "init-db.sql")),
		tcpostgres.WithDatabase("test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(5*time.Second)),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate pgContainer: %s", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	conn, err := pgx.Connect(ctx, connStr)
	require.NoError(t, err)

	cat := NewCatalog(conn)
	t.Cleanup(func() {
		_ = cat.Close(ctx)
	})

	t.Run("tables", func(t *testing.T) {
		tables, err := cat.Tables(ctx, "public")
		require.NoError(t, err)

		assert.ElementsMatch(t, []string{"accounts", "users", "MixedCase"}, tables)
		assert.NotContains(t, tables, "active_users")
	})

	t.Run("table exists", func(t *testing.T) {
		exists, err := cat.TableExists(ctx, "public", "accounts")
		require.NoError(t, err)
		assert.True(t, exists)

		// Views count as replicable sources.
		exists, err = cat.TableExists(ctx, "public", "active_users")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = cat.TableExists(ctx, "public", "nope")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("wildcard expansion", func(t *testing.T) {
		doc, err := replication.NewDocumentFromReader(strings.NewReader(`
source: PG
target: WH
defaults:
  object: "{stream_schema}_{stream_table}"
streams:
  public.accounts:
    primary_key: id
  public.*:
  audit.*:
    disabled: true
`))
		require.NoError(t, err)

		expanded, err := replication.ExpandWildcards(ctx, doc, cat)
		require.NoError(t, err)

		var names []string
		for _, s := range expanded.Streams {
			names = append(names, s.Name)
		}
		assert.ElementsMatch(t, []string{
			"public.accounts",
			"public.users",
			`public."MixedCase"`,
			"audit.events",
		}, names)

		res, err := replication.Resolve(expanded)
		require.NoError(t, err)

		mixed, ok := res.Stream(`public."MixedCase"`)
		require.True(t, ok)
		assert.Equal(t, "public_MixedCase", mixed.Object)

		events, ok := res.Stream("audit.events")
		require.True(t, ok)
		assert.True(t, events.Disabled)
	})
}
