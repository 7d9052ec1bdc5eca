package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Catalog answers questions about what a Postgres source actually
// contains. It backs wildcard expansion and stream existence checks.
type Catalog struct {
	conn   *pgx.Conn
	logger *zap.Logger
}

type CatalogOption func(*Catalog)

func WithLogger(l *zap.Logger) CatalogOption {
	return func(c *Catalog) {
		c.logger = l
	}
}

func NewCatalog(conn *pgx.Conn, opts ...CatalogOption) *Catalog {
	c := &Catalog{
		conn:   conn,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Catalog) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}

// Tables lists ordinary and partitioned tables in the schema, ordered by
// name so wildcard expansion is deterministic.
func (c *Catalog) Tables(ctx context.Context, schema string) ([]string, error) {
	c.logger.Debug("listing tables", zap.String("schema", schema))

	rows, err := c.conn.Query(ctx, `
		SELECT c.relname
		FROM pg_catalog.pg_class c
		JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
		WHERE n.nspname = $1
		  AND c.relkind IN ('r', 'p')
		ORDER BY c.relname`,
		schema,
	)
	if err != nil {
		return nil, fmt.Errorf("listing tables in %q: %w", schema, err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// TableExists also accepts views, materialized views and foreign tables;
// all of them are replicable sources.
func (c *Catalog) TableExists(ctx context.Context, schema, table string) (bool, error) {
	var exists bool
	err := c.conn.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM pg_catalog.pg_class c
			JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
			WHERE n.nspname = $1
			  AND c.relname = $2
			  AND c.relkind IN ('r', 'p', 'v', 'm', 'f')
		)`,
		schema, table,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking %s.%s: %w", schema, table, err)
	}
	return exists, nil
}
