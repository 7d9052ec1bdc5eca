package replication

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/turbolytics/curator/internal/postgres"
	"github.com/turbolytics/curator/internal/replication"
)

func newDiscoverCommand() *cobra.Command {
	var (
		configPath string
		check      bool
	)

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Expands wildcard streams against the source database catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger, _ := zap.NewDevelopment()
			defer logger.Sync()
			l := logger.Named("curator.replication.discover")

			raw, err := ReadConfig(ctx, configPath, l)
			if err != nil {
				return err
			}

			doc, err := replication.NewDocumentFromReader(bytes.NewReader(raw))
			if err != nil {
				return err
			}

			dsn := viper.GetString("source_dsn")
			if dsn == "" {
				return fmt.Errorf("source dsn is required (set --dsn or CURATOR_SOURCE_DSN)")
			}

			conn, err := pgx.Connect(ctx, dsn)
			if err != nil {
				return err
			}
			cat := postgres.NewCatalog(conn, postgres.WithLogger(l))
			defer cat.Close(ctx)

			if check {
				return checkStreams(cmd, doc, cat)
			}

			expanded, err := replication.ExpandWildcards(ctx, doc, cat)
			if err != nil {
				return err
			}

			bs, err := yaml.Marshal(expanded)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(bs))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to replication config (file, s3:// URL, or - for stdin)")
	cmd.MarkFlagRequired("config")
	cmd.Flags().String("dsn", "", "Source database connection string")
	viper.BindPFlag("source_dsn", cmd.Flags().Lookup("dsn"))
	cmd.Flags().BoolVar(&check, "check", false, "Verify that every concrete stream exists in the source")

	return cmd
}

// checkStreams verifies that each concrete, table-backed stream names a
// relation that exists in the source database. Wildcards and sql-backed
// streams are skipped: wildcards are expanded against the catalog instead,
// and custom sql is validated by the lint pass.
func checkStreams(cmd *cobra.Command, doc *replication.Document, cat *postgres.Catalog) error {
	ctx := cmd.Context()

	var missing []string
	for _, s := range doc.Streams {
		id, err := replication.ParseIdentifier(s.Name)
		if err != nil {
			return err
		}
		if id.Wildcard() {
			continue
		}
		if s.SQL != nil && strings.TrimSpace(*s.SQL) != "" {
			continue
		}

		schema := id.Schema
		if schema == "" {
			schema = "public"
		}
		ok, err := cat.TableExists(ctx, schema, id.Table)
		if err != nil {
			return err
		}
		if !ok {
			missing = append(missing, s.Name)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%d stream(s) missing from source: %s", len(missing), strings.Join(missing, ", "))
	}

	fmt.Fprintln(cmd.OutOrStdout(), "all streams present in source")
	return nil
}
