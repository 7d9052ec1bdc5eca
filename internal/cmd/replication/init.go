package replication

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const exampleConfig = `source: PG_PROD
target: WAREHOUSE

defaults:
  mode: full-refresh
  object: "{stream_schema}_{stream_table}"
  meta:
    group: default

streams:
  # Inherits everything from defaults.
  public.accounts:

  public.users:
    disabled: true

  public."Transactions":
    mode: incremental
    primary_key: id
    update_key: last_updated_at

  public.all_users:
    sql: |
      select all_user_id, name
      from public.all_users_raw
    object: public.all_users

env:
  LOADED_AT_COLUMN: "true"
`

func newInitCommand() *cobra.Command {
	var (
		output string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Writes a starter replication config",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				if _, err := os.Stat(output); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", output)
				}
			}

			if err := os.WriteFile(output, []byte(exampleConfig), 0644); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "replication.yml", "Where to write the starter config")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	return cmd
}
