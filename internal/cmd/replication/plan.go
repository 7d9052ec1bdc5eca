package replication

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/turbolytics/curator/internal/plan"
	"github.com/turbolytics/curator/internal/replication"
)

func newPlanCommand() *cobra.Command {
	var (
		configPath string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Builds an ordered execution plan from a replication config",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger, _ := zap.NewDevelopment()
			defer logger.Sync()
			l := logger.Named("curator.replication.plan")

			raw, err := ReadConfig(ctx, configPath, l)
			if err != nil {
				return err
			}

			doc, err := replication.NewDocumentFromReader(bytes.NewReader(raw))
			if err != nil {
				return err
			}

			res, err := replication.Resolve(doc)
			if err != nil {
				return err
			}

			p, err := plan.New(res)
			if err != nil {
				return err
			}

			bs, err := json.MarshalIndent(p, "", "  ")
			if err != nil {
				return err
			}

			if output == "" {
				fmt.Fprintln(cmd.OutOrStdout(), string(bs))
				return nil
			}

			repo, err := NewRepository(output, l)
			if err != nil {
				return err
			}
			if err := repo.Write(ctx, "plan.json", bytes.NewReader(bs)); err != nil {
				return err
			}

			l.Info(
				"wrote execution plan",
				zap.String("output", output),
				zap.String("plan_id", p.ID),
				zap.Int("tasks", len(p.Tasks)),
				zap.Int("disabled", p.DisabledStreams),
			)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to replication config (file, s3:// URL, or - for stdin)")
	cmd.MarkFlagRequired("config")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output location (directory or s3:// URL); stdout when empty")

	return cmd
}
