package replication

import (
	"bytes"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/turbolytics/curator/internal/replication"
)

func newValidateCommand() *cobra.Command {
	var (
		configPath string
		noLint     bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validates a replication config without producing output",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger, _ := zap.NewDevelopment()
			defer logger.Sync()
			l := logger.Named("curator.replication.validate")

			raw, err := ReadConfig(ctx, configPath, l)
			if err != nil {
				return err
			}

			doc, err := replication.NewDocumentFromReader(bytes.NewReader(raw))
			if err != nil {
				return err
			}

			if !noLint {
				if err := replication.LintSQL(doc); err != nil {
					return err
				}
			}

			res, err := replication.Resolve(doc)
			if err != nil {
				return err
			}

			l.Info(
				"config is valid",
				zap.String("source", res.Source),
				zap.String("target", res.Target),
				zap.Int("streams", len(res.Streams)),
				zap.Int("enabled", len(res.Enabled())),
			)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to replication config (file, s3:// URL, or - for stdin)")
	cmd.MarkFlagRequired("config")
	cmd.Flags().BoolVar(&noLint, "no-lint", false, "Skip linting of custom sql blocks")

	return cmd
}
