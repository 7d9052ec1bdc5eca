package replication

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/turbolytics/curator/internal"
	"github.com/turbolytics/curator/internal/compiler"
)

func newCompileCommand() *cobra.Command {
	var (
		configPath string
		output     string
		format     string
	)

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Resolves a replication config and writes the compiled artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger, _ := zap.NewDevelopment()
			defer logger.Sync()
			l := logger.Named("curator.replication.compile")

			raw, err := ReadConfig(ctx, configPath, l)
			if err != nil {
				return err
			}

			var repo internal.Repository
			if output != "" {
				repo, err = NewRepository(output, l)
				if err != nil {
					return err
				}
			}

			c := compiler.New(
				compiler.WithLogger(l),
				compiler.WithFormat(format),
				compiler.WithRepository(repo),
			)

			result, err := c.Compile(ctx, raw)
			if err != nil {
				return err
			}

			if output == "" {
				fmt.Fprint(cmd.OutOrStdout(), string(result.Resolved))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to replication config (file, s3:// URL, or - for stdin)")
	cmd.MarkFlagRequired("config")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output location (directory or s3:// URL); stdout when empty")
	cmd.Flags().StringVar(&format, "format", "yaml", "Resolved artifact format (yaml or json)")

	return cmd
}
