package cmd

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	replicationcmd "github.com/turbolytics/curator/internal/cmd/replication"
	"github.com/turbolytics/curator/internal/replication"
	"github.com/turbolytics/curator/internal/server"
)

func newServeCommand() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serves a resolved replication config over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger, _ := zap.NewDevelopment()
			defer logger.Sync()
			l := logger.Named("curator.serve")

			raw, err := replicationcmd.ReadConfig(ctx, configPath, l)
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

			l.Info(
				"serving replication config",
				zap.String("source", res.Source),
				zap.String("target", res.Target),
				zap.Int("streams", len(res.Streams)),
			)

			s := server.New(res, l)
			if err := s.Start(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to replication config (file, s3:// URL, or - for stdin)")
	cmd.MarkFlagRequired("config")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")

	return cmd
}
