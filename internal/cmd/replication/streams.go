package replication

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/turbolytics/curator/internal/replication"
)

func newStreamsCommand() *cobra.Command {
	var (
		configPath string
		all        bool
	)

	cmd := &cobra.Command{
		Use:   "streams",
		Short: "Lists the resolved streams in a replication config",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger, _ := zap.NewDevelopment()
			defer logger.Sync()
			l := logger.Named("curator.replication.streams")

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

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tOBJECT\tMODE\tPRIMARY KEY\tUPDATE KEY\tDISABLED")
			for _, s := range res.Streams {
				if s.Disabled && !all {
					continue
				}
				fmt.Fprintf(
					w,
					"%s\t%s\t%s\t%s\t%s\t%t\n",
					s.Name,
					s.Object,
					s.Mode,
					strings.Join(s.PrimaryKey, ","),
					s.UpdateKey,
					s.Disabled,
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to replication config (file, s3:// URL, or - for stdin)")
	cmd.MarkFlagRequired("config")
	cmd.Flags().BoolVar(&all, "all", false, "Include disabled streams")

	return cmd
}
