package replication

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replication",
		Short: "Commands for working with replication configs",
	}

	cmd.PersistentFlags().String("aws-region", "", "AWS region for s3:// config locations")
	viper.BindPFlag("aws_region", cmd.PersistentFlags().Lookup("aws-region"))
	viper.SetEnvPrefix("CURATOR")
	viper.AutomaticEnv()

	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newCompileCommand())
	cmd.AddCommand(newPlanCommand())
	cmd.AddCommand(newStreamsCommand())
	cmd.AddCommand(newDiscoverCommand())
	cmd.AddCommand(newInitCommand())

	return cmd
}
