package main

import (
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/spf13/cobra"

	"github.com/erc7824/tracelog/pkg/log"
)

func newRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "tracelog",
		Short:         "Write log records as events on tracing spans",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newDemoCommand(&configPath))
	rootCmd.AddCommand(newConfigCommand(&configPath))

	return rootCmd
}

// newDiagLogger builds the logger for the tool's own diagnostics from the
// LOG_* environment variables.
func newDiagLogger() (log.Logger, error) {
	var conf log.Config
	if err := cleanenv.ReadEnv(&conf); err != nil {
		return nil, err
	}
	return log.NewZapLogger(conf).WithName("tracelog"), nil
}
