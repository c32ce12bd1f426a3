// Package cli implements the cinequery command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/kalibr1/cinequery/internal/logging"
)

var (
	cfgFile  string
	logLevel string

	// initialized by the root PersistentPreRun
	log *logging.Logger
)

const defaultConfigPath = "cinequery.yaml"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cinequery",
		Short: "cinequery — chat with a movie dataset",
		Long: "cinequery answers natural-language questions about a local movie dataset.\n" +
			"An LLM translates questions into read-only SQL, every query passes a\n" +
			"safety gate, and support requests can be filed as tickets.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := logLevel
			if level == "" {
				level = "info"
			}
			log = logging.New(nil, level)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./cinequery.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error, fatal, silent)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newChatCmd())
	cmd.AddCommand(newAskCmd())
	cmd.AddCommand(newImportCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
