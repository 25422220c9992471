package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/voluzi/debugpilot/internal/environ"
	"github.com/voluzi/debugpilot/pkg/server"
)

// Version is set at build time with -ldflags "-X ...cmd.Version=<version>".
var Version = "dev"

var logLevel string
var serverURL string

var rootCmd = &cobra.Command{
	Use:   "debugpilot",
	Short: "Per-thread CPU sampling and debug infos for a running process",
	Long: `debugpilot samples the CPU usage of every thread of a process, keeps a short history
of it and assembles debug infos archives with anonymized logs, config and metrics.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logLvl, err := log.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level: %w", err)
		}
		log.SetLevel(logLvl)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Prints the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel,
		"log-level",
		environ.GetString("LOG_LEVEL", "info"),
		"Log level. One of debug, info, warn, error, fatal, panic.",
	)
	rootCmd.AddCommand(versionCmd)
}

// addServerFlag registers --server on commands talking to a running server.
func addServerFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&serverURL, "server",
		environ.GetString("DEBUGPILOT_SERVER", fmt.Sprintf("http://127.0.0.1:%d", server.DefaultPort)),
		"URL of the debugpilot server",
	)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
