package cmd

import (
	"github.com/spf13/cobra"

	"github.com/voluzi/debugpilot/internal/config"
	"github.com/voluzi/debugpilot/internal/environ"
	"github.com/voluzi/debugpilot/pkg/debuginfos"
)

var (
	logsConfigFile string
	followLogs     bool
)

var logsCmd = &cobra.Command{
	Use:   "logs [file]",
	Short: "Prints an anonymized log file. Defaults to the configured log file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(logsConfigFile)
		if err != nil {
			return err
		}
		path := cfg.Logging.File
		if len(args) == 1 {
			path = args[0]
		}
		anonymizer := debuginfos.NewRegexAnonymizer(cfg.Main.ApiKey, cfg.Main.Username, cfg.Main.Password)
		return debuginfos.FollowLog(cmd.Context(), path, followLogs, anonymizer, cmd.OutOrStdout())
	},
}

func init() {
	logsCmd.Flags().StringVar(&logsConfigFile, "config", environ.GetString("CONFIG", ""), "config file providing the log location and secrets to hide")
	logsCmd.Flags().BoolVarP(&followLogs, "follow", "f", false, "keep printing new lines")
	rootCmd.AddCommand(logsCmd)
}
