package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/c2h5oh/datasize"
	"github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/voluzi/debugpilot/pkg/cpusampler"
	"github.com/voluzi/debugpilot/pkg/server"
)

var follow bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Prints the thread cpu usage history of a running server as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := server.NewClient(serverURL)
		if follow {
			// one JSON document per line
			return client.StreamThreadCpuUsage(cmd.Context(), func(record cpusampler.TimeAndThreadCpuUsages) {
				b, err := json.Marshal(record)
				if err != nil {
					log.Errorf("error encoding record: %v", err)
					return
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
			})
		}

		history, err := client.GetThreadCpuUsage(cmd.Context())
		if err != nil {
			return err
		}
		b, err := json.MarshalIndent(history, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}

var bundleCmd = &cobra.Command{
	Use:   "bundle <out>",
	Short: "Downloads the debug infos archive. <out> may be a file or a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := args[0]
		tmp, err := os.CreateTemp(filepath.Dir(filepath.Clean(out)), ".debuginfos-*")
		if err != nil {
			return err
		}
		defer os.Remove(tmp.Name())

		filename, err := server.NewClient(serverURL).DownloadDebugInfos(cmd.Context(), tmp)
		if closeErr := tmp.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return err
		}

		if info, err := os.Stat(out); err == nil && info.IsDir() {
			if filename == "" {
				filename = "debuginfos.zip"
			}
			out = filepath.Join(out, filename)
		}
		if err := os.Rename(tmp.Name(), out); err != nil {
			return err
		}
		if info, err := os.Stat(out); err == nil {
			log.WithField("size", datasize.ByteSize(info.Size()).HumanReadable()).Infof("debug infos written to %s", out)
		}
		return nil
	},
}

var sqlCmd = &cobra.Command{
	Use:   "sql",
	Short: "Runs SQL against the database of a running server",
}

var sqlQueryCmd = &cobra.Command{
	Use:   "query <sql>",
	Short: "Runs a query and prints the result as CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		csv, err := server.NewClient(serverURL).ExecuteSQLQuery(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), csv)
		return nil
	},
}

var sqlUpdateCmd = &cobra.Command{
	Use:   "update <sql>",
	Short: "Runs a statement and prints the number of affected rows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		affected, err := server.NewClient(serverURL).ExecuteSQLUpdate(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), affected)
		return nil
	},
}

var threadDumpCmd = &cobra.Command{
	Use:   "threaddump",
	Short: "Prints the goroutine dump of a running server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dump, err := server.NewClient(serverURL).ThreadDump(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), dump)
		return nil
	},
}

func init() {
	historyCmd.Flags().BoolVarP(&follow, "follow", "f", false, "stream new records as they are sampled")
	for _, c := range []*cobra.Command{historyCmd, bundleCmd, sqlQueryCmd, sqlUpdateCmd, threadDumpCmd} {
		addServerFlag(c)
	}
	sqlCmd.AddCommand(sqlQueryCmd, sqlUpdateCmd)
	rootCmd.AddCommand(historyCmd, bundleCmd, sqlCmd, threadDumpCmd)
}
