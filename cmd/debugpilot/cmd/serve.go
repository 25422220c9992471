package cmd

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/voluzi/debugpilot/internal/config"
	"github.com/voluzi/debugpilot/internal/environ"
	"github.com/voluzi/debugpilot/internal/logging"
	"github.com/voluzi/debugpilot/pkg/cpusampler"
	"github.com/voluzi/debugpilot/pkg/server"
)

var (
	configFile      string
	host            string
	port            int
	pid             int
	processName     string
	dataDir         string
	databaseFile    string
	archiveFormat   string
	samplerInterval time.Duration
	markers         []string
	maxBundleLog    string
	retainThreads   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Samples thread CPU usage and serves debug infos over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// flags keep precedence over the file across reloads
		holder, err := config.NewHolder(configFile, config.WithOverrides(func(cfg *config.Config) {
			applyFlagOverrides(cmd, cfg)
		}))
		if err != nil {
			return err
		}
		cfg := holder.Current()

		closer, err := logging.Setup(cfg.Logging.Level, cfg.Logging.File)
		if err != nil {
			return err
		}
		defer closer.Close()

		srv, err := server.New(
			server.WithConfig(holder),
			server.WithHost(cfg.Main.Host),
			server.WithPort(cfg.Main.Port),
			server.WithPID(pid),
			server.WithProcessName(processName),
			server.WithSamplerInterval(samplerInterval),
			server.WithRetainTerminatedThreads(retainThreads),
			server.WithVersion(Version),
		)
		if err != nil {
			return err
		}

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			sig := <-sigChan
			log.Infof("received signal: %v", sig)
			if err := srv.Stop(); err != nil {
				log.Errorf("failed to stop server: %v", err)
			}
		}()

		return srv.Start()
	},
}

// isSet reports whether a flag was passed explicitly or through its environment variable.
func isSet(cmd *cobra.Command, flag, env string) bool {
	_, ok := os.LookupEnv(env)
	return cmd.Flags().Changed(flag) || ok
}

func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if isSet(cmd, "log-level", "LOG_LEVEL") {
		cfg.Logging.Level = logLevel
	}
	if isSet(cmd, "host", "HOST") {
		cfg.Main.Host = host
	}
	if isSet(cmd, "port", "PORT") {
		cfg.Main.Port = port
	}
	if isSet(cmd, "data-dir", "DATA_DIR") {
		cfg.Main.DataFolder = dataDir
		cfg.Database.File = filepath.Join(dataDir, "database", "debugpilot.db")
		cfg.Logging.File = filepath.Join(dataDir, "logs", "debugpilot.log")
	}
	if isSet(cmd, "database", "DATABASE_FILE") {
		cfg.Database.File = databaseFile
	}
	if isSet(cmd, "archive-format", "ARCHIVE_FORMAT") {
		cfg.Debug.ArchiveFormat = archiveFormat
	}
	if isSet(cmd, "markers", "MARKERS") {
		cfg.Logging.MarkersToLog = markers
	}
	if isSet(cmd, "max-bundle-log-size", "MAX_BUNDLE_LOG_SIZE") {
		cfg.Logging.MaxBundleLogSize = maxBundleLog
	}
}

func init() {
	defaults := config.Default()
	defaultMaxBundleLog, _ := defaults.Logging.MaxBundleLogBytes()

	serveCmd.Flags().StringVar(&configFile, "config",
		environ.GetString("CONFIG", ""),
		"YAML or TOML config file. Changes to it are applied while running",
	)
	serveCmd.Flags().StringVar(&host, "host",
		environ.GetString("HOST", defaults.Main.Host),
		"the host at which this server will be listening to",
	)
	serveCmd.Flags().IntVar(&port, "port",
		environ.GetInt("PORT", defaults.Main.Port),
		"the port at which this server will be listening to",
	)
	serveCmd.Flags().IntVar(&pid, "pid",
		environ.GetInt("PID", 0),
		"pid of the process to monitor. Defaults to this process",
	)
	serveCmd.Flags().StringVar(&processName, "process-name",
		environ.GetString("PROCESS_NAME", ""),
		"name of the process to monitor. Takes precedence over --pid",
	)
	serveCmd.Flags().StringVar(&dataDir, "data-dir",
		environ.GetString("DATA_DIR", defaults.Main.DataFolder),
		"the directory holding the database and logs",
	)
	serveCmd.Flags().StringVar(&databaseFile, "database",
		environ.GetString("DATABASE_FILE", defaults.Database.File),
		"the database file",
	)
	serveCmd.Flags().StringVar(&archiveFormat, "archive-format",
		environ.GetString("ARCHIVE_FORMAT", defaults.Debug.ArchiveFormat),
		"debug infos archive format. One of zip, tar.gz",
	)
	serveCmd.Flags().DurationVar(&samplerInterval, "sampler-interval",
		environ.GetDuration("SAMPLER_INTERVAL", cpusampler.DefaultInterval),
		"interval between thread cpu usage samples",
	)

	serveCmd.Flags().StringSliceVar(&markers, "markers",
		environ.GetStringSlice("MARKERS", defaults.Logging.MarkersToLog),
		"logging markers to enable, e.g. PERFORMANCE,HTTP",
	)
	serveCmd.Flags().StringVar(&maxBundleLog, "max-bundle-log-size",
		environ.GetByteSize("MAX_BUNDLE_LOG_SIZE", defaultMaxBundleLog).String(),
		"only the last part of the log up to this size goes into debug infos",
	)
	serveCmd.Flags().BoolVar(&retainThreads, "retain-terminated-threads",
		environ.GetBool("RETAIN_TERMINATED_THREADS", false),
		"keep cpu times of terminated threads instead of forgetting them",
	)

	rootCmd.AddCommand(serveCmd)
}
