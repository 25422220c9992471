package debuginfos

import (
	"context"
	"os"
	"runtime/debug"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/voluzi/debugpilot/internal/config"
	"github.com/voluzi/debugpilot/pkg/cpusampler"
)

const DefaultAppName = "debugpilot"

// ConfigProvider returns the configuration currently in effect.
type ConfigProvider interface {
	Current() *config.Config
}

type VersionReporter interface {
	Version() string
}

// VersionFunc adapts a function to VersionReporter.
type VersionFunc func() string

func (f VersionFunc) Version() string { return f() }

type HistoryProvider interface {
	GetHistory() []cpusampler.TimeAndThreadCpuUsages
}

// Database is the subset of the application database used for reports.
type Database interface {
	CountRows(ctx context.Context, table string) (int64, error)
	Path() string
}

type Options struct {
	AppName       string
	Version       VersionReporter
	LogProvider   LogProvider
	Anonymizer    Anonymizer
	Database      Database
	Gatherer      prometheus.Gatherer
	History       HistoryProvider
	TempDir       string
	ContainerRoot string

	// CacheTTL overrides debug.archiveCacheSeconds. Negative disables caching.
	CacheTTL time.Duration
}

type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		AppName:       DefaultAppName,
		Version:       VersionFunc(buildVersion),
		TempDir:       os.TempDir(),
		ContainerRoot: "/",
	}
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "unknown"
}

func WithAppName(name string) Option {
	return func(opts *Options) {
		opts.AppName = name
	}
}

func WithVersion(v VersionReporter) Option {
	return func(opts *Options) {
		opts.Version = v
	}
}

func WithLogProvider(p LogProvider) Option {
	return func(opts *Options) {
		opts.LogProvider = p
	}
}

func WithAnonymizer(a Anonymizer) Option {
	return func(opts *Options) {
		opts.Anonymizer = a
	}
}

func WithDatabase(db Database) Option {
	return func(opts *Options) {
		opts.Database = db
	}
}

func WithGatherer(g prometheus.Gatherer) Option {
	return func(opts *Options) {
		opts.Gatherer = g
	}
}

func WithHistory(h HistoryProvider) Option {
	return func(opts *Options) {
		opts.History = h
	}
}

func WithTempDir(dir string) Option {
	return func(opts *Options) {
		opts.TempDir = dir
	}
}

func WithContainerRoot(root string) Option {
	return func(opts *Options) {
		opts.ContainerRoot = root
	}
}

func WithCacheTTL(ttl time.Duration) Option {
	return func(opts *Options) {
		opts.CacheTTL = ttl
	}
}
