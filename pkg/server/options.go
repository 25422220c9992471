package server

import (
	"time"

	"github.com/voluzi/debugpilot/internal/config"
	"github.com/voluzi/debugpilot/pkg/cpusampler"
	"github.com/voluzi/debugpilot/pkg/database"
	"github.com/voluzi/debugpilot/pkg/procmetrics"
)

const DefaultPort = 5077

func defaultOptions() *Options {
	return &Options{
		Host:            "127.0.0.1",
		Port:            DefaultPort,
		SamplerInterval: cpusampler.DefaultInterval,
		Version:         "dev",
	}
}

type Options struct {
	Host            string
	Port            int
	PID             int
	ProcessName     string
	Source          procmetrics.Source
	SamplerInterval time.Duration
	Config          *config.Holder
	Database        *database.DB
	Version         string
	TempDir         string

	// RetainTerminatedThreads keeps sampler state of threads that went away.
	RetainTerminatedThreads bool
}

type Option func(*Options)

func WithHost(s string) Option {
	return func(opts *Options) {
		opts.Host = s
	}
}

func WithPort(v int) Option {
	return func(opts *Options) {
		opts.Port = v
	}
}

// WithPID monitors another process instead of this one.
func WithPID(pid int) Option {
	return func(opts *Options) {
		opts.PID = pid
	}
}

// WithProcessName monitors the first process whose name matches.
func WithProcessName(name string) Option {
	return func(opts *Options) {
		opts.ProcessName = name
	}
}

func WithSource(source procmetrics.Source) Option {
	return func(opts *Options) {
		opts.Source = source
	}
}

func WithSamplerInterval(d time.Duration) Option {
	return func(opts *Options) {
		opts.SamplerInterval = d
	}
}

func WithRetainTerminatedThreads(retain bool) Option {
	return func(opts *Options) {
		opts.RetainTerminatedThreads = retain
	}
}

func WithConfig(holder *config.Holder) Option {
	return func(opts *Options) {
		opts.Config = holder
	}
}

// WithDatabase uses an already opened database. The server will not close it.
func WithDatabase(db *database.DB) Option {
	return func(opts *Options) {
		opts.Database = db
	}
}

func WithVersion(v string) Option {
	return func(opts *Options) {
		opts.Version = v
	}
}

func WithTempDir(dir string) Option {
	return func(opts *Options) {
		opts.TempDir = dir
	}
}
