package cpusampler

import "time"

const (
	DefaultInterval          = 5 * time.Second
	DefaultCapacity          = 50
	DefaultUsageLogThreshold = 5
	MaxUsage                 = 99
)

type Options struct {
	Interval time.Duration
	Capacity int
	// UsageLogThreshold is the usage above which a thread is logged.
	UsageLogThreshold float64
	// RetainTerminatedThreads keeps last-seen CPU times of threads that are
	// no longer listed.
	RetainTerminatedThreads bool
	Clock                   func() time.Time
}

type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		Interval:          DefaultInterval,
		Capacity:          DefaultCapacity,
		UsageLogThreshold: DefaultUsageLogThreshold,
		Clock:             time.Now,
	}
}

func WithInterval(d time.Duration) Option {
	return func(opts *Options) {
		opts.Interval = d
	}
}

func WithCapacity(n int) Option {
	return func(opts *Options) {
		opts.Capacity = n
	}
}

func WithUsageLogThreshold(v float64) Option {
	return func(opts *Options) {
		opts.UsageLogThreshold = v
	}
}

func WithRetainTerminatedThreads(retain bool) Option {
	return func(opts *Options) {
		opts.RetainTerminatedThreads = retain
	}
}

func WithClock(clock func() time.Time) Option {
	return func(opts *Options) {
		opts.Clock = clock
	}
}
