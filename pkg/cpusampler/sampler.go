package cpusampler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"emperror.dev/errors"
	log "github.com/sirupsen/logrus"

	"github.com/voluzi/debugpilot/internal/logging"
	"github.com/voluzi/debugpilot/pkg/procmetrics"
)

var ErrAlreadyStarted = errors.New("sampler already started")

// Source is the subset of procmetrics.Source the sampler reads.
type Source interface {
	UptimeMillis() (float64, error)
	CPUCount() (int, error)
	ListThreads() ([]procmetrics.Thread, error)
}

// Sampler periodically records per-thread CPU usage into a bounded history.
// It is the only writer of its history and last-seen table.
type Sampler struct {
	source Source
	cfg    *Options

	lock           sync.RWMutex
	history        []TimeAndThreadCpuUsages
	lastCPUTimes   map[threadKey]int64
	previousUptime float64
	hooks          []func(TimeAndThreadCpuUsages)

	started  atomic.Bool
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func New(source Source, opts ...Option) *Sampler {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	if options.Capacity < 1 {
		options.Capacity = 1
	}
	if options.Interval <= 0 {
		options.Interval = DefaultInterval
	}

	return &Sampler{
		source:       source,
		cfg:          options,
		history:      make([]TimeAndThreadCpuUsages, 0, options.Capacity),
		lastCPUTimes: make(map[threadKey]int64),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// OnTick registers fn to be called with every record after it is stored.
// Hooks must be registered before Start.
func (s *Sampler) OnTick(fn func(TimeAndThreadCpuUsages)) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.hooks = append(s.hooks, fn)
}

// Start samples immediately and then on every interval until ctx is done or
// Stop is called. It returns ErrAlreadyStarted on subsequent calls.
func (s *Sampler) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	uptime, err := s.source.UptimeMillis()
	if err != nil {
		log.Warnf("failed to get initial uptime: %v", err)
	}
	s.lock.Lock()
	s.previousUptime = uptime
	s.lock.Unlock()

	logging.WithMarker(logging.Performance).
		WithField("interval", s.cfg.Interval).
		Debug("will sample thread cpu usage")

	go s.run(ctx)
	return nil
}

// Stop ends the sampling loop. It is safe to call more than once.
func (s *Sampler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	if s.started.Load() {
		<-s.done
	}
}

func (s *Sampler) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		if err := s.Tick(); err != nil {
			log.Errorf("error sampling thread cpu usage: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
		}
	}
}

// Tick runs a single sampling pass. A failing source aborts the pass without
// touching any state.
func (s *Sampler) Tick() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while sampling: %v", r)
		}
	}()

	uptime, err := s.source.UptimeMillis()
	if err != nil {
		return errors.Wrap(err, "failed to get uptime")
	}
	cpuCount, err := s.source.CPUCount()
	if err != nil {
		return errors.Wrap(err, "failed to get cpu count")
	}
	threads, err := s.source.ListThreads()
	if err != nil {
		return errors.Wrap(err, "failed to list threads")
	}

	record, hooks := s.sample(uptime, cpuCount, threads)
	for _, hook := range hooks {
		hook(record)
	}
	return nil
}

func (s *Sampler) sample(uptime float64, cpuCount int, threads []procmetrics.Thread) (TimeAndThreadCpuUsages, []func(TimeAndThreadCpuUsages)) {
	s.lock.Lock()
	defer s.lock.Unlock()

	elapsed := uptime - s.previousUptime
	record := TimeAndThreadCpuUsages{
		Time:            s.cfg.Clock(),
		ThreadCpuUsages: make([]ThreadCpuUsage, 0, len(threads)),
	}

	listed := make(map[threadKey]struct{}, len(threads))
	for _, thread := range threads {
		key := threadKey{id: thread.ID, name: thread.Name}
		listed[key] = struct{}{}

		last, seen := s.lastCPUTimes[key]
		if !seen {
			s.lastCPUTimes[key] = thread.CPUTimeNanos
			continue
		}

		delta := thread.CPUTimeNanos - last
		if delta < 0 {
			// some platforms report decreasing cpu times for a thread
			continue
		}

		usage := cpuUsage(delta, elapsed, cpuCount)
		if usage > s.cfg.UsageLogThreshold {
			logging.Debugf(logging.Performance, "CPU usage of thread %s: %.2f", thread.Name, usage)
		}
		record.ThreadCpuUsages = append(record.ThreadCpuUsages, ThreadCpuUsage{
			ThreadName: thread.Name,
			ThreadID:   thread.ID,
			CPUUsage:   int(usage),
		})
		s.lastCPUTimes[key] = thread.CPUTimeNanos
	}

	if !s.cfg.RetainTerminatedThreads {
		for key := range s.lastCPUTimes {
			if _, ok := listed[key]; !ok {
				delete(s.lastCPUTimes, key)
			}
		}
	}

	s.push(record)
	s.previousUptime = uptime
	return record, s.hooks
}
