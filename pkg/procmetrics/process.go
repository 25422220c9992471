package procmetrics

import (
	"fmt"
	"os"
	"time"

	"emperror.dev/errors"
	"github.com/prometheus/procfs"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/process"
)

// ProcessSource reads metrics of a single process from the host.
type ProcessSource struct {
	pid  int
	proc *process.Process
	fs   procfs.FS
	now  func() time.Time
}

var _ Source = (*ProcessSource)(nil)

// NewProcessSource monitors the process with the given pid.
func NewProcessSource(pid int) (*ProcessSource, error) {
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return nil, errors.Wrapf(err, "process %d not found", pid)
	}
	fs, err := procfs.NewDefaultFS()
	if err != nil {
		return nil, errors.Wrap(err, "failed to open procfs")
	}
	return &ProcessSource{
		pid:  pid,
		proc: proc,
		fs:   fs,
		now:  time.Now,
	}, nil
}

// NewSelfSource monitors the current process.
func NewSelfSource() (*ProcessSource, error) {
	return NewProcessSource(os.Getpid())
}

// FindProcessByName searches for a process by name using gopsutil
func FindProcessByName(name string) (*process.Process, error) {
	processes, err := process.Processes()
	if err != nil {
		return nil, err
	}

	for _, proc := range processes {
		pname, err := proc.Name()
		if err == nil && pname == name {
			return proc, nil
		}
	}
	return nil, fmt.Errorf("process %s not found", name)
}

func (s *ProcessSource) PID() int {
	return s.pid
}

func (s *ProcessSource) UptimeMillis() (float64, error) {
	created, err := s.proc.CreateTime()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get process create time")
	}
	return float64(s.now().UnixMilli() - created), nil
}

func (s *ProcessSource) CPUCount() (int, error) {
	n, err := cpu.Counts(true)
	if err != nil {
		return 0, errors.Wrap(err, "failed to count cpus")
	}
	if n <= 0 {
		return 0, errors.Errorf("invalid cpu count %d", n)
	}
	return n, nil
}

func (s *ProcessSource) ListThreads() ([]Thread, error) {
	procs, err := s.fs.AllThreads(s.pid)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list threads of process %d", s.pid)
	}

	threads := make([]Thread, 0, len(procs))
	for _, p := range procs {
		stat, err := p.Stat()
		if err != nil {
			// thread exited between listing and reading
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, errors.Wrapf(err, "failed to read stat of thread %d", p.PID)
		}
		threads = append(threads, Thread{
			Name:         stat.Comm,
			ID:           int64(stat.PID),
			CPUTimeNanos: int64(stat.CPUTime() * float64(time.Second)),
		})
	}
	return threads, nil
}

func (s *ProcessSource) ProcessCPUUsage() (float64, error) {
	percent, err := s.proc.CPUPercent()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get process cpu usage")
	}
	return percent / 100, nil
}

func (s *ProcessSource) MemoryUsed() (uint64, error) {
	mem, err := s.proc.MemoryInfo()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get memory info")
	}
	return mem.RSS, nil
}
