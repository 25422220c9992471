package debuginfos

import (
	"github.com/voluzi/debugpilot/internal/logging"
)

// UsageSource provides process wide resource usage.
type UsageSource interface {
	ProcessCPUUsage() (float64, error)
	MemoryUsed() (uint64, error)
}

// LogProcessUsage logs cpu and memory usage of the monitored process when the
// PERFORMANCE marker is enabled. Lookup failures are logged and ignored.
func LogProcessUsage(source UsageSource) {
	if !logging.Enabled(logging.Performance) {
		return
	}
	if usage, err := source.ProcessCPUUsage(); err != nil {
		logging.WithMarker(logging.Performance).WithError(err).Debug("error while logging CPU usage")
	} else {
		logging.Debugf(logging.Performance, "Process CPU usage: %s", FormatSample("process.cpu.usage", usage))
	}
	if used, err := source.MemoryUsed(); err != nil {
		logging.WithMarker(logging.Performance).WithError(err).Debug("error while logging memory usage")
	} else {
		logging.Debugf(logging.Performance, "Process memory usage: %s", FormatSample("process.memory.used", float64(used)))
	}
}
