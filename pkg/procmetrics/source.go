package procmetrics

// Thread is one OS thread of the monitored process.
type Thread struct {
	Name string
	ID   int64
	// CPUTimeNanos is the cumulative CPU time consumed since the thread was created.
	CPUTimeNanos int64
}

// Source exposes the runtime metrics diagnostics are built from.
type Source interface {
	// UptimeMillis is the time since the monitored process started.
	UptimeMillis() (float64, error)
	// CPUCount is the number of logical CPUs available.
	CPUCount() (int, error)
	ListThreads() ([]Thread, error)
	// ProcessCPUUsage is the process CPU usage as a fraction of one CPU.
	ProcessCPUUsage() (float64, error)
	// MemoryUsed is the resident set size in bytes.
	MemoryUsed() (uint64, error)
}
