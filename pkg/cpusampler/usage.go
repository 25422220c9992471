package cpusampler

// cpuUsage converts a CPU time delta into the usage scale used by the chart.
// The result is clamped to [0, MaxUsage]; a non-positive denominator yields 0.
func cpuUsage(deltaCPUTimeNanos int64, elapsedMillis float64, cpuCount int) float64 {
	denominator := elapsedMillis * 1000 * float64(cpuCount)
	if denominator <= 0 {
		return 0
	}
	usage := float64(deltaCPUTimeNanos) / denominator
	if usage > MaxUsage {
		usage = MaxUsage
	}
	if usage < 0 {
		usage = 0
	}
	return usage
}
