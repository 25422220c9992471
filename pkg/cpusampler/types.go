package cpusampler

import "time"

// ThreadCpuUsage is the CPU usage of one thread over one sampling interval.
type ThreadCpuUsage struct {
	ThreadName string `json:"threadName"`
	ThreadID   int64  `json:"threadId"`
	// CPUUsage is within [0,99].
	CPUUsage int `json:"cpuUsage"`
}

// TimeAndThreadCpuUsages is the record produced by one sampling tick.
type TimeAndThreadCpuUsages struct {
	Time            time.Time        `json:"time"`
	ThreadCpuUsages []ThreadCpuUsage `json:"threadCpuUsages"`
}

// threadKey identifies a thread across ticks. Thread names are not unique on
// every platform, so the id is part of the key.
type threadKey struct {
	id   int64
	name string
}
