package procmetrics

import (
	"sync"
)

// MockSource is a scriptable Source for tests.
type MockSource struct {
	mu         sync.Mutex
	uptime     float64
	cpuCount   int
	threads    []Thread
	processCPU float64
	memory     uint64

	uptimeErr  error
	cpuErr     error
	threadsErr error
}

var _ Source = (*MockSource)(nil)

func NewMockSource(cpuCount int) *MockSource {
	return &MockSource{cpuCount: cpuCount}
}

func (m *MockSource) SetUptime(ms float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uptime = ms
}

// AdvanceUptime moves uptime forward by ms.
func (m *MockSource) AdvanceUptime(ms float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uptime += ms
}

func (m *MockSource) SetCPUCount(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cpuCount = n
}

func (m *MockSource) SetThreads(threads ...Thread) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.threads = append([]Thread(nil), threads...)
}

func (m *MockSource) SetProcessCPUUsage(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processCPU = v
}

func (m *MockSource) SetMemoryUsed(v uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.memory = v
}

func (m *MockSource) SetUptimeError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uptimeErr = err
}

func (m *MockSource) SetCPUCountError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cpuErr = err
}

func (m *MockSource) SetThreadsError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.threadsErr = err
}

func (m *MockSource) UptimeMillis() (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uptime, m.uptimeErr
}

func (m *MockSource) CPUCount() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cpuCount, m.cpuErr
}

func (m *MockSource) ListThreads() ([]Thread, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.threadsErr != nil {
		return nil, m.threadsErr
	}
	return append([]Thread(nil), m.threads...), nil
}

func (m *MockSource) ProcessCPUUsage() (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.processCPU, nil
}

func (m *MockSource) MemoryUsed() (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.memory, nil
}
