package cpusampler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCpuUsage(t *testing.T) {
	tests := []struct {
		name     string
		delta    int64
		elapsed  float64
		cpuCount int
		expected int
	}{
		{
			name:     "truncated to zero",
			delta:    500_000,
			elapsed:  5000,
			cpuCount: 4,
			expected: 0,
		},
		{
			name:     "clamped to max",
			delta:    1_000_000_000_000,
			elapsed:  5000,
			cpuCount: 4,
			expected: MaxUsage,
		},
		{
			name:     "truncated not rounded",
			delta:    199_999_999,
			elapsed:  5000,
			cpuCount: 4,
			expected: 9,
		},
		{
			name:     "exact",
			delta:    200_000_000,
			elapsed:  5000,
			cpuCount: 4,
			expected: 10,
		},
		{
			name:     "zero elapsed",
			delta:    200_000_000,
			elapsed:  0,
			cpuCount: 4,
			expected: 0,
		},
		{
			name:     "negative elapsed",
			delta:    200_000_000,
			elapsed:  -100,
			cpuCount: 4,
			expected: 0,
		},
		{
			name:     "no cpus",
			delta:    200_000_000,
			elapsed:  5000,
			cpuCount: 0,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, int(cpuUsage(tt.delta, tt.elapsed, tt.cpuCount)))
		})
	}
}
