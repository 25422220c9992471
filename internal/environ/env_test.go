package environ

import (
	"testing"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/stretchr/testify/assert"
)

type envTest[K any] struct {
	name     string
	fallback K
	set      *string
	expected K
}

func ptr(s string) *string {
	return &s
}

func testEnvGet[K any](t *testing.T, tests []envTest[K], fn func(string, K) K) {
	for _, test := range tests {
		if test.set != nil {
			t.Setenv(test.name, *test.set)
		}
		assert.Equal(t, test.expected, fn(test.name, test.fallback))
	}
}

func TestGetBool(t *testing.T) {
	tests := []envTest[bool]{
		{name: "DEBUGPILOT_BOOL1", fallback: true, set: nil, expected: true},
		{name: "DEBUGPILOT_BOOL2", fallback: true, set: ptr("false"), expected: false},
		{name: "DEBUGPILOT_BOOL3", fallback: false, set: ptr("true"), expected: true},
	}
	testEnvGet(t, tests, GetBool)
}

func TestGetDuration(t *testing.T) {
	tests := []envTest[time.Duration]{
		{name: "DEBUGPILOT_DURATION1", fallback: time.Minute, set: nil, expected: time.Minute},
		{name: "DEBUGPILOT_DURATION2", fallback: time.Minute, set: ptr("5s"), expected: 5 * time.Second},
		{name: "DEBUGPILOT_DURATION3", fallback: time.Minute, set: ptr("soon"), expected: time.Minute},
	}
	testEnvGet(t, tests, GetDuration)
}

func TestGetInt(t *testing.T) {
	tests := []envTest[int]{
		{name: "DEBUGPILOT_INT1", fallback: 10, set: nil, expected: 10},
		{name: "DEBUGPILOT_INT2", fallback: 0, set: ptr("10"), expected: 10},
		{name: "DEBUGPILOT_INT3", fallback: 7, set: ptr("ten"), expected: 7},
	}
	testEnvGet(t, tests, GetInt)
}

func TestGetString(t *testing.T) {
	tests := []envTest[string]{
		{name: "DEBUGPILOT_STRING1", fallback: "hello", set: nil, expected: "hello"},
		{name: "DEBUGPILOT_STRING2", fallback: "hello", set: ptr("world"), expected: "world"},
	}
	testEnvGet(t, tests, GetString)
}

func TestGetStringSlice(t *testing.T) {
	tests := []envTest[[]string]{
		{name: "DEBUGPILOT_SLICE1", fallback: []string{"a"}, set: nil, expected: []string{"a"}},
		{name: "DEBUGPILOT_SLICE2", fallback: nil, set: ptr("PERFORMANCE, HTTP,,"), expected: []string{"PERFORMANCE", "HTTP"}},
	}
	testEnvGet(t, tests, GetStringSlice)
}

func TestGetByteSize(t *testing.T) {
	tests := []envTest[datasize.ByteSize]{
		{name: "DEBUGPILOT_SIZE1", fallback: datasize.MB, set: nil, expected: datasize.MB},
		{name: "DEBUGPILOT_SIZE2", fallback: datasize.MB, set: ptr("25MB"), expected: 25 * datasize.MB},
		{name: "DEBUGPILOT_SIZE3", fallback: datasize.MB, set: ptr("lots"), expected: datasize.MB},
	}
	testEnvGet(t, tests, GetByteSize)
}
