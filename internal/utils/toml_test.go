package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTomlDecode(t *testing.T) {
	tests := []struct {
		provided string
		expected interface{}
	}{
		{
			provided: "[logging]\n  level = \"debug\"\n  markersToLog = [\"PERFORMANCE\"]\n",
			expected: map[string]interface{}{
				"logging": map[string]interface{}{
					"level":        "debug",
					"markersToLog": []interface{}{"PERFORMANCE"},
				},
			},
		},
	}

	for _, test := range tests {
		result, err := TomlDecode(test.provided)
		assert.NoError(t, err)
		assert.Equal(t, test.expected, result)
	}
}

func TestMerge(t *testing.T) {
	tests := []struct {
		provided interface{}
		patch    interface{}
		expected interface{}
	}{
		{
			provided: map[string]interface{}{
				"main": map[string]interface{}{
					"dataFolder": "./data",
					"apiKey":     "",
				},
			},
			patch: map[string]interface{}{
				"main": map[string]interface{}{
					"apiKey": "secret",
				},
			},
			expected: map[string]interface{}{
				"main": map[string]interface{}{
					"dataFolder": "./data",
					"apiKey":     "secret",
				},
			},
		},
	}

	for _, test := range tests {
		result, err := Merge(test.provided, test.patch)
		assert.NoError(t, err)
		assert.Equal(t, test.expected, result)
	}
}
