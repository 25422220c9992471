package debuginfos

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegexAnonymizer(t *testing.T) {
	a := NewRegexAnonymizer("s3cr3t", "", "  ", "alice")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "ip",
			input:    "connection from 192.168.1.20 refused",
			expected: "connection from <hidden-ip> refused",
		},
		{
			name:     "query params",
			input:    "GET /api?apikey=abcdef&q=ubuntu&password=xyz",
			expected: "GET /api?apikey=<hidden>&q=ubuntu&password=<hidden>",
		},
		{
			name:     "secrets",
			input:    "user alice logged in with s3cr3t",
			expected: "user <hidden> logged in with <hidden>",
		},
		{
			name:     "untouched",
			input:    "nothing to hide here, version 1.2.3",
			expected: "nothing to hide here, version 1.2.3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, a.Anonymize(tt.input))
		})
	}
}
