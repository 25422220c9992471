package logging

import (
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkers(t *testing.T) {
	SetMarkers(nil)
	assert.False(t, Enabled(Performance))

	SetMarkers([]string{"performance", " http "})
	assert.True(t, Enabled(Performance))
	assert.True(t, Enabled(HTTP))

	SetMarkers([]string{"HTTP"})
	assert.False(t, Enabled(Performance))
	assert.True(t, Enabled(HTTP))
}

func TestWithMarker(t *testing.T) {
	entry := WithMarker(Performance)
	assert.Equal(t, "PERFORMANCE", entry.Data["marker"])
}

func TestSetup(t *testing.T) {
	defer log.SetOutput(os.Stderr)

	_, err := Setup("loud", "")
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "logs", "debugpilot.log")
	closer, err := Setup("debug", file)
	require.NoError(t, err)
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	log.Info("written to file")
	require.NoError(t, closer.Close())

	content, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(content), "written to file")

	log.SetLevel(log.InfoLevel)
}
