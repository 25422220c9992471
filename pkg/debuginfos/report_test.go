package debuginfos

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voluzi/debugpilot/internal/logging"
	"github.com/voluzi/debugpilot/pkg/procmetrics"
)

func messages(hook *test.Hook) []string {
	var out []string
	for _, e := range hook.AllEntries() {
		out = append(out, e.Message)
	}
	return out
}

func TestIsRunningInContainer(t *testing.T) {
	root := t.TempDir()
	assert.False(t, IsRunningInContainer(root))

	require.NoError(t, os.WriteFile(filepath.Join(root, ".dockerenv"), nil, 0644))
	assert.True(t, IsRunningInContainer(root))
}

func TestLogDatabaseFolderSize(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	LogDatabaseFolderSize(filepath.Join(t.TempDir(), "missing"))
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, log.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "Database folder not found", hook.LastEntry().Message)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "debugpilot.db"), make([]byte, 2048), 0644))
	LogDatabaseFolderSize(dir)
	assert.Equal(t, log.InfoLevel, hook.LastEntry().Level)
	assert.Equal(t, "Size of database folder: 2.0 KB", hook.LastEntry().Message)
}

func TestLogProcessUsage(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()
	level := log.GetLevel()
	log.SetLevel(log.DebugLevel)
	defer log.SetLevel(level)
	defer logging.SetMarkers(nil)

	source := procmetrics.NewMockSource(2)
	source.SetProcessCPUUsage(0.25)
	source.SetMemoryUsed(64 * 1024 * 1024)

	logging.SetMarkers(nil)
	LogProcessUsage(source)
	assert.Empty(t, hook.AllEntries())

	logging.SetMarkers([]string{string(logging.Performance)})
	LogProcessUsage(source)
	assert.Equal(t, []string{
		"Process CPU usage: 25%",
		"Process memory usage: 64MB",
	}, messages(hook))
	assert.Equal(t, "PERFORMANCE", hook.LastEntry().Data["marker"])
}

func TestThreadDump(t *testing.T) {
	dump := ThreadDump()
	assert.True(t, strings.HasPrefix(dump, "goroutine "))
	assert.Contains(t, dump, "TestThreadDump")
}

func TestLogThreadDump(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()
	level := log.GetLevel()
	log.SetLevel(log.DebugLevel)
	defer log.SetLevel(level)

	dump := LogThreadDump()
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, log.DebugLevel, hook.LastEntry().Level)
	assert.Equal(t, dump, hook.LastEntry().Message)
	assert.Contains(t, dump, "TestLogThreadDump")
}
