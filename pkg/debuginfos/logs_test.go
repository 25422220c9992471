package debuginfos

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLogProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debugpilot.log")
	require.NoError(t, os.WriteFile(path, []byte("first line\nsecond line\n"), 0644))

	content, err := FileLogProvider{Path: path}.Log()
	require.NoError(t, err)
	assert.Equal(t, "first line\nsecond line\n", content)

	content, err = FileLogProvider{Path: path, MaxSize: 12}.Log()
	require.NoError(t, err)
	assert.Equal(t, "second line\n", content)

	_, err = FileLogProvider{Path: filepath.Join(t.TempDir(), "missing.log")}.Log()
	assert.ErrorIs(t, err, os.ErrNotExist)
}
