package cmd

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/c2h5oh/datasize"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voluzi/debugpilot/internal/config"
	"github.com/voluzi/debugpilot/pkg/procmetrics"
	"github.com/voluzi/debugpilot/pkg/server"
)

func testServerURL(t *testing.T) string {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Logging.File = filepath.Join(dir, "logs", "debugpilot.log")
	cfg.Database.File = filepath.Join(dir, "database", "debugpilot.db")

	srv, err := server.New(
		server.WithConfig(config.StaticHolder(cfg)),
		server.WithSource(procmetrics.NewMockSource(1)),
		server.WithTempDir(t.TempDir()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { srv.Stop() })

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

func execute(t *testing.T, args ...string) string {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestClientCommands(t *testing.T) {
	url := testServerURL(t)

	assert.Equal(t, "[]\n", execute(t, "history", "--server", url))
	assert.Equal(t, "0\n", execute(t, "sql", "update", "CREATE TABLE SEARCH (id INTEGER)", "--server", url))
	assert.Equal(t, "1\n", execute(t, "sql", "update", "INSERT INTO SEARCH VALUES (7)", "--server", url))
	assert.Equal(t, "id\n7\n", execute(t, "sql", "query", "SELECT id FROM SEARCH", "--server", url))
	assert.Contains(t, execute(t, "threaddump", "--server", url), "goroutine ")

	dir := t.TempDir()
	execute(t, "bundle", dir, "--server", url)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Regexp(t, `^debugpilot-debuginfos-.*\.zip$`, entries[0].Name())

	out := filepath.Join(t.TempDir(), "bundle.zip")
	execute(t, "bundle", out, "--server", url)
	assert.FileExists(t, out)
}

func TestVersion(t *testing.T) {
	assert.Equal(t, "dev\n", execute(t, "version"))
}

func TestApplyFlagOverrides(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "")
	cmd.Flags().StringVar(&archiveFormat, "archive-format", "", "")
	cmd.Flags().IntVar(&port, "port", 0, "")
	cmd.Flags().StringSliceVar(&markers, "markers", nil, "")
	cmd.Flags().StringVar(&maxBundleLog, "max-bundle-log-size", "", "")
	require.NoError(t, cmd.Flags().Parse([]string{
		"--data-dir", "/srv/pilot",
		"--archive-format", "tar.gz",
		"--markers", "PERFORMANCE,HTTP",
		"--max-bundle-log-size", "2MB",
	}))

	cfg := config.Default()
	applyFlagOverrides(cmd, cfg)

	assert.Equal(t, "/srv/pilot", cfg.Main.DataFolder)
	assert.Equal(t, filepath.Join("/srv/pilot", "database", "debugpilot.db"), cfg.Database.File)
	assert.Equal(t, filepath.Join("/srv/pilot", "logs", "debugpilot.log"), cfg.Logging.File)
	assert.Equal(t, "tar.gz", cfg.Debug.ArchiveFormat)
	assert.Equal(t, []string{"PERFORMANCE", "HTTP"}, cfg.Logging.MarkersToLog)
	size, err := cfg.Logging.MaxBundleLogBytes()
	require.NoError(t, err)
	assert.Equal(t, 2*datasize.MB, size)
	assert.Equal(t, config.Default().Main.Port, cfg.Main.Port)
}

func TestFlagOverridesSurviveConfigReload(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().StringVar(&archiveFormat, "archive-format", "", "")
	require.NoError(t, cmd.Flags().Parse([]string{"--archive-format", "tar.gz"}))

	path := filepath.Join(t.TempDir(), "debugpilot.yml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: info\n"), 0644))
	holder, err := config.NewHolder(path, config.WithOverrides(func(cfg *config.Config) {
		applyFlagOverrides(cmd, cfg)
	}))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: info\n  markersToLog: [PERFORMANCE]\n"), 0644))
	cfg, err := holder.Reload()
	require.NoError(t, err)

	assert.Equal(t, []string{"PERFORMANCE"}, cfg.Logging.MarkersToLog)
	assert.Equal(t, config.ArchiveFormatTarGz, cfg.Debug.ArchiveFormat)
}

func TestLogsCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte("GET /api?apikey=abc123 from 10.1.2.3\n"), 0644))

	assert.Equal(t, "GET /api?apikey=<hidden> from <hidden-ip>\n", execute(t, "logs", path))
}
