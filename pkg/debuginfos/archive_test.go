package debuginfos

import (
	"archive/tar"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/pgzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voluzi/debugpilot/internal/config"
)

func readTarGzBytes(t *testing.T, data []byte) map[string]string {
	gz, err := pgzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer gz.Close()

	out := map[string]string{}
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		b, err := io.ReadAll(tr)
		require.NoError(t, err)
		assert.Equal(t, int64(len(b)), hdr.Size)
		out[hdr.Name] = string(b)
	}
	return out
}

func newTestTarGz(t *testing.T, buf *bytes.Buffer) *tarGzArchive {
	w, err := newArchiveWriter(config.ArchiveFormatTarGz, buf)
	require.NoError(t, err)
	return w.(*tarGzArchive)
}

func TestTarGzFileChangedAfterStat(t *testing.T) {
	dir := t.TempDir()
	truncated := filepath.Join(dir, "gclog.0")
	grown := filepath.Join(dir, "wrapper.log")
	require.NoError(t, os.WriteFile(truncated, []byte("0123456789"), 0644))
	require.NoError(t, os.WriteFile(grown, []byte("start"), 0644))

	truncatedInfo, err := os.Stat(truncated)
	require.NoError(t, err)
	grownInfo, err := os.Stat(grown)
	require.NoError(t, err)

	// rotated and appended to between stat and read
	require.NoError(t, os.Truncate(truncated, 4))
	f, err := os.OpenFile(grown, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString(" and more")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	var buf bytes.Buffer
	archive := newTestTarGz(t, &buf)
	for name, info := range map[string]os.FileInfo{"gclog.0": truncatedInfo, "wrapper.log": grownInfo} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		require.NoError(t, archive.addEntry(name, info, data))
	}
	require.NoError(t, archive.Close())

	entries := readTarGzBytes(t, buf.Bytes())
	assert.Equal(t, "0123", entries["gclog.0"])
	assert.Equal(t, "start and more", entries["wrapper.log"])
}

func TestArchiveAddFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "system.out.log")
	require.NoError(t, os.WriteFile(path, []byte("out"), 0644))

	var buf bytes.Buffer
	archive := newTestTarGz(t, &buf)
	require.NoError(t, archive.AddFile("system.out.log", path))
	require.NoError(t, archive.AddBytes("metrics.txt", []byte("m 1")))
	require.Error(t, archive.AddFile("missing.log", path+".missing"))
	require.NoError(t, archive.Close())

	assert.Equal(t, map[string]string{
		"system.out.log": "out",
		"metrics.txt":    "m 1",
	}, readTarGzBytes(t, buf.Bytes()))
}

func TestArchiveFormats(t *testing.T) {
	assert.Equal(t, ".zip", archiveExtension(config.ArchiveFormatZip))
	assert.Equal(t, ".tar.gz", archiveExtension(config.ArchiveFormatTarGz))
	assert.Equal(t, "application/zip", archiveContentType(config.ArchiveFormatZip))
	assert.Equal(t, "application/gzip", archiveContentType(config.ArchiveFormatTarGz))

	_, err := newArchiveWriter("rar", io.Discard)
	assert.Error(t, err)
}
