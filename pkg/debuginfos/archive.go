package debuginfos

import (
	"archive/tar"
	"io"
	"io/fs"
	"os"
	"time"

	"emperror.dev/errors"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/pgzip"

	"github.com/voluzi/debugpilot/internal/config"
)

type archiveWriter interface {
	AddBytes(name string, data []byte) error
	AddFile(name, path string) error
	Close() error
}

func newArchiveWriter(format string, out io.Writer) (archiveWriter, error) {
	switch format {
	case config.ArchiveFormatZip:
		return &zipArchive{zw: zip.NewWriter(out)}, nil
	case config.ArchiveFormatTarGz:
		gz, err := pgzip.NewWriterLevel(out, pgzip.BestSpeed)
		if err != nil {
			return nil, errors.Wrap(err, "pgzip writer failed")
		}
		return &tarGzArchive{gz: gz, tw: tar.NewWriter(gz)}, nil
	default:
		return nil, errors.Errorf("unsupported archive format %q", format)
	}
}

type zipArchive struct {
	zw *zip.Writer
}

func (a *zipArchive) AddBytes(name string, data []byte) error {
	w, err := a.zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: time.Now(),
	})
	if err != nil {
		return errors.Wrapf(err, "failed to create zip entry %s", name)
	}
	_, err = w.Write(data)
	return err
}

func (a *zipArchive) AddFile(name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = name
	hdr.Method = zip.Deflate

	w, err := a.zw.CreateHeader(hdr)
	if err != nil {
		return errors.Wrapf(err, "failed to create zip entry %s", name)
	}
	_, err = io.Copy(w, f)
	return err
}

func (a *zipArchive) Close() error {
	return a.zw.Close()
}

type tarGzArchive struct {
	gz *pgzip.Writer
	tw *tar.Writer
}

func (a *tarGzArchive) AddBytes(name string, data []byte) error {
	hdr := &tar.Header{
		Name:    name,
		Mode:    0644,
		Size:    int64(len(data)),
		ModTime: time.Now(),
	}
	if err := a.tw.WriteHeader(hdr); err != nil {
		return errors.Wrap(err, "write tar header")
	}
	_, err := a.tw.Write(data)
	return err
}

func (a *tarGzArchive) AddFile(name, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return a.addEntry(name, info, data)
}

// addEntry writes data with the metadata of info. Log files may be appended to
// or truncated after the stat, so the size always comes from data.
func (a *tarGzArchive) addEntry(name string, info fs.FileInfo, data []byte) error {
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = name
	hdr.Size = int64(len(data))

	if err := a.tw.WriteHeader(hdr); err != nil {
		return errors.Wrap(err, "write tar header")
	}
	_, err = a.tw.Write(data)
	return err
}

func (a *tarGzArchive) Close() error {
	if err := a.tw.Close(); err != nil {
		a.gz.Close()
		return err
	}
	return a.gz.Close()
}

func archiveExtension(format string) string {
	if format == config.ArchiveFormatTarGz {
		return ".tar.gz"
	}
	return ".zip"
}

func archiveContentType(format string) string {
	if format == config.ArchiveFormatTarGz {
		return "application/gzip"
	}
	return "application/zip"
}
