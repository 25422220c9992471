package debuginfos

import (
	"io"
	"os"

	"emperror.dev/errors"
	"github.com/c2h5oh/datasize"
)

// LogProvider returns the application log to include in the archive.
type LogProvider interface {
	Log() (string, error)
}

// FileLogProvider reads a log file. When MaxSize is set only the last MaxSize
// bytes are returned.
type FileLogProvider struct {
	Path    string
	MaxSize datasize.ByteSize
}

func (p FileLogProvider) Log() (string, error) {
	f, err := os.Open(p.Path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to open log file %s", p.Path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	if limit := int64(p.MaxSize.Bytes()); limit > 0 && info.Size() > limit {
		if _, err := f.Seek(info.Size()-limit, io.SeekStart); err != nil {
			return "", errors.Wrap(err, "failed to seek log file")
		}
	}

	b, err := io.ReadAll(f)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read log file %s", p.Path)
	}
	return string(b), nil
}
