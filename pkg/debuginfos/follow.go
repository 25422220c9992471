package debuginfos

import (
	"context"
	"fmt"
	"io"

	"emperror.dev/errors"
	"github.com/nxadm/tail"
)

// FollowLog writes the anonymized lines of the log file at path to w. With
// follow set it keeps waiting for new lines, across rotations, until ctx is done.
func FollowLog(ctx context.Context, path string, follow bool, anonymizer Anonymizer, w io.Writer) error {
	t, err := tail.TailFile(path, tail.Config{
		ReOpen:    follow,
		Follow:    follow,
		MustExist: true,
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return errors.Wrapf(err, "failed to open log file %s", path)
	}
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-t.Lines:
			if !ok {
				return nil
			}
			if line.Err != nil {
				return line.Err
			}
			if _, err := fmt.Fprintln(w, anonymizer.Anonymize(line.Text)); err != nil {
				return err
			}
		}
	}
}
