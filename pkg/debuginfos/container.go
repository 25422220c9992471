package debuginfos

import (
	"path/filepath"

	"github.com/voluzi/debugpilot/internal/utils"
)

// IsRunningInContainer reports whether a docker marker file exists below root.
func IsRunningInContainer(root string) bool {
	return utils.FileExists(filepath.Join(root, ".dockerenv"))
}
