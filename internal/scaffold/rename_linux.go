package scaffold

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// promote renames stage to target and fails with fs.ErrExist if target
// appeared in the meantime, even as an empty directory.
func promote(stage, target string) error {
	err := unix.Renameat2(unix.AT_FDCWD, stage, unix.AT_FDCWD, target, unix.RENAME_NOREPLACE)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.ENOSYS), errors.Is(err, unix.EINVAL):
		// kernel or filesystem without RENAME_NOREPLACE
		return os.Rename(stage, target)
	default:
		return &os.LinkError{Op: "rename", Old: stage, New: target, Err: err}
	}
}
