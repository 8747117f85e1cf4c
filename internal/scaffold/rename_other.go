//go:build !linux

package scaffold

import "os"

// promote renames stage to target. The guard that runs right before it is
// the only collision check on this platform.
func promote(stage, target string) error {
	return os.Rename(stage, target)
}
