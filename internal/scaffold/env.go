package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
)

// MaterializeEnv duplicates dir/example to dir/target verbatim. A missing
// example file is not an error; created reports whether target was written.
func MaterializeEnv(dir, example, target string) (created bool, err error) {
	src := filepath.Join(dir, example)
	info, err := os.Stat(src)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !info.Mode().IsRegular() {
		return false, fmt.Errorf("%s is not a regular file", example)
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(filepath.Join(dir, target), data, info.Mode().Perm()); err != nil {
		return false, err
	}
	return true, nil
}
