package scaffold

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// maxLinkDepth bounds nested directory symlinks followed by CopyTree.
const maxLinkDepth = 16

// CopyTree copies every directory and regular file of src into dst,
// preserving relative structure and file contents. Symbolic links are
// followed and their targets copied. Existing files in dst are never
// overwritten.
func CopyTree(src fs.FS, dst string) error {
	return copyTree(src, dst, 0)
}

func copyTree(src fs.FS, dst string, depth int) error {
	return fs.WalkDir(src, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		target := filepath.Join(dst, filepath.FromSlash(name))
		info, err := d.Info()
		if err != nil {
			return err
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return copyLink(src, name, target, depth)
		}

		switch {
		case d.IsDir():
			return os.MkdirAll(target, info.Mode().Perm()|0o700)
		case d.Type().IsRegular():
			return copyFile(src, name, target, info.Mode().Perm()|0o600)
		default:
			return fmt.Errorf("unsupported file type %s: %s", d.Type(), name)
		}
	})
}

// copyLink copies what the link at name resolves to.
func copyLink(src fs.FS, name, target string, depth int) error {
	info, err := fs.Stat(src, name)
	if err != nil {
		return fmt.Errorf("resolve link %s: %w", name, err)
	}

	switch {
	case info.Mode().IsRegular():
		return copyFile(src, name, target, info.Mode().Perm()|0o600)
	case info.IsDir():
		if depth >= maxLinkDepth {
			return fmt.Errorf("too many levels of symbolic links: %s", name)
		}
		sub, err := fs.Sub(src, path.Clean(name))
		if err != nil {
			return err
		}
		if err := os.MkdirAll(target, info.Mode().Perm()|0o700); err != nil {
			return err
		}
		return copyTree(sub, target, depth+1)
	default:
		return fmt.Errorf("unsupported file type %s: %s", info.Mode().Type(), name)
	}
}

func copyFile(src fs.FS, name, target string, perm fs.FileMode) error {
	in, err := src.Open(name)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", name, err)
	}
	return out.Close()
}
