// Package template embeds the default project skeleton.
package template

import (
	"embed"
	"io/fs"
)

//go:embed all:files
var files embed.FS

// Default returns the embedded template rooted at its top directory.
func Default() fs.FS {
	sub, err := fs.Sub(files, "files")
	if err != nil {
		// fs.Sub only fails on an invalid path literal.
		panic(err)
	}
	return sub
}
