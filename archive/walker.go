// Package archive reads stylesheets packed into zip containers (EPUB and
// similar).
package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/h2non/filetype"
	zip "github.com/hidez8891/zip"
)

// headerSize is how many leading bytes content detection looks at.
const headerSize = 262

// WalkFunc is the type of the function called for each file in archive
// visited by Walk. The archive argument contains path to archive passed to Walk.
// If an error is returned, processing stops.
type WalkFunc func(archive string, file *zip.File) error

// Walk walks all files in the archive for which match returns true, calling
// walkFn for each item. Entries with path traversal components ("..") or
// absolute paths fail the walk.
func Walk(archive string, match func(name string) bool, walkFn WalkFunc) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if !f.FileInfo().IsDir() && match(name) {
			if err := walkFn(archive, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// IsStylesheet matches entries with ".css" extension.
func IsStylesheet(name string) bool {
	return strings.EqualFold(path.Ext(name), ".css")
}

// ReadStylesheets returns content of every stylesheet in the archive keyed
// by entry name.
func ReadStylesheets(archive string) (map[string][]byte, error) {
	out := make(map[string][]byte)
	err := Walk(archive, IsStylesheet, func(_ string, file *zip.File) error {
		rc, err := file.Open()
		if err != nil {
			return fmt.Errorf("unable to open %q: %w", file.Name, err)
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			return fmt.Errorf("unable to read %q: %w", file.Name, err)
		}
		out[file.Name] = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// IsArchive tells whether file name looks like a zip container.
func IsArchive(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".zip", ".epub", ".kepub":
		return true
	}
	return false
}

// IsContainer tells whether file is a zip container. Known extensions are
// accepted without reading the file, otherwise its header is examined.
func IsContainer(name string) (bool, error) {
	if IsArchive(name) {
		return true, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, headerSize)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, err
	}
	head = head[:n]
	return filetype.Is(head, "zip") || filetype.Is(head, "epub"), nil
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	for part := range strings.SplitSeq(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
