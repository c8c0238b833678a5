// Package download delivers binary API payloads (contracts, exports) to the user as files on disk.
package download

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
)

// ErrInvalidName is returned for names that do not designate a file
var ErrInvalidName = errors.New("invalid file name")

// Dir saves files into a directory, created on first use
type Dir struct {
	path string
}

func NewDir(path string) *Dir {
	if path == "" {
		path = "."
	}
	return &Dir{path: path}
}

// Path returns the target directory
func (d *Dir) Path() string {
	return d.path
}

// Save writes content to name inside the directory and returns the full path.
// Only the base name is used so a server supplied name cannot escape the directory.
// The file is replaced atomically: readers never see a partially written file.
func (d *Dir) Save(name string, content []byte) (string, error) {
	base := filepath.Base(filepath.Clean("/" + strings.ReplaceAll(name, "\\", "/")))
	if base == "/" || base == "." || base == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	if err := os.MkdirAll(d.path, 0o755); err != nil {
		return "", fmt.Errorf("creating download directory: %w", err)
	}

	target := filepath.Join(d.path, base)
	if err := atomic.WriteFile(target, bytes.NewReader(content)); err != nil {
		return "", fmt.Errorf("writing %s: %w", target, err)
	}
	return target, nil
}
