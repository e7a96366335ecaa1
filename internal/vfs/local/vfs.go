// Package local implements vfs.VFS on top of the local disk.
package local

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gitlab.com/gitlab-org/static-pipeline/internal/vfs"
)

var errNotDirectory = errors.New("root must be a directory")

// VFS opens roots on the local disk.
type VFS struct{}

// Name is used in metrics and logs.
func (VFS) Name() string {
	return "local"
}

// Root returns the directory at path as a Root.
func (VFS) Root(ctx context.Context, path string) (vfs.Root, error) {
	dir, err := canonicalDir(path)
	if err != nil {
		return nil, err
	}

	return &Root{dir: dir}, nil
}

// canonicalDir makes path absolute and resolves its symlinks, so names
// opened below the result can be checked lexically.
func canonicalDir(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	dir, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolving root %q: %w", path, err)
	}

	fi, err := os.Stat(dir)
	if err != nil {
		return "", err
	}

	if !fi.IsDir() {
		return "", fmt.Errorf("%q: %w", path, errNotDirectory)
	}

	return dir, nil
}
