package local

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"gitlab.com/gitlab-org/static-pipeline/internal/vfs"
)

var errNotFile = errors.New("not a regular file")

type outsideRootError struct {
	dir  string
	name string
}

func (e *outsideRootError) Error() string {
	return fmt.Sprintf("%q is outside of %q", e.name, e.dir)
}

// Root is a canonical directory on the local disk. Names are joined onto
// it and may not climb above it.
type Root struct {
	dir string
}

// Path returns the canonical directory of the root.
func (r *Root) Path() string {
	return r.dir
}

// join returns the full path of name. A name cleaning to the root itself
// is allowed.
func (r *Root) join(name string) (string, error) {
	full := filepath.Join(r.dir, name)

	prefix := strings.TrimSuffix(r.dir, string(filepath.Separator)) + string(filepath.Separator)
	if full != r.dir && !strings.HasPrefix(full, prefix) {
		return "", &outsideRootError{dir: r.dir, name: name}
	}

	return full, nil
}

// Lstat describes name without following a final symlink.
func (r *Root) Lstat(ctx context.Context, name string) (os.FileInfo, error) {
	full, err := r.join(name)
	if err != nil {
		return nil, err
	}

	return os.Lstat(full)
}

// Open opens the regular file name for reading. A symlink as the last path
// element is refused by the kernel.
func (r *Root) Open(ctx context.Context, name string) (vfs.File, error) {
	full, err := r.join(name)
	if err != nil {
		return nil, err
	}

	file, err := os.OpenFile(full, os.O_RDONLY|unix.O_NOFOLLOW, 0)
	if err != nil {
		return nil, err
	}

	fi, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	if !fi.Mode().IsRegular() {
		file.Close()
		return nil, fmt.Errorf("%q: %w", name, errNotFile)
	}

	return file, nil
}
