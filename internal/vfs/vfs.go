package vfs

//go:generate mockgen -source=vfs.go -destination=mock/vfs_mock.go -package=mock

import (
	"context"
	"io"
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"

	"gitlab.com/gitlab-org/static-pipeline/metrics"
)

// VFS abstracts the things static stages need to serve files from a directory tree.
type VFS interface {
	Root(ctx context.Context, path string) (Root, error)
	Name() string
}

// Root abstracts the things static stages need to serve files from a given root path.
// Names passed to a Root are relative to it and must not escape it.
type Root interface {
	Lstat(ctx context.Context, name string) (os.FileInfo, error)
	Open(ctx context.Context, name string) (File, error)
}

// File represents an open file, which will typically be the response body of a request.
type File interface {
	io.Reader
	io.Closer
	Stat() (os.FileInfo, error)
}

// Instrumented wraps fs so that every operation is counted and trace logged.
func Instrumented(fs VFS) VFS {
	return &instrumentedVFS{fs: fs}
}

type instrumentedVFS struct {
	fs VFS
}

func (i *instrumentedVFS) increment(operation string, err error) {
	metrics.VFSOperations.WithLabelValues(i.fs.Name(), operation, strconv.FormatBool(err == nil)).Inc()
}

func (i *instrumentedVFS) Root(ctx context.Context, path string) (Root, error) {
	root, err := i.fs.Root(ctx, path)
	i.increment("Root", err)

	log.WithField("vfs", i.fs.Name()).
		WithField("path", path).
		WithError(err).
		Traceln("Root call")

	if err != nil {
		return nil, err
	}

	return &instrumentedRoot{root: root, name: i.fs.Name(), path: path}, nil
}

func (i *instrumentedVFS) Name() string {
	return i.fs.Name()
}

type instrumentedRoot struct {
	root Root
	name string
	path string
}

func (i *instrumentedRoot) increment(operation string, err error) {
	metrics.VFSOperations.WithLabelValues(i.name, operation, strconv.FormatBool(err == nil)).Inc()
}

func (i *instrumentedRoot) Lstat(ctx context.Context, name string) (os.FileInfo, error) {
	fi, err := i.root.Lstat(ctx, name)
	i.increment("Lstat", err)

	log.WithField("vfs", i.name).
		WithField("path", i.path).
		WithField("name", name).
		WithError(err).
		Traceln("Lstat call")

	return fi, err
}

func (i *instrumentedRoot) Open(ctx context.Context, name string) (File, error) {
	f, err := i.root.Open(ctx, name)
	i.increment("Open", err)

	log.WithField("vfs", i.name).
		WithField("path", i.path).
		WithField("name", name).
		WithError(err).
		Traceln("Open call")

	if err != nil {
		return nil, err
	}

	return f, nil
}
