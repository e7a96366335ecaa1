// Package static serves the files of a directory tree as a pipeline stage.
package static

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"gitlab.com/gitlab-org/static-pipeline/internal/httperrors"
	"gitlab.com/gitlab-org/static-pipeline/internal/logging"
	"gitlab.com/gitlab-org/static-pipeline/internal/pipeline"
	"gitlab.com/gitlab-org/static-pipeline/internal/vfs"
	"gitlab.com/gitlab-org/static-pipeline/internal/vfs/local"
	"gitlab.com/gitlab-org/static-pipeline/metrics"
)

const (
	outcomeServed   = "served"
	outcomeNotFound = "not_found"
	outcomeRejected = "rejected"
	outcomeError    = "error"
	outcomeSkipped  = "skipped"
)

// Handler answers GET and HEAD requests under urlRoot with the files found
// under fsRoot. Its configuration is immutable and it is safe for
// concurrent use.
type Handler struct {
	urlRoot string
	guard   *Guard
	fs      vfs.VFS
	root    vfs.Root
}

// Option configures a Handler.
type Option func(*Handler)

// WithVFS replaces the instrumented local disk VFS files are read from.
func WithVFS(fs vfs.VFS) Option {
	return func(h *Handler) {
		h.fs = fs
	}
}

// New returns a Handler serving fsRoot under urlRoot. fsRoot is
// canonicalized once here; an fsRoot that is not an existing directory is
// an error.
func New(urlRoot, fsRoot string, opts ...Option) (*Handler, error) {
	guard, err := NewGuard(urlRoot, fsRoot)
	if err != nil {
		return nil, err
	}

	h := &Handler{
		urlRoot: urlRoot,
		guard:   guard,
		fs:      vfs.Instrumented(local.VFS{}),
	}

	for _, opt := range opts {
		opt(h)
	}

	h.root, err = h.fs.Root(context.Background(), guard.Root())
	if err != nil {
		return nil, err
	}

	return h, nil
}

// URLRoot returns the URL prefix h answers for.
func (h *Handler) URLRoot() string {
	return h.urlRoot
}

// FSRoot returns the canonical directory h serves from.
func (h *Handler) FSRoot() string {
	return h.guard.Root()
}

// ServeFileHTTP returns true if the request was answered, either with the
// file or with an error page. It returns false without touching w when the
// request is not for a file h can serve.
func (h *Handler) ServeFileHTTP(w *pipeline.Response, r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		h.count(outcomeSkipped)
		return false
	}

	resolved, ok := ResolvePath(r.URL.RequestURI())
	if !ok {
		h.count(outcomeSkipped)
		return false
	}

	fullPath, res := h.guard.locate(resolved)
	switch res {
	case unmatched:
		h.count(outcomeSkipped)
		return false
	case escaped:
		logging.LogRequest(r).WithField("url_root", h.urlRoot).Debug("static: path is outside of the root")
		h.count(outcomeRejected)
		return false
	case missing:
		h.count(outcomeNotFound)
		return false
	}

	name, err := filepath.Rel(h.guard.Root(), fullPath)
	if err != nil {
		h.count(outcomeRejected)
		return false
	}

	fi, err := h.root.Lstat(r.Context(), name)
	if err != nil || !fi.Mode().IsRegular() {
		h.count(outcomeNotFound)
		return false
	}

	start := time.Now()

	written, err := SendFile(w, r, h.root, name)
	if err != nil && !w.Started() {
		httperrors.Serve500WithRequest(w, r, "static: failed to open file", err)
		h.count(outcomeError)
		return true
	}

	if err != nil {
		logging.LogRequest(r).WithError(err).WithField("bytes_written", written).Error("static: failed to stream file")
		h.count(outcomeError)
		return true
	}

	metrics.ServingTime.Observe(time.Since(start).Seconds())
	h.count(outcomeServed)

	return true
}

func (h *Handler) count(outcome string) {
	metrics.StaticServingOutcomes.WithLabelValues(h.urlRoot, outcome).Inc()
}

// Stage exposes h as a pipeline stage for any context type. The stage
// terminates the chain when h answered the request and otherwise continues
// with the exchange it was given.
func Stage[C any](h *Handler) pipeline.Stage[C] {
	return pipeline.StageFunc[C](func(r *http.Request, w *pipeline.Response, ctx C) pipeline.Outcome[C] {
		if h.ServeFileHTTP(w, r) {
			return pipeline.Terminate[C]()
		}

		return pipeline.Continue(r, w, ctx)
	})
}
