package static

import (
	"io"
	"net/http"
	"strconv"

	"gitlab.com/gitlab-org/static-pipeline/internal/pipeline"
	"gitlab.com/gitlab-org/static-pipeline/internal/vfs"
	"gitlab.com/gitlab-org/static-pipeline/metrics"
)

// SendFile opens name below root and streams its whole content as a 200
// response, then closes w. No Content-Type is sent. For HEAD requests only
// the headers are written.
//
// An open failure is returned before anything has been written to w. An
// error while streaming matches vfs.ErrRead.
func SendFile(w *pipeline.Response, r *http.Request, root vfs.Root, name string) (int64, error) {
	file, err := root.Open(r.Context(), name)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	fi, err := file.Stat()
	if err != nil {
		return 0, err
	}

	metrics.StaticServingFileSize.Observe(float64(fi.Size()))

	// a nil value keeps net/http from sniffing a type
	w.Header()["Content-Type"] = nil
	w.Header().Set("Content-Length", strconv.FormatInt(fi.Size(), 10))
	w.WriteHeader(http.StatusOK)

	var written int64
	if r.Method != http.MethodHead {
		written, err = io.CopyN(w, file, fi.Size())
		if err != nil {
			err = vfs.NewReadError(err)
		}
	}

	if closeErr := w.Close(); err == nil {
		err = closeErr
	}

	return written, err
}
