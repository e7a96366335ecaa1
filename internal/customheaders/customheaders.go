package customheaders

import (
	"net/http"

	"gitlab.com/gitlab-org/static-pipeline/internal/pipeline"
)

// AddCustomHeaders adds a map of Headers to a Response
func AddCustomHeaders(w http.ResponseWriter, headers http.Header) {
	for k, v := range headers {
		for _, value := range v {
			w.Header().Add(k, value)
		}
	}
}

// NewStage returns a stage which injects headers into every response and
// continues. It returns nil when there are no headers to add.
func NewStage[C any](headers http.Header) pipeline.Stage[C] {
	if len(headers) == 0 {
		return nil
	}

	return pipeline.StageFunc[C](func(r *http.Request, w *pipeline.Response, ctx C) pipeline.Outcome[C] {
		AddCustomHeaders(w, headers)

		return pipeline.Continue(r, w, ctx)
	})
}
