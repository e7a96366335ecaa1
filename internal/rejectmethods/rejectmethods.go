// Package rejectmethods answers requests using an HTTP method the server
// does not know with 405 Method Not Allowed.
package rejectmethods

import (
	"net/http"

	"gitlab.com/gitlab-org/static-pipeline/internal/pipeline"
)

var acceptedMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodConnect: true,
	http.MethodOptions: true,
	http.MethodTrace:   true,
}

// NewStage returns a stage terminating requests with an unknown method.
func NewStage[C any]() pipeline.Stage[C] {
	return pipeline.StageFunc[C](func(r *http.Request, w *pipeline.Response, ctx C) pipeline.Outcome[C] {
		if acceptedMethods[r.Method] {
			return pipeline.Continue(r, w, ctx)
		}

		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return pipeline.Terminate[C]()
	})
}
