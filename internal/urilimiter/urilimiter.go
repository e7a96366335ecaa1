package urilimiter

import (
	"net/http"

	"gitlab.com/gitlab-org/static-pipeline/internal/httperrors"
	"gitlab.com/gitlab-org/static-pipeline/internal/pipeline"
)

// NewStage answers 414 to requests whose URI is longer than limit. A limit
// of 0 disables the check and returns nil.
func NewStage[C any](limit int) pipeline.Stage[C] {
	if limit == 0 {
		return nil
	}

	return pipeline.StageFunc[C](func(r *http.Request, w *pipeline.Response, ctx C) pipeline.Outcome[C] {
		if len(r.RequestURI) > limit {
			httperrors.Serve414(w)

			return pipeline.Terminate[C]()
		}

		return pipeline.Continue(r, w, ctx)
	})
}
