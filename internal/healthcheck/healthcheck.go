package healthcheck

import (
	"net/http"

	"gitlab.com/gitlab-org/static-pipeline/internal/pipeline"
)

// NewStage answers the application status check at statusPath. It returns
// nil, which a pipeline.Chain drops, when statusPath is empty.
func NewStage[C any](statusPath string) pipeline.Stage[C] {
	if statusPath == "" {
		return nil
	}

	return pipeline.StageFunc[C](func(r *http.Request, w *pipeline.Response, ctx C) pipeline.Outcome[C] {
		if r.URL.Path != statusPath {
			return pipeline.Continue(r, w, ctx)
		}

		w.Header().Set("Cache-Control", "no-store")
		w.Write([]byte("success\n"))

		return pipeline.Terminate[C]()
	})
}
