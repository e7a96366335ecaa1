package handlers

import (
	"net/http"

	"github.com/rs/cors"

	"gitlab.com/gitlab-org/static-pipeline/internal/pipeline"
)

var (
	corsHandler = cors.New(cors.Options{AllowedMethods: []string{http.MethodGet, http.MethodHead}})
)

// CorsStage adds the cross-origin headers for GET and HEAD requests and
// answers preflight requests itself. It returns nil when cross-origin
// requests are disabled.
func CorsStage[C any](disabled bool) pipeline.Stage[C] {
	if disabled {
		return nil
	}

	return pipeline.StageFunc[C](func(r *http.Request, w *pipeline.Response, ctx C) pipeline.Outcome[C] {
		passed := false

		corsHandler.ServeHTTP(w, r, func(http.ResponseWriter, *http.Request) {
			passed = true
		})

		if !passed {
			return pipeline.Terminate[C]()
		}

		return pipeline.Continue(r, w, ctx)
	})
}
