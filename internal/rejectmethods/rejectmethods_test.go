package rejectmethods

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"gitlab.com/gitlab-org/static-pipeline/internal/pipeline"
)

func TestNewStage(t *testing.T) {
	stage := NewStage[struct{}]()

	acceptedMethods := []string{"GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "CONNECT", "OPTIONS", "TRACE"}
	for _, method := range acceptedMethods {
		t.Run(method, func(t *testing.T) {
			rec := httptest.NewRecorder()
			out := stage.Process(httptest.NewRequest(method, "/", nil), pipeline.NewResponse(rec), struct{}{})

			require.False(t, out.Terminated())
		})
	}

	t.Run("UNKNOWN", func(t *testing.T) {
		rec := httptest.NewRecorder()
		out := stage.Process(httptest.NewRequest("UNKNOWN", "/", nil), pipeline.NewResponse(rec), struct{}{})

		require.True(t, out.Terminated())
		require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}
