package healthcheck_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"gitlab.com/gitlab-org/static-pipeline/internal/healthcheck"
	"gitlab.com/gitlab-org/static-pipeline/internal/pipeline"
)

func TestHealthCheckStage(t *testing.T) {
	tests := []struct {
		name         string
		path         string
		terminated   bool
		expectedBody string
	}{
		{
			name: "Not a healthcheck request",
			path: "/foo/bar",
		},
		{
			name:         "Healthcheck request",
			path:         "/-/healthcheck",
			terminated:   true,
			expectedBody: "success\n",
		},
		{
			name: "Healthcheck path prefix",
			path: "/-/healthcheck/more",
		},
	}

	stage := healthcheck.NewStage[struct{}]("/-/healthcheck")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			outcome := stage.Process(httptest.NewRequest(http.MethodGet, tt.path, nil), pipeline.NewResponse(rec), struct{}{})
			require.Equal(t, tt.terminated, outcome.Terminated())
			require.Equal(t, tt.expectedBody, rec.Body.String())

			if tt.terminated {
				require.Equal(t, http.StatusOK, rec.Code)
				require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
			}
		})
	}
}

func TestHealthCheckStageDisabled(t *testing.T) {
	require.Nil(t, healthcheck.NewStage[struct{}](""))
}
