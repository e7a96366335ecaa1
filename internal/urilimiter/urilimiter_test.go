package urilimiter

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gitlab.com/gitlab-org/static-pipeline/internal/pipeline"
)

func TestNewStage(t *testing.T) {
	const limit = 24

	tests := map[string]struct {
		target      string
		expectBlock bool
	}{
		"short path":                 {target: "/assets/app.js"},
		"exactly at the limit":       {target: "/assets/" + strings.Repeat("a", limit-len("/assets/"))},
		"one byte over the limit":    {target: "/assets/" + strings.Repeat("a", limit-len("/assets/")+1), expectBlock: true},
		"query counts toward length": {target: "/assets/app.js?v=1234567890", expectBlock: true},
		"escaped bytes count as sent": {
			target:      "/assets/%61%61%61%61%61.js",
			expectBlock: true,
		},
	}

	stage := NewStage[string](limit)

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rec := httptest.NewRecorder()

			x, ok := pipeline.New(stage).Run(r, pipeline.NewResponse(rec), "ctx")

			if tt.expectBlock {
				require.False(t, ok)
				require.Equal(t, http.StatusRequestURITooLong, rec.Code)
				return
			}

			require.True(t, ok)
			require.Equal(t, "ctx", x.Context)
			require.False(t, x.Response.Started())
		})
	}
}

func TestNewStageDisabled(t *testing.T) {
	require.Nil(t, NewStage[string](0))
}
