package errortracking

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCaptureWithoutDSN(t *testing.T) {
	require.NoError(t, Initialize("", "test", "0.0.0"))

	r := httptest.NewRequest(http.MethodGet, "/file", nil)

	require.NotPanics(t, func() {
		CaptureErrWithReqAndStackTrace(errors.New("request failed"), r, WithField("stage", "static"))
		CaptureErrWithStackTrace(errors.New("startup failed"))
	})
}
