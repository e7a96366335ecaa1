package static

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"gitlab.com/gitlab-org/static-pipeline/internal/pipeline"
	"gitlab.com/gitlab-org/static-pipeline/internal/vfs"
	"gitlab.com/gitlab-org/static-pipeline/internal/vfs/local"
	"gitlab.com/gitlab-org/static-pipeline/internal/vfs/mock"
)

func localRoot(t *testing.T, path string) vfs.Root {
	t.Helper()

	root, err := local.VFS{}.Root(context.Background(), path)
	require.NoError(t, err)

	return root
}

func TestSendFile(t *testing.T) {
	tmpDir := setupTree(t)
	root := localRoot(t, filepath.Join(tmpDir, "root"))

	tests := map[string]struct {
		method       string
		expectedBody string
		expectedSize int64
	}{
		"GET sends the content": {
			method:       http.MethodGet,
			expectedBody: readmeContent,
			expectedSize: int64(len(readmeContent)),
		},
		"HEAD sends headers only": {
			method: http.MethodHead,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			w := pipeline.NewResponse(rec)
			r := httptest.NewRequest(tt.method, "/readme.txt", nil)

			n, err := SendFile(w, r, root, "readme.txt")
			require.NoError(t, err)
			require.Equal(t, tt.expectedSize, n)

			require.True(t, w.Closed())
			require.Equal(t, http.StatusOK, rec.Code)
			require.Equal(t, tt.expectedBody, rec.Body.String())
			require.Equal(t, "18", rec.Header().Get("Content-Length"))
			require.Empty(t, rec.Header().Get("Content-Type"))
		})
	}
}

func TestSendFileOpenFailure(t *testing.T) {
	tmpDir := setupTree(t)
	root := localRoot(t, filepath.Join(tmpDir, "root"))

	tests := map[string]struct {
		name        string
		expectedErr error
	}{
		"a missing file": {
			name:        "missing.txt",
			expectedErr: fs.ErrNotExist,
		},
		"a symlink": {
			name: "alias.txt",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			w := pipeline.NewResponse(rec)

			_, err := SendFile(w, httptest.NewRequest(http.MethodGet, "/", nil), root, tt.name)
			require.Error(t, err)
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
			}

			require.False(t, w.Started(), "nothing is written when the file cannot be opened")
			require.Zero(t, rec.Body.Len())
		})
	}
}

func TestSendFileReadError(t *testing.T) {
	tmpDir := setupTree(t)
	fi, err := os.Stat(filepath.Join(tmpDir, "root", "readme.txt"))
	require.NoError(t, err)

	mockCtrl := gomock.NewController(t)

	file := mock.NewMockFile(mockCtrl)
	file.EXPECT().Stat().Return(fi, nil)
	file.EXPECT().Read(gomock.Any()).Return(0, errors.New("disk on fire"))
	file.EXPECT().Close().Return(nil)

	root := mock.NewMockRoot(mockCtrl)
	root.EXPECT().Open(gomock.Any(), "readme.txt").Return(file, nil)

	rec := httptest.NewRecorder()
	w := pipeline.NewResponse(rec)

	_, err = SendFile(w, httptest.NewRequest(http.MethodGet, "/", nil), root, "readme.txt")
	require.ErrorIs(t, err, vfs.ErrRead)
	require.Contains(t, err.Error(), "disk on fire")

	require.True(t, w.Started())
	require.True(t, w.Closed())
}
