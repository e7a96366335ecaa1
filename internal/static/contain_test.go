package static

import (
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewGuard(t *testing.T) {
	tmpDir := setupTree(t)
	root := filepath.Join(tmpDir, "root")

	tests := map[string]struct {
		urlRoot      string
		fsRoot       string
		expectedRoot string
		expectedErr  error
	}{
		"a directory": {
			urlRoot:      "/public",
			fsRoot:       root,
			expectedRoot: root,
		},
		"a symlink to a directory": {
			urlRoot:      "/public",
			fsRoot:       filepath.Join(tmpDir, "root-link"),
			expectedRoot: root,
		},
		"an unclean path": {
			urlRoot:      "/public",
			fsRoot:       filepath.Join(root, "docs", "..", ".", "empty", ".."),
			expectedRoot: root,
		},
		"a url root without a leading slash": {
			urlRoot:     "public",
			fsRoot:      root,
			expectedErr: errInvalidURLRoot,
		},
		"a file": {
			urlRoot:     "/public",
			fsRoot:      filepath.Join(root, "readme.txt"),
			expectedErr: errNotDirectory,
		},
		"a non-existing directory": {
			urlRoot:     "/public",
			fsRoot:      filepath.Join(tmpDir, "missing"),
			expectedErr: fs.ErrNotExist,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			g, err := NewGuard(tt.urlRoot, tt.fsRoot)
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.expectedRoot, g.Root())
		})
	}
}

func TestGuardContain(t *testing.T) {
	tmpDir := setupTree(t)
	root := filepath.Join(tmpDir, "root")

	tests := map[string]struct {
		urlRoot    string
		resolved   string
		expected   string
		expectFail bool
	}{
		"a file":                           {urlRoot: "/public", resolved: "/public/readme.txt", expected: filepath.Join(root, "readme.txt")},
		"the url root itself":              {urlRoot: "/public", resolved: "/public", expected: root},
		"a url root with a trailing slash": {urlRoot: "/public/", resolved: "/public/readme.txt", expected: filepath.Join(root, "readme.txt")},
		"a missing file is contained":      {urlRoot: "/public", resolved: "/public/missing.txt", expected: filepath.Join(root, "missing.txt")},
		"the catch-all url root":           {urlRoot: "/", resolved: "/docs/index.html", expected: filepath.Join(root, "docs", "index.html")},
		"a different prefix":               {urlRoot: "/public", resolved: "/private/readme.txt", expectFail: true},
		"a partial segment":                {urlRoot: "/public", resolved: "/publicity/readme.txt", expectFail: true},
		"a relative path":                  {urlRoot: "/public", resolved: "public/readme.txt", expectFail: true},
		"traversal after the prefix":       {urlRoot: "/public", resolved: "/public/../secret.txt", expectFail: true},
		"nested traversal":                 {urlRoot: "/public", resolved: "/public/docs/../../../etc/passwd", expectFail: true},
		"traversal inside the root":        {urlRoot: "/public", resolved: "/public/docs/../readme.txt", expected: filepath.Join(root, "readme.txt")},
		"traversal from the catch-all":     {urlRoot: "/", resolved: "/../secret.txt", expectFail: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			g, err := NewGuard(tt.urlRoot, root)
			require.NoError(t, err)

			got, ok := g.Contain(tt.resolved)
			if tt.expectFail {
				require.False(t, ok)
				require.Empty(t, got)
				return
			}

			require.True(t, ok)
			require.Equal(t, tt.expected, got)
		})
	}
}

func TestContain(t *testing.T) {
	tmpDir := setupTree(t)

	got, ok := Contain("/public/readme.txt", "/public", filepath.Join(tmpDir, "root-link"))
	require.True(t, ok)
	require.Equal(t, filepath.Join(tmpDir, "root", "readme.txt"), got)

	_, ok = Contain("/public/readme.txt", "/public", filepath.Join(tmpDir, "missing"))
	require.False(t, ok, "an invalid fs root contains nothing")
}

func TestGuardLocate(t *testing.T) {
	tmpDir := setupTree(t)
	root := filepath.Join(tmpDir, "root")

	g, err := NewGuard("/public", root)
	require.NoError(t, err)

	tests := map[string]struct {
		resolved   string
		expected   string
		expectFail bool
	}{
		"a file":                          {resolved: "/public/readme.txt", expected: filepath.Join(root, "readme.txt")},
		"a symlink inside of the root":    {resolved: "/public/alias.txt", expected: filepath.Join(root, "readme.txt")},
		"a symlink outside of the root":   {resolved: "/public/escape.txt", expectFail: true},
		"a directory symlink out of root": {resolved: "/public/outside/secret.txt", expectFail: true},
		"a looping directory symlink":     {resolved: "/public/outside/root/readme.txt", expected: filepath.Join(root, "readme.txt")},
		"a missing file":                  {resolved: "/public/missing.txt", expectFail: true},
		"traversal":                       {resolved: "/public/../secret.txt", expectFail: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := g.Locate(tt.resolved)
			if tt.expectFail {
				require.False(t, ok)
				return
			}

			require.True(t, ok)
			require.Equal(t, tt.expected, got)
		})
	}
}

func TestContainNeverEscapesRoot(t *testing.T) {
	tmpDir := setupTree(t)
	root := filepath.Join(tmpDir, "root")

	inputs := []string{
		"/..",
		"/../secret.txt",
		"/../../../../etc/passwd",
		"/docs/../../secret.txt",
		"/%2e%2e/secret.txt",
		"/%2E%2E/%2e%2E/etc/passwd",
		"/..%2fsecret.txt",
		"/%2e%2e%2fsecret.txt",
		"/..%5csecret.txt",
		"//etc/passwd",
		"/./../secret.txt",
		"/docs/./../../secret.txt/",
		"/" + strings.Repeat("../", 64) + "etc/passwd",
		tmpDir + "/secret.txt",
		"/" + root,
	}

	for _, urlRoot := range []string{"/", "/public"} {
		g, err := NewGuard(urlRoot, root)
		require.NoError(t, err)

		for _, input := range inputs {
			requestURI := strings.TrimSuffix(urlRoot, "/") + input

			resolved, ok := ResolvePath(requestURI)
			if !ok {
				continue
			}

			for _, fn := range []func(string) (string, bool){g.Contain, g.Locate} {
				got, ok := fn(resolved)
				if !ok {
					continue
				}

				require.True(t, got == root || strings.HasPrefix(got, root+"/"), "%q escaped the root to %q", requestURI, got)
			}
		}
	}
}
