package static

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const readmeContent = "hello from readme\n"

// setupTree creates the structure:
// <tmp>/secret.txt: file outside of the root
// <tmp>/root/readme.txt: file
// <tmp>/root/docs/index.html: index of a directory
// <tmp>/root/empty: directory without an index
// <tmp>/root/alias.txt: symlink to `readme.txt`
// <tmp>/root/escape.txt: symlink to `../secret.txt`
// <tmp>/root/outside: symlink to `..`
// <tmp>/root-link: symlink to `root`
// It returns the canonical <tmp>.
func setupTree(t *testing.T) string {
	t.Helper()

	tmpDir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	root := filepath.Join(tmpDir, "root")

	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "secret.txt"), []byte("secret\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "readme.txt"), []byte(readmeContent), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "index.html"), []byte("<h1>docs</h1>"), 0644))
	require.NoError(t, os.Symlink("readme.txt", filepath.Join(root, "alias.txt")))
	require.NoError(t, os.Symlink("../secret.txt", filepath.Join(root, "escape.txt")))
	require.NoError(t, os.Symlink("..", filepath.Join(root, "outside")))
	require.NoError(t, os.Symlink("root", filepath.Join(tmpDir, "root-link")))

	return tmpDir
}
