package static

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	errInvalidURLRoot = errors.New("url root must start with /")
	errNotDirectory   = errors.New("fs root needs to be a directory")
)

type locateResult int

const (
	located locateResult = iota
	// the path is not under the url root
	unmatched
	// the path resolved to somewhere outside of the fs root
	escaped
	// nothing exists at the path
	missing
)

// Guard maps paths under a URL root to paths under a canonical filesystem
// root. It is read-only once built.
type Guard struct {
	urlRoot string
	fsRoot  string
}

// NewGuard canonicalizes fsRoot (absolute, symlinks evaluated) and returns a
// Guard for it. fsRoot must be an existing directory.
func NewGuard(urlRoot, fsRoot string) (*Guard, error) {
	if !strings.HasPrefix(urlRoot, "/") {
		return nil, fmt.Errorf("%q: %w", urlRoot, errInvalidURLRoot)
	}

	root, err := filepath.Abs(fsRoot)
	if err != nil {
		return nil, err
	}

	root, err = filepath.EvalSymlinks(root)
	if err != nil {
		return nil, fmt.Errorf("could not evaluate symlinks: %w", err)
	}

	fi, err := os.Stat(root)
	if err != nil {
		return nil, err
	}

	if !fi.IsDir() {
		return nil, fmt.Errorf("%q: %w", fsRoot, errNotDirectory)
	}

	return &Guard{
		urlRoot: strings.TrimSuffix(urlRoot, "/"),
		fsRoot:  root,
	}, nil
}

// Contain is NewGuard(urlRoot, fsRoot).Contain(resolved). An fsRoot that
// cannot be canonicalized contains nothing.
func Contain(resolved, urlRoot, fsRoot string) (string, bool) {
	g, err := NewGuard(urlRoot, fsRoot)
	if err != nil {
		return "", false
	}

	return g.Contain(resolved)
}

// Root returns the canonical filesystem root.
func (g *Guard) Root() string {
	return g.fsRoot
}

// URLRoot returns the URL prefix the guard answers for, without a trailing
// slash. The catch-all root "/" is the empty string.
func (g *Guard) URLRoot() string {
	return g.urlRoot
}

// Contain strips the URL root from resolved and joins the remainder onto
// the filesystem root. The joined path is checked again, so a remainder
// with traversal sequences cannot leave the root.
func (g *Guard) Contain(resolved string) (string, bool) {
	fullPath, res := g.contain(resolved)
	return fullPath, res == located
}

// Locate is Contain followed by the evaluation of every symlink of the
// joined path. The real path must still be below the filesystem root.
func (g *Guard) Locate(resolved string) (string, bool) {
	fullPath, res := g.locate(resolved)
	return fullPath, res == located
}

func (g *Guard) contain(resolved string) (string, locateResult) {
	remainder, ok := stripURLRoot(resolved, g.urlRoot)
	if !ok {
		return "", unmatched
	}

	fullPath := filepath.Join(g.fsRoot, filepath.FromSlash(remainder))
	if !isWithin(g.fsRoot, fullPath) {
		return "", escaped
	}

	return fullPath, located
}

func (g *Guard) locate(resolved string) (string, locateResult) {
	fullPath, res := g.contain(resolved)
	if res != located {
		return "", res
	}

	realPath, err := filepath.EvalSymlinks(fullPath)
	if err != nil {
		return "", missing
	}

	if !isWithin(g.fsRoot, realPath) {
		return "", escaped
	}

	return realPath, located
}

// stripURLRoot matches urlRoot against whole segments of p.
func stripURLRoot(p, urlRoot string) (string, bool) {
	if p == urlRoot {
		return "", true
	}

	if !strings.HasPrefix(p, urlRoot+"/") {
		return "", false
	}

	return p[len(urlRoot):], true
}

func isWithin(root, p string) bool {
	if p == root {
		return true
	}

	return strings.HasPrefix(p, strings.TrimSuffix(root, string(filepath.Separator))+string(filepath.Separator))
}
