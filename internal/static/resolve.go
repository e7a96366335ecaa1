package static

import (
	"net/url"
	"path"
	"strings"
)

// IndexFile is served for paths that denote a directory.
const IndexFile = "index.html"

// ResolvePath turns the request URI of a request into a clean, slash
// separated path. Everything after the first "?" is ignored. A path that
// denotes a directory gets IndexFile appended, whether or not such a file
// exists.
//
// It fails for request URIs that cannot be parsed, carry invalid
// characters or do not start with "/".
func ResolvePath(requestURI string) (string, bool) {
	u, err := url.ParseRequestURI(requestURI)
	if err != nil {
		return "", false
	}

	p := u.Path
	if !strings.HasPrefix(p, "/") || strings.IndexByte(p, 0) >= 0 {
		return "", false
	}

	isDir := strings.HasSuffix(p, "/") || strings.HasSuffix(p, "/.") || strings.HasSuffix(p, "/..")

	p = path.Clean(p)
	if isDir {
		p = path.Join(p, IndexFile)
	}

	return p, true
}
