package web

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
)

var errNotFound = errors.New("not found")

const staticCacheDuration = 24 * time.Hour

// static serves the files of dir verbatim at their own path. Directories are
// not listed.
func (s *Server) static(dir string) handlerFunc {
	fs := http.FileServer(http.Dir(dir))

	return func(w http.ResponseWriter, r *http.Request) error {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			return errors.Wrap(errNotFound, r.Method)
		}

		name := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
		info, err := os.Stat(name)
		if err != nil || info.IsDir() {
			return errors.Wrap(errNotFound, r.URL.Path)
		}

		s.cache(w, "public", staticCacheDuration)
		fs.ServeHTTP(w, r)

		return nil
	}
}
