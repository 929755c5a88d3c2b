package web

import (
	"crypto/sha512"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"zelus/internal/store"

	"github.com/russross/blackfriday/v2"
)

func (s *Server) loadTemplates(baseDir string) (map[string]*template.Template, error) {
	layouts, err := filepath.Glob(filepath.Join(baseDir, "layouts/*.html"))
	if err != nil {
		return nil, err
	}
	if len(layouts) == 0 {
		return nil, fmt.Errorf("no layout found in %s", baseDir)
	}

	includes, err := filepath.Glob(filepath.Join(baseDir, "includes/*.html"))
	if err != nil {
		return nil, err
	}

	funcs := s.getTemplateFuncMap(s.config.StaticDir())
	ret := make(map[string]*template.Template, len(layouts))
	for _, layout := range layouts {
		tpl, err := template.New("").
			Funcs(funcs).
			ParseFiles(append(includes, layout)...)
		if err != nil {
			return nil, err
		}

		ret[filepath.Base(layout)] = tpl
	}

	return ret, nil
}

func (s *Server) getTemplateFuncMap(staticDir string) template.FuncMap {
	return template.FuncMap{
		"t": func(locale string, str string) string {
			return s.translate(locale, str)
		},

		"tf": func(locale string, str string, args ...interface{}) string {
			return fmt.Sprintf(s.translate(locale, str), args...)
		},

		"tmd": func(locale, str string) template.HTML {
			return template.HTML(blackfriday.Run( // nolint:gosec
				[]byte(s.translate(locale, str)),
			))
		},

		"col":            tplColumn,
		"assetURL":       tplAssetURL,
		"assetIntegrity": tplAssetIntegrity(staticDir),
	}
}

// tplColumn returns a row field as text, NULL being the empty string.
func tplColumn(row store.Row, name string) string {
	return row.String(name)
}

func tplAssetURL(name string) string {
	return "/" + strings.TrimPrefix(name, "/")
}

func tplAssetIntegrity(staticDir string) func(name string) (string, error) {
	var mu sync.Mutex
	hashCache := map[string]string{}

	return func(name string) (string, error) {
		mu.Lock()
		defer mu.Unlock()

		if hash, ok := hashCache[name]; ok {
			return hash, nil
		}

		f, err := os.Open(filepath.Join(staticDir, filepath.FromSlash(name)))
		if err != nil {
			return "", err
		}
		defer f.Close() // nolint:gosec

		h := sha512.New()
		if _, err := io.Copy(h, f); err != nil {
			return "", err
		}

		hashCache[name] = "sha512-" + base64.StdEncoding.EncodeToString(h.Sum(nil))
		return hashCache[name], nil
	}
}
