package web

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"github.com/leonelquinteros/gotext"
	"golang.org/x/text/language"
)

const defaultLocale = "en"

// supportedLocales is ordered by preference, the first one is the fallback.
var supportedLocales = []language.Tag{ // nolint:gochecknoglobals
	language.English,
	language.French,
}

var localeMatcher = language.NewMatcher(supportedLocales) // nolint:gochecknoglobals

type ctxKey int

const (
	ctxKeyLocale ctxKey = iota
	ctxKeyLogger
)

// loadLocales reads <dir>/<lang>/default.po for every supported locale.
// A missing catalog is not an error, its strings are displayed untranslated.
func loadLocales(dir string) map[string]*gotext.Locale {
	ret := make(map[string]*gotext.Locale, len(supportedLocales))
	for _, tag := range supportedLocales {
		name := tag.String()
		locale := gotext.NewLocale(dir, name)
		if _, err := os.Stat(filepath.Join(dir, name, "default.po")); err == nil {
			locale.AddDomain("default")
		}
		ret[name] = locale
	}

	return ret
}

func (s *Server) translate(locale, str string) string {
	l, ok := s.locales[locale]
	if !ok {
		return str
	}

	return l.Get(str)
}

// pickLocale honors an explicit ?lang= first, then Accept-Language.
func pickLocale(r *http.Request) string {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		if tag, err := language.Parse(lang); err == nil {
			for _, v := range supportedLocales {
				if base, _ := tag.Base(); base.String() == v.String() {
					return v.String()
				}
			}
		}
	}

	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil || len(tags) == 0 {
		return defaultLocale
	}

	_, index, _ := localeMatcher.Match(tags...)

	return supportedLocales[index].String()
}

func (s *Server) withLocale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ctxKeyLocale, pickLocale(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func localeFromContext(ctx context.Context) string {
	if locale, ok := ctx.Value(ctxKeyLocale).(string); ok {
		return locale
	}

	return defaultLocale
}
