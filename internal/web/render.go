package web

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"
	"zelus/internal/store"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
)

// ErrRender is returned when a page can't be produced from its template.
var ErrRender = errors.New("unable to render template")

type handlerFunc func(http.ResponseWriter, *http.Request) error

// pageData is the bag of values every layout receives.
type pageData struct {
	Title  string
	Locale string
	Rows   []store.Row
}

// wrap is the single place where handler errors become HTTP responses.
func (s *Server) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			s.error(w, r, err, statusFromError(err))
		}
	}
}

// statusClientClosedRequest is used when the client went away before the
// response was ready.
const statusClientClosedRequest = 499

func statusFromError(err error) int {
	switch {
	case errors.Is(err, store.ErrCanceled),
		errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	case errors.Is(err, store.ErrTimeout),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, store.ErrConnectionFailed):
		return http.StatusServiceUnavailable
	case errors.Is(err, errNotFound):
		return http.StatusNotFound
	default: // store.ErrQueryFailed, catalog.ErrUnknownQuery, ErrRender
		return http.StatusInternalServerError
	}
}

// error logs err and writes a generic body, details are only shown in dev mode.
func (s *Server) error(w http.ResponseWriter, r *http.Request, err error, code int) {
	log := s.logger(r.Context())
	if code >= 500 {
		log.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", code, "error", err)
	} else {
		log.Debug("request failed", "path", r.URL.Path, "status", code, "error", err)
	}

	msg := http.StatusText(code)
	if msg == "" {
		msg = "Client Closed Request"
	}
	if s.config.DevMode && err != nil {
		msg = fmt.Sprintf("%s: %s", msg, err)
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	fmt.Fprintln(w, msg)
}

func (s *Server) html(
	w http.ResponseWriter, r *http.Request,
	code int, cache time.Duration, view string, data pageData,
) error {
	tpl, ok := s.tpl[view]
	if !ok {
		return errors.Wrapf(ErrRender, "no layout named %q", view)
	}

	data.Locale = localeFromContext(r.Context())
	if data.Rows == nil {
		data.Rows = []store.Row{}
	}

	// Render fully before writing anything, a failing template must still
	// produce a clean error response.
	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, view, data); err != nil {
		return errors.Mark(errors.Wrapf(err, "execute %s", view), ErrRender)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	s.cache(w, "public", cache)
	w.WriteHeader(code)
	s.write(w, buf.Bytes())

	return nil
}

func (s *Server) json(w http.ResponseWriter, _ *http.Request, code int, cache time.Duration, data interface{}) error {
	response, err := sonic.ConfigStd.Marshal(data)
	if err != nil {
		return errors.Wrap(err, "unable to marshal response")
	}

	w.Header().Set("Content-Type", "application/json")
	s.cache(w, "public", cache)
	w.WriteHeader(code)
	s.write(w, response)

	return nil
}

func (s *Server) svg(w http.ResponseWriter, _ *http.Request, cache time.Duration, rows []store.Row) error {
	svg, err := renderGamesPerTeam(teamAggregates(rows))
	if err != nil {
		return errors.Mark(err, ErrRender)
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	s.cache(w, "public", cache)
	w.WriteHeader(http.StatusOK)
	s.write(w, svg)

	return nil
}

func (s *Server) write(w http.ResponseWriter, b []byte) {
	if _, err := w.Write(b); err != nil {
		s.log.Warn("unable to send response", "error", err)
	}
}

func (s *Server) cache(w http.ResponseWriter, scope string, d time.Duration) {
	if d <= 0 || s.config.DevMode {
		w.Header().Set("Cache-Control", "no-cache")
		return
	}

	w.Header().Set("Cache-Control", fmt.Sprintf("%s,max-age=%d", scope, d/time.Second))
}
