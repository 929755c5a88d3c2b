package web

import (
	"context"
	"html/template"
	"math"
	"net"
	"net/http"
	"time"
	"zelus/internal/catalog"
	"zelus/internal/config"
	"zelus/internal/logging"
	"zelus/internal/store"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/leonelquinteros/gotext"
	"golang.org/x/time/rate"
)

// Store is what the server needs from the data access layer.
type Store interface {
	Execute(ctx context.Context, query string) ([]store.Row, error)
	Ping(ctx context.Context) error
}

type Server struct {
	http    *http.Server
	store   Store
	catalog *catalog.Catalog
	config  *config.Config
	log     *logging.Logger
	tpl     map[string]*template.Template
	locales map[string]*gotext.Locale
	limiter *rate.Limiter
}

// shutdownGrace is how long in-flight requests get to complete on shutdown.
const shutdownGrace = 10 * time.Second

func NewServer(
	conf *config.Config,
	st Store,
	cat *catalog.Catalog,
	log *logging.Logger,
) (*Server, error) {
	s := &Server{
		store:   st,
		catalog: cat,
		config:  conf,
		log:     log,
		locales: loadLocales(conf.LocalesDir()),
	}

	// Fail early on unknown queries rather than on the first request.
	for _, v := range routes {
		if v.query == "" {
			continue
		}
		if _, err := cat.Get(v.query); err != nil {
			return nil, err
		}
	}

	tpl, err := s.loadTemplates(conf.TemplatesDir())
	if err != nil {
		return nil, errors.Wrap(err, "unable to load templates")
	}
	s.tpl = tpl

	if conf.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(conf.RateLimit), int(math.Ceil(conf.RateLimit)))
	}

	s.http = &http.Server{
		Addr:         conf.Addr(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: conf.QueryTimeout.Duration() + 5*time.Second,
		IdleTimeout:  30 * time.Second,
		Handler:      s.setupRouter(),
	}

	return s, nil
}

func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(s.rateLimit)
	r.Use(s.withLocale)

	for _, v := range routes {
		r.Method(v.method, v.path, s.wrap(s.handle(v)))
	}

	r.Get("/healthz", s.wrap(s.health))
	r.NotFound(s.wrap(s.static(s.config.StaticDir())))

	return r
}

// Handler returns the root handler, routes and middlewares included.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Serve listens until ctx is cancelled then drains in-flight requests.
// It returns once the server is completely stopped.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return errors.Wrapf(err, "unable to listen on %s", s.http.Addr)
	}

	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	s.log.Info("server is listening", "addr", ln.Addr().String())

	errs := make(chan error, 1)
	go func() {
		errs <- s.http.Serve(ln)
	}()

	select {
	case err := <-errs:
		return errors.Wrap(err, "webserver crashed")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		s.log.Warn("unable to drain webserver", "error", err)
		if err := s.http.Close(); err != nil {
			return err
		}
	}

	if err := <-errs; err != nil && err != http.ErrServerClosed {
		return err
	}

	s.log.Info("HTTP server closed")

	return nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) error {
	if err := s.store.Ping(r.Context()); err != nil {
		return err
	}

	w.WriteHeader(http.StatusNoContent)

	return nil
}
