// Package store is the read-only data access layer over the SQLite file.
package store

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
	"zelus/internal/logging"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // database/sql driver
)

// Row is one record of a result set, indexed by column name.
type Row map[string]interface{}

type Store struct {
	db      *sqlx.DB
	timeout time.Duration
	log     *logging.Logger
}

// Open connects to the SQLite file at path in read-only mode. Every statement
// run through the returned Store is bounded by timeout (0 means no bound).
// The file must exist.
func Open(ctx context.Context, path string, timeout time.Duration, log *logging.Logger) (*Store, error) {
	// Column names are used verbatim by the templates and JSON output.
	sqlx.NameMapper = func(v string) string { return v }

	if _, err := os.Stat(path); err != nil {
		log.Error("unable to open the database", "path", path, "error", err)
		return nil, errors.Mark(errors.Wrapf(err, "unable to open %s", path), ErrConnectionFailed)
	}

	uri, err := dsn(path)
	if err != nil {
		return nil, errors.Mark(err, ErrConnectionFailed)
	}

	db, err := sqlx.ConnectContext(ctx, "sqlite3", uri)
	if err != nil {
		log.Error("unable to connect to the database", "path", path, "error", err)
		return nil, errors.Mark(errors.Wrapf(err, "unable to connect to %s", path), ErrConnectionFailed)
	}

	// SQLite happily opens any empty file, make sure this one holds our data.
	if _, err := db.ExecContext(ctx, schemaCheck); err != nil {
		log.Error("database is missing its tables", "path", path, "error", err)
		db.Close()
		return nil, errors.Mark(errors.Wrapf(err, "unusable database %s", path), ErrConnectionFailed)
	}

	// One long-lived connection for the whole process, database/sql queues
	// concurrent callers on it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	log.Info("connected to the cricket database", "path", path)

	return &Store{
		db:      db,
		timeout: timeout,
		log:     log,
	}, nil
}

const schemaCheck = `SELECT 1 FROM player_universe, match_results LIMIT 0`

// dsn returns a read-only SQLite URI for path. The path is made absolute
// and escaped so that '?', '#' and '%' in file names are not mistaken for
// URI syntax.
func dsn(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(err, "unable to resolve %s", path)
	}

	abs = filepath.ToSlash(abs)
	if !strings.HasPrefix(abs, "/") { // C:/...
		abs = "/" + abs
	}

	q := url.Values{}
	q.Set("mode", "ro")
	q.Set("_busy_timeout", "5000")

	return (&url.URL{Scheme: "file", Path: abs, RawQuery: q.Encode()}).String(), nil
}

// Close releases the connection. It must only be called once no query is
// in flight, ie. after the HTTP server has been shut down.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, s.timeout)
}

// Execute runs a complete, static SQL statement and returns all its rows in
// the order the engine produced them.
func (s *Store) Execute(ctx context.Context, query string) ([]Row, error) {
	start := time.Now()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, queryError(ctx, err)
	}
	defer rows.Close()

	ret := []Row{}
	for rows.Next() {
		row := map[string]interface{}{}
		if err := rows.MapScan(row); err != nil {
			return nil, queryError(ctx, err)
		}

		ret = append(ret, normalize(row))
	}

	if err := rows.Err(); err != nil {
		return nil, queryError(ctx, err)
	}

	s.log.Debug("ran query", "rows", len(ret), "duration", time.Since(start))

	return ret, nil
}

// Select runs query and scans its rows into dst, a pointer to a slice.
func (s *Store) Select(ctx context.Context, dst interface{}, query string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.db.SelectContext(ctx, dst, query); err != nil {
		return queryError(ctx, err)
	}

	return nil
}

// Ping checks the connection is still usable.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		return errors.Mark(errors.Wrap(err, "ping"), ErrConnectionFailed)
	}

	return nil
}

// normalize converts driver values to what templates and JSON expect: TEXT
// columns come back as []byte.
func normalize(row map[string]interface{}) Row {
	for k, v := range row {
		if b, ok := v.([]byte); ok {
			row[k] = string(b)
		}
	}

	return Row(row)
}

// String returns the column as a string, or "" if it is NULL or absent.
func (r Row) String(col string) string {
	switch v := r[col].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}
