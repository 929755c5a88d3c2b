// Package catalog holds the fixed set of SQL statements the service is
// allowed to run.
package catalog

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

const (
	ListPlayers  = "list_players"
	GamesPerTeam = "games_per_team"
)

// ErrUnknownQuery is returned when asking for a statement not in the catalog.
var ErrUnknownQuery = errors.New("unknown query")

//go:embed queries/*.sql
var embedded embed.FS

type Catalog struct {
	queries map[string]string
}

// New loads the embedded statements, then replaces any of them for which
// overrideDir contains a <name>.sql file. An empty overrideDir only uses the
// embedded statements. Files in overrideDir that match no known statement
// are ignored.
func New(overrideDir string) (*Catalog, error) {
	c := &Catalog{queries: map[string]string{}}

	if err := c.load(embedded, "queries", false); err != nil {
		return nil, err
	}

	if overrideDir != "" {
		if err := c.load(os.DirFS(overrideDir), ".", true); err != nil {
			return nil, errors.Wrapf(err, "unable to load queries from %s", overrideDir)
		}
	}

	return c, nil
}

func (c *Catalog) load(fsys fs.FS, dir string, override bool) error {
	paths, err := fs.Glob(fsys, filepath.ToSlash(filepath.Join(dir, "*.sql")))
	if err != nil {
		return err
	}

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".sql")
		if _, ok := c.queries[name]; override && !ok {
			continue
		}

		b, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}

		query := strings.TrimSpace(string(b))
		if query == "" {
			return errors.Newf("empty query in %s", path)
		}

		c.queries[name] = query
	}

	return nil
}

// Get returns the SQL text of the named statement.
func (c *Catalog) Get(name string) (string, error) {
	query, ok := c.queries[name]
	if !ok {
		return "", errors.Wrapf(ErrUnknownQuery, "%q", name)
	}

	return query, nil
}

func (c *Catalog) Names() []string {
	ret := make([]string, 0, len(c.queries))
	for k := range c.queries {
		ret = append(ret, k)
	}
	sort.Strings(ret)

	return ret
}
