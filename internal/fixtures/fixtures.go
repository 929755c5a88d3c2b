// Package fixtures builds SQLite files holding cricket data, for development
// and tests. The service itself never writes to its database.
package fixtures

import (
	"context"
	"path/filepath"
	"zelus/internal/store"
	"zelus/internal/util"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3" // migrate driver
	_ "github.com/golang-migrate/migrate/v4/source/file"      // migrate source
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // database/sql driver
)

// Data is what gets inserted in a database.
type Data struct {
	Players []store.Player
	Matches []store.MatchResult
	Innings []store.Innings
}

// Create applies the migrations found in migrationsDir to the SQLite file at
// path (creating it if needed) and inserts data in a single transaction.
func Create(ctx context.Context, migrationsDir, path string, data Data) error {
	if err := Migrate(migrationsDir, path); err != nil {
		return err
	}

	db, err := sqlx.ConnectContext(ctx, "sqlite3", path)
	if err != nil {
		return err
	}
	defer db.Close()

	db.SetMaxOpenConns(1)

	return util.Transaction(ctx, db, func(tx *sqlx.Tx) error {
		return data.insert(tx)
	})
}

// Import is Create for data that may already be present: rows sharing a
// primary key with an existing one replace it.
func Import(ctx context.Context, migrationsDir, path string, data Data) error {
	if err := Migrate(migrationsDir, path); err != nil {
		return err
	}

	db, err := sqlx.ConnectContext(ctx, "sqlite3", path)
	if err != nil {
		return errors.Wrapf(err, "unable to open %s", path)
	}
	defer db.Close()

	db.SetMaxOpenConns(1)

	return util.Transaction(ctx, db, func(tx *sqlx.Tx) error {
		return data.insert(tx, "OR REPLACE")
	})
}

// Migrate brings the schema of the SQLite file at path up to date.
func Migrate(migrationsDir, path string) error {
	abs, err := filepath.Abs(migrationsDir)
	if err != nil {
		return err
	}

	migrator, err := migrate.New("file://"+filepath.ToSlash(abs), "sqlite3://"+path)
	if err != nil {
		return errors.Wrap(err, "unable to create migrator")
	}
	defer migrator.Close()

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "unable to migrate")
	}

	return nil
}

// insert writes every row of d, options are added after INSERT (eg. "OR REPLACE").
func (d Data) insert(tx *sqlx.Tx, options ...string) error {
	for _, v := range d.Players {
		if err := exec(tx, squirrel.Insert("player_universe").Options(options...).SetMap(squirrel.Eq{
			"name":      v.Name,
			"player_id": v.PlayerID,
			"gender":    v.Gender,
		})); err != nil {
			return errors.Wrapf(err, "unable to insert player %s", v.PlayerID)
		}
	}

	for _, v := range d.Matches {
		if err := exec(tx, squirrel.Insert("match_results").Options(options...).SetMap(squirrel.Eq{
			"game_id":    v.GameID,
			"teams":      v.Teams,
			"gender":     v.Gender,
			"match_type": v.MatchType,
			"season":     v.Season,
			"city":       v.City,
			"venue":      v.Venue,
			"dates":      v.Dates,
			"outcome":    v.Outcome,
		})); err != nil {
			return errors.Wrapf(err, "unable to insert match %s", v.GameID)
		}
	}

	for _, v := range d.Innings {
		if err := exec(tx, squirrel.Insert("innings").Options(options...).SetMap(squirrel.Eq{
			"game_id":       v.GameID,
			"innings_order": v.InningsOrder,
			"team":          v.Team,
			"overs":         v.Overs,
			"target":        v.Target,
		})); err != nil {
			return errors.Wrapf(err, "unable to insert innings %s/%d", v.GameID, v.InningsOrder)
		}
	}

	return nil
}

func exec(tx *sqlx.Tx, b squirrel.InsertBuilder) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}

	_, err = tx.Exec(query, args...)

	return err
}
