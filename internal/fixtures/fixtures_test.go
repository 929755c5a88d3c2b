package fixtures_test

import (
	"context"
	"path/filepath"
	"testing"
	"zelus/internal/fixtures"
	"zelus/internal/store"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const migrationsDir = "../../resources/migrations"

func TestCreateDemo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.db")
	demo := fixtures.Demo()
	require.NoError(t, fixtures.Create(context.Background(), migrationsDir, path, demo))

	db, err := sqlx.Connect("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var players []store.Player
	require.NoError(t, db.Select(&players, `SELECT name, player_id, gender FROM player_universe ORDER BY player_id`))
	assert.Equal(t, demo.Players, players)

	var matches []store.MatchResult
	require.NoError(t, db.Select(&matches, `SELECT game_id, teams FROM match_results ORDER BY game_id`))
	assert.Equal(t, demo.Matches, matches)
}

func TestCreateTwiceFailsOnDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.db")
	require.NoError(t, fixtures.Create(context.Background(), migrationsDir, path, fixtures.Demo()))

	// Migrations are already applied, but the players are not unique anymore.
	err := fixtures.Create(context.Background(), migrationsDir, path, fixtures.Demo())
	assert.Error(t, err)
}
