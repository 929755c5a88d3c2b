package store_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"
	"zelus/internal/catalog"
	"zelus/internal/fixtures"
	"zelus/internal/logging"
	"zelus/internal/store"
	"zelus/internal/util"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v4"
)

const migrationsDir = "../../resources/migrations"

func createTestStore(t *testing.T, data fixtures.Data, timeout time.Duration) *store.Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "zelus.db")
	require.NoError(t, fixtures.Create(context.Background(), migrationsDir, path, data))

	s, err := store.Open(context.Background(), path, timeout, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func players(n int) []store.Player {
	ret := make([]store.Player, 0, n)
	for i := 0; i < n; i++ {
		ret = append(ret, store.Player{
			Name:     fmt.Sprintf("Player %02d", i),
			PlayerID: fmt.Sprintf("p%02d", i),
			Gender:   null.StringFrom("female"),
		})
	}

	return ret
}

func matches(pairs ...util.TeamPair) []store.MatchResult {
	ret := make([]store.MatchResult, 0, len(pairs))
	for k, v := range pairs {
		ret = append(ret, store.MatchResult{GameID: fmt.Sprintf("g%d", k), Teams: v})
	}

	return ret
}

func mustQuery(t *testing.T, name string) string {
	t.Helper()

	c, err := catalog.New("")
	require.NoError(t, err)
	query, err := c.Get(name)
	require.NoError(t, err)

	return query
}

func TestOpenMissingFile(t *testing.T) {
	_, err := store.Open(
		context.Background(),
		filepath.Join(t.TempDir(), "nope.db"),
		time.Second,
		logging.NewNop(),
	)

	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrConnectionFailed))
}

func TestOpenEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	_, err := store.Open(context.Background(), path, time.Second, logging.NewNop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrConnectionFailed))
	assert.Contains(t, err.Error(), "no such table")
}

func TestOpenPathWithURICharacters(t *testing.T) {
	dir := t.TempDir()
	built := filepath.Join(dir, "zelus.db")
	require.NoError(t, fixtures.Create(context.Background(), migrationsDir, built, fixtures.Data{
		Players: players(3),
	}))

	path := filepath.Join(dir, "odd?name#1%20.db")
	require.NoError(t, os.Rename(built, path))

	s, err := store.Open(context.Background(), path, time.Second, logging.NewNop())
	require.NoError(t, err)
	defer s.Close()

	rows, err := s.Execute(context.Background(), mustQuery(t, catalog.ListPlayers))
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	// Nothing got created next to it under a truncated name.
	_, err = os.Stat(filepath.Join(dir, "odd"))
	assert.True(t, os.IsNotExist(err))
}

func TestListPlayersLimit(t *testing.T) {
	s := createTestStore(t, fixtures.Data{Players: players(15)}, time.Second)

	rows, err := s.Execute(context.Background(), mustQuery(t, catalog.ListPlayers))
	require.NoError(t, err)
	require.Len(t, rows, 10)

	for _, row := range rows {
		assert.NotEmpty(t, row.String("name"))
		assert.NotEmpty(t, row.String("player_id"))
		assert.Equal(t, "female", row["gender"])
		assert.Len(t, row, 3)
	}
}

func TestListPlayersNullGender(t *testing.T) {
	s := createTestStore(t, fixtures.Data{Players: []store.Player{
		{Name: "Anon", PlayerID: "x1"},
	}}, time.Second)

	rows, err := s.Execute(context.Background(), mustQuery(t, catalog.ListPlayers))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0]["gender"])
	assert.Equal(t, "", rows[0].String("gender"))
}

func TestGamesPerTeam(t *testing.T) {
	s := createTestStore(t, fixtures.Data{Matches: matches(
		util.NewTeamPair("A", "B"),
		util.NewTeamPair("A", "C"),
		util.NewTeamPair("B", "C"),
	)}, time.Second)

	var actual []store.TeamAggregate
	require.NoError(t, s.Select(context.Background(), &actual, mustQuery(t, catalog.GamesPerTeam)))

	assert.Equal(t, []store.TeamAggregate{
		{Team: "A", Games: 2},
		{Team: "B", Games: 2},
		{Team: "C", Games: 2},
	}, actual)
}

func TestGamesPerTeamSumsBothSides(t *testing.T) {
	pairs := []util.TeamPair{
		util.NewTeamPair("India", "Australia"),
		util.NewTeamPair("Australia", "England"),
		util.NewTeamPair("India", "England"),
		util.NewTeamPair("England", "India"),
		util.NewTeamPair("Ireland", "India"),
	}
	s := createTestStore(t, fixtures.Data{Matches: matches(pairs...)}, time.Second)

	expected := map[string]int{}
	for _, v := range pairs {
		expected[v[0]]++
		expected[v[1]]++
	}

	var aggregates []store.TeamAggregate
	require.NoError(t, s.Select(context.Background(), &aggregates, mustQuery(t, catalog.GamesPerTeam)))

	actual := map[string]int{}
	for _, v := range aggregates {
		actual[v.Team] = v.Games
	}
	assert.Equal(t, expected, actual)

	assert.True(t, sort.SliceIsSorted(aggregates, func(i, j int) bool {
		return aggregates[i].Games > aggregates[j].Games
	}), "expected descending games order")
}

func TestGamesPerTeamIgnoresMissingTeams(t *testing.T) {
	data := fixtures.Data{Matches: matches(
		util.NewTeamPair("A", "B"),
		util.TeamPair{},
		util.NewTeamPair("", "B"),
	)}
	s := createTestStore(t, data, time.Second)

	rows, err := s.Execute(context.Background(), mustQuery(t, catalog.GamesPerTeam))
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, store.Row{"team": "B", "games": int64(2)}, rows[0])
	assert.Equal(t, store.Row{"team": "A", "games": int64(1)}, rows[1])
}

func TestExecuteIdempotent(t *testing.T) {
	s := createTestStore(t, fixtures.Demo(), time.Second)
	query := mustQuery(t, catalog.GamesPerTeam)

	first, err := s.Execute(context.Background(), query)
	require.NoError(t, err)
	second, err := s.Execute(context.Background(), query)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestExecuteQueryFailed(t *testing.T) {
	s := createTestStore(t, fixtures.Data{}, time.Second)

	_, err := s.Execute(context.Background(), "SELECT nope FROM nowhere")
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrQueryFailed))
	assert.False(t, errors.Is(err, store.ErrTimeout))
	assert.Contains(t, err.Error(), "no such table")
}

func TestExecuteIsReadOnly(t *testing.T) {
	s := createTestStore(t, fixtures.Data{Players: players(1)}, time.Second)

	_, err := s.Execute(context.Background(), "DELETE FROM player_universe")
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrQueryFailed))

	rows, err := s.Execute(context.Background(), mustQuery(t, catalog.ListPlayers))
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

// slowQuery never ends on its own.
const slowQuery = `WITH RECURSIVE c(x) AS (SELECT 1 UNION ALL SELECT x + 1 FROM c)
SELECT COUNT(*) FROM c`

func TestExecuteTimeout(t *testing.T) {
	s := createTestStore(t, fixtures.Data{}, 50*time.Millisecond)

	start := time.Now()
	_, err := s.Execute(context.Background(), slowQuery)
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrTimeout), "got %v", err)
	assert.Less(t, int64(time.Since(start)), int64(5*time.Second))

	// The connection is still usable afterwards.
	_, err = s.Execute(context.Background(), "SELECT 1")
	assert.NoError(t, err)
}

func TestExecuteCanceled(t *testing.T) {
	s := createTestStore(t, fixtures.Data{}, 5*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	_, err := s.Execute(ctx, slowQuery)
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrCanceled), "got %v", err)
	assert.False(t, errors.Is(err, store.ErrQueryFailed))
	assert.False(t, errors.Is(err, store.ErrTimeout))

	_, err = s.Execute(context.Background(), "SELECT 1")
	assert.NoError(t, err)
}

func TestConcurrentExecute(t *testing.T) {
	s := createTestStore(t, fixtures.Data{Players: players(15)}, 5*time.Second)
	query := mustQuery(t, catalog.ListPlayers)

	var wg sync.WaitGroup
	results := make([][]store.Row, 16)
	errs := make([]error, len(results))
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = s.Execute(context.Background(), query)
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0], results[i])
		assert.Len(t, results[i], 10)
	}
}
