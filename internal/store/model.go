package store

import (
	"zelus/internal/util"

	"gopkg.in/guregu/null.v4"
)

// Player is a row of player_universe.
type Player struct {
	Name     string      `db:"name" json:"name"`
	PlayerID string      `db:"player_id" json:"player_id"`
	Gender   null.String `db:"gender" json:"gender"`
}

// MatchResult is a row of match_results. Dates and Outcome hold JSON text
// as found in the Cricsheet match info.
type MatchResult struct {
	GameID    string        `db:"game_id" json:"game_id"`
	Teams     util.TeamPair `db:"teams" json:"teams"`
	Gender    null.String   `db:"gender" json:"gender"`
	MatchType null.String   `db:"match_type" json:"match_type"`
	Season    null.String   `db:"season" json:"season"`
	City      null.String   `db:"city" json:"city"`
	Venue     null.String   `db:"venue" json:"venue"`
	Dates     null.String   `db:"dates" json:"dates"`
	Outcome   null.String   `db:"outcome" json:"outcome"`
}

// Innings is a row of innings, Overs and Target are JSON text.
type Innings struct {
	GameID       string      `db:"game_id" json:"game_id"`
	InningsOrder int         `db:"innings_order" json:"innings_order"`
	Team         null.String `db:"team" json:"team"`
	Overs        null.String `db:"overs" json:"overs"`
	Target       null.String `db:"target" json:"target"`
}

// TeamAggregate is the number of games a team played, on either side.
type TeamAggregate struct {
	Team  string `db:"team" json:"team"`
	Games int    `db:"games" json:"games"`
}
