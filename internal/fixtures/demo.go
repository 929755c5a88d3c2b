package fixtures

import (
	"fmt"
	"zelus/internal/store"
	"zelus/internal/util"

	"gopkg.in/guregu/null.v4"
)

// Demo returns a small but realistic set of ODI players and matches.
func Demo() Data {
	players := []struct{ name, gender string }{
		{"V Kohli", "male"}, {"RG Sharma", "male"}, {"JE Root", "male"},
		{"KS Williamson", "male"}, {"SPD Smith", "male"}, {"Babar Azam", "male"},
		{"Q de Kock", "male"}, {"Shakib Al Hasan", "male"}, {"Rashid Khan", "male"},
		{"MM Lanning", "female"}, {"EA Perry", "female"}, {"S Mandhana", "female"},
		{"NR Sciver", "female"}, {"L Wolvaardt", "female"}, {"SW Bates", "female"},
		{"Unknown", ""},
	}

	matches := []util.TeamPair{
		{"India", "Australia"}, {"England", "New Zealand"}, {"Pakistan", "India"},
		{"South Africa", "Bangladesh"}, {"Afghanistan", "England"},
		{"Australia", "New Zealand"}, {"India", "England"}, {"Australia", "South Africa"},
		{"India", "New Zealand"}, {"Pakistan", "Afghanistan"}, {"Australia", "England"},
		{"Bangladesh", "India"},
	}

	var d Data
	for k, v := range players {
		d.Players = append(d.Players, store.Player{
			Name:     v.name,
			PlayerID: fmt.Sprintf("%08x", 0x1d2c3b00+k),
			Gender:   null.NewString(v.gender, v.gender != ""),
		})
	}

	for k, v := range matches {
		d.Matches = append(d.Matches, store.MatchResult{
			GameID: fmt.Sprintf("%d", 1000001+k),
			Teams:  v,
		})
	}

	// A match whose teams were never recorded, it must not count for anyone.
	d.Matches = append(d.Matches, store.MatchResult{
		GameID: fmt.Sprintf("%d", 1000001+len(matches)),
	})

	return d
}
