package util

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// TeamPair is stored as a JSON array of two team names, eg. ["India","Australia"].
// A NULL column scans to the zero TeamPair.
type TeamPair [2]string

func NewTeamPair(team1, team2 string) TeamPair {
	return TeamPair{team1, team2}
}

func (p TeamPair) Value() (driver.Value, error) {
	if p.IsZero() {
		return nil, nil
	}

	b, err := json.Marshal([2]string(p))
	if err != nil {
		return nil, err
	}

	return string(b), nil
}

func (p TeamPair) IsZero() bool {
	return p[0] == "" && p[1] == ""
}

func (p *TeamPair) Scan(src interface{}) error {
	var raw []byte
	switch src := src.(type) {
	case nil:
		*p = TeamPair{}
		return nil
	case []byte:
		raw = src
	case string:
		raw = []byte(src)
	default:
		return fmt.Errorf("expected []byte or string, got %T", src)
	}

	var teams []*string
	if err := json.Unmarshal(raw, &teams); err != nil {
		return err
	}
	if len(teams) != 2 {
		return fmt.Errorf("expected 2 teams, got %d", len(teams))
	}

	*p = TeamPair{}
	for i, v := range teams {
		if v != nil {
			p[i] = *v
		}
	}

	return nil
}
