package web

import (
	"bytes"
	"zelus/internal/store"

	"github.com/wcharczuk/go-chart"
	"github.com/wcharczuk/go-chart/drawing"
)

const emptySVG = `<svg xmlns="http://www.w3.org/2000/svg"/>`

// maxChartBars keeps the server-side chart readable, the D3 page shows all teams.
const maxChartBars = 20

func teamAggregates(rows []store.Row) []store.TeamAggregate {
	ret := make([]store.TeamAggregate, 0, len(rows))
	for _, v := range rows {
		var games int
		switch n := v["games"].(type) {
		case int64:
			games = int(n)
		case float64:
			games = int(n)
		}

		ret = append(ret, store.TeamAggregate{Team: v.String("team"), Games: games})
	}

	return ret
}

// renderGamesPerTeam draws one bar per team, in the given order.
func renderGamesPerTeam(teams []store.TeamAggregate) ([]byte, error) {
	style := chart.Style{
		FontColor:   drawing.ColorBlack,
		FillColor:   drawing.ColorFromHex("1d72aa"),
		StrokeColor: drawing.ColorFromHex("363636"),
		StrokeWidth: 1,
	}

	if len(teams) > maxChartBars {
		teams = teams[:maxChartBars]
	}

	var maxGames int
	bars := make([]chart.Value, 0, len(teams))
	for _, v := range teams {
		bars = append(bars, chart.Value{
			Style: style,
			Label: v.Team,
			Value: float64(v.Games),
		})
		if v.Games > maxGames {
			maxGames = v.Games
		}
	}

	if maxGames == 0 {
		// go-chart does not like it when all values are 0
		return []byte(emptySVG), nil
	}

	graph := chart.BarChart{
		Width:      960,
		Height:     320,
		BarSpacing: 8,
		Canvas:     chart.Style{FillColor: chart.ColorTransparent},
		Background: chart.Style{FillColor: chart.ColorTransparent},
		YAxis: chart.YAxis{
			// Explicit so a single bar does not collapse the range.
			Range: &chart.ContinuousRange{Min: 0, Max: float64(maxGames)},
		},
		Bars: bars,
	}
	graph.BarWidth = (graph.Width - (len(bars) * graph.BarSpacing)) / len(bars)

	var buf bytes.Buffer
	if err := graph.Render(chart.SVG, &buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
