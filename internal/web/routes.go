package web

import (
	"net/http"
	"time"
	"zelus/internal/catalog"
	"zelus/internal/store"
)

type renderMode int

const (
	renderHTML renderMode = iota
	renderJSON
	renderSVG
)

// A route binds a method and path to a catalog statement and a way to render
// its rows.
type route struct {
	method, path string
	query        string
	mode         renderMode
	view         string // layout name for renderHTML
	title        string
	filter       func([]store.Row) []store.Row
	cache        time.Duration
}

var routes = []route{ // nolint:gochecknoglobals
	{
		method: http.MethodGet, path: "/",
		query: catalog.ListPlayers, mode: renderHTML, view: "index.html",
		title: "Cricket statistics",
		cache: 5 * time.Minute,
	},
	{
		method: http.MethodGet, path: "/players",
		query: catalog.ListPlayers, mode: renderHTML, view: "players.html",
		title: "Players",
		cache: 5 * time.Minute,
	},
	{
		method: http.MethodGet, path: "/players.json",
		query: catalog.ListPlayers, mode: renderJSON,
		cache: 5 * time.Minute,
	},
	{
		method: http.MethodGet, path: "/vis",
		query: catalog.GamesPerTeam, mode: renderJSON,
		filter: withTeam,
		cache:  1 * time.Hour,
	},
	{
		method: http.MethodGet, path: "/vis.html",
		query: catalog.GamesPerTeam, mode: renderHTML, view: "vis.html",
		title:  "Games per team",
		filter: withTeam,
		cache:  1 * time.Hour,
	},
	{
		method: http.MethodGet, path: "/vis.svg",
		query: catalog.GamesPerTeam, mode: renderSVG,
		filter: withTeam,
		cache:  1 * time.Hour,
	},
}

// handle runs the route statement and renders its rows.
func (s *Server) handle(rt route) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		query, err := s.catalog.Get(rt.query)
		if err != nil {
			return err
		}

		rows, err := s.store.Execute(r.Context(), query)
		if err != nil {
			return err
		}

		if rt.filter != nil {
			rows = rt.filter(rows)
		}

		switch rt.mode {
		case renderJSON:
			return s.json(w, r, http.StatusOK, rt.cache, rows)
		case renderSVG:
			return s.svg(w, r, rt.cache, rows)
		default:
			return s.html(w, r, http.StatusOK, rt.cache, rt.view, pageData{
				Title: rt.title,
				Rows:  rows,
			})
		}
	}
}

// withTeam drops aggregate rows without a team, there must never be a
// "null" team bucket.
func withTeam(rows []store.Row) []store.Row {
	ret := rows[:0]
	for _, v := range rows {
		if v.String("team") != "" {
			ret = append(ret, v)
		}
	}

	return ret
}
