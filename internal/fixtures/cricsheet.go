package fixtures

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"zelus/internal/store"
	"zelus/internal/util"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"gopkg.in/guregu/null.v4"
)

// cricsheetMatch is the part of a Cricsheet JSON match file we keep.
// See https://cricsheet.org/format/json/
type cricsheetMatch struct {
	Info struct {
		City      string          `json:"city"`
		Dates     json.RawMessage `json:"dates"`
		Gender    string          `json:"gender"`
		MatchType string          `json:"match_type"`
		Outcome   json.RawMessage `json:"outcome"`
		Registry  struct {
			People map[string]string `json:"people"`
		} `json:"registry"`
		Season json.RawMessage `json:"season"`
		Teams  []string        `json:"teams"`
		Venue  string          `json:"venue"`
	} `json:"info"`
	Innings []struct {
		Team   string          `json:"team"`
		Overs  json.RawMessage `json:"overs"`
		Target json.RawMessage `json:"target"`
	} `json:"innings"`
}

// ReadCricsheet loads the Cricsheet JSON matches found at paths, each one
// being a zip archive as downloaded from cricsheet.org, a directory or a
// single .json file. The game id is the file name without its extension.
// Players are taken from each match registry with the gender of the match,
// the first occurrence of a player id wins.
func ReadCricsheet(paths ...string) (Data, error) {
	r := cricsheetReader{seen: map[string]struct{}{}}

	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil {
			return Data{}, err
		}

		switch {
		case fi.IsDir():
			err = r.readDir(p)
		case strings.EqualFold(filepath.Ext(p), ".zip"):
			err = r.readZip(p)
		default:
			err = r.readFile(p)
		}
		if err != nil {
			return Data{}, err
		}
	}

	return r.data, nil
}

type cricsheetReader struct {
	data Data
	seen map[string]struct{} // player ids
}

func (r *cricsheetReader) readDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, v := range entries { // sorted by name
		if v.IsDir() || !isMatchFile(v.Name()) {
			continue
		}
		if err := r.readFile(filepath.Join(dir, v.Name())); err != nil {
			return err
		}
	}

	return nil
}

func (r *cricsheetReader) readZip(name string) error {
	archive, err := zip.OpenReader(name)
	if err != nil {
		return errors.Wrapf(err, "unable to open %s", name)
	}
	defer archive.Close()

	files := make([]*zip.File, 0, len(archive.File))
	for _, v := range archive.File {
		if !v.FileInfo().IsDir() && isMatchFile(v.Name) {
			files = append(files, v)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	for _, v := range files {
		f, err := v.Open()
		if err != nil {
			return errors.Wrapf(err, "unable to open %s in %s", v.Name, name)
		}

		err = r.add(path.Base(v.Name), f)
		f.Close()
		if err != nil {
			return errors.Wrapf(err, "in %s", name)
		}
	}

	return nil
}

func (r *cricsheetReader) readFile(name string) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	return r.add(filepath.Base(name), f)
}

func (r *cricsheetReader) add(name string, src io.Reader) error {
	raw, err := io.ReadAll(src)
	if err != nil {
		return errors.Wrapf(err, "unable to read %s", name)
	}

	var match cricsheetMatch
	if err := sonic.ConfigStd.Unmarshal(raw, &match); err != nil {
		return errors.Wrapf(err, "unable to decode %s", name)
	}

	gameID := strings.TrimSuffix(name, path.Ext(name))
	info := match.Info
	gender := null.NewString(info.Gender, info.Gender != "")

	var teams util.TeamPair
	if len(info.Teams) == 2 {
		teams = util.NewTeamPair(info.Teams[0], info.Teams[1])
	}

	r.data.Matches = append(r.data.Matches, store.MatchResult{
		GameID:    gameID,
		Teams:     teams,
		Gender:    gender,
		MatchType: null.NewString(info.MatchType, info.MatchType != ""),
		Season:    scalarText(info.Season),
		City:      null.NewString(info.City, info.City != ""),
		Venue:     null.NewString(info.Venue, info.Venue != ""),
		Dates:     jsonText(info.Dates),
		Outcome:   jsonText(info.Outcome),
	})

	for k, v := range match.Innings {
		r.data.Innings = append(r.data.Innings, store.Innings{
			GameID:       gameID,
			InningsOrder: k + 1,
			Team:         null.NewString(v.Team, v.Team != ""),
			Overs:        jsonText(v.Overs),
			Target:       jsonText(v.Target),
		})
	}

	names := make([]string, 0, len(info.Registry.People))
	for k := range info.Registry.People {
		names = append(names, k)
	}
	sort.Strings(names)

	for _, v := range names {
		id := info.Registry.People[v]
		if _, ok := r.seen[id]; ok || id == "" {
			continue
		}
		r.seen[id] = struct{}{}

		r.data.Players = append(r.data.Players, store.Player{
			Name:     v,
			PlayerID: id,
			Gender:   gender,
		})
	}

	return nil
}

func isMatchFile(name string) bool {
	return strings.EqualFold(path.Ext(name), ".json")
}

// jsonText returns raw compacted, or NULL if it is absent or null.
func jsonText(raw json.RawMessage) null.String {
	if len(raw) == 0 || string(raw) == "null" {
		return null.String{}
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return null.StringFrom(string(raw))
	}

	return null.StringFrom(buf.String())
}

// scalarText returns a JSON string or number as plain text, Cricsheet seasons
// are either "2016/17" or 2017.
func scalarText(raw json.RawMessage) null.String {
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return null.NewString(str, str != "")
	}

	return jsonText(raw)
}
