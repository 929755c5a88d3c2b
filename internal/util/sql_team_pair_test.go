package util_test

import (
	"errors"
	"testing"
	"zelus/internal/util"
)

func TestTeamPairScan(t *testing.T) {
	cases := []struct {
		src      interface{}
		expected util.TeamPair
		err      bool
	}{
		{`["India","Australia"]`, util.NewTeamPair("India", "Australia"), false},
		{[]byte(`["A","B"]`), util.NewTeamPair("A", "B"), false},
		{`[null,"B"]`, util.NewTeamPair("", "B"), false},
		{nil, util.TeamPair{}, false},
		{`["A"]`, util.TeamPair{}, true},
		{`not json`, util.TeamPair{}, true},
		{int64(42), util.TeamPair{}, true},
	}

	for k, v := range cases {
		var actual util.TeamPair
		err := actual.Scan(v.src)
		if v.err {
			if err == nil {
				t.Errorf("case #%d: expected an error", k)
			}
			continue
		}
		if err != nil {
			t.Errorf("case #%d: %s", k, err)
			continue
		}

		if actual != v.expected {
			t.Errorf("case #%d: expected %v got %v", k, v.expected, actual)
		}
	}
}

func TestTeamPairValue(t *testing.T) {
	v, err := util.NewTeamPair("A", "B").Value()
	if err != nil {
		t.Fatal(err)
	}
	if v != `["A","B"]` {
		t.Errorf("unexpected value %v", v)
	}

	v, err = util.TeamPair{}.Value()
	if err != nil {
		t.Fatal(err)
	}
	if v != nil {
		t.Errorf("expected NULL for an empty pair, got %v", v)
	}
}

func TestConcatErrors(t *testing.T) {
	if err := util.ConcatErrors(nil); err != nil {
		t.Errorf("expected nil, got %s", err)
	}

	if err := util.ConcatErrors([]error{nil, nil}); err != nil {
		t.Errorf("expected nil, got %s", err)
	}

	err := util.ConcatErrors([]error{errors.New("a"), nil, errors.New("b")})
	if err == nil || err.Error() != "a; b" {
		t.Errorf("expected \"a; b\", got %v", err)
	}
}
