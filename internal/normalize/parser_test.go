package normalize

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cricket-analyzer/internal/model"
)

func str(s string) sql.Null[string] { return sql.Null[string]{V: s, Valid: true} }
func num(n int64) sql.Null[int64] { return sql.Null[int64]{V: n, Valid: true} }

func TestParseMatch(t *testing.T) {
	got, err := ParseMatch(decode(t, scenarioDocument()), "1359475", model.FormatIPL)
	require.NoError(t, err)

	want := model.Match{
		MatchID:       "1359475",
		Format:        model.FormatIPL,
		City:          str("Mumbai"),
		Venue:         str("Wankhede Stadium"),
		Date:          sql.Null[time.Time]{V: time.Date(2023, 4, 30, 0, 0, 0, 0, time.UTC), Valid: true},
		MatchType:     str("T20"),
		Season:        str("2023"),
		Team1:         str("Mumbai Indians"),
		Team2:         str("Rajasthan Royals"),
		TossWinner:    str("Rajasthan Royals"),
		TossDecision:  str("bat"),
		Winner:        str("Mumbai Indians"),
		ResultType:    model.ResultWickets,
		ResultMargin:  num(6),
		PlayerOfMatch: str("TH David"),
		Umpire1:       str("KN Ananthapadmanabhan"),
		Umpire2:       str("Nitin Menon"),
		DataVersion:   str("1.1.0"),
		Created:       str("2023-05-01"),
		Revision:      num(1),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseMatch mismatch (-want +got):\n%s", diff)
	}
}

// TestParseMatchShortLists tests that missing list slots resolve to absent
// values instead of failing
func TestParseMatchShortLists(t *testing.T) {
	tests := []struct {
		name string
		info string
		want func(t *testing.T, m model.Match)
	}{
		{
			name: "no officials",
			info: `{"teams": ["A", "B"]}`,
			want: func(t *testing.T, m model.Match) {
				assert.False(t, m.Umpire1.Valid)
				assert.False(t, m.Umpire2.Valid)
			},
		},
		{
			name: "one umpire",
			info: `{"officials": {"umpires": ["Aleem Dar"]}}`,
			want: func(t *testing.T, m model.Match) {
				assert.Equal(t, str("Aleem Dar"), m.Umpire1)
				assert.False(t, m.Umpire2.Valid)
			},
		},
		{
			name: "one team",
			info: `{"teams": ["A"]}`,
			want: func(t *testing.T, m model.Match) {
				assert.Equal(t, str("A"), m.Team1)
				assert.False(t, m.Team2.Valid)
			},
		},
		{
			name: "empty lists",
			info: `{"teams": [], "player_of_match": [], "dates": [], "officials": {"umpires": []}}`,
			want: func(t *testing.T, m model.Match) {
				assert.False(t, m.Team1.Valid)
				assert.False(t, m.Team2.Valid)
				assert.False(t, m.PlayerOfMatch.Valid)
				assert.False(t, m.Date.Valid)
				assert.False(t, m.Umpire1.Valid)
			},
		},
		{
			name: "multiple awards keeps the first",
			info: `{"player_of_match": ["SR Tendulkar", "R Dravid"]}`,
			want: func(t *testing.T, m model.Match) {
				assert.Equal(t, str("SR Tendulkar"), m.PlayerOfMatch)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseMatch(decodeRaw(t, `{"info": `+tt.info+`}`), "1", model.FormatODI)
			require.NoError(t, err)
			tt.want(t, m)
		})
	}
}

func TestParseMatchResult(t *testing.T) {
	tests := []struct {
		name       string
		outcome    string
		wantType   string
		wantMargin sql.Null[int64]
	}{
		{"runs", `{"winner": "A", "by": {"runs": 34}}`, model.ResultRuns, num(34)},
		{"wickets", `{"winner": "A", "by": {"wickets": 4}}`, model.ResultWickets, num(4)},
		{"runs before wickets", `{"by": {"runs": 10, "wickets": 3}}`, model.ResultRuns, num(10)},
		{"zero runs falls through", `{"by": {"runs": 0, "wickets": 2}}`, model.ResultWickets, num(2)},
		{"innings and runs", `{"by": {"innings": 1, "runs": 12}}`, model.ResultRuns, num(12)},
		{"draw", `{"result": "draw"}`, model.ResultOther, sql.Null[int64]{}},
		{"no outcome", `{}`, model.ResultOther, sql.Null[int64]{}},
		{"unreadable margin", `{"by": {"runs": "lots"}}`, model.ResultRuns, sql.Null[int64]{}},
		{"string margin", `{"by": {"wickets": "7"}}`, model.ResultWickets, num(7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseMatch(decodeRaw(t, `{"info": {"outcome": `+tt.outcome+`}}`), "1", model.FormatTest)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, m.ResultType)
			assert.Equal(t, tt.wantMargin, m.ResultMargin)
		})
	}
}

func TestParseMatchDates(t *testing.T) {
	tests := []struct {
		dates string
		want  sql.Null[time.Time]
	}{
		{`["2019-07-14"]`, sql.Null[time.Time]{V: time.Date(2019, 7, 14, 0, 0, 0, 0, time.UTC), Valid: true}},
		{`["2019/07/14"]`, sql.Null[time.Time]{V: time.Date(2019, 7, 14, 0, 0, 0, 0, time.UTC), Valid: true}},
		{`["2019-07-14T10:30:00+05:30"]`, sql.Null[time.Time]{V: time.Date(2019, 7, 14, 0, 0, 0, 0, time.UTC), Valid: true}},
		{`["14 July 2019"]`, sql.Null[time.Time]{}},
		{`[null, "2019-07-15"]`, sql.Null[time.Time]{}},
	}

	for _, tt := range tests {
		cc := &coercions{matchID: "1"}
		m, err := parseMatch(decodeRaw(t, `{"info": {"dates": `+tt.dates+`}}`), "1", model.FormatTest, cc)
		require.NoError(t, err)
		assert.Equal(t, tt.want, m.Date, tt.dates)
	}
}

func TestParseMatchCountsCoercions(t *testing.T) {
	cc := &coercions{matchID: "77"}
	doc := decodeRaw(t, `{
		"meta": {"revision": "second"},
		"info": {"dates": ["someday"], "outcome": {"by": {"runs": []}}}
	}`)

	m, err := parseMatch(doc, "77", model.FormatODI, cc)
	require.NoError(t, err)

	assert.False(t, m.Revision.Valid)
	assert.False(t, m.Date.Valid)
	assert.False(t, m.ResultMargin.Valid)

	want := []Coercion{
		{MatchID: "77", Column: "revision", Value: `"second"`},
		{MatchID: "77", Column: "date", Value: "someday"},
		{MatchID: "77", Column: "result_margin", Value: "[]"},
	}
	if diff := cmp.Diff(want, cc.list); diff != "" {
		t.Errorf("coercions mismatch (-want +got):\n%s", diff)
	}
}

func TestParseMatchDecodeError(t *testing.T) {
	_, err := ParseMatch(decodeRaw(t, `{"info": {"teams": {"A": 1}}}`), "9", model.FormatT20)
	assert.Error(t, err)

	_, err = ParseMatch(decodeRaw(t, `{"meta": [], "info": {}}`), "9", model.FormatT20)
	assert.Error(t, err)
}
