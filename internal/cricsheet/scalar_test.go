package cricsheet

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want Int
	}{
		{`4`, Int{Value: 4, Set: true, Valid: true}},
		{`-2`, Int{Value: -2, Set: true, Valid: true}},
		{`6.0`, Int{Value: 6, Set: true, Valid: true}},
		{`"12"`, Int{Value: 12, Set: true, Valid: true}},
		{`" 3 "`, Int{Value: 3, Set: true, Valid: true}},
		{`1.5`, Int{Set: true, Raw: `1.5`}},
		{`"four"`, Int{Set: true, Raw: `"four"`}},
		{`true`, Int{Set: true, Raw: `true`}},
		{`[1]`, Int{Set: true, Raw: `[1]`}},
		{`{"a":1}`, Int{Set: true, Raw: `{"a":1}`}},
		{`null`, Int{}},
	}

	for _, tt := range tests {
		var got Int
		if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
			t.Errorf("Unmarshal(%s) returned error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Unmarshal(%s) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

// TestIntMissingVsInvalid tests that a missing key and an unreadable value
// resolve differently when a default applies
func TestIntMissingVsInvalid(t *testing.T) {
	var runs struct {
		Batter Int `json:"batter"`
		Extras Int `json:"extras"`
		Total  Int `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"batter": "x", "total": 4}`), &runs))

	assert.True(t, runs.Batter.Invalid())
	assert.False(t, runs.Batter.NullOr(0).Valid, "invalid value should be absent")

	assert.False(t, runs.Extras.Set)
	assert.Equal(t, int64(0), runs.Extras.NullOr(0).V)
	assert.True(t, runs.Extras.NullOr(0).Valid, "missing value should take the default")

	assert.Equal(t, int64(4), runs.Total.Or(0))
}

func TestTextUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want Text
	}{
		{`"Eden Gardens"`, Text{Value: "Eden Gardens", Set: true}},
		{`""`, Text{Value: "", Set: true}},
		{`2019`, Text{Value: "2019", Set: true}},
		{`true`, Text{Value: "true", Set: true}},
		{`null`, Text{}},
		{`["2019", "2020"]`, Text{}},
		{`{}`, Text{}},
	}

	for _, tt := range tests {
		var got Text
		if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
			t.Errorf("Unmarshal(%s) returned error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Unmarshal(%s) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestFlagUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want Flag
	}{
		{`1`, true},
		{`5`, true},
		{`0`, false},
		{`0.0`, false},
		{`true`, true},
		{`false`, false},
		{`null`, false},
		{`"yes"`, true},
		{`""`, false},
		{`[]`, false},
		{`[0]`, true},
		{`{}`, false},
		{`1e999`, true},
	}

	for _, tt := range tests {
		var got Flag
		if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
			t.Errorf("Unmarshal(%s) returned error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Unmarshal(%s) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// TestTeamPlayersKeepsOrder tests that teams come out in document order
// rather than map order
func TestTeamPlayersKeepsOrder(t *testing.T) {
	raw := `{"Zimbabwe": ["B Taylor", "S Raza"], "Afghanistan": ["Rashid Khan"], "Bermuda": []}`

	var got TeamPlayers
	require.NoError(t, json.Unmarshal([]byte(raw), &got))

	want := TeamPlayers{
		{Team: "Zimbabwe", Players: []string{"B Taylor", "S Raza"}},
		{Team: "Afghanistan", Players: []string{"Rashid Khan"}},
		{Team: "Bermuda"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("TeamPlayers mismatch (-want +got):\n%s", diff)
	}
}

func TestTeamPlayersRejectsNonList(t *testing.T) {
	var got TeamPlayers
	err := json.Unmarshal([]byte(`{"India": "V Kohli"}`), &got)
	assert.Error(t, err)

	err = json.Unmarshal([]byte(`["India"]`), &got)
	assert.Error(t, err)
}

// TestDecodeSectionsIndependently tests that a malformed section only fails
// its own decoder
func TestDecodeSectionsIndependently(t *testing.T) {
	doc, err := DecodeDocument([]byte(`{
		"meta": {"data_version": "1.1.0", "revision": 2},
		"info": {"teams": "not a list"},
		"innings": [{"team": "India", "overs": []}]
	}`))
	require.NoError(t, err)

	meta, err := doc.DecodeMeta()
	require.NoError(t, err)
	assert.Equal(t, "1.1.0", meta.DataVersion.Value)
	assert.Equal(t, int64(2), meta.Revision.Value)

	_, err = doc.DecodeInfo()
	assert.Error(t, err)

	innings, err := doc.DecodeInnings()
	require.NoError(t, err)
	require.Len(t, innings, 1)
	assert.Equal(t, "India", innings[0].Team.Value)
}

func TestDecodeMissingSections(t *testing.T) {
	doc, err := DecodeDocument([]byte(`{"info": null}`))
	require.NoError(t, err)

	info, err := doc.DecodeInfo()
	require.NoError(t, err)
	assert.Empty(t, info.Teams)

	innings, err := doc.DecodeInnings()
	require.NoError(t, err)
	assert.Nil(t, innings)
}

func TestDocumentEmpty(t *testing.T) {
	for raw, want := range map[string]bool{
		`{}`:               true,
		`null`:             true,
		`{"version": "1"}`: false,
		`{"info": null}`:   false,
		`{"meta": {}}`:     false,
		`{"innings": []}`:  false,
	} {
		doc, err := DecodeDocument([]byte(raw))
		require.NoError(t, err, raw)
		assert.Equal(t, want, doc.Empty(), raw)
	}

	_, err := DecodeDocument([]byte(`[1, 2]`))
	assert.Error(t, err)
}
