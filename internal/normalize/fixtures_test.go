package normalize

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"cricket-analyzer/internal/cricsheet"
)

type obj = map[string]any

// ball builds a delivery with the given run split
func ball(batter, extras int) obj {
	return obj{
		"batter":      "Batter A",
		"non_striker": "Batter B",
		"bowler":      "Bowler C",
		"runs":        obj{"batter": batter, "extras": extras, "total": batter + extras},
	}
}

// scenarioDocument has two innings. The first is 3 overs of 6 balls with
// one wide (1 extra run) and one bowled wicket.
func scenarioDocument() obj {
	var first []any
	for over := 0; over < 3; over++ {
		var balls []any
		for i := 0; i < 6; i++ {
			d := ball((over+i)%4, 0)
			switch {
			case over == 0 && i == 2:
				d = ball(0, 1)
				d["extras"] = obj{"wides": 1}
			case over == 2 && i == 5:
				d = ball(0, 0)
				d["wickets"] = []any{obj{"kind": "bowled", "player_out": "Batter A"}}
			}
			balls = append(balls, d)
		}
		first = append(first, obj{"over": over, "deliveries": balls})
	}

	second := []any{
		obj{"over": 0, "deliveries": []any{ball(4, 0), ball(1, 0)}},
	}

	return obj{
		"meta": obj{"data_version": "1.1.0", "created": "2023-05-01", "revision": 1},
		"info": obj{
			"city":       "Mumbai",
			"venue":      "Wankhede Stadium",
			"dates":      []any{"2023-04-30", "2023-05-01"},
			"match_type": "T20",
			"season":     2023,
			"teams":      []any{"Mumbai Indians", "Rajasthan Royals"},
			"toss":       obj{"winner": "Rajasthan Royals", "decision": "bat"},
			"outcome":    obj{"winner": "Mumbai Indians", "by": obj{"wickets": 6}},
			"officials": obj{
				"umpires":        []any{"KN Ananthapadmanabhan", "Nitin Menon"},
				"match_referees": []any{"J Srinath"},
			},
			"player_of_match": []any{"TH David"},
			"players": obj{
				"Rajasthan Royals": []any{"YBK Jaiswal", "JC Buttler"},
				"Mumbai Indians":   []any{"RG Sharma"},
			},
		},
		"innings": []any{
			obj{"team": "Rajasthan Royals", "overs": first},
			obj{"team": "Mumbai Indians", "overs": second},
		},
	}
}

func encode(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func decode(t *testing.T, v any) *cricsheet.Document {
	t.Helper()
	doc, err := cricsheet.DecodeDocument(encode(t, v))
	require.NoError(t, err)
	return doc
}

func decodeRaw(t *testing.T, raw string) *cricsheet.Document {
	t.Helper()
	doc, err := cricsheet.DecodeDocument([]byte(raw))
	require.NoError(t, err)
	return doc
}

// writeDoc writes a document under root/dir/name
func writeDoc(t *testing.T, root, dir, name string, data []byte) {
	t.Helper()
	p := filepath.Join(root, dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, data, 0o644))
}
