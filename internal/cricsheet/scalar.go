package cricsheet

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Int is an integer field that tolerates numeric strings and integral floats.
// A value that cannot be read as an integer decodes as Set but not Valid
// instead of failing the whole section.
type Int struct {
	Value int64
	Set   bool   // key present and not null
	Valid bool   // Value holds a parsed integer
	Raw   string // source JSON of a value that could not be parsed
}

// NewInt returns a valid Int
func NewInt(v int64) Int {
	return Int{Value: v, Set: true, Valid: true}
}

func (i *Int) UnmarshalJSON(data []byte) error {
	*i = Int{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	i.Set = true

	switch c := data[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			break
		}
		i.Value, i.Valid = parseInt(strings.TrimSpace(s))
	case c == '-' || (c >= '0' && c <= '9'):
		i.Value, i.Valid = parseInt(string(data))
	}
	if !i.Valid {
		i.Value, i.Raw = 0, string(data)
	}
	return nil
}

func (i Int) MarshalJSON() ([]byte, error) {
	if !i.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(i.Value, 10)), nil
}

// Invalid reports a present value that could not be coerced
func (i Int) Invalid() bool {
	return i.Set && !i.Valid
}

// Or returns the value, or def when the field is missing or invalid
func (i Int) Or(def int64) int64 {
	if i.Valid {
		return i.Value
	}
	return def
}

// Null converts to a nullable cell; missing and invalid both become NULL
func (i Int) Null() sql.Null[int64] {
	return sql.Null[int64]{V: i.Value, Valid: i.Valid}
}

// NullOr is like Null but substitutes def when the key was missing entirely.
// An invalid value still becomes NULL.
func (i Int) NullOr(def int64) sql.Null[int64] {
	if !i.Set {
		return sql.Null[int64]{V: def, Valid: true}
	}
	return i.Null()
}

func parseInt(s string) (int64, bool) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

// Text is a string field that also accepts numbers and booleans
// (e.g. "season": 2019). Arrays and objects are treated as absent.
type Text struct {
	Value string
	Set   bool
}

// NewText returns a set Text
func NewText(s string) Text {
	return Text{Value: s, Set: true}
}

func (t *Text) UnmarshalJSON(data []byte) error {
	*t = Text{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text{Value: s, Set: true}
	case '[', '{':
		// not a scalar
	default:
		*t = Text{Value: string(data), Set: true}
	}
	return nil
}

func (t Text) MarshalJSON() ([]byte, error) {
	if !t.Set {
		return []byte("null"), nil
	}
	return json.Marshal(t.Value)
}

// Null converts to a nullable cell
func (t Text) Null() sql.Null[string] {
	return sql.Null[string]{V: t.Value, Valid: t.Set}
}

// Flag is a boolean-ish field. It is true for a non-zero number, true,
// a non-empty string, or a non-empty array or object.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	*f = false
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case 'n', 'f':
		// null, false
	case 't':
		*f = true
	case '"':
		*f = len(data) > 2
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*f = len(items) > 0
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil {
			return err
		}
		*f = len(fields) > 0
	default:
		n, err := strconv.ParseFloat(string(data), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return fmt.Errorf("invalid flag %s: %w", data, err)
		}
		*f = n != 0
	}
	return nil
}

// TeamRoster is the player list of one team
type TeamRoster struct {
	Team    string
	Players []string
}

// TeamPlayers decodes the info.players object keeping the source key order,
// which a Go map would lose.
type TeamPlayers []TeamRoster

func (tp *TeamPlayers) UnmarshalJSON(data []byte) error {
	*tp = nil
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("players: expected object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		team, _ := keyTok.(string)

		var names []Text
		if err := dec.Decode(&names); err != nil {
			return fmt.Errorf("players[%q]: %w", team, err)
		}

		roster := TeamRoster{Team: team}
		for _, name := range names {
			if name.Set {
				roster.Players = append(roster.Players, name.Value)
			}
		}
		*tp = append(*tp, roster)
	}

	// closing brace
	_, err = dec.Token()
	return err
}
