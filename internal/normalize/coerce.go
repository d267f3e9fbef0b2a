package normalize

import (
	"database/sql"
	"strings"
	"time"

	"cricket-analyzer/internal/cricsheet"
)

// dateLayouts are tried in order when coercing match dates
var dateLayouts = []string{"2006-01-02", "2006/01/02", time.RFC3339}

// Coercion records a cell that was present in the document but could not be
// coerced to its column type. The cell is written as absent.
type Coercion struct {
	MatchID string
	Column  string
	Value   string
}

// coercions collects failures for one document; a nil receiver discards them
type coercions struct {
	matchID string
	list    []Coercion
}

func (c *coercions) add(column, value string) {
	if c == nil {
		return
	}
	c.list = append(c.list, Coercion{MatchID: c.matchID, Column: column, Value: value})
}

func (c *coercions) int(column string, v cricsheet.Int) sql.Null[int64] {
	if v.Invalid() {
		c.add(column, v.Raw)
	}
	return v.Null()
}

// intOr reads a run or counter field: missing is def, invalid is absent
func (c *coercions) intOr(column string, v cricsheet.Int, def int64) sql.Null[int64] {
	if v.Invalid() {
		c.add(column, v.Raw)
	}
	return v.NullOr(def)
}

func (c *coercions) date(column string, v cricsheet.Text) sql.Null[time.Time] {
	if !v.Set {
		return sql.Null[time.Time]{}
	}
	s := strings.TrimSpace(v.Value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return sql.Null[time.Time]{V: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
		}
	}
	c.add(column, v.Value)
	return sql.Null[time.Time]{}
}

// at returns the i-th entry of a list, or absent when the list is too short
func at(list []cricsheet.Text, i int) sql.Null[string] {
	if i < len(list) {
		return list[i].Null()
	}
	return sql.Null[string]{}
}
