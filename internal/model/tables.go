package model

import (
	"database/sql"
	"fmt"
	"time"
)

// Format is the competition format a batch of documents belongs to
type Format string

const (
	FormatTest Format = "test"
	FormatODI  Format = "odi"
	FormatT20  Format = "t20"
	FormatIPL  Format = "ipl"
)

// Formats lists the known formats in processing order
var Formats = []Format{FormatTest, FormatODI, FormatT20, FormatIPL}

// ParseFormat validates a format label
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (want one of test, odi, t20, ipl)", s)
}

// Result types derived from the outcome margin
const (
	ResultRuns    = "runs"
	ResultWickets = "wickets"
	ResultOther   = "other"
)

// Extras categories, in classification priority order
const (
	ExtraWide   = "wide"
	ExtraBye    = "bye"
	ExtraLegbye = "legbye"
	ExtraNoball = "noball"
)

// Match is one row per source document
type Match struct {
	MatchID       string
	Format        Format
	City          sql.Null[string]
	Venue         sql.Null[string]
	Date          sql.Null[time.Time]
	MatchType     sql.Null[string]
	Season        sql.Null[string]
	Team1         sql.Null[string]
	Team2         sql.Null[string]
	TossWinner    sql.Null[string]
	TossDecision  sql.Null[string]
	Winner        sql.Null[string]
	ResultType    string
	ResultMargin  sql.Null[int64]
	PlayerOfMatch sql.Null[string]
	Umpire1       sql.Null[string]
	Umpire2       sql.Null[string]
	DataVersion   sql.Null[string]
	Created       sql.Null[string]
	Revision      sql.Null[int64]
}

// Player is one roster entry
type Player struct {
	MatchID    string
	Team       string
	PlayerName string
}

// Innings holds the aggregates folded over its deliveries during extraction
type Innings struct {
	MatchID       string
	InningsNumber int64
	BattingTeam   sql.Null[string]
	TotalOvers    int64
	TotalRuns     int64
	TotalWickets  int64
	Extras        int64
}

// Delivery is one ball faced
type Delivery struct {
	MatchID         string
	InningsNumber   int64
	OverNumber      sql.Null[int64]
	DeliveryNumber  int64
	BattingTeam     sql.Null[string]
	Batter          sql.Null[string]
	NonStriker      sql.Null[string]
	Bowler          sql.Null[string]
	BatterRuns      sql.Null[int64]
	ExtrasRuns      sql.Null[int64]
	TotalRuns       sql.Null[int64]
	ExtrasType      sql.Null[string]
	WicketType      sql.Null[string]
	PlayerDismissed sql.Null[string]

	// WicketCount is the number of dismissal events on the ball; only the
	// first one is flattened into WicketType/PlayerDismissed. Not a column.
	WicketCount int64
}

// Tables is the normalized output of a run
type Tables struct {
	Matches    []Match
	Players    []Player
	Innings    []Innings
	Deliveries []Delivery
}

// Append concatenates other onto t
func (t *Tables) Append(other *Tables) {
	if other == nil {
		return
	}
	t.Matches = append(t.Matches, other.Matches...)
	t.Players = append(t.Players, other.Players...)
	t.Innings = append(t.Innings, other.Innings...)
	t.Deliveries = append(t.Deliveries, other.Deliveries...)
}

// Counts returns the row count of each table, keyed by table name
func (t *Tables) Counts() map[string]int {
	return map[string]int{
		TableMatches:    len(t.Matches),
		TablePlayers:    len(t.Players),
		TableInnings:    len(t.Innings),
		TableDeliveries: len(t.Deliveries),
	}
}

// Empty reports whether no table has rows
func (t *Tables) Empty() bool {
	return len(t.Matches) == 0 && len(t.Players) == 0 && len(t.Innings) == 0 && len(t.Deliveries) == 0
}
