package model

import (
	"database/sql"
	"strconv"
	"time"
)

// Table names, in write order
const (
	TableMatches    = "matches"
	TablePlayers    = "players"
	TableInnings    = "innings"
	TableDeliveries = "deliveries"
)

// DateLayout is how match dates are rendered in flat files and text columns
const DateLayout = "2006-01-02"

var (
	MatchColumns = []string{
		"match_id", "format", "city", "venue", "date", "match_type", "season",
		"team1", "team2", "toss_winner", "toss_decision", "winner",
		"result_type", "result_margin", "player_of_match", "umpire1", "umpire2",
		"data_version", "created", "revision",
	}

	PlayerColumns = []string{"match_id", "team", "player_name"}

	InningsColumns = []string{
		"match_id", "innings_number", "batting_team", "total_overs",
		"total_runs", "total_wickets", "extras",
	}

	DeliveryColumns = []string{
		"match_id", "innings_number", "over_number", "delivery_number",
		"batting_team", "batter", "non_striker", "bowler",
		"batter_runs", "extras_runs", "total_runs", "extras_type",
		"wicket_type", "player_dismissed",
	}
)

// Values returns the row in MatchColumns order. Absent cells are nil.
func (m Match) Values() []any {
	return []any{
		m.MatchID, string(m.Format), nullable(m.City), nullable(m.Venue), nullable(m.Date),
		nullable(m.MatchType), nullable(m.Season), nullable(m.Team1), nullable(m.Team2),
		nullable(m.TossWinner), nullable(m.TossDecision), nullable(m.Winner),
		m.ResultType, nullable(m.ResultMargin), nullable(m.PlayerOfMatch),
		nullable(m.Umpire1), nullable(m.Umpire2),
		nullable(m.DataVersion), nullable(m.Created), nullable(m.Revision),
	}
}

// Values returns the row in PlayerColumns order
func (p Player) Values() []any {
	return []any{p.MatchID, p.Team, p.PlayerName}
}

// Values returns the row in InningsColumns order
func (in Innings) Values() []any {
	return []any{
		in.MatchID, in.InningsNumber, nullable(in.BattingTeam), in.TotalOvers,
		in.TotalRuns, in.TotalWickets, in.Extras,
	}
}

// Values returns the row in DeliveryColumns order
func (d Delivery) Values() []any {
	return []any{
		d.MatchID, d.InningsNumber, nullable(d.OverNumber), d.DeliveryNumber,
		nullable(d.BattingTeam), nullable(d.Batter), nullable(d.NonStriker), nullable(d.Bowler),
		nullable(d.BatterRuns), nullable(d.ExtrasRuns), nullable(d.TotalRuns),
		nullable(d.ExtrasType), nullable(d.WicketType), nullable(d.PlayerDismissed),
	}
}

func nullable[T any](n sql.Null[T]) any {
	if !n.Valid {
		return nil
	}
	return n.V
}

// TableData is a column-oriented view of one table used by the sinks
type TableData struct {
	Name    string
	Columns []string
	Len     int
	Row     func(i int) []any
}

// All returns the four tables in write order
func (t *Tables) All() []TableData {
	return []TableData{
		{Name: TableMatches, Columns: MatchColumns, Len: len(t.Matches), Row: func(i int) []any { return t.Matches[i].Values() }},
		{Name: TablePlayers, Columns: PlayerColumns, Len: len(t.Players), Row: func(i int) []any { return t.Players[i].Values() }},
		{Name: TableInnings, Columns: InningsColumns, Len: len(t.Innings), Row: func(i int) []any { return t.Innings[i].Values() }},
		{Name: TableDeliveries, Columns: DeliveryColumns, Len: len(t.Deliveries), Row: func(i int) []any { return t.Deliveries[i].Values() }},
	}
}

// FormatCell renders a cell for text outputs; nil becomes the empty string
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case time.Time:
		return x.Format(DateLayout)
	default:
		return ""
	}
}
