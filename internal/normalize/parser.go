package normalize

import (
	"database/sql"
	"fmt"

	"cricket-analyzer/internal/cricsheet"
	"cricket-analyzer/internal/model"
)

// ParseMatch flattens the info and meta sections of a document into a
// Match row. Short teams, umpires or player_of_match lists leave the
// missing slots absent. An error means the section could not be decoded
// and the document has no Match row.
func ParseMatch(doc *cricsheet.Document, matchID string, format model.Format) (model.Match, error) {
	return parseMatch(doc, matchID, format, nil)
}

func parseMatch(doc *cricsheet.Document, matchID string, format model.Format, cc *coercions) (model.Match, error) {
	info, err := doc.DecodeInfo()
	if err != nil {
		return model.Match{}, fmt.Errorf("decode info: %w", err)
	}
	meta, err := doc.DecodeMeta()
	if err != nil {
		return model.Match{}, fmt.Errorf("decode meta: %w", err)
	}

	m := model.Match{
		MatchID:       matchID,
		Format:        format,
		City:          info.City.Null(),
		Venue:         info.Venue.Null(),
		MatchType:     info.MatchType.Null(),
		Season:        info.Season.Null(),
		Team1:         at(info.Teams, 0),
		Team2:         at(info.Teams, 1),
		TossWinner:    info.Toss.Winner.Null(),
		TossDecision:  info.Toss.Decision.Null(),
		Winner:        info.Outcome.Winner.Null(),
		PlayerOfMatch: at(info.PlayerOfMatch, 0),
		Umpire1:       at(info.Officials.Umpires, 0),
		Umpire2:       at(info.Officials.Umpires, 1),
		DataVersion:   meta.DataVersion.Null(),
		Created:       meta.Created.Null(),
		Revision:      cc.int("revision", meta.Revision),
	}
	if len(info.Dates) > 0 {
		m.Date = cc.date("date", info.Dates[0])
	}
	m.ResultType, m.ResultMargin = resultMargin(info.Outcome.By, cc)

	return m, nil
}

// resultMargin picks the runs margin, then the wickets margin. A zero or
// missing margin does not count. A margin that is present but not a number
// still decides the result type and leaves the margin absent.
func resultMargin(by cricsheet.Margin, cc *coercions) (string, sql.Null[int64]) {
	switch {
	case hasMargin(by.Runs):
		return model.ResultRuns, cc.int("result_margin", by.Runs)
	case hasMargin(by.Wickets):
		return model.ResultWickets, cc.int("result_margin", by.Wickets)
	default:
		return model.ResultOther, sql.Null[int64]{}
	}
}

func hasMargin(v cricsheet.Int) bool {
	return v.Invalid() || (v.Valid && v.Value != 0)
}
