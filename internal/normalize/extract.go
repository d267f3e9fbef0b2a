package normalize

import (
	"database/sql"
	"fmt"

	"cricket-analyzer/internal/cricsheet"
	"cricket-analyzer/internal/model"
)

// ExtractPlayers emits one row per (team, player) in the order the
// document lists them
func ExtractPlayers(doc *cricsheet.Document, matchID string) ([]model.Player, error) {
	roster, err := doc.DecodeRoster()
	if err != nil {
		return nil, fmt.Errorf("decode players: %w", err)
	}

	var players []model.Player
	for _, team := range roster.Players {
		for _, name := range team.Players {
			players = append(players, model.Player{
				MatchID:    matchID,
				Team:       team.Team,
				PlayerName: name,
			})
		}
	}
	return players, nil
}

// ExtractInnings walks every innings once, emitting a Delivery row per ball
// and folding the innings aggregates along the way. On error no rows are
// returned for the match.
func ExtractInnings(doc *cricsheet.Document, matchID string) ([]model.Innings, []model.Delivery, error) {
	return extractInnings(doc, matchID, nil)
}

func extractInnings(doc *cricsheet.Document, matchID string, cc *coercions) ([]model.Innings, []model.Delivery, error) {
	list, err := doc.DecodeInnings()
	if err != nil {
		return nil, nil, fmt.Errorf("decode innings: %w", err)
	}

	var (
		innings    = make([]model.Innings, 0, len(list))
		deliveries []model.Delivery
	)
	for i, src := range list {
		row := model.Innings{
			MatchID:       matchID,
			InningsNumber: int64(i + 1),
			BattingTeam:   src.Team.Null(),
			TotalOvers:    int64(len(src.Overs)),
		}

		var ball int64
		for _, over := range src.Overs {
			overNumber := cc.intOr("over_number", over.Number, 0)

			for _, d := range over.Deliveries {
				ball++
				del := model.Delivery{
					MatchID:        matchID,
					InningsNumber:  row.InningsNumber,
					OverNumber:     overNumber,
					DeliveryNumber: ball,
					BattingTeam:    row.BattingTeam,
					Batter:         d.Batter.Null(),
					NonStriker:     d.NonStriker.Null(),
					Bowler:         d.Bowler.Null(),
					BatterRuns:     cc.intOr("batter_runs", d.Runs.Batter, 0),
					ExtrasRuns:     cc.intOr("extras_runs", d.Runs.Extras, 0),
					TotalRuns:      cc.intOr("total_runs", d.Runs.Total, 0),
					ExtrasType:     extrasType(d.Extras),
					WicketCount:    int64(len(d.Wickets)),
				}
				if len(d.Wickets) > 0 {
					del.WicketType = d.Wickets[0].Kind.Null()
					del.PlayerDismissed = d.Wickets[0].PlayerOut.Null()
				}
				deliveries = append(deliveries, del)

				// absent cells fold as zero so the aggregates match a NULL-ignoring SUM
				row.TotalRuns += del.TotalRuns.V
				row.Extras += del.ExtrasRuns.V
				row.TotalWickets += del.WicketCount
			}
		}
		innings = append(innings, row)
	}
	return innings, deliveries, nil
}

// extrasType classifies a delivery by the first extras category set, in
// the order wide, bye, legbye, noball
func extrasType(e cricsheet.Extras) sql.Null[string] {
	var kind string
	switch {
	case bool(e.Wides):
		kind = model.ExtraWide
	case bool(e.Byes):
		kind = model.ExtraBye
	case bool(e.Legbyes):
		kind = model.ExtraLegbye
	case bool(e.Noballs):
		kind = model.ExtraNoball
	default:
		return sql.Null[string]{}
	}
	return sql.Null[string]{V: kind, Valid: true}
}
