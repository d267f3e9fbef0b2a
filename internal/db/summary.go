package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
)

const (
	formatCountsQuery = `SELECT format, COUNT(*) FROM matches GROUP BY format ORDER BY format`
	sampleMatchQuery  = `SELECT match_id, format, team1, team2, winner, venue FROM matches ORDER BY match_id LIMIT 5`
	lastRunQuery      = `SELECT run_id, finished_at, formats FROM ingest_runs ORDER BY finished_at DESC, rowid DESC LIMIT 1`
)

// Summary describes what a store currently holds
type Summary struct {
	Store   string
	Counts  []TableCount
	Formats []TableCount // matches per format
	Samples []SampleMatch
	LastRun *RunInfo
}

type TableCount struct {
	Name  string
	Count int64
}

// SampleMatch is a short match listing; nullable columns are empty when absent
type SampleMatch struct {
	MatchID string
	Format  string
	Team1   string
	Team2   string
	Winner  string
	Venue   string
}

type RunInfo struct {
	RunID      string
	FinishedAt string
	Formats    string
}

// Write renders the summary for a terminal
func (s *Summary) Write(w io.Writer) error {
	var b strings.Builder
	rule := strings.Repeat("=", 60)

	fmt.Fprintf(&b, "%s\nDATABASE SUMMARY (%s)\n%s\n", rule, s.Store, rule)
	for _, c := range s.Counts {
		fmt.Fprintf(&b, "%-12s %s records\n", strings.ToUpper(c.Name)+":", humanize.Comma(c.Count))
	}

	if len(s.Formats) > 0 {
		b.WriteString("\nMATCHES BY FORMAT:\n")
		for _, f := range s.Formats {
			fmt.Fprintf(&b, "  %-5s %s\n", f.Name, humanize.Comma(f.Count))
		}
	}

	if len(s.Samples) > 0 {
		b.WriteString("\nSAMPLE MATCHES:\n")
		for _, m := range s.Samples {
			fmt.Fprintf(&b, "  - %s | %s | %s vs %s | Winner: %s\n",
				m.MatchID, strings.ToUpper(m.Format), m.Team1, m.Team2, orDash(m.Winner))
		}
	}

	if s.LastRun != nil {
		fmt.Fprintf(&b, "\nLast run %s finished %s (%s)\n", s.LastRun.RunID, s.LastRun.FinishedAt, s.LastRun.Formats)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Summary reads table counts, the per-format breakdown and a few sample
// matches
func (s *SQLStore) Summary(ctx context.Context) (*Summary, error) {
	sum := &Summary{Store: s.name}

	for _, table := range tableOrder {
		var n int64
		if err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		sum.Counts = append(sum.Counts, TableCount{Name: table, Count: n})
	}

	rows, err := s.db.QueryContext(ctx, formatCountsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to count formats: %w", err)
	}
	for rows.Next() {
		var c TableCount
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			rows.Close()
			return nil, err
		}
		sum.Formats = append(sum.Formats, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx, sampleMatchQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query sample matches: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			m                           SampleMatch
			team1, team2, winner, venue sql.NullString
		)
		if err := rows.Scan(&m.MatchID, &m.Format, &team1, &team2, &winner, &venue); err != nil {
			return nil, err
		}
		m.Team1, m.Team2, m.Winner, m.Venue = team1.String, team2.String, winner.String, venue.String
		sum.Samples = append(sum.Samples, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var run RunInfo
	err = s.db.QueryRowContext(ctx, lastRunQuery).Scan(&run.RunID, &run.FinishedAt, &run.Formats)
	switch {
	case err == nil:
		sum.LastRun = &run
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("failed to read last run: %w", err)
	}

	return sum, nil
}
