package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cricket-analyzer/internal/logging"
	"cricket-analyzer/internal/model"
)

// PostgresStore persists the tables to PostgreSQL using COPY
type PostgresStore struct {
	pool *pgxpool.Pool
	name string
	log  *slog.Logger
}

// NewPostgresStore creates a connection pool for dsn and checks it
func NewPostgresStore(ctx context.Context, dsn string, log *slog.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	cfg := pool.Config().ConnConfig
	return &PostgresStore{
		pool: pool,
		name: fmt.Sprintf("postgres:%s/%s", cfg.Host, cfg.Database),
		log:  logging.Component(log, "postgres"),
	}, nil
}

func (s *PostgresStore) Name() string {
	return s.name
}

// Close closes the connection pool
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Pool returns the underlying connection pool for custom queries
func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}

// CreateTables creates the tables and indexes if they don't exist
func (s *PostgresStore) CreateTables(ctx context.Context) error {
	for _, query := range postgresSchema {
		if _, err := s.pool.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	for _, ix := range indexes {
		if _, err := s.pool.Exec(ctx, ix.createSQL()); err != nil {
			return fmt.Errorf("failed to create %s: %w", ix.name, err)
		}
	}
	return nil
}

// WriteTables truncates the four tables and copies t in, all in one
// transaction so readers see either the old or the new data
func (s *PostgresStore) WriteTables(ctx context.Context, t *model.Tables) error {
	started := time.Now().UTC()

	if err := s.CreateTables(ctx); err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "TRUNCATE "+strings.Join(tableOrder, ", ")+" RESTART IDENTITY"); err != nil {
		return fmt.Errorf("failed to truncate: %w", err)
	}

	for _, table := range t.All() {
		src := pgx.CopyFromSlice(table.Len, func(i int) ([]any, error) {
			return table.Row(i), nil
		})
		n, err := tx.CopyFrom(ctx, pgx.Identifier{table.Name}, table.Columns, src)
		if err != nil {
			return fmt.Errorf("failed to copy %s: %w", table.Name, err)
		}
		s.log.Info("copied rows", "table", table.Name, "rows", n)
	}

	runID := uuid.New()
	_, err = tx.Exec(ctx,
		`INSERT INTO `+runsTable+` (run_id, started_at, finished_at, formats, matches, players, innings, deliveries)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		runID.String(), started, time.Now().UTC(), strings.Join(tableFormats(t), ","),
		len(t.Matches), len(t.Players), len(t.Innings), len(t.Deliveries))
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	s.log.Info("recorded run", "run_id", runID)
	return nil
}

// Summary reads table counts, the per-format breakdown and a few sample
// matches
func (s *PostgresStore) Summary(ctx context.Context) (*Summary, error) {
	sum := &Summary{Store: s.name}

	for _, table := range tableOrder {
		var n int64
		if err := s.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		sum.Counts = append(sum.Counts, TableCount{Name: table, Count: n})
	}

	rows, err := s.pool.Query(ctx, formatCountsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to count formats: %w", err)
	}
	sum.Formats, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (TableCount, error) {
		var c TableCount
		err := row.Scan(&c.Name, &c.Count)
		return c, err
	})
	if err != nil {
		return nil, err
	}

	rows, err = s.pool.Query(ctx, sampleMatchQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query sample matches: %w", err)
	}
	sum.Samples, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (SampleMatch, error) {
		var (
			m                           SampleMatch
			team1, team2, winner, venue *string
		)
		err := row.Scan(&m.MatchID, &m.Format, &team1, &team2, &winner, &venue)
		m.Team1, m.Team2, m.Winner, m.Venue = deref(team1), deref(team2), deref(winner), deref(venue)
		return m, err
	})
	if err != nil {
		return nil, err
	}

	var run RunInfo
	err = s.pool.QueryRow(ctx,
		`SELECT run_id::text, finished_at::text, formats FROM `+runsTable+` ORDER BY finished_at DESC LIMIT 1`,
	).Scan(&run.RunID, &run.FinishedAt, &run.Formats)
	switch {
	case err == nil:
		sum.LastRun = &run
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, fmt.Errorf("failed to read last run: %w", err)
	}

	return sum, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
