package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"

	"cricket-analyzer/internal/logging"
	"cricket-analyzer/internal/model"
)

const (
	DriverSQLite = "sqlite"
	DriverLibSQL = "libsql"

	pingTimeout = 10 * time.Second

	// runTimeLayout is fixed-width so run times sort as text
	runTimeLayout = "2006-01-02T15:04:05.000000Z07:00"
)

// SQLStore persists the tables to SQLite or a Turso (libSQL) database
type SQLStore struct {
	db     *sql.DB
	driver string
	name   string
	log    *slog.Logger
}

// OpenSQLite opens (creating if needed) a local SQLite database file
func OpenSQLite(ctx context.Context, path string, log *slog.Logger) (*SQLStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create db directory: %w", err)
		}
	}

	db, err := sql.Open(DriverSQLite, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	return newSQLStore(ctx, db, DriverSQLite, "sqlite:"+path, log)
}

// OpenTurso connects to a Turso database. The token is appended to the URL
// when given.
func OpenTurso(ctx context.Context, url, authToken string, log *slog.Logger) (*SQLStore, error) {
	connStr := url
	if authToken != "" {
		connStr = fmt.Sprintf("%s?authToken=%s", url, authToken)
	}

	db, err := sql.Open(DriverLibSQL, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Turso: %w", err)
	}
	return newSQLStore(ctx, db, DriverLibSQL, "turso:"+url, log)
}

func newSQLStore(ctx context.Context, db *sql.DB, driver, name string, log *slog.Logger) (*SQLStore, error) {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", driver, err)
	}

	return &SQLStore{
		db:     db,
		driver: driver,
		name:   name,
		log:    logging.Component(log, "sqlstore").With("driver", driver),
	}, nil
}

func (s *SQLStore) Name() string {
	return s.name
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// CreateTables creates the tables if they don't exist
func (s *SQLStore) CreateTables(ctx context.Context) error {
	for _, query := range sqliteSchema {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

// DropIndexes removes the secondary indexes before a bulk load
func (s *SQLStore) DropIndexes(ctx context.Context) error {
	for _, ix := range indexes {
		if _, err := s.db.ExecContext(ctx, ix.dropSQL()); err != nil {
			return fmt.Errorf("failed to drop %s: %w", ix.name, err)
		}
	}
	return nil
}

// CreateIndexes (re)creates the secondary indexes
func (s *SQLStore) CreateIndexes(ctx context.Context) error {
	for _, ix := range indexes {
		if _, err := s.db.ExecContext(ctx, ix.createSQL()); err != nil {
			return fmt.Errorf("failed to create %s: %w", ix.name, err)
		}
	}
	return nil
}

// execer is satisfied by *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ClearData deletes all rows from the four tables
func (s *SQLStore) ClearData(ctx context.Context) error {
	return clearTables(ctx, s.db)
}

func clearTables(ctx context.Context, db execer) error {
	for _, table := range tableOrder {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

// WriteTables replaces the stored tables with t and records the run. The
// clear, the inserts and the run record commit together, so a failed load
// leaves the previous tables in place.
func (s *SQLStore) WriteTables(ctx context.Context, t *model.Tables) (err error) {
	started := time.Now().UTC()

	if err := s.CreateTables(ctx); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	// Drop indexes for faster bulk insert
	if err := s.DropIndexes(ctx); err != nil {
		s.log.Warn("failed to drop indexes", "error", err)
	}
	defer func() {
		if ierr := s.CreateIndexes(context.WithoutCancel(ctx)); ierr != nil && err == nil {
			err = ierr
		}
	}()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := clearTables(ctx, tx); err != nil {
		return err
	}
	for _, table := range t.All() {
		if err := insertRows(ctx, tx, table); err != nil {
			return fmt.Errorf("failed to insert %s: %w", table.Name, err)
		}
		s.log.Info("inserted rows", "table", table.Name, "rows", table.Len)
	}
	runID, err := recordRun(ctx, tx, started, t)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	s.log.Info("recorded run", "run_id", runID)
	return nil
}

// insertRows inserts a table through one prepared statement
func insertRows(ctx context.Context, tx *sql.Tx, table model.TableData) error {
	stmt, err := tx.PrepareContext(ctx, insertSQL(table.Name, table.Columns))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range table.Len {
		if _, err := stmt.ExecContext(ctx, sqliteArgs(table.Row(i))...); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	return nil
}

func insertSQL(table string, columns []string) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(columns, ", "), placeholders)
}

// sqliteArgs stores dates as YYYY-MM-DD text, matching the DATE affinity
// readers expect
func sqliteArgs(values []any) []any {
	for i, v := range values {
		if ts, ok := v.(time.Time); ok {
			values[i] = ts.Format(model.DateLayout)
		}
	}
	return values
}

func recordRun(ctx context.Context, tx *sql.Tx, started time.Time, t *model.Tables) (uuid.UUID, error) {
	runID := uuid.New()
	_, err := tx.ExecContext(ctx,
		`INSERT INTO `+runsTable+` (run_id, started_at, finished_at, formats, matches, players, innings, deliveries)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID.String(),
		started.Format(runTimeLayout),
		time.Now().UTC().Format(runTimeLayout),
		strings.Join(tableFormats(t), ","),
		len(t.Matches), len(t.Players), len(t.Innings), len(t.Deliveries))
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to record run: %w", err)
	}
	return runID, nil
}

// tableFormats lists the distinct formats present, in canonical order
func tableFormats(t *model.Tables) []string {
	present := lo.Uniq(lo.Map(t.Matches, func(m model.Match, _ int) model.Format { return m.Format }))
	formats := lo.FilterMap(model.Formats, func(f model.Format, _ int) (string, bool) {
		return string(f), slices.Contains(present, f)
	})
	return formats
}
