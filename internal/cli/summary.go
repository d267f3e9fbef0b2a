package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"cricket-analyzer/internal/db"
)

type summaryFlags struct {
	sqlitePath  string
	tursoURL    string
	postgresDSN string
}

func newSummaryCmd(a *app) *cobra.Command {
	var f summaryFlags
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print what a database sink currently holds",
		Long: `Summary prints row counts per table, matches per format, sample matches and
the last ingest run of one database. Flags take precedence over the config;
without flags the first configured of sqlite, turso and postgres is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSummary(cmd.Context(), cmd.OutOrStdout(), f)
		},
	}

	cmd.Flags().StringVar(&f.sqlitePath, "sqlite", "", "SQLite database path")
	cmd.Flags().StringVar(&f.tursoURL, "turso-url", "", "Turso database URL (token from TURSO_AUTH_TOKEN)")
	cmd.Flags().StringVar(&f.postgresDSN, "postgres-dsn", "", "PostgreSQL connection string")
	cmd.MarkFlagsMutuallyExclusive("sqlite", "turso-url", "postgres-dsn")
	return cmd
}

func (a *app) runSummary(ctx context.Context, out io.Writer, f summaryFlags) error {
	if f == (summaryFlags{}) {
		f = summaryFlags{
			sqlitePath:  a.cfg.SQLite.Path,
			tursoURL:    a.cfg.Turso.URL,
			postgresDSN: a.cfg.Postgres.DSN,
		}
	}

	var (
		sum *db.Summary
		err error
	)
	switch {
	case f.sqlitePath != "":
		var store *db.SQLStore
		if store, err = db.OpenSQLite(ctx, f.sqlitePath, a.log); err != nil {
			return fmt.Errorf("failed to open sqlite: %w", err)
		}
		defer store.Close()
		sum, err = store.Summary(ctx)
	case f.tursoURL != "":
		var store *db.SQLStore
		if store, err = db.OpenTurso(ctx, f.tursoURL, a.cfg.Turso.AuthToken, a.log); err != nil {
			return fmt.Errorf("failed to connect to turso: %w", err)
		}
		defer store.Close()
		sum, err = store.Summary(ctx)
	case f.postgresDSN != "":
		var store *db.PostgresStore
		if store, err = db.NewPostgresStore(ctx, f.postgresDSN, a.log); err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		defer store.Close()
		sum, err = store.Summary(ctx)
	default:
		return fmt.Errorf("no database configured (use --sqlite, --turso-url or --postgres-dsn)")
	}
	if err != nil {
		return fmt.Errorf("failed to summarize: %w", err)
	}
	return sum.Write(out)
}
