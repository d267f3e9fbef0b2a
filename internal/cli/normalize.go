package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"cricket-analyzer/internal/config"
	"cricket-analyzer/internal/db"
	"cricket-analyzer/internal/model"
	"cricket-analyzer/internal/normalize"
	"cricket-analyzer/internal/pipeline"
	"cricket-analyzer/internal/storage"
)

type normalizeFlags struct {
	rawDir      string
	outDir      string
	encoding    string
	gzip        bool
	noFiles     bool
	sqlitePath  string
	tursoURL    string
	postgresDSN string
	formats     []string
}

func newNormalizeCmd(a *app) *cobra.Command {
	var f normalizeFlags
	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Normalize raw documents and write every configured sink",
		Long: `Normalize reads every configured format directory (or its .zip), builds the
matches, players, innings and deliveries tables, and writes them to the flat
file output plus any configured database. Documents that fail are skipped and
reported; a cancelled run writes nothing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := f.apply(a.cfg); err != nil {
				return err
			}
			return a.runNormalize(cmd.Context(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&f.rawDir, "raw-dir", "", "Root of the raw Cricsheet tree")
	cmd.Flags().StringVar(&f.outDir, "out", "", "Flat file output directory")
	cmd.Flags().StringVar(&f.encoding, "encoding", "", "Flat file encoding: csv or jsonl")
	cmd.Flags().BoolVar(&f.gzip, "gzip", false, "Gzip the flat files")
	cmd.Flags().BoolVar(&f.noFiles, "no-files", false, "Skip the flat file output")
	cmd.Flags().StringVar(&f.sqlitePath, "sqlite", "", "SQLite database path")
	cmd.Flags().StringVar(&f.tursoURL, "turso-url", "", "Turso database URL (token from TURSO_AUTH_TOKEN)")
	cmd.Flags().StringVar(&f.postgresDSN, "postgres-dsn", "", "PostgreSQL connection string")
	cmd.Flags().StringSliceVar(&f.formats, "format", nil, "Only process these formats (repeatable)")
	return cmd
}

// apply layers explicit flags over cfg and validates the result
func (f *normalizeFlags) apply(cfg *config.Config) error {
	if f.rawDir != "" {
		cfg.RawDir = f.rawDir
	}
	if f.outDir != "" {
		cfg.Output.Dir = f.outDir
	}
	if f.encoding != "" {
		cfg.Output.Encoding = f.encoding
	}
	if f.gzip {
		cfg.Output.Gzip = true
	}
	if f.noFiles {
		cfg.Output.Disabled = true
	}
	if f.sqlitePath != "" {
		cfg.SQLite.Path = f.sqlitePath
	}
	if f.tursoURL != "" {
		cfg.Turso.URL = f.tursoURL
	}
	if f.postgresDSN != "" {
		cfg.Postgres.DSN = f.postgresDSN
	}
	if len(f.formats) > 0 {
		var kept []config.FormatConfig
		for _, name := range f.formats {
			if _, err := model.ParseFormat(name); err != nil {
				return err
			}
			for _, fc := range cfg.Formats {
				if fc.Format == name {
					kept = append(kept, fc)
				}
			}
		}
		if len(kept) == 0 {
			return fmt.Errorf("none of %v is configured", f.formats)
		}
		cfg.Formats = kept
	}
	return cfg.Validate()
}

func (a *app) runNormalize(ctx context.Context, out io.Writer) error {
	ctx, stop := pipeline.SetupSignalHandler(ctx, a.log, nil)
	defer stop()

	sinks, closeSinks, err := a.openSinks(ctx)
	if err != nil {
		return err
	}
	defer closeSinks()

	normalizer := normalize.NewNormalizer(normalize.Options{
		Logger:         a.log,
		DedupeEstimate: a.cfg.Normalize.DedupeEstimate,
	})

	fmt.Fprintln(out, "=== Cricsheet Normalizer ===")
	res, err := pipeline.New(normalizer, sinks, a.log).Run(ctx, a.cfg.Sources())
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(out, "Run cancelled, nothing was written")
		}
		return err
	}

	if err := res.Report.Write(out); err != nil {
		return err
	}
	fmt.Fprintln(out)
	counts := res.Tables.Counts()
	for _, name := range []string{model.TableMatches, model.TablePlayers, model.TableInnings, model.TableDeliveries} {
		fmt.Fprintf(out, "%-12s %s rows\n", name, humanize.Comma(int64(counts[name])))
	}
	for _, name := range res.Sinks {
		fmt.Fprintf(out, "Wrote %s\n", name)
	}
	fmt.Fprintf(out, "Done in %s\n", res.Duration.Round(time.Millisecond))
	return nil
}

// openSinks opens every configured sink. The returned func closes them;
// on error nothing is left open.
func (a *app) openSinks(ctx context.Context) ([]pipeline.Sink, func(), error) {
	var (
		sinks   []pipeline.Sink
		closers []func()
	)
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	cfg := a.cfg
	if !cfg.Output.Disabled {
		enc, err := storage.ParseEncoding(cfg.Output.Encoding)
		if err != nil {
			return nil, nil, err
		}
		files, err := storage.NewFileSink(storage.FileSinkOptions{
			Dir:      cfg.Output.Dir,
			Encoding: enc,
			Gzip:     cfg.Output.Gzip,
			Logger:   a.log,
		})
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, files)
	}

	if cfg.SQLite.Path != "" {
		store, err := db.OpenSQLite(ctx, cfg.SQLite.Path, a.log)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		sinks = append(sinks, store)
		closers = append(closers, func() { store.Close() })
	}

	if cfg.Turso.URL != "" {
		store, err := db.OpenTurso(ctx, cfg.Turso.URL, cfg.Turso.AuthToken, a.log)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to connect to turso: %w", err)
		}
		sinks = append(sinks, store)
		closers = append(closers, func() { store.Close() })
	}

	if cfg.Postgres.DSN != "" {
		store, err := db.NewPostgresStore(ctx, cfg.Postgres.DSN, a.log)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		sinks = append(sinks, store)
		closers = append(closers, store.Close)
	}

	return sinks, closeAll, nil
}
