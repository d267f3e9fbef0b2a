package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"cricket-analyzer/internal/logging"
	"cricket-analyzer/internal/model"
	"cricket-analyzer/internal/normalize"
)

// Sink persists a complete set of normalized tables. Each call replaces
// whatever the sink held before.
type Sink interface {
	Name() string
	WriteTables(ctx context.Context, t *model.Tables) error
}

// Result is what a finished run produced
type Result struct {
	Tables   *model.Tables
	Report   *normalize.Report
	Sinks    []string
	Duration time.Duration
}

// Pipeline normalizes every source, then hands the tables to all sinks
type Pipeline struct {
	normalizer *normalize.Normalizer
	sinks      []Sink
	log        *slog.Logger
}

func New(normalizer *normalize.Normalizer, sinks []Sink, log *slog.Logger) *Pipeline {
	return &Pipeline{
		normalizer: normalizer,
		sinks:      sinks,
		log:        logging.Component(log, "pipeline"),
	}
}

// Run normalizes sources and writes the result to every sink concurrently.
// Nothing is written when normalization is cancelled. The first sink error
// cancels the others.
func (p *Pipeline) Run(ctx context.Context, sources []normalize.Source) (*Result, error) {
	start := time.Now()

	tables, report, err := p.normalizer.ProcessAll(ctx, sources)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}

	res := &Result{Tables: tables, Report: report}
	if len(p.sinks) == 0 {
		p.log.Warn("no sinks configured, tables were not persisted")
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, sink := range p.sinks {
		res.Sinks = append(res.Sinks, sink.Name())
		g.Go(func() error {
			sinkStart := time.Now()
			if err := sink.WriteTables(gctx, tables); err != nil {
				return fmt.Errorf("sink %s: %w", sink.Name(), err)
			}
			p.log.Info("sink complete", "sink", sink.Name(), "took", time.Since(sinkStart).Round(time.Millisecond))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res.Duration = time.Since(start)
	return res, nil
}
