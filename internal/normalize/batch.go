package normalize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cricket-analyzer/internal/cricsheet"
	"cricket-analyzer/internal/logging"
	"cricket-analyzer/internal/model"
)

// defaultDedupeEstimate sizes the match id filter; a full Cricsheet
// download is under 20k matches
const defaultDedupeEstimate = 100000

var errEmptyDocument = errors.New("empty document")

// Source is one format's input: a directory of documents, or a sibling
// <Dir>.zip archive when the directory does not exist
type Source struct {
	Format model.Format
	Dir    string
}

// Options configures a Normalizer
type Options struct {
	// Logger receives progress and per-skip diagnostics. Nil discards them.
	Logger *slog.Logger
	// OnDiagnostic, if set, is called for every skipped document or stage
	OnDiagnostic func(*DocumentError)
	// DedupeEstimate is the expected number of distinct matches in a run
	DedupeEstimate uint
}

// Normalizer drives extraction over batches of documents. It is not safe
// for concurrent use; documents are processed strictly one after another.
type Normalizer struct {
	log          *slog.Logger
	onDiagnostic func(*DocumentError)
	estimate     uint
	seen         *matchSet
}

func NewNormalizer(opts Options) *Normalizer {
	estimate := opts.DedupeEstimate
	if estimate == 0 {
		estimate = defaultDedupeEstimate
	}
	return &Normalizer{
		log:          logging.Component(opts.Logger, "normalizer"),
		onDiagnostic: opts.OnDiagnostic,
		estimate:     estimate,
		seen:         newMatchSet(estimate),
	}
}

// ProcessAll processes each source in order and concatenates the per-format
// tables in that same order. Duplicate detection spans all sources. The only
// error returned is the context's; nothing partial is returned with it.
func (n *Normalizer) ProcessAll(ctx context.Context, sources []Source) (*model.Tables, *Report, error) {
	n.seen = newMatchSet(n.estimate)

	all := &model.Tables{}
	report := &Report{}
	for _, src := range sources {
		tables, fr, err := n.processFormat(ctx, src)
		if err != nil {
			return nil, nil, err
		}
		all.Append(tables)
		report.Formats = append(report.Formats, *fr)
	}

	n.log.Info("normalization complete",
		"matches", len(all.Matches),
		"players", len(all.Players),
		"innings", len(all.Innings),
		"deliveries", len(all.Deliveries),
		"skipped", report.Skipped(),
		"coercion_failures", report.CoercionFailures())
	return all, report, nil
}

// ProcessFormat processes one source's documents in lexical filename order.
// A missing source yields empty tables. Per-document failures are reported
// and skipped; only cancellation returns an error. Duplicate detection is
// scoped to this call.
func (n *Normalizer) ProcessFormat(ctx context.Context, src Source) (*model.Tables, *FormatReport, error) {
	n.seen = newMatchSet(n.estimate)
	return n.processFormat(ctx, src)
}

func (n *Normalizer) processFormat(ctx context.Context, src Source) (*model.Tables, *FormatReport, error) {
	log := n.log.With("format", src.Format)
	fr := newFormatReport(src)
	tables := &model.Tables{}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	set, err := cricsheet.OpenSet(src.Dir)
	if errors.Is(err, cricsheet.ErrSourceNotFound) {
		log.Info("source not found, skipping", "dir", src.Dir)
		fr.Missing = true
		return tables, fr, nil
	}
	if err != nil {
		fr.SourceError = err.Error()
		n.diagnose(log, &DocumentError{Format: src.Format, File: src.Dir, Stage: StageRead, Err: err})
		return tables, fr, nil
	}
	defer set.Close()

	fr.Source = set.Root
	log.Info("processing format", "source", set.Root, "documents", len(set.Entries))

	for _, entry := range set.Entries {
		if err := ctx.Err(); err != nil {
			log.Warn("run cancelled", "processed", fr.Documents)
			return nil, nil, err
		}
		fr.Documents++
		n.processDocument(log, src.Format, entry, tables, fr)
	}

	fr.Rows = tables.Counts()
	log.Info("format complete",
		"matches", len(tables.Matches),
		"deliveries", len(tables.Deliveries),
		"skipped", fr.SkippedTotal())
	return tables, fr, nil
}

func (n *Normalizer) processDocument(log *slog.Logger, format model.Format, entry cricsheet.Entry, out *model.Tables, fr *FormatReport) {
	log.Debug("processing document", "file", entry.Name)
	fail := func(stage Stage, err error) {
		fr.Skipped[stage]++
		n.diagnose(log, &DocumentError{Format: format, File: entry.Name, MatchID: entry.MatchID, Stage: stage, Err: err})
	}

	doc, err := readDocument(entry)
	if err != nil {
		fail(StageRead, err)
		return
	}

	if !n.seen.add(entry.MatchID) {
		fail(StageDedupe, fmt.Errorf("match %s already processed", entry.MatchID))
		return
	}

	cc := &coercions{matchID: entry.MatchID}

	// each stage decodes its own section, so one failing leaves the others intact
	if m, err := parseMatch(doc, entry.MatchID, format, cc); err != nil {
		fail(StageMatch, err)
	} else {
		out.Matches = append(out.Matches, m)
	}

	if players, err := ExtractPlayers(doc, entry.MatchID); err != nil {
		fail(StagePlayers, err)
	} else {
		out.Players = append(out.Players, players...)
	}

	innings, deliveries, err := extractInnings(doc, entry.MatchID, cc)
	if err != nil {
		fail(StageInnings, err)
	} else {
		out.Innings = append(out.Innings, innings...)
		out.Deliveries = append(out.Deliveries, deliveries...)
	}

	for _, c := range cc.list {
		fr.Coercions[c.Column]++
		log.Debug("value coerced to null", "match_id", c.MatchID, "column", c.Column, "value", c.Value)
	}
}

func readDocument(entry cricsheet.Entry) (*cricsheet.Document, error) {
	data, err := entry.ReadAll()
	if err != nil {
		return nil, err
	}
	doc, err := cricsheet.DecodeDocument(data)
	if err != nil {
		return nil, err
	}
	if doc.Empty() {
		return nil, errEmptyDocument
	}
	return doc, nil
}

func (n *Normalizer) diagnose(log *slog.Logger, derr *DocumentError) {
	log.Error("skipping document",
		"file", derr.File,
		"match_id", derr.MatchID,
		"stage", derr.Stage,
		"error", derr.Err)
	if n.onDiagnostic != nil {
		n.onDiagnostic(derr)
	}
}
