package normalize

import (
	"fmt"
	"io"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"

	"cricket-analyzer/internal/model"
)

// Report summarizes one run
type Report struct {
	Formats []FormatReport
}

// FormatReport summarizes one source
type FormatReport struct {
	Format      model.Format
	Dir         string
	Source      string // directory or archive actually read
	Missing     bool
	SourceError string
	Documents   int
	Skipped     map[Stage]int
	Rows        map[string]int
	Coercions   map[string]int // by column
}

func newFormatReport(src Source) *FormatReport {
	return &FormatReport{
		Format:    src.Format,
		Dir:       src.Dir,
		Skipped:   map[Stage]int{},
		Rows:      map[string]int{},
		Coercions: map[string]int{},
	}
}

// SkippedTotal counts skipped documents and stages
func (fr FormatReport) SkippedTotal() int {
	return lo.Sum(lo.Values(fr.Skipped))
}

// CoercionTotal counts cells written as absent after a failed coercion
func (fr FormatReport) CoercionTotal() int {
	return lo.Sum(lo.Values(fr.Coercions))
}

// Documents is the number of documents read across all formats
func (r *Report) Documents() int {
	return lo.SumBy(r.Formats, func(fr FormatReport) int { return fr.Documents })
}

// Skipped is the number of skipped documents and stages across all formats
func (r *Report) Skipped() int {
	return lo.SumBy(r.Formats, FormatReport.SkippedTotal)
}

// CoercionFailures is the number of absent-on-failure cells across all formats
func (r *Report) CoercionFailures() int {
	return lo.SumBy(r.Formats, FormatReport.CoercionTotal)
}

// Write renders the report as aligned text, one line per format
func (r *Report) Write(w io.Writer) error {
	for _, fr := range r.Formats {
		var line string
		switch {
		case fr.Missing:
			line = fmt.Sprintf("%-5s not found (%s)", fr.Format, fr.Dir)
		case fr.SourceError != "":
			line = fmt.Sprintf("%-5s unreadable: %s", fr.Format, fr.SourceError)
		default:
			line = fmt.Sprintf("%-5s %s documents, %s matches, %s deliveries, %d skipped, %d coerced",
				fr.Format,
				humanize.Comma(int64(fr.Documents)),
				humanize.Comma(int64(fr.Rows[model.TableMatches])),
				humanize.Comma(int64(fr.Rows[model.TableDeliveries])),
				fr.SkippedTotal(),
				fr.CoercionTotal())
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}

		stages := lo.Keys(fr.Skipped)
		slices.Sort(stages)
		for _, stage := range stages {
			if _, err := fmt.Fprintf(w, "      skipped at %s: %d\n", stage, fr.Skipped[stage]); err != nil {
				return err
			}
		}
	}
	return nil
}
