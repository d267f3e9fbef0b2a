package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"cricket-analyzer/internal/cricsheet"
	"cricket-analyzer/internal/model"
	"cricket-analyzer/internal/normalize"
)

func newInspectCmd(a *app) *cobra.Command {
	var (
		format     string
		deliveries bool
	)
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Parse one document and print its rows",
		Long: `Inspect parses a single .json or .json.gz document and prints the match,
player and innings rows it produces. Nothing is written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := model.ParseFormat(format)
			if err != nil {
				return err
			}
			return runInspect(cmd.OutOrStdout(), args[0], f, deliveries)
		},
	}

	cmd.Flags().StringVar(&format, "format", string(model.FormatT20), "Format recorded on the match row")
	cmd.Flags().BoolVar(&deliveries, "deliveries", false, "Also print every delivery row")
	return cmd
}

func runInspect(out io.Writer, path string, format model.Format, withDeliveries bool) error {
	matchID, ok := cricsheet.MatchIDFromName(filepath.Base(path))
	if !ok {
		return fmt.Errorf("%s is not a match document (want <match_id>.json)", path)
	}

	doc, err := cricsheet.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	match, err := normalize.ParseMatch(doc, matchID, format)
	if err != nil {
		return fmt.Errorf("match: %w", err)
	}
	players, err := normalize.ExtractPlayers(doc, matchID)
	if err != nil {
		return fmt.Errorf("players: %w", err)
	}
	innings, deliveries, err := normalize.ExtractInnings(doc, matchID)
	if err != nil {
		return fmt.Errorf("innings: %w", err)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "== %s ==\n", model.TableMatches)
	for i, v := range match.Values() {
		fmt.Fprintf(tw, "%s\t%s\n", model.MatchColumns[i], model.FormatCell(v))
	}

	fmt.Fprintf(tw, "\n== %s (%d) ==\n", model.TablePlayers, len(players))
	for _, p := range players {
		fmt.Fprintf(tw, "%s\t%s\n", p.Team, p.PlayerName)
	}

	fmt.Fprintf(tw, "\n== %s (%d) ==\n", model.TableInnings, len(innings))
	writeRows(tw, model.InningsColumns, len(innings), func(i int) []any { return innings[i].Values() })

	if withDeliveries {
		fmt.Fprintf(tw, "\n== %s (%d) ==\n", model.TableDeliveries, len(deliveries))
		writeRows(tw, model.DeliveryColumns, len(deliveries), func(i int) []any { return deliveries[i].Values() })
	} else {
		fmt.Fprintf(tw, "\n%d deliveries (use --deliveries to list them)\n", len(deliveries))
	}
	return tw.Flush()
}

func writeRows(w io.Writer, columns []string, n int, row func(int) []any) {
	fmt.Fprintln(w, strings.Join(columns, "\t"))
	cells := make([]string, len(columns))
	for i := range n {
		for j, v := range row(i) {
			cells[j] = model.FormatCell(v)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
}
