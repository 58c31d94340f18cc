package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cvazquezfgc/planificacio-renovacio-via/internal/models"
)

func newSummaryCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "summary [section]",
		Short: "prints the figures of a section or of the whole line",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, db, err := a.openService()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			if err := svc.Warmup(ctx, a.cfg.AutoImport); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				s, err := svc.Summary(ctx, args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(out, s)
				}
				return writeSectionSummary(out, *s)
			}

			line, err := svc.LineSummary(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(out, line)
			}
			return writeLineSummary(out, *line)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func percent(f models.AggregateFigure) string {
	if !f.Defined {
		return "-"
	}
	return strconv.FormatFloat(f.Display, 'f', -1, 64) + " %"
}

func meters(m float64) string {
	return strconv.FormatFloat(m, 'f', 0, 64) + " m"
}

func writeSectionSummary(w io.Writer, s models.SectionSummary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Tram\t%s\n", s.Section)
	fmt.Fprintf(tw, "Registres\t%d\n", s.RecordCount)
	fmt.Fprintf(tw, "Longitud\t%s\n", meters(s.TotalMeters))
	fmt.Fprintf(tw, "PK\t%.3f - %.3f\n", s.PKMin, s.PKMax)
	fmt.Fprintf(tw, "Previst abans de %d\t%s\t%s\n", s.ReferenceYear, meters(s.Overdue.Meters), percent(s.Overdue))
	for _, t := range s.Tracks {
		fmt.Fprintf(tw, "Via %d\t%s\t%s\n", t.Track, meters(t.Meters), percent(t.AggregateFigure))
	}
	fmt.Fprintf(tw, "Mediana per registre\t%s\n", meters(s.MedianRecordMeters))
	writeWindows(tw, s.Windows)
	return tw.Flush()
}

func writeLineSummary(w io.Writer, l models.LineSummary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Tram\tLongitud\tPrevist\tPercentatge")
	for _, s := range l.Sections {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Section, meters(s.TotalMeters), meters(s.Overdue.Meters), percent(s.Overdue))
	}
	fmt.Fprintf(tw, "LINIA COMPLETA\t%s\t%s\t%s\n", meters(l.TotalMeters), meters(l.Overdue.Meters), percent(l.Overdue))
	writeWindows(tw, l.Windows)
	return tw.Flush()
}

func writeWindows(w io.Writer, windows []models.WindowFigure) {
	if len(windows) == 0 {
		return
	}
	fmt.Fprintln(w, "\nPeriode\tLongitud\tPercentatge")
	for _, win := range windows {
		fmt.Fprintf(w, "%d-%d\t%s\t%s\n", win.From, win.To, meters(win.Meters), percent(win.AggregateFigure))
	}
}
