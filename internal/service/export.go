package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/cvazquezfgc/planificacio-renovacio-via/internal/models"
	"github.com/cvazquezfgc/planificacio-renovacio-via/internal/renovation"
)

const summarySheet = "Resum"

var sheetNameReplacer = strings.NewReplacer(
	":", "-", `\`, "-", "/", "-", "?", "", "*", "", "[", "(", "]", ")",
)

// ExportWorkbook writes the plan as an xlsx workbook: a summary sheet and one
// sheet of grouped runs per section
func (s *RenovationService) ExportWorkbook(ctx context.Context, w io.Writer) error {
	ds, err := s.cache.Get(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("failed to name summary sheet: %w", err)
	}

	line := renovation.SummarizeLine(ds.Segments, s.opts)
	overdueHeader := fmt.Sprintf("Previst abans de %d (m)", s.opts.ReferenceYear)
	if err := f.SetSheetRow(summarySheet, "A1", &[]interface{}{
		"Tram", "Longitud (m)", overdueHeader, "%",
	}); err != nil {
		return fmt.Errorf("failed to write summary header: %w", err)
	}

	row := 2
	for _, sec := range line.Sections {
		if err := writeRow(f, summarySheet, row, sec.Section, sec.TotalMeters, sec.Overdue.Meters, sec.Overdue.Display); err != nil {
			return err
		}
		row++
	}
	if err := writeRow(f, summarySheet, row, "LINIA COMPLETA", line.TotalMeters, line.Overdue.Meters, line.Overdue.Display); err != nil {
		return err
	}

	used := map[string]bool{strings.ToLower(summarySheet): true}
	for _, sec := range line.Sections {
		name := sheetName(sec.Section, used)
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet for %s: %w", sec.Section, err)
		}
		if err := writeSectionSheet(f, name, ds.Segments, sec.Section); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSectionSheet(f *excelize.File, sheet string, segments []models.TrackSegment, section string) error {
	if err := f.SetSheetRow(sheet, "A1", &[]interface{}{
		"Via", "PK inici", "PK final", "Any previsió", "Longitud (m)",
	}); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", sheet, err)
	}

	row := 2
	for _, track := range renovation.Tracks(segments, section) {
		for _, g := range renovation.GroupTrack(segments, section, track) {
			if err := writeRow(f, sheet, row, g.Track, g.StartKm, g.EndKm, g.ForecastYear, g.LengthMeters); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values ...interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, sheet, err)
	}
	return nil
}

// sheetName derives a valid sheet name (max 31 chars) for a section, unique
// ignoring case
// sheetName maps section to a unique sheet name Excel accepts: at most 31
// runes, none of :\/?*[] and no apostrophe at either end.
func sheetName(section string, used map[string]bool) string {
	base := trimSheetName(sheetNameReplacer.Replace(section))
	if base == "" {
		base = "Tram"
	}
	base = trimSheetName(truncateRunes(base, 31))

	name := base
	for i := 2; used[strings.ToLower(name)]; i++ {
		suffix := fmt.Sprintf(" %d", i)
		name = trimSheetName(truncateRunes(base, 31-len(suffix))) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func trimSheetName(s string) string {
	return strings.Trim(s, "' ")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}
