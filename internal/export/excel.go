// Package export renders screening reports for people: an Excel workbook and
// plain console lines.
package export

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/spigell/resume-screener/internal/pipeline"
	"github.com/spigell/resume-screener/internal/roles"
	"github.com/spigell/resume-screener/internal/screening"
)

const (
	SheetSummary     = "Summary"
	SheetShortlisted = "Shortlisted"
	SheetRejected    = "Rejected"
)

// Params carries report metadata that is not part of the pipeline report.
type Params struct {
	Generated time.Time
	// Window is the date window label the files were selected with.
	Window    string
}

// Band is a score range shown in the summary sheet.
type Band struct {
	Label string
	Min   float64
}

// Bands are ordered from the highest minimum down.
var Bands = []Band{
	{Label: "Excellent (90-100)", Min: 90},
	{Label: "Good (70-89)", Min: 70},
	{Label: "Fair (50-69)", Min: 50},
	{Label: "Poor (<50)", Min: 0},
}

// BandOf returns the label of the band a score falls into.
func BandOf(score float64) string {
	for _, b := range Bands {
		if score >= b.Min {
			return b.Label
		}
	}
	return Bands[len(Bands)-1].Label
}

var resultHeaders = []string{
	"File", "Score", "Band", "Status", "Experience", "Found Skills",
	"Missing Skills", "Reasons", "Experience Details", "Certifications", "Projects",
}

// WriteXLSX writes the report to path, adding the .xlsx extension when missing.
// It returns the final path.
func WriteXLSX(path string, report *pipeline.Report, params Params) (string, error) {
	if report == nil {
		return "", fmt.Errorf("nothing to export")
	}
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	path = filepath.Clean(path)

	if params.Generated.IsZero() {
		params.Generated = time.Now()
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return "", fmt.Errorf("failed to rename default sheet: %w", err)
	}

	styles, err := newStyles(f)
	if err != nil {
		return "", fmt.Errorf("failed to create styles: %w", err)
	}

	if err := writeSummary(f, styles, report, params); err != nil {
		return "", fmt.Errorf("failed to create summary sheet: %w", err)
	}

	shortlisted, rejected := screening.Partition(report.Results)
	if err := writeResults(f, styles, SheetShortlisted, shortlisted); err != nil {
		return "", fmt.Errorf("failed to create shortlisted sheet: %w", err)
	}
	if err := writeResults(f, styles, SheetRejected, rejected); err != nil {
		return "", fmt.Errorf("failed to create rejected sheet: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook %s: %w", path, err)
	}

	return path, nil
}

type styles struct {
	header int
	label  int
}

func newStyles(f *excelize.File) (styles, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return styles{}, err
	}

	label, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return styles{}, err
	}

	return styles{header: header, label: label}, nil
}

func writeSummary(f *excelize.File, st styles, report *pipeline.Report, params Params) error {
	sheet := SheetSummary
	if err := f.SetColWidth(sheet, "A", "A", 28); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "B", 40); err != nil {
		return err
	}

	location := report.Location
	if location == "" {
		location = roles.AnyLocation
	}
	window := params.Window
	if window == "" {
		window = "All"
	}

	rows := [][]any{
		{"Resume Screening Report"},
		nil,
		{"Role:", report.Role},
		{"Threshold:", report.Threshold},
		{"Location:", location},
		{"Date window:", window},
		{"Generated:", params.Generated.Format("2006-01-02 15:04:05")},
		nil,
		{"Statistics"},
		{"Total files:", report.Stats.Total},
		{"Completed:", report.Stats.Completed},
		{"Shortlisted:", report.Stats.Shortlisted},
		{"Rejected:", report.Stats.Rejected},
		{"Rejected by fast filter:", report.Stats.FastRejected},
		{"Failed:", report.Stats.Failed},
		{"From cache:", report.Stats.Cached},
		{"Average score:", fmt.Sprintf("%.2f", averageScore(report.Results))},
		nil,
		{"Score distribution"},
	}

	counts := bandCounts(report.Results)
	for _, b := range Bands {
		rows = append(rows, []any{b.Label + ":", counts[b.Label]})
	}

	for i, row := range rows {
		n := i + 1
		if len(row) == 0 {
			continue
		}

		cell := fmt.Sprintf("A%d", n)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}

		style := st.label
		if len(row) == 1 {
			style = st.header
			if err := f.MergeCell(sheet, cell, fmt.Sprintf("B%d", n)); err != nil {
				return err
			}
		}
		if err := f.SetCellStyle(sheet, cell, fmt.Sprintf("A%d", n), style); err != nil {
			return err
		}
	}

	return nil
}

func writeResults(f *excelize.File, st styles, sheet string, results []screening.MatchResult) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	if err := f.SetSheetRow(sheet, "A1", &resultHeaders); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(resultHeaders), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, st.header); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", "A", 30); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "F", "I", 40); err != nil {
		return err
	}

	for i, r := range byScore(results) {
		row := []any{
			r.File,
			r.Score,
			BandOf(r.Score),
			string(r.Status),
			r.Experience.String(),
			strings.Join(r.FoundSkills, ", "),
			strings.Join(r.MissingSkills, ", "),
			strings.Join(r.Reasons, "; "),
			r.ExperienceText,
			strings.Join(r.Certifications, "; "),
			strings.Join(r.Projects, "; "),
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}

	return nil
}

// byScore sorts a copy by descending score, then by file name.
func byScore(results []screening.MatchResult) []screening.MatchResult {
	sorted := append([]screening.MatchResult(nil), results...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].File < sorted[j].File
	})
	return sorted
}

func bandCounts(results []screening.MatchResult) map[string]int {
	counts := make(map[string]int, len(Bands))
	for _, r := range results {
		counts[BandOf(r.Score)]++
	}
	return counts
}

func averageScore(results []screening.MatchResult) float64 {
	if len(results) == 0 {
		return 0
	}
	var total float64
	for _, r := range results {
		total += r.Score
	}
	return total / float64(len(results))
}
