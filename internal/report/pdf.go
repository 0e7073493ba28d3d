// Package report renders the register as a printable PDF.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/akyairhashvil/problemtracker/internal/config"
	"github.com/akyairhashvil/problemtracker/internal/models"
	"github.com/akyairhashvil/problemtracker/internal/staleness"
)

const fontFamily = "register"

// Options controls rendering. Without FontPath the core Arial font is used
// and non-Latin text is reduced to what cp1252 can show, so statuses are
// printed by code.
type Options struct {
	FontPath    string
	GeneratedAt time.Time
}

var columns = []struct {
	title string
	width float64
}{
	{"Number", 25},
	{"Entity", 40},
	{"Problem", 60},
	{"Status", 25},
	{"Added", 20},
	{"Completed", 20},
}

// WritePDF renders the report to path, creating its directory.
func WritePDF(path string, problems []models.Problem, stale staleness.Report, opts Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if err := Render(f, problems, stale, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Render writes the report to w.
func Render(w io.Writer, problems []models.Problem, stale staleness.Report, opts Options) error {
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now()
	}
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Problem Register", true)
	pdf.AliasNbPages("")
	pdf.SetAutoPageBreak(true, 15)

	family, text, status := "Arial", pdf.UnicodeTranslatorFromDescriptor(""), models.Status.Code
	if opts.FontPath != "" {
		pdf.AddUTF8Font(fontFamily, "", opts.FontPath)
		pdf.AddUTF8Font(fontFamily, "B", opts.FontPath)
		family = fontFamily
		text = func(s string) string { return s }
		status = models.Status.String
	}
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(family, "", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont(family, "B", 16)
	pdf.CellFormat(0, 10, "Problem Register", "", 1, "L", false, 0, "")
	pdf.SetFont(family, "", 10)
	pdf.CellFormat(0, 6, "Generated "+opts.GeneratedAt.Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	stats := countStatuses(problems)
	pdf.CellFormat(0, 6, fmt.Sprintf("Total: %d   New: %d   In progress: %d   Completed: %d",
		stats.Total, stats.New, stats.InProgress, stats.Completed), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(family, "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, col := range columns {
		pdf.CellFormat(col.width, 7, col.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(family, "", 9)
	for _, p := range problems {
		cells := []string{
			p.ProblemNumber,
			p.Entity,
			p.Description,
			status(p.Status),
			p.AddedDate.Format(config.ExportDateLayout, "-"),
			p.CompletedDate.Format(config.ExportDateLayout, "-"),
		}
		for i, col := range columns {
			pdf.CellFormat(col.width, 6, fit(pdf, cells[i], col.width-2, text), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(6)
	pdf.SetFont(family, "B", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Stale open problems: %d", stale.Count), "", 1, "L", false, 0, "")
	pdf.SetFont(family, "", 9)
	for _, item := range stale.Items {
		line := fmt.Sprintf("%s  %s  (%s, %d days)",
			item.Problem.ProblemNumber, item.Problem.Description, status(item.Problem.Status), item.Days)
		pdf.MultiCell(0, 5, text(line), "", "L", false)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

// fit shortens s with an ellipsis until its encoded form fits width.
func fit(pdf *fpdf.Fpdf, s string, width float64, encode func(string) string) string {
	if out := encode(s); pdf.GetStringWidth(out) <= width {
		return out
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		if out := encode(string(runes) + "..."); pdf.GetStringWidth(out) <= width {
			return out
		}
	}
	return ""
}

func countStatuses(problems []models.Problem) models.Stats {
	stats := models.Stats{Total: len(problems)}
	for _, p := range problems {
		switch p.Status {
		case models.StatusNew:
			stats.New++
		case models.StatusInProgress:
			stats.InProgress++
		case models.StatusCompleted:
			stats.Completed++
		}
	}
	return stats
}
