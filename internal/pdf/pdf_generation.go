package pdf

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/jung-kurt/gofpdf"

	"tasktracker/internal/models"
)

// Generator renders reports; handlers depend on this interface.
type Generator interface {
	ProjectReport(w io.Writer, data *models.ProjectReport) error
}

// ReportGenerator renders A4 reports with gofpdf.
type ReportGenerator struct {
	FontPath string // TTF with UTF-8 glyphs, e.g. "assets/fonts/DejaVuSans.ttf"
	fontName string
}

func NewReportGenerator(fontPath string) *ReportGenerator {
	return &ReportGenerator{FontPath: fontPath, fontName: "DejaVu"}
}

func (g *ReportGenerator) ProjectReport(w io.Writer, data *models.ProjectReport) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	font, tr := g.setupFont(pdf)

	pdf.SetTitle(tr(fmt.Sprintf("Project report: %s", data.Project.Name)), false)
	pdf.SetAuthor("Task Tracker", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(font, "", 9)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont(font, "B", 18)
	pdf.CellFormat(0, 10, tr(data.Project.Name), "", 1, "C", false, 0, "")
	pdf.SetFont(font, "", 10)
	pdf.CellFormat(0, 6, "Generated "+data.GeneratedAt.Format("2006-01-02 15:04 MST"), "", 1, "C", false, 0, "")
	hr(pdf)

	sectionTitle(pdf, font, "Project")
	kvLine(pdf, font, "Risk", string(data.Project.RiskLevel))
	kvLine(pdf, font, "Start", formatDate(data.Project.StartDate))
	kvLine(pdf, font, "End", formatDate(data.Project.EndDate))
	kvLine(pdf, font, "Budget", fmt.Sprintf("%.2f", data.Project.Budget))
	kvLine(pdf, font, "Progress", fmt.Sprintf("%.0f%%", data.Progress()*100))
	if data.Project.Description != "" {
		pdf.SetFont(font, "", 11)
		pdf.MultiCell(0, 6, tr(data.Project.Description), "", "L", false)
	}
	hr(pdf)

	sectionTitle(pdf, font, "Tasks by status")
	for _, st := range []models.TaskStatus{models.StatusPending, models.StatusInProgress, models.StatusCompleted} {
		kvLine(pdf, font, string(st), fmt.Sprintf("%d", data.TaskCounts[st]))
	}
	if len(data.Tasks) > 0 {
		pdf.Ln(2)
		taskTable(pdf, font, tr, data.Tasks)
	}
	hr(pdf)

	sectionTitle(pdf, font, "Costs")
	types := make([]string, 0, len(data.Costs.Totals))
	for t := range data.Costs.Totals {
		types = append(types, string(t))
	}
	sort.Strings(types)
	for _, t := range types {
		kvLine(pdf, font, t, fmt.Sprintf("%.2f", data.Costs.Totals[models.CostType(t)]))
	}
	kvLine(pdf, font, "Balance", fmt.Sprintf("%.2f", data.Costs.Balance))
	kvLine(pdf, font, "Budget left", fmt.Sprintf("%.2f", data.BudgetRemaining))

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render project report: %w", err)
	}
	return nil
}

// setupFont registers the UTF-8 font when the TTF exists and otherwise falls
// back to the core Helvetica font with a cp1252 translator.
func (g *ReportGenerator) setupFont(pdf *gofpdf.Fpdf) (string, func(string) string) {
	if g.FontPath != "" {
		if _, err := os.Stat(g.FontPath); err == nil {
			pdf.AddUTF8Font(g.fontName, "", g.FontPath)
			pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
			return g.fontName, func(s string) string { return s }
		}
	}
	return "Helvetica", pdf.UnicodeTranslatorFromDescriptor("")
}

func taskTable(pdf *gofpdf.Fpdf, font string, tr func(string) string, tasks []models.Task) {
	widths := []float64{15, 85, 35, 35}
	pdf.SetFont(font, "B", 10)
	for i, h := range []string{"ID", "Task", "Status", "Due"} {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont(font, "", 10)
	for _, t := range tasks {
		pdf.CellFormat(widths[0], 6, fmt.Sprintf("%d", t.ID), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, tr(truncate(t.Name, 45)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, string(t.Status), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 6, formatDate(t.DueAt), "1", 1, "L", false, 0, "")
	}
}

func sectionTitle(pdf *gofpdf.Fpdf, font, s string) {
	pdf.SetFont(font, "B", 12)
	pdf.CellFormat(0, 7, s, "", 1, "L", false, 0, "")
	pdf.SetFont(font, "", 11)
}

func kvLine(pdf *gofpdf.Fpdf, font, key, val string) {
	pdf.SetFont(font, "B", 11)
	pdf.CellFormat(45, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(font, "", 11)
	pdf.CellFormat(0, 6, val, "", 1, "L", false, 0, "")
}

func hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 2)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
