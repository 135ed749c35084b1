package infra

// pdf.go renders the worked-hours report with go-pdf/fpdf:
//   - dataset name, filter and generation time
//   - summary metrics (total, mean, users, periods)
//   - hours per user
//   - the detailed entries table
//
// fpdf's core fonts are cp1252, so text goes through the page's UTF-8
// translator before being written.

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"frota/internal/report"

	"github.com/go-pdf/fpdf"
)

// HoursDocument is everything printed on a worked-hours PDF.
type HoursDocument struct {
	DatasetName string
	GeneratedAt time.Time
	Report      report.HoursReport
}

// FileName is the download / attachment name of the document.
func (d HoursDocument) FileName() string {
	return fmt.Sprintf("horas_%s_%s.pdf", d.Report.PeriodType, d.GeneratedAt.Format("20060102_150405"))
}

// RenderHoursPDF writes the report as an A4 PDF to w.
func RenderHoursPDF(w io.Writer, doc HoursDocument) error {
	pdf := buildHoursPDF(doc)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: render: %w", err)
	}
	return nil
}

// SaveHoursPDF renders the report into storagePath (created if needed) and
// returns the file path.
func SaveHoursPDF(doc HoursDocument, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := filepath.Join(storagePath, doc.FileName())

	pdf := buildHoursPDF(doc)
	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

func buildHoursPDF(doc HoursDocument) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AliasNbPages("")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 7)
		pdf.CellFormat(0, 5, tr(fmt.Sprintf("Página %d/{nb}", pdf.PageNo())), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30
	r := doc.Report

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 15)
	pdf.CellFormat(contentW, 8, tr("Relatório de Horas Trabalhadas"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, tr("Dataset: "+doc.DatasetName), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, tr("Período: "+periodLabel(r.PeriodType)), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, tr("Gerado em: "+doc.GeneratedAt.Format("02/01/2006 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	// ── Metrics ──────────────────────────────────────────────────────────────
	quarter := contentW / 4
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(235, 235, 245)
	for _, h := range []string{"Total de horas", "Média por período", "Usuários", "Períodos"} {
		pdf.CellFormat(quarter, 6, tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(quarter, 7, r.TotalHours.StringFixed(2)+"h", "1", 0, "C", false, 0, "")
	pdf.CellFormat(quarter, 7, r.MeanHours.StringFixed(2)+"h", "1", 0, "C", false, 0, "")
	pdf.CellFormat(quarter, 7, fmt.Sprint(r.UserCount), "1", 0, "C", false, 0, "")
	pdf.CellFormat(quarter, 7, fmt.Sprint(r.Periods), "1", 1, "C", false, 0, "")
	pdf.Ln(4)

	// ── Hours per user ───────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 7, tr("Total de horas por usuário"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW*0.75, 6, tr("Usuário"), "B", 0, "L", false, 0, "")
	pdf.CellFormat(contentW*0.25, 6, "Horas", "B", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	for _, u := range r.ByUser {
		pdf.CellFormat(contentW*0.75, 5, tr(u.Key), "", 0, "L", false, 0, "")
		pdf.CellFormat(contentW*0.25, 5, u.Value.StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	// ── Detail ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 7, "Detalhamento", "", 1, "L", false, 0, "")
	col1, col2, col3, col4 := contentW*0.50, contentW*0.18, contentW*0.14, contentW*0.18
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(col1, 6, tr("Usuário"), "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, tr("Período"), "B", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, "Tipo", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col4, 6, "Horas", "B", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	for _, e := range r.Entries {
		user := e.User
		if len(user) > 48 {
			user = user[:47] + "..."
		}
		pdf.CellFormat(col1, 5, tr(user), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, e.Period, "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, tr(periodLabel(string(e.PeriodType))), "", 0, "L", false, 0, "")
		pdf.CellFormat(col4, 5, e.Hours.StringFixed(2), "", 1, "R", false, 0, "")
	}
	return pdf
}

func periodLabel(pt string) string {
	switch pt {
	case "DAY":
		return "Dia"
	case "MONTH":
		return "Mês"
	default:
		return "Todos"
	}
}
