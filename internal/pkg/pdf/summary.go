package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/cmlabs-hris/leave-dashboard-go/internal/domain/leave"
	"github.com/jung-kurt/gofpdf"
)

// LeaveSummary renders one employee's leave report as an A4 PDF.
func LeaveSummary(report leave.LeaveReport, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Leave Summary - %s", report.User.Name), true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Leave Summary")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Employee: %s", report.User.Name))
	pdf.Ln(6)
	if report.User.StaffID != "" {
		pdf.Cell(0, 7, fmt.Sprintf("Staff ID: %s", report.User.StaffID))
		pdf.Ln(6)
	}
	pdf.Cell(0, 7, fmt.Sprintf("Email: %s", report.User.Email))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Generated: %s", generatedAt.Format("2006-01-02")))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(217, 225, 242)
	for _, h := range []string{"Leave Type", "Used (h)", "Quota (h)", "Remaining (h)", "Usage"} {
		pdf.CellFormat(36, 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 11)
	for _, t := range leave.QuotaTypes {
		stat := report.Stats.Quotas[t]
		remaining := fmt.Sprintf("%.1f", stat.Remainder)
		if stat.IsOver {
			pdf.SetTextColor(192, 0, 0)
			remaining += " (Overdrawn)"
		}
		pdf.CellFormat(36, 8, t, "1", 0, "L", false, 0, "")
		pdf.CellFormat(36, 8, fmt.Sprintf("%.1f", stat.Used), "1", 0, "R", false, 0, "")
		pdf.CellFormat(36, 8, fmt.Sprintf("%.1f", stat.Total), "1", 0, "R", false, 0, "")
		pdf.CellFormat(36, 8, remaining, "1", 0, "R", false, 0, "")
		pdf.CellFormat(36, 8, fmt.Sprintf("%.0f%%", stat.Percentage), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
		pdf.SetTextColor(0, 0, 0)
	}

	if len(report.Stats.Others) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "Other Leave")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		for _, o := range report.Stats.Others {
			pdf.CellFormat(72, 8, o.Name, "1", 0, "L", false, 0, "")
			pdf.CellFormat(36, 8, fmt.Sprintf("%.1f", o.Hours), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 8, fmt.Sprintf("Total leave taken: %.1f hours", report.Stats.TotalTaken))

	if len(report.ChartConfig.Labels) > 0 {
		pdf.Ln(12)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "Leave Days")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 10)
		for i, day := range report.ChartConfig.Labels {
			var hours float64
			for _, ds := range report.ChartConfig.Datasets {
				if i < len(ds.Data) {
					hours += ds.Data[i]
				}
			}
			pdf.CellFormat(40, 6, day, "1", 0, "L", false, 0, "")
			pdf.CellFormat(30, 6, fmt.Sprintf("%.1f", hours), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render leave summary pdf: %w", err)
	}
	return buf.Bytes(), nil
}
