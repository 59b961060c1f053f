package spreadsheet

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/cmlabs-hris/leave-dashboard-go/internal/domain/leave"
	"github.com/xuri/excelize/v2"
)

// ReportSheetTitle is the tab written by ExportReports.
const ReportSheetTitle = "Leave Report"

var reportHeader = []interface{}{
	"Staff ID", "Name", "English Name", "Email", "Managers",
	"Annual Used (h)", "Annual Quota (h)", "Annual Remaining (h)", "Annual Usage (%)",
	"Sick Used (h)", "Sick Quota (h)", "Sick Remaining (h)", "Sick Usage (%)",
	"Other Leave (h)", "Total Taken (h)",
}

// ExportReports writes the reports as a single-sheet workbook. Rows with an
// overdrawn quota are highlighted.
func ExportReports(w io.Writer, reports []leave.LeaveReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ReportSheetTitle); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	overStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "#C00000"},
	})
	if err != nil {
		return fmt.Errorf("create overdrawn style: %w", err)
	}

	if err := f.SetSheetRow(ReportSheetTitle, "A1", &reportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(reportHeader))
	if err := f.SetCellStyle(ReportSheetTitle, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, r := range reports {
		annual := r.Stats.Quotas[leave.TypeAnnual]
		sick := r.Stats.Quotas[leave.TypeSick]
		row := []interface{}{
			r.User.StaffID, r.User.Name, r.User.EnglishName, r.User.Email,
			strings.Join(r.User.Managers, ", "),
			annual.Used, annual.Total, annual.Remainder, round1(annual.Percentage),
			sick.Used, sick.Total, sick.Remainder, round1(sick.Percentage),
			r.Stats.OtherTotal, r.Stats.TotalTaken,
		}

		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(ReportSheetTitle, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
		if annual.IsOver || sick.IsOver {
			end, _ := excelize.CoordinatesToCellName(len(reportHeader), i+2)
			if err := f.SetCellStyle(ReportSheetTitle, cell, end, overStyle); err != nil {
				return fmt.Errorf("style row %d: %w", i+2, err)
			}
		}
	}

	if err := f.SetPanes(ReportSheetTitle, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
