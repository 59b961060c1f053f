package spreadsheet

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/cmlabs-hris/leave-dashboard-go/internal/domain/leave"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeRosterWorkbook(t *testing.T, sheet string, rows [][]string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	for i, row := range rows {
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &values))
	}

	path := filepath.Join(t.TempDir(), "roster.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestWorkbookRoster_ListEmployees(t *testing.T) {
	path := writeRosterWorkbook(t, DefaultSheetTitle, rosterRows())

	employees, err := NewWorkbookRoster(path, "").ListEmployees(context.Background())
	require.NoError(t, err)
	require.Len(t, employees, 3)
	assert.Equal(t, "S001", employees[0].StaffID)
	assert.Equal(t, 14.0, employees[0].AnnualLeaveQuota)
	assert.Equal(t, "bob@example.com", employees[1].Email)
}

func TestWorkbookRoster_SheetNotFound(t *testing.T) {
	path := writeRosterWorkbook(t, "Other", rosterRows())

	_, err := NewWorkbookRoster(path, "").ListEmployees(context.Background())
	assert.ErrorIs(t, err, ErrSheetNotFound)
}

func TestWorkbookRoster_MissingFile(t *testing.T) {
	_, err := NewWorkbookRoster(filepath.Join(t.TempDir(), "none.xlsx"), "").ListEmployees(context.Background())
	assert.Error(t, err)
}

func TestExportReports(t *testing.T) {
	reports := []leave.LeaveReport{
		{
			User: leave.ReportUser{
				Name: "Alice",
				EmployeeRecord: leave.EmployeeRecord{
					StaffID:  "S001",
					Email:    "alice@example.com",
					Managers: []string{"boss@example.com", "lead@example.com"},
				},
			},
			Stats: leave.ReportStats{
				QuotaSummary: leave.QuotaSummary{
					Quotas: map[string]leave.QuotaStat{
						leave.TypeAnnual: {Used: 20, Total: 16, Remainder: -4, Percentage: 125, IsOver: true},
						leave.TypeSick:   {Used: 0, Total: 40, Remainder: 40},
					},
					OtherTotal: 4,
					TotalTaken: 24,
				},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, ExportReports(&buf, reports))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ReportSheetTitle)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Staff ID", rows[0][0])
	assert.Equal(t, "S001", rows[1][0])
	assert.Equal(t, "Alice", rows[1][1])
	assert.Equal(t, "boss@example.com, lead@example.com", rows[1][4])
	assert.Equal(t, "-4", rows[1][7])
	assert.Equal(t, "125", rows[1][8])
	assert.Equal(t, "24", rows[1][14])
}
