package spreadsheet

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/leave-dashboard-go/internal/domain/leave"
	"github.com/xuri/excelize/v2"
)

// WorkbookRoster reads the roster from a local .xlsx export of the roster
// spreadsheet. The file is re-read on every call.
type WorkbookRoster struct {
	path       string
	sheetTitle string
}

func NewWorkbookRoster(path, sheetTitle string) *WorkbookRoster {
	if sheetTitle == "" {
		sheetTitle = DefaultSheetTitle
	}
	return &WorkbookRoster{path: path, sheetTitle: sheetTitle}
}

// ListEmployees implements leave.RosterSource.
func (w *WorkbookRoster) ListEmployees(ctx context.Context) ([]leave.EmployeeRecord, error) {
	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return nil, fmt.Errorf("open roster workbook: %w", err)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(w.sheetTitle)
	if err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %q in %s", ErrSheetNotFound, w.sheetTitle, w.path)
	}

	rows, err := f.GetRows(w.sheetTitle)
	if err != nil {
		return nil, fmt.Errorf("read roster rows: %w", err)
	}
	return ParseRoster(rows)
}
