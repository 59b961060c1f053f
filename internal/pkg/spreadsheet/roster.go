package spreadsheet

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cmlabs-hris/leave-dashboard-go/internal/domain/leave"
)

// DefaultSheetTitle is the roster tab name.
const DefaultSheetTitle = "Leave Data"

// Roster column headers.
const (
	ColStaffID          = "Staff ID"
	ColChineseName      = "Chinese name"
	ColEnglishName      = "English Name"
	ColEmail            = "Email"
	ColOnboardDate      = "Onboard Date"
	ColYearsOfService   = "Years of Service"
	ColAnnualLeaveQuota = "Annual Leave Quota"
	ColSickLeaveQuota   = "Sick Leave Quota"
)

// ManagerColumns hold manager emails, copied on every summary email.
var ManagerColumns = []string{"Manager 1", "Manager 2", "Manager 3", "Manager 4"}

var (
	ErrSheetNotFound = errors.New("roster sheet not found")
	ErrEmptySheet    = errors.New("roster sheet has no header row")
	ErrMissingColumn = errors.New("roster sheet is missing a required column")
)

// ParseRoster maps sheet rows to employee records using the first row as the
// header. Columns are matched by trimmed, case-insensitive header text and
// may appear in any order. Blank rows are skipped.
func ParseRoster(rows [][]string) ([]leave.EmployeeRecord, error) {
	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}

	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}
	if _, ok := index[strings.ToLower(ColEmail)]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, ColEmail)
	}

	employees := make([]leave.EmployeeRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		get := func(col string) string {
			i, ok := index[strings.ToLower(col)]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		managers := make([]string, 0, len(ManagerColumns))
		for _, col := range ManagerColumns {
			if m := leave.NormalizeEmail(get(col)); m != "" {
				managers = append(managers, m)
			}
		}

		employees = append(employees, leave.EmployeeRecord{
			StaffID:          get(ColStaffID),
			ChineseName:      get(ColChineseName),
			EnglishName:      get(ColEnglishName),
			Email:            leave.NormalizeEmail(get(ColEmail)),
			Managers:         managers,
			OnboardDate:      get(ColOnboardDate),
			YearsOfService:   parseNumber(get(ColYearsOfService)),
			AnnualLeaveQuota: parseNumber(get(ColAnnualLeaveQuota)),
			SickLeaveQuota:   parseNumber(get(ColSickLeaveQuota)),
		})
	}
	return employees, nil
}

var (
	leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)`)
	groupedNumber = regexp.MustCompile(`^([+-]?\d{1,3}(?:,\d{3})+)(?:[^\d,]|$)`)
)

// parseNumber reads the leading number of a cell. Commas are dropped only
// when they group thousands, so "1,250.5" is 1250.5 and "10,5" is 10.
// Anything else reads as 0.
func parseNumber(s string) float64 {
	if m := groupedNumber.FindStringSubmatch(s); m != nil {
		s = strings.ReplaceAll(m[1], ",", "") + s[len(m[1]):]
	}
	match := leadingNumber.FindString(s)
	if match == "" {
		return 0
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return v
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
