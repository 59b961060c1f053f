package leave

import (
	"regexp"
	"strings"

	"github.com/cmlabs-hris/leave-dashboard-go/internal/domain/leave"
	"github.com/shopspring/decimal"
)

// extractedLeave is the typed view of one well-formed leave task.
type extractedLeave struct {
	Requester string
	Day       string
	Type      string
	Hours     decimal.Decimal
}

// extractFields pulls the four leave fields out of a task. ok is false when
// the requester, date or hours field is missing.
func extractFields(task leave.RawLeaveTask) (extractedLeave, bool) {
	requester, okName := task.Field(leave.FieldRequester)
	date, okDate := task.Field(leave.FieldDate)
	hours, okHours := task.Field(leave.FieldHours)
	if !okName || !okDate || !okHours {
		return extractedLeave{}, false
	}

	leaveType, ok := task.Field(leave.FieldType)
	if !ok {
		leaveType = leave.TypeOther
	}

	return extractedLeave{
		Requester: requester,
		Day:       truncateDay(date),
		Type:      leaveType,
		Hours:     parseHours(hours),
	}, true
}

// truncateDay keeps the first ten characters of a date or timestamp, which
// is the calendar day for ISO input. Time of day is discarded.
func truncateDay(date string) string {
	runes := []rune(date)
	if len(runes) > 10 {
		return string(runes[:10])
	}
	return date
}

var leadingFloat = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// parseHours reads the leading decimal number of s, ignoring leading
// whitespace and any trailing text. Unparsable input yields 0.
func parseHours(s string) decimal.Decimal {
	match := leadingFloat.FindString(strings.TrimSpace(s))
	if match == "" {
		return decimal.Zero
	}
	v, err := decimal.NewFromString(match)
	if err != nil {
		return decimal.Zero
	}
	return v
}
