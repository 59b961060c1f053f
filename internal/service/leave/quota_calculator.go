package leave

import (
	"sort"

	"github.com/cmlabs-hris/leave-dashboard-go/internal/domain/leave"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type QuotaCalculator struct {
	hoursPerDay decimal.Decimal
}

func NewQuotaCalculator() *QuotaCalculator {
	return &QuotaCalculator{hoursPerDay: decimal.NewFromInt(leave.HoursPerDay)}
}

// Calculate converts the employee's day quotas to hours and compares them
// with the hours taken per leave type.
func (c *QuotaCalculator) Calculate(emp leave.EmployeeRecord, leaveTaken map[string]float64) leave.QuotaSummary {
	summary := leave.QuotaSummary{
		Quotas:    make(map[string]leave.QuotaStat, len(leave.QuotaTypes)),
		Remainder: make(map[string]float64, len(leave.QuotaTypes)),
		Others:    []leave.OtherLeave{},
	}

	for _, t := range leave.QuotaTypes {
		stat := c.QuotaStat(emp.QuotaDays(t), leaveTaken[t])
		summary.Quotas[t] = stat
		summary.Remainder[t] = stat.Remainder
	}

	names := make([]string, 0, len(leaveTaken))
	for name := range leaveTaken {
		names = append(names, name)
	}
	sort.Strings(names)

	totalTaken, otherTotal := decimal.Zero, decimal.Zero
	for _, name := range names {
		hours := decimal.NewFromFloat(leaveTaken[name])
		totalTaken = totalTaken.Add(hours)
		if leave.IsQuotaType(name) || !hours.IsPositive() {
			continue
		}
		summary.Others = append(summary.Others, leave.OtherLeave{Name: name, Hours: hours.InexactFloat64()})
		otherTotal = otherTotal.Add(hours)
	}
	summary.TotalTaken = totalTaken.InexactFloat64()
	summary.OtherTotal = otherTotal.InexactFloat64()

	return summary
}

// QuotaStat computes utilization for a quota expressed in days against hours
// used. A zero quota yields a zero percentage.
func (c *QuotaCalculator) QuotaStat(quotaDays, used float64) leave.QuotaStat {
	usedHours := decimal.NewFromFloat(used)
	total := decimal.NewFromFloat(quotaDays).Mul(c.hoursPerDay)
	remainder := total.Sub(usedHours)

	percentage := decimal.Zero
	if total.IsPositive() {
		percentage = usedHours.Div(total).Mul(hundred)
	}

	return leave.QuotaStat{
		Used:       usedHours.InexactFloat64(),
		Total:      total.InexactFloat64(),
		Remainder:  remainder.InexactFloat64(),
		Percentage: percentage.InexactFloat64(),
		IsOver:     remainder.IsNegative(),
	}
}
