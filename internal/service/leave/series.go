package leave

import (
	"sort"

	"github.com/cmlabs-hris/leave-dashboard-go/internal/domain/leave"
	"github.com/shopspring/decimal"
)

// DefaultColor is used for leave types without a palette entry.
const DefaultColor = "#9966ff"

var palette = map[string]string{
	leave.TypeAnnual:   "#36a2eb",
	leave.TypeSick:     "#ff9f40",
	leave.TypePersonal: "#4bc0c0",
	leave.TypeWFH:      "#ff6384",
}

// ColorFor returns the display color of a leave type.
func ColorFor(leaveType string) string {
	if c, ok := palette[leaveType]; ok {
		return c
	}
	return DefaultColor
}

// BuildSeries builds the summary of every requester in agg, ordered by name.
func BuildSeries(agg leave.AggregatedLeave) []leave.RequesterSummary {
	names := agg.Requesters()
	sort.Strings(names)

	summaries := make([]leave.RequesterSummary, 0, len(names))
	for _, name := range names {
		summaries = append(summaries, BuildRequesterSeries(name, agg.Buckets[name], agg.Types[name]))
	}
	return summaries
}

// BuildRequesterSeries turns one requester's day buckets into sorted labels
// and one dense, zero-filled dataset per leave type the requester used.
func BuildRequesterSeries(name string, days map[string]map[string]decimal.Decimal, types map[string]struct{}) leave.RequesterSummary {
	dates := make([]string, 0, len(days))
	for day := range days {
		dates = append(dates, day)
	}
	sort.Strings(dates)

	typeNames := make([]string, 0, len(types))
	for t := range types {
		typeNames = append(typeNames, t)
	}
	sort.Strings(typeNames)

	summary := leave.RequesterSummary{
		UserName:   name,
		LeaveTaken: make(map[string]float64, len(typeNames)),
		Chart: leave.LeaveSeries{
			Labels:   dates,
			Datasets: make([]leave.Dataset, 0, len(typeNames)),
		},
	}

	grandTotal := decimal.Zero
	for _, t := range typeNames {
		data := make([]float64, len(dates))
		total := decimal.Zero
		for i, day := range dates {
			hours := days[day][t]
			data[i] = hours.InexactFloat64()
			total = total.Add(hours)
		}

		summary.LeaveTaken[t] = total.InexactFloat64()
		grandTotal = grandTotal.Add(total)
		summary.Chart.Datasets = append(summary.Chart.Datasets, leave.Dataset{
			Label:           t,
			Data:            data,
			BackgroundColor: ColorFor(t),
		})
	}
	summary.TotalHours = grandTotal.InexactFloat64()

	return summary
}
