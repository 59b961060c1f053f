package leave

import (
	"github.com/cmlabs-hris/leave-dashboard-go/internal/domain/leave"
	"github.com/shopspring/decimal"
)

// Aggregate groups tasks by requester, calendar day and leave type, summing
// hours. Tasks missing a requester, date or hours are skipped.
func Aggregate(tasks []leave.RawLeaveTask) leave.AggregatedLeave {
	agg, _ := AggregateWithStats(tasks)
	return agg
}

// AggregateWithStats is Aggregate that also reports how many tasks were
// skipped as malformed.
func AggregateWithStats(tasks []leave.RawLeaveTask) (leave.AggregatedLeave, int) {
	agg := leave.AggregatedLeave{
		Buckets: make(map[string]map[string]map[string]decimal.Decimal),
		Types:   make(map[string]map[string]struct{}),
	}

	skipped := 0
	for _, task := range tasks {
		rec, ok := extractFields(task)
		if !ok {
			skipped++
			continue
		}

		days, ok := agg.Buckets[rec.Requester]
		if !ok {
			days = make(map[string]map[string]decimal.Decimal)
			agg.Buckets[rec.Requester] = days
			agg.Types[rec.Requester] = make(map[string]struct{})
		}

		byType, ok := days[rec.Day]
		if !ok {
			byType = make(map[string]decimal.Decimal)
			days[rec.Day] = byType
		}

		byType[rec.Type] = byType[rec.Type].Add(rec.Hours)
		agg.Types[rec.Requester][rec.Type] = struct{}{}
	}

	return agg, skipped
}
