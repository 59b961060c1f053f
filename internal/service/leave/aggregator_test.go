package leave

import (
	"testing"

	"github.com/cmlabs-hris/leave-dashboard-go/internal/domain/leave"
	"github.com/stretchr/testify/assert"
)

func TestAggregate_SumsSameBucket(t *testing.T) {
	agg := Aggregate([]leave.RawLeaveTask{
		newTask("Alice", "2024-03-05T09:00:00Z", leave.TypeAnnual, "4"),
		newTask("Alice", "2024-03-05T14:00:00Z", leave.TypeAnnual, "4"),
		newTask("Alice", "2024-03-06", leave.TypeWFH, "8"),
		newTask("Bob", "2024-03-05", "", "2"),
	})

	assert.Equal(t, map[string]map[string]map[string]float64{
		"Alice": {
			"2024-03-05": {leave.TypeAnnual: 8},
			"2024-03-06": {leave.TypeWFH: 8},
		},
		"Bob": {
			"2024-03-05": {leave.TypeOther: 2},
		},
	}, bucketHours(agg))
	assert.Equal(t, map[string]struct{}{leave.TypeAnnual: {}, leave.TypeWFH: {}}, agg.Types["Alice"])
	assert.Equal(t, map[string]struct{}{leave.TypeOther: {}}, agg.Types["Bob"])
}

func TestAggregate_MalformedTasksAreIgnored(t *testing.T) {
	valid := []leave.RawLeaveTask{
		newTask("Alice", "2024-03-05", leave.TypeAnnual, "8"),
		newTask("Bob", "2024-03-07", leave.TypeSick, "3"),
	}
	malformed := []leave.RawLeaveTask{
		newTask("", "2024-03-05", leave.TypeAnnual, "8"),
		newTask("Alice", "", leave.TypeAnnual, "8"),
		newTask("Alice", "2024-03-05", leave.TypeAnnual, ""),
		{ID: "empty"},
	}

	mixed := append([]leave.RawLeaveTask{malformed[0]}, valid[0])
	mixed = append(mixed, malformed[1:]...)
	mixed = append(mixed, valid[1])

	withMalformed, skipped := AggregateWithStats(mixed)
	assert.Equal(t, len(malformed), skipped)
	assert.Equal(t, bucketHours(Aggregate(valid)), bucketHours(withMalformed))
	assert.Equal(t, Aggregate(valid).Types, withMalformed.Types)
}

func TestAggregate_UnparsableHoursCountAsZero(t *testing.T) {
	agg := Aggregate([]leave.RawLeaveTask{
		newTask("Alice", "2024-03-05", leave.TypeWFH, "n/a"),
	})

	assert.True(t, agg.Buckets["Alice"]["2024-03-05"][leave.TypeWFH].IsZero())
	assert.Contains(t, agg.Types["Alice"], leave.TypeWFH)
}

func TestAggregate_Empty(t *testing.T) {
	agg := Aggregate(nil)
	assert.Empty(t, agg.Buckets)
	assert.Empty(t, agg.Requesters())
}

func TestAggregate_FractionalHoursSumExactly(t *testing.T) {
	agg := Aggregate([]leave.RawLeaveTask{
		newTask("Alice", "2024-03-05T09:00:00Z", leave.TypeAnnual, "0.1"),
		newTask("Alice", "2024-03-05T13:00:00Z", leave.TypeAnnual, "0.2"),
	})

	assert.Equal(t, "0.3", agg.Buckets["Alice"]["2024-03-05"][leave.TypeAnnual].String())
}
