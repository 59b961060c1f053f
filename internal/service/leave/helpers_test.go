package leave

import (
	"github.com/cmlabs-hris/leave-dashboard-go/internal/domain/leave"
)

// newTask builds a leave task; empty arguments leave that field out.
func newTask(name, date, leaveType, hours string) leave.RawLeaveTask {
	task := leave.RawLeaveTask{ID: name + "-" + date}
	add := func(field, value string) {
		if value != "" {
			task.Attributes = append(task.Attributes, leave.Attribute{Name: field, Value: value, HasValue: true})
		}
	}
	add(leave.FieldRequester, name)
	add(leave.FieldDate, date)
	add(leave.FieldType, leaveType)
	add(leave.FieldHours, hours)
	return task
}

// bucketHours flattens the aggregate buckets to float hours for comparison.
func bucketHours(agg leave.AggregatedLeave) map[string]map[string]map[string]float64 {
	out := make(map[string]map[string]map[string]float64, len(agg.Buckets))
	for name, days := range agg.Buckets {
		out[name] = make(map[string]map[string]float64, len(days))
		for day, byType := range days {
			out[name][day] = make(map[string]float64, len(byType))
			for t, hours := range byType {
				out[name][day][t] = hours.InexactFloat64()
			}
		}
	}
	return out
}
