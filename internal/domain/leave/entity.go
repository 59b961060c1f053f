package leave

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Well-known leave types.
const (
	TypeAnnual   = "Annual Leave"
	TypeSick     = "Sick Leave"
	TypePersonal = "Personal Leave"
	TypeWFH      = "WFH"
	TypeOther    = "Other"
)

// HoursPerDay converts day-based roster quotas to hours.
const HoursPerDay = 8

// Custom field names on a leave task.
const (
	FieldRequester = "Name"
	FieldDate      = "Leave Date"
	FieldType      = "Leave Type"
	FieldHours     = "Hours Taken"
)

// QuotaTypes are the leave types with an organization-defined day allotment.
var QuotaTypes = []string{TypeAnnual, TypeSick}

// IsQuotaType reports whether leaveType carries a roster quota.
func IsQuotaType(leaveType string) bool {
	for _, t := range QuotaTypes {
		if t == leaveType {
			return true
		}
	}
	return false
}

// Attribute is one named custom field on a task. HasValue is false when the
// source reported the field without a display value.
type Attribute struct {
	Name     string
	Value    string
	HasValue bool
}

// RawLeaveTask is a leave request as recorded in the task tracker.
type RawLeaveTask struct {
	ID         string
	Attributes []Attribute
}

// Field returns the value of the first attribute whose trimmed name matches
// name case-insensitively. ok is false when no attribute matches or the first
// match has no non-empty value.
func (t RawLeaveTask) Field(name string) (value string, ok bool) {
	target := strings.ToLower(strings.TrimSpace(name))
	for _, attr := range t.Attributes {
		if strings.ToLower(strings.TrimSpace(attr.Name)) != target {
			continue
		}
		if !attr.HasValue || attr.Value == "" {
			return "", false
		}
		return attr.Value, true
	}
	return "", false
}

// DirectoryUser links a task tracker display name to an email address.
type DirectoryUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// EmployeeRecord is an authoritative roster entry. Email is normalized.
type EmployeeRecord struct {
	StaffID          string   `json:"staff_id"`
	ChineseName      string   `json:"chinese_name"`
	EnglishName      string   `json:"english_name"`
	Email            string   `json:"email"`
	Managers         []string `json:"managers"`
	OnboardDate      string   `json:"onboard_date"`
	YearsOfService   float64  `json:"years_of_service"`
	AnnualLeaveQuota float64  `json:"annual_leave_quota"`
	SickLeaveQuota   float64  `json:"sick_leave_quota"`
}

// QuotaDays returns the day quota for a quota-bearing leave type.
func (e EmployeeRecord) QuotaDays(leaveType string) float64 {
	switch leaveType {
	case TypeAnnual:
		return e.AnnualLeaveQuota
	case TypeSick:
		return e.SickLeaveQuota
	default:
		return 0
	}
}

// NormalizeEmail trims and lower-cases an email. It is the only join key
// between directory and roster data.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeName is the comparison form of a display name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// AggregatedLeave holds requester -> date -> type -> hours and the set of
// types each requester used. Hours are kept exact until they are charted.
type AggregatedLeave struct {
	Buckets map[string]map[string]map[string]decimal.Decimal
	Types   map[string]map[string]struct{}
}

// Requesters returns every requester present in the aggregate.
func (a AggregatedLeave) Requesters() []string {
	names := make([]string, 0, len(a.Buckets))
	for name := range a.Buckets {
		names = append(names, name)
	}
	return names
}

// Dataset is one leave type's dense series aligned to LeaveSeries.Labels.
type Dataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BackgroundColor string    `json:"background_color"`
}

// LeaveSeries is the chart-ready view of one requester's leave.
type LeaveSeries struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// RequesterSummary is one requester's series and per-type totals.
type RequesterSummary struct {
	UserName   string             `json:"user_name"`
	TotalHours float64            `json:"total_hours"`
	LeaveTaken map[string]float64 `json:"leave_taken"`
	Chart      LeaveSeries        `json:"chart_data"`
}

// QuotaStat is the utilization of one quota-bearing leave type, in hours.
type QuotaStat struct {
	Used       float64 `json:"used"`
	Total      float64 `json:"total"`
	Remainder  float64 `json:"remainder"`
	Percentage float64 `json:"percentage"`
	IsOver     bool    `json:"is_over"`
}

// OtherLeave is a leave type without a quota that was used.
type OtherLeave struct {
	Name  string  `json:"name"`
	Hours float64 `json:"hours"`
}

// QuotaSummary is the QuotaCalculator output for one employee.
type QuotaSummary struct {
	Quotas     map[string]QuotaStat `json:"quotas"`
	Remainder  map[string]float64   `json:"remainder"`
	Others     []OtherLeave         `json:"others"`
	OtherTotal float64              `json:"other_total"`
	TotalTaken float64              `json:"total_taken"`
}

// ReportUser is the merged identity shown on a report.
type ReportUser struct {
	Name string `json:"name"`
	EmployeeRecord
}

// ReportStats combines leave taken with quota utilization.
type ReportStats struct {
	LeaveTaken map[string]float64 `json:"leave_taken"`
	QuotaSummary
}

// LeaveReport is the per-employee result of one aggregation run.
type LeaveReport struct {
	ID          string      `json:"id"`
	User        ReportUser  `json:"user"`
	Stats       ReportStats `json:"stats"`
	ChartConfig LeaveSeries `json:"chart_config"`
}

// UnresolvedRequester is a requester excluded from the report.
type UnresolvedRequester struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// GenerateResult is the output of a full pipeline run.
type GenerateResult struct {
	Reports      []LeaveReport         `json:"reports"`
	Unresolved   []UnresolvedRequester `json:"unresolved"`
	SkippedTasks int                   `json:"skipped_tasks"`
	TotalTasks   int                   `json:"total_tasks"`
}
