package leave

import (
	"context"
)

// TaskSource yields the raw leave tasks of a project.
type TaskSource interface {
	ListLeaveTasks(ctx context.Context, projectID string) ([]RawLeaveTask, error)
}

// DirectorySource yields the users of a workspace.
type DirectorySource interface {
	ListUsers(ctx context.Context, workspaceID string) ([]DirectoryUser, error)
}

// RosterSource yields the authoritative employee roster.
type RosterSource interface {
	ListEmployees(ctx context.Context) ([]EmployeeRecord, error)
}

type ReportService interface {
	// Generate runs the full pipeline: fetch, aggregate, resolve, annotate.
	Generate(ctx context.Context) (GenerateResult, error)
	// Summaries runs the pipeline up to the per-requester series.
	Summaries(ctx context.Context) ([]RequesterSummary, error)
	// FindByStaffID generates the reports and returns the one for staffID.
	FindByStaffID(ctx context.Context, staffID string) (LeaveReport, error)
}
