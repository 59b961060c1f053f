package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/leave-dashboard-go/internal/domain/leave"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type ReportServiceImpl struct {
	tasks       leave.TaskSource
	directory   leave.DirectorySource
	roster      leave.RosterSource
	calculator  *QuotaCalculator
	projectID   string
	workspaceID string
}

func NewReportService(
	tasks leave.TaskSource,
	directory leave.DirectorySource,
	roster leave.RosterSource,
	calculator *QuotaCalculator,
	projectID string,
	workspaceID string,
) leave.ReportService {
	return &ReportServiceImpl{
		tasks:       tasks,
		directory:   directory,
		roster:      roster,
		calculator:  calculator,
		projectID:   projectID,
		workspaceID: workspaceID,
	}
}

// Generate implements leave.ReportService.
func (s *ReportServiceImpl) Generate(ctx context.Context) (leave.GenerateResult, error) {
	var (
		tasks []leave.RawLeaveTask
		users []leave.DirectoryUser
	)

	// Task and directory data come from the same service and are independent.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tasks, err = s.tasks.ListLeaveTasks(gctx, s.projectID)
		if err != nil {
			return fmt.Errorf("%w: tasks: %w", leave.ErrUpstreamFetch, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		users, err = s.directory.ListUsers(gctx, s.workspaceID)
		if err != nil {
			return fmt.Errorf("%w: directory: %w", leave.ErrUpstreamFetch, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return leave.GenerateResult{}, err
	}

	employees, err := s.roster.ListEmployees(ctx)
	if err != nil {
		return leave.GenerateResult{}, fmt.Errorf("%w: roster: %w", leave.ErrUpstreamFetch, err)
	}

	result := s.BuildReports(tasks, users, employees)
	if len(result.Unresolved) > 0 {
		slog.Warn("Leave requesters excluded from report",
			"unresolved_count", len(result.Unresolved),
			"report_count", len(result.Reports),
		)
	}
	slog.Info("Leave report generated",
		"tasks", result.TotalTasks,
		"skipped_tasks", result.SkippedTasks,
		"reports", len(result.Reports),
	)

	return result, nil
}

// BuildReports runs the pure part of the pipeline over already fetched data.
func (s *ReportServiceImpl) BuildReports(tasks []leave.RawLeaveTask, users []leave.DirectoryUser, employees []leave.EmployeeRecord) leave.GenerateResult {
	agg, skipped := AggregateWithStats(tasks)
	summaries := BuildSeries(agg)
	resolver := NewIdentityResolver(users, employees)

	result := leave.GenerateResult{
		Reports:      make([]leave.LeaveReport, 0, len(summaries)),
		Unresolved:   []leave.UnresolvedRequester{},
		SkippedTasks: skipped,
		TotalTasks:   len(tasks),
	}

	for _, summary := range summaries {
		emp, err := resolver.Resolve(summary.UserName)
		if err != nil {
			slog.Debug("Leave requester unresolved", "requester", summary.UserName, "error", err)
			result.Unresolved = append(result.Unresolved, leave.UnresolvedRequester{
				Name:   summary.UserName,
				Reason: unresolvedReason(err),
			})
			continue
		}

		result.Reports = append(result.Reports, leave.LeaveReport{
			ID: uuid.NewString(),
			User: leave.ReportUser{
				Name:           summary.UserName,
				EmployeeRecord: emp,
			},
			Stats: leave.ReportStats{
				LeaveTaken:   summary.LeaveTaken,
				QuotaSummary: s.calculator.Calculate(emp, summary.LeaveTaken),
			},
			ChartConfig: summary.Chart,
		})
	}

	return result
}

// Summaries implements leave.ReportService.
func (s *ReportServiceImpl) Summaries(ctx context.Context) ([]leave.RequesterSummary, error) {
	tasks, err := s.tasks.ListLeaveTasks(ctx, s.projectID)
	if err != nil {
		return nil, fmt.Errorf("%w: tasks: %w", leave.ErrUpstreamFetch, err)
	}
	return BuildSeries(Aggregate(tasks)), nil
}

// FindByStaffID implements leave.ReportService.
func (s *ReportServiceImpl) FindByStaffID(ctx context.Context, staffID string) (leave.LeaveReport, error) {
	result, err := s.Generate(ctx)
	if err != nil {
		return leave.LeaveReport{}, err
	}
	for _, report := range result.Reports {
		if strings.EqualFold(strings.TrimSpace(report.User.StaffID), strings.TrimSpace(staffID)) {
			return report, nil
		}
	}
	return leave.LeaveReport{}, leave.ErrEmployeeNotFound
}

func unresolvedReason(err error) string {
	switch {
	case errors.Is(err, leave.ErrAmbiguousRequester):
		return "ambiguous_directory_name"
	case errors.Is(err, leave.ErrRequesterNotInDirectory):
		return "not_in_directory"
	case errors.Is(err, leave.ErrEmployeeNotInRoster):
		return "not_in_roster"
	default:
		return "unknown"
	}
}
