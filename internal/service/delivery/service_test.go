package delivery

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/leave-dashboard-go/internal/domain/delivery"
	"github.com/cmlabs-hris/leave-dashboard-go/internal/domain/leave"
	"github.com/cmlabs-hris/leave-dashboard-go/internal/pkg/email"
	"github.com/cmlabs-hris/leave-dashboard-go/internal/pkg/sse"
	"github.com/cmlabs-hris/leave-dashboard-go/internal/pkg/storage"
	"github.com/cmlabs-hris/leave-dashboard-go/internal/pkg/validator"
	"github.com/cmlabs-hris/leave-dashboard-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReports struct {
	result leave.GenerateResult
	err    error
}

func (f *fakeReports) Generate(ctx context.Context) (leave.GenerateResult, error) {
	return f.result, f.err
}

func (f *fakeReports) Summaries(ctx context.Context) ([]leave.RequesterSummary, error) {
	return nil, nil
}

func (f *fakeReports) FindByStaffID(ctx context.Context, staffID string) (leave.LeaveReport, error) {
	return leave.LeaveReport{}, leave.ErrEmployeeNotFound
}

type fakeCharts struct {
	err error
}

func (f fakeCharts) Render(ctx context.Context, name string, series leave.LeaveSeries) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://quickchart.io/chart?c=" + name, nil
}

type fakeMailer struct {
	mu       sync.Mutex
	sent     []email.Message
	rendered []email.LeaveSummaryData
	failFor  map[string]error
}

func (f *fakeMailer) RenderLeaveSummary(data email.LeaveSummaryData) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rendered = append(f.rendered, data)
	return "<p>" + data.Name + "</p>", nil
}

func (f *fakeMailer) Send(ctx context.Context, msg email.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[msg.To]; ok {
		return "", err
	}
	f.sent = append(f.sent, msg)
	return "<id-" + msg.To + ">", nil
}

func fakePDF(report leave.LeaveReport, at time.Time) ([]byte, error) {
	return []byte("%PDF-" + report.User.Name), nil
}

var fixedNow = time.Date(2024, time.March, 31, 9, 0, 0, 0, time.UTC)

func testReport(name, staffID, mail string, managers ...string) leave.LeaveReport {
	return leave.LeaveReport{
		ID: "r-" + staffID,
		User: leave.ReportUser{
			Name: name,
			EmployeeRecord: leave.EmployeeRecord{
				StaffID:  staffID,
				Email:    mail,
				Managers: managers,
			},
		},
		Stats: leave.ReportStats{
			LeaveTaken: map[string]float64{leave.TypeAnnual: 20, leave.TypeWFH: 4},
			QuotaSummary: leave.QuotaSummary{
				Remainder: map[string]float64{leave.TypeAnnual: -4, leave.TypeSick: 40},
			},
		},
		ChartConfig: leave.LeaveSeries{
			Labels:   []string{"2024-03-05"},
			Datasets: []leave.Dataset{{Label: leave.TypeAnnual, Data: []float64{8}}},
		},
	}
}

type testDeps struct {
	reports *fakeReports
	mailer  *fakeMailer
	repo    delivery.Repository
	files   *storage.LocalStorage
}

func newTestService(t *testing.T, cfg Config, charts ChartRenderer) (delivery.Service, *testDeps) {
	t.Helper()

	files, err := storage.NewLocalStorage(t.TempDir(), "http://localhost:8080/files")
	require.NoError(t, err)

	deps := &testDeps{
		reports: &fakeReports{},
		mailer:  &fakeMailer{failFor: map[string]error{}},
		repo:    memory.NewDeliveryRepository(0),
		files:   files,
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return fixedNow }
	}
	svc := NewDeliveryService(deps.reports, charts, deps.mailer, fakePDF, deps.files, deps.repo, cfg)
	return svc, deps
}

func TestSend_Production(t *testing.T) {
	svc, deps := newTestService(t, Config{Mode: delivery.ModeProduction}, fakeCharts{})

	resp, err := svc.Send(context.Background(), delivery.SendRequest{
		LeaveReport: testReport("Alice", "S001", " alice@example.com ", "Boss@Example.com"),
	})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "alice@example.com", resp.SentTo)
	assert.Equal(t, delivery.ModeProduction, resp.Mode)
	assert.Equal(t, "<id-alice@example.com>", resp.MessageID)

	require.Len(t, deps.mailer.sent, 1)
	msg := deps.mailer.sent[0]
	assert.Equal(t, "alice@example.com", msg.To)
	assert.Equal(t, []string{"boss@example.com"}, msg.Cc)
	assert.Equal(t, "March Leave Summary - Alice", msg.Subject)
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "leave-summary-alice-2024-03.pdf", msg.Attachments[0].Filename)

	require.Len(t, deps.mailer.rendered, 1)
	data := deps.mailer.rendered[0]
	assert.Equal(t, "March 2024", data.Period)
	assert.Equal(t, 20.0, data.AnnualTaken)
	assert.Equal(t, -4.0, data.AnnualRemaining)
	assert.Equal(t, 40.0, data.SickRemaining)
	assert.Equal(t, 4.0, data.WFHTaken)

	log, err := svc.List(context.Background(), delivery.ListDeliveriesRequest{})
	require.NoError(t, err)
	require.Len(t, log.Deliveries, 1)
	assert.Equal(t, delivery.StatusSent, log.Deliveries[0].Status)
	assert.Contains(t, log.Deliveries[0].ArchiveURL, "http://localhost:8080/files/summaries/2024-03/")

	ok, err := deps.files.Exists(context.Background(), "summaries/2024-03/"+log.Deliveries[0].ID+".pdf")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSend_DevelopmentRedirect(t *testing.T) {
	svc, deps := newTestService(t, Config{Mode: delivery.ModeDevelopment, TestReceiver: "qa@example.com"}, fakeCharts{})

	resp, err := svc.Send(context.Background(), delivery.SendRequest{
		LeaveReport: testReport("Alice", "S001", "alice@example.com", "boss@example.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, "qa@example.com", resp.SentTo)
	assert.Equal(t, delivery.ModeDevelopment, resp.Mode)

	msg := deps.mailer.sent[0]
	assert.Equal(t, "qa@example.com", msg.To)
	assert.Equal(t, []string{"qa@example.com"}, msg.Cc)
	assert.Equal(t, "[TEST] March Leave Summary - Alice", msg.Subject)
}

func TestSend_DevelopmentWithoutTestReceiver(t *testing.T) {
	svc, deps := newTestService(t, Config{Mode: delivery.ModeDevelopment}, fakeCharts{})

	_, err := svc.Send(context.Background(), delivery.SendRequest{LeaveReport: testReport("Alice", "S001", "alice@example.com")})
	assert.ErrorIs(t, err, delivery.ErrTestReceiverMissing)
	assert.Empty(t, deps.mailer.sent)
}

func TestSend_Validation(t *testing.T) {
	svc, deps := newTestService(t, Config{Mode: delivery.ModeProduction, RequiredDomain: "@example.com"}, fakeCharts{})

	_, err := svc.Send(context.Background(), delivery.SendRequest{LeaveReport: testReport("Alice", "S001", "alice@other.com")})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "Email must be from @example.com domain", verrs.ToMap()["user.email"])
	assert.Empty(t, deps.mailer.sent)
}

func TestSend_ChartUnavailable(t *testing.T) {
	svc, deps := newTestService(t, Config{Mode: delivery.ModeProduction}, fakeCharts{err: errors.New("status 400")})

	_, err := svc.Send(context.Background(), delivery.SendRequest{LeaveReport: testReport("Alice", "S001", "alice@example.com")})
	assert.ErrorIs(t, err, delivery.ErrChartUnavailable)
	assert.Empty(t, deps.mailer.sent)

	log, err := svc.List(context.Background(), delivery.ListDeliveriesRequest{Status: "failed"})
	require.NoError(t, err)
	require.Len(t, log.Deliveries, 1)
	assert.Contains(t, log.Deliveries[0].Error, "status 400")
}

func TestSend_MailerNotConfigured(t *testing.T) {
	svc, deps := newTestService(t, Config{Mode: delivery.ModeProduction}, fakeCharts{})
	deps.mailer.failFor["alice@example.com"] = email.ErrNotConfigured

	_, err := svc.Send(context.Background(), delivery.SendRequest{LeaveReport: testReport("Alice", "S001", "alice@example.com")})
	assert.ErrorIs(t, err, delivery.ErrMailerNotConfigured)

	log, err := svc.List(context.Background(), delivery.ListDeliveriesRequest{})
	require.NoError(t, err)
	require.Len(t, log.Deliveries, 1)
	assert.Equal(t, delivery.StatusSkipped, log.Deliveries[0].Status)
}

func TestSendAll_ContinuesPastFailures(t *testing.T) {
	svc, deps := newTestService(t, Config{Mode: delivery.ModeProduction, Pacing: time.Millisecond}, fakeCharts{})
	deps.reports.result = leave.GenerateResult{
		Reports: []leave.LeaveReport{
			testReport("Alice", "S001", "alice@example.com"),
			testReport("Bob", "S002", "bob@example.com"),
			testReport("Carol", "S003", ""),
			testReport("Dan", "S004", "dan@example.com"),
		},
		Unresolved: []leave.UnresolvedRequester{{Name: "Ghost", Reason: "not_in_directory"}},
	}
	deps.mailer.failFor["bob@example.com"] = errors.New("550 mailbox unavailable")

	batch, err := svc.SendAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, batch.Total)
	assert.Equal(t, 2, batch.Sent)
	assert.Equal(t, 2, batch.Failed)
	assert.Equal(t, 1, batch.Unresolved)
	require.Len(t, batch.Results, 4)
	assert.Equal(t, delivery.StatusSent, batch.Results[0].Status)
	assert.Equal(t, delivery.StatusFailed, batch.Results[1].Status)
	assert.Contains(t, batch.Results[1].Error, "550")
	assert.Equal(t, delivery.StatusFailed, batch.Results[2].Status)
	assert.Equal(t, delivery.StatusSent, batch.Results[3].Status)

	assert.Len(t, deps.mailer.sent, 2)

	logged, total, err := deps.repo.List(context.Background(), delivery.ListDeliveriesRequest{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, logged, 4)

	carol, _, err := deps.repo.List(context.Background(), delivery.ListDeliveriesRequest{Page: 1, PageSize: 20, StaffID: "S003"})
	require.NoError(t, err)
	require.Len(t, carol, 1)
	assert.Equal(t, delivery.StatusFailed, carol[0].Status)
	assert.Equal(t, "Carol", carol[0].EmployeeName)
	assert.NotEmpty(t, carol[0].Error)
}

func TestSendAll_PublishesProgress(t *testing.T) {
	hub := sse.NewHub()
	events, cleanup := hub.Subscribe(delivery.ProgressTopic)
	defer cleanup()

	svc, deps := newTestService(t, Config{Mode: delivery.ModeProduction, Events: hub}, fakeCharts{})
	deps.reports.result = leave.GenerateResult{
		Reports: []leave.LeaveReport{
			testReport("Alice", "S001", "alice@example.com"),
			testReport("Bob", "S002", "bob@example.com"),
		},
	}

	_, err := svc.SendAll(context.Background())
	require.NoError(t, err)

	var names []string
	for len(events) > 0 {
		names = append(names, (<-events).Event)
	}
	assert.Equal(t, []string{
		delivery.EventBatchStarted,
		delivery.EventBatchRecipient,
		delivery.EventBatchRecipient,
		delivery.EventBatchCompleted,
	}, names)
}

func TestSendAll_GenerateFailure(t *testing.T) {
	svc, deps := newTestService(t, Config{Mode: delivery.ModeProduction}, fakeCharts{})
	deps.reports.err = leave.ErrUpstreamFetch

	_, err := svc.SendAll(context.Background())
	assert.ErrorIs(t, err, leave.ErrUpstreamFetch)
}

func TestSendAll_Cancelled(t *testing.T) {
	svc, deps := newTestService(t, Config{Mode: delivery.ModeProduction, Pacing: time.Hour}, fakeCharts{})
	deps.reports.result = leave.GenerateResult{
		Reports: []leave.LeaveReport{
			testReport("Alice", "S001", "alice@example.com"),
			testReport("Bob", "S002", "bob@example.com"),
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	batch, err := svc.SendAll(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, batch.Sent)
	assert.Len(t, deps.mailer.sent, 1)
}

func TestFileSafe(t *testing.T) {
	assert.Equal(t, "alice-wong", fileSafe(" Alice Wong "))
	assert.Equal(t, "employee", fileSafe("王小明"))
}
