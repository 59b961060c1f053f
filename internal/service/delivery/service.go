package delivery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/leave-dashboard-go/internal/domain/delivery"
	"github.com/cmlabs-hris/leave-dashboard-go/internal/domain/leave"
	"github.com/cmlabs-hris/leave-dashboard-go/internal/pkg/email"
	"github.com/cmlabs-hris/leave-dashboard-go/internal/pkg/storage"
	"github.com/google/uuid"
)

// ChartRenderer turns a leave series into a reachable chart image URL.
type ChartRenderer interface {
	Render(ctx context.Context, name string, series leave.LeaveSeries) (string, error)
}

// PDFRenderer renders the attachment sent with every summary.
type PDFRenderer func(report leave.LeaveReport, generatedAt time.Time) ([]byte, error)

// Publisher receives batch progress events.
type Publisher interface {
	Publish(topic string, event string, data interface{})
}

// Config holds delivery service configuration
type Config struct {
	Mode           delivery.Mode
	TestReceiver   string        // development inbox for To and Cc
	RequiredDomain string        // e.g. "@example.com", empty to allow any
	Pacing         time.Duration // pause between batch recipients
	Now            func() time.Time
	Events         Publisher // optional
}

type service struct {
	reports leave.ReportService
	charts  ChartRenderer
	mailer  email.EmailService
	pdf     PDFRenderer
	files   storage.FileStorage
	repo    delivery.Repository
	config  Config

	batchMu sync.Mutex
}

// NewDeliveryService creates the leave summary mailer. files may be nil to
// skip archiving attachments.
func NewDeliveryService(
	reports leave.ReportService,
	charts ChartRenderer,
	mailer email.EmailService,
	pdf PDFRenderer,
	files storage.FileStorage,
	repo delivery.Repository,
	cfg Config,
) delivery.Service {
	if cfg.Mode == "" {
		cfg.Mode = delivery.ModeDevelopment
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Pacing < 0 {
		cfg.Pacing = 0
	}

	return &service{
		reports: reports,
		charts:  charts,
		mailer:  mailer,
		pdf:     pdf,
		files:   files,
		repo:    repo,
		config:  cfg,
	}
}

// Send implements delivery.Service.
func (s *service) Send(ctx context.Context, req delivery.SendRequest) (delivery.SendResponse, error) {
	if err := req.Validate(s.config.RequiredDomain); err != nil {
		return delivery.SendResponse{}, err
	}
	if err := s.checkMode(); err != nil {
		return delivery.SendResponse{}, err
	}
	return s.deliver(ctx, req.LeaveReport)
}

// SendAll implements delivery.Service. Recipients are mailed one at a time
// with a pause between them; a failed recipient never stops the batch.
func (s *service) SendAll(ctx context.Context) (delivery.BatchResponse, error) {
	if !s.batchMu.TryLock() {
		return delivery.BatchResponse{}, delivery.ErrBatchInProgress
	}
	defer s.batchMu.Unlock()

	if err := s.checkMode(); err != nil {
		return delivery.BatchResponse{}, err
	}

	result, err := s.reports.Generate(ctx)
	if err != nil {
		return delivery.BatchResponse{}, err
	}

	batch := delivery.BatchResponse{
		Total:      len(result.Reports),
		Unresolved: len(result.Unresolved),
		Mode:       s.config.Mode,
		Results:    make([]delivery.RecipientResult, 0, len(result.Reports)),
	}
	s.publish(delivery.EventBatchStarted, delivery.BatchStarted{
		Total:      batch.Total,
		Unresolved: batch.Unresolved,
		Mode:       batch.Mode,
	})

	for i, report := range result.Reports {
		if i > 0 && s.config.Pacing > 0 {
			select {
			case <-ctx.Done():
				slog.Warn("Leave summary batch cancelled", "sent", batch.Sent, "failed", batch.Failed, "remaining", len(result.Reports)-i)
				return batch, ctx.Err()
			case <-time.After(s.config.Pacing):
			}
		}

		res := delivery.RecipientResult{
			StaffID: report.User.StaffID,
			Name:    report.User.Name,
			Email:   report.User.Email,
		}

		var sent delivery.SendResponse
		req := delivery.SendRequest{LeaveReport: report}
		err := req.Validate(s.config.RequiredDomain)
		if err == nil {
			sent, err = s.deliver(ctx, report)
		} else {
			s.record(ctx, s.newRecord(report, s.config.Now()), delivery.StatusFailed, err)
		}
		if err != nil {
			res.Status = delivery.StatusFailed
			res.Error = err.Error()
			batch.Failed++
			slog.Error("Leave summary not delivered", "staff_id", report.User.StaffID, "name", report.User.Name, "error", err)
		} else {
			res.Status = delivery.StatusSent
			res.MessageID = sent.MessageID
			batch.Sent++
		}
		batch.Results = append(batch.Results, res)
		s.publish(delivery.EventBatchRecipient, res)
	}

	slog.Info("Leave summary batch finished",
		"total", batch.Total,
		"sent", batch.Sent,
		"failed", batch.Failed,
		"unresolved", batch.Unresolved,
		"mode", batch.Mode,
	)
	s.publish(delivery.EventBatchCompleted, batch)

	return batch, nil
}

func (s *service) publish(event string, data interface{}) {
	if s.config.Events != nil {
		s.config.Events.Publish(delivery.ProgressTopic, event, data)
	}
}

// List implements delivery.Service.
func (s *service) List(ctx context.Context, req delivery.ListDeliveriesRequest) (delivery.ListDeliveriesResponse, error) {
	if err := req.Validate(); err != nil {
		return delivery.ListDeliveriesResponse{}, err
	}

	items, total, err := s.repo.List(ctx, req)
	if err != nil {
		return delivery.ListDeliveriesResponse{}, err
	}

	resp := delivery.ListDeliveriesResponse{
		Deliveries: make([]delivery.DeliveryResponse, 0, len(items)),
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
	}
	for _, d := range items {
		item := delivery.DeliveryResponse{
			ID:           d.ID,
			StaffID:      d.StaffID,
			EmployeeName: d.EmployeeName,
			Recipient:    d.Recipient,
			Cc:           d.Cc,
			Subject:      d.Subject,
			Mode:         d.Mode,
			Status:       d.Status,
			MessageID:    d.MessageID,
			ChartURL:     d.ChartURL,
			Error:        d.Error,
			CreatedAt:    d.CreatedAt,
		}
		if d.ArchivePath != "" && s.files != nil {
			item.ArchiveURL = s.files.URL(d.ArchivePath)
		}
		resp.Deliveries = append(resp.Deliveries, item)
	}

	return resp, nil
}

func (s *service) checkMode() error {
	if s.config.Mode == delivery.ModeDevelopment && s.config.TestReceiver == "" {
		return delivery.ErrTestReceiverMissing
	}
	return nil
}

func (s *service) newRecord(report leave.LeaveReport, now time.Time) *delivery.Delivery {
	to, cc := s.recipients(report.User)
	return &delivery.Delivery{
		ID:           uuid.New().String(),
		StaffID:      report.User.StaffID,
		EmployeeName: report.User.Name,
		Recipient:    to,
		Cc:           cc,
		Subject:      s.subject(report.User.Name, now),
		Mode:         s.config.Mode,
		CreatedAt:    now,
	}
}

func (s *service) deliver(ctx context.Context, report leave.LeaveReport) (delivery.SendResponse, error) {
	now := s.config.Now()
	record := s.newRecord(report, now)

	chartURL, err := s.charts.Render(ctx, report.User.Name, report.ChartConfig)
	if err != nil {
		err = fmt.Errorf("%w: %w", delivery.ErrChartUnavailable, err)
		s.record(ctx, record, delivery.StatusFailed, err)
		return delivery.SendResponse{}, err
	}
	record.ChartURL = chartURL

	html, err := s.mailer.RenderLeaveSummary(summaryData(report, chartURL, now))
	if err != nil {
		s.record(ctx, record, delivery.StatusFailed, err)
		return delivery.SendResponse{}, err
	}

	msg := email.Message{
		To:      record.Recipient,
		Cc:      record.Cc,
		Subject: record.Subject,
		HTML:    html,
	}
	if attachment, key := s.attachment(ctx, report, record.ID, now); attachment != nil {
		msg.Attachments = append(msg.Attachments, *attachment)
		record.ArchivePath = key
	}

	messageID, err := s.mailer.Send(ctx, msg)
	if err != nil {
		if errors.Is(err, email.ErrNotConfigured) {
			err = delivery.ErrMailerNotConfigured
			s.record(ctx, record, delivery.StatusSkipped, err)
			return delivery.SendResponse{}, err
		}
		s.record(ctx, record, delivery.StatusFailed, err)
		return delivery.SendResponse{}, err
	}

	record.MessageID = messageID
	s.record(ctx, record, delivery.StatusSent, nil)

	return delivery.SendResponse{
		Success:   true,
		MessageID: messageID,
		SentTo:    record.Recipient,
		Mode:      s.config.Mode,
		ChartURL:  chartURL,
	}, nil
}

// recipients redirects To and Cc to the test inbox outside production.
func (s *service) recipients(user leave.ReportUser) (string, []string) {
	if s.config.Mode == delivery.ModeDevelopment {
		return s.config.TestReceiver, []string{s.config.TestReceiver}
	}

	cc := make([]string, 0, len(user.Managers))
	for _, m := range user.Managers {
		if m = leave.NormalizeEmail(m); m != "" {
			cc = append(cc, m)
		}
	}
	return strings.TrimSpace(user.Email), cc
}

func (s *service) subject(name string, now time.Time) string {
	subject := fmt.Sprintf("%s Leave Summary - %s", now.Format("January"), name)
	if s.config.Mode == delivery.ModeDevelopment {
		subject = "[TEST] " + subject
	}
	return subject
}

// attachment renders the PDF summary and archives it. Failures are logged and
// the email goes out without the attachment.
func (s *service) attachment(ctx context.Context, report leave.LeaveReport, deliveryID string, now time.Time) (*email.Attachment, string) {
	if s.pdf == nil {
		return nil, ""
	}

	data, err := s.pdf(report, now)
	if err != nil {
		slog.Warn("Failed to render leave summary PDF", "name", report.User.Name, "error", err)
		return nil, ""
	}

	filename := fmt.Sprintf("leave-summary-%s-%s.pdf", fileSafe(report.User.Name), now.Format("2006-01"))
	attachment := &email.Attachment{
		Filename:    filename,
		ContentType: "application/pdf",
		Data:        data,
	}

	if s.files == nil {
		return attachment, ""
	}
	key, err := s.files.Upload(ctx, bytes.NewReader(data), fmt.Sprintf("summaries/%s/%s.pdf", now.Format("2006-01"), deliveryID), "application/pdf")
	if err != nil {
		slog.Warn("Failed to archive leave summary PDF", "name", report.User.Name, "error", err)
		return attachment, ""
	}
	return attachment, key
}

func (s *service) record(ctx context.Context, d *delivery.Delivery, status delivery.Status, cause error) {
	d.Status = status
	if cause != nil {
		d.Error = cause.Error()
	}
	if err := s.repo.Create(ctx, d); err != nil {
		slog.Error("Failed to record delivery", "delivery_id", d.ID, "status", status, "error", err)
	}
}

func summaryData(report leave.LeaveReport, chartURL string, now time.Time) email.LeaveSummaryData {
	return email.LeaveSummaryData{
		Name:            report.User.Name,
		Period:          now.Format("January 2006"),
		AnnualTaken:     report.Stats.LeaveTaken[leave.TypeAnnual],
		AnnualRemaining: report.Stats.Remainder[leave.TypeAnnual],
		SickTaken:       report.Stats.LeaveTaken[leave.TypeSick],
		SickRemaining:   report.Stats.Remainder[leave.TypeSick],
		WFHTaken:        report.Stats.LeaveTaken[leave.TypeWFH],
		ChartURL:        chartURL,
	}
}

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9]+`)

func fileSafe(name string) string {
	safe := strings.Trim(unsafeFileChars.ReplaceAllString(name, "-"), "-")
	if safe == "" {
		return "employee"
	}
	return strings.ToLower(safe)
}
