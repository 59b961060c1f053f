package email

import (
	"bytes"
	"context"
	"embed"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/leave-dashboard-go/internal/config"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxRetries = 3

var ErrNotConfigured = errors.New("mailer not configured")

// EmailService defines the interface for sending emails
type EmailService interface {
	RenderLeaveSummary(data LeaveSummaryData) (string, error)
	Send(ctx context.Context, msg Message) (messageID string, err error)
}

// Attachment is a file sent alongside the HTML body.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Message struct {
	To          string
	Cc          []string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// LeaveSummaryData feeds templates/leave_summary.html. Values are hours.
type LeaveSummaryData struct {
	Name            string
	Period          string
	AnnualTaken     float64
	AnnualRemaining float64
	SickTaken       float64
	SickRemaining   float64
	WFHTaken        float64
	ChartURL        string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type emailServiceImpl struct {
	cfg       config.SMTPConfig
	templates *template.Template
	send      sendFunc
	backoff   time.Duration
}

// NewEmailService creates a new email service instance
func NewEmailService(cfg config.SMTPConfig) (EmailService, error) {
	return newEmailService(cfg, smtp.SendMail, time.Second)
}

func newEmailService(cfg config.SMTPConfig, send sendFunc, backoff time.Duration) (*emailServiceImpl, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"hours":       formatHours,
		"statusColor": statusColor,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &emailServiceImpl{
		cfg:       cfg,
		templates: tmpl,
		send:      send,
		backoff:   backoff,
	}, nil
}

// RenderLeaveSummary renders the monthly leave summary body.
func (s *emailServiceImpl) RenderLeaveSummary(data LeaveSummaryData) (string, error) {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "leave_summary.html", data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return body.String(), nil
}

// Send delivers msg over SMTP, retrying with exponential backoff.
func (s *emailServiceImpl) Send(ctx context.Context, msg Message) (string, error) {
	if s.cfg.Host == "" {
		slog.Warn("SMTP not configured, skipping email send", "to", msg.To, "subject", msg.Subject)
		return "", ErrNotConfigured
	}

	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), domainOf(s.cfg.From))
	raw, err := s.build(msg, messageID)
	if err != nil {
		return "", err
	}

	recipients := append([]string{msg.To}, msg.Cc...)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := s.send(addr, auth, s.cfg.From, recipients, raw)
		if err == nil {
			slog.Info("Email sent successfully", "to", msg.To, "cc", msg.Cc, "subject", msg.Subject, "attempt", attempt)
			return messageID, nil
		}

		lastErr = err
		slog.Error("Failed to send email",
			"to", msg.To,
			"subject", msg.Subject,
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err,
		)

		// 1s, 2s, 4s
		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(s.backoff * time.Duration(1<<(attempt-1))):
			}
		}
	}

	return "", fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}

func (s *emailServiceImpl) build(msg Message, messageID string) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	headers := fmt.Sprintf("From: %s <%s>\r\n", mime.QEncoding.Encode("UTF-8", s.cfg.FromName), s.cfg.From)
	headers += fmt.Sprintf("To: %s\r\n", msg.To)
	if len(msg.Cc) > 0 {
		headers += fmt.Sprintf("Cc: %s\r\n", strings.Join(msg.Cc, ", "))
	}
	headers += fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", msg.Subject))
	headers += fmt.Sprintf("Message-ID: %s\r\n", messageID)
	headers += fmt.Sprintf("Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	headers += "MIME-Version: 1.0\r\n"
	headers += fmt.Sprintf("Content-Type: multipart/mixed; boundary=%s\r\n", strconv.Quote(mw.Boundary()))
	headers += "\r\n"

	htmlPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {`text/html; charset="UTF-8"`},
		"Content-Transfer-Encoding": {"base64"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create html part: %w", err)
	}
	if err := writeBase64(htmlPart, []byte(msg.HTML)); err != nil {
		return nil, err
	}

	for _, a := range msg.Attachments {
		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {fmt.Sprintf("%s; name=%q", a.ContentType, a.Filename)},
			"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", a.Filename)},
			"Content-Transfer-Encoding": {"base64"},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create attachment part: %w", err)
		}
		if err := writeBase64(part, a.Data); err != nil {
			return nil, err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close message: %w", err)
	}

	return append([]byte(headers), buf.Bytes()...), nil
}

// writeBase64 wraps encoded lines at 76 characters.
func writeBase64(w io.Writer, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 76 {
		if _, err := w.Write([]byte(encoded[:76] + "\r\n")); err != nil {
			return fmt.Errorf("failed to write part: %w", err)
		}
		encoded = encoded[76:]
	}
	if _, err := w.Write([]byte(encoded + "\r\n")); err != nil {
		return fmt.Errorf("failed to write part: %w", err)
	}
	return nil
}

func formatHours(v float64) string {
	return decimal.NewFromFloat(v).Round(2).String()
}

func statusColor(v float64) string {
	if v < 0 {
		return "#ef4444"
	}
	return "#666"
}

func domainOf(addr string) string {
	if i := strings.LastIndex(addr, "@"); i >= 0 && i < len(addr)-1 {
		return addr[i+1:]
	}
	return "localhost"
}
