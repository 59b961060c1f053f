package email

import (
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"net/smtp"
	"strings"
	"testing"

	"github.com/cmlabs-hris/leave-dashboard-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedMail struct {
	addr string
	from string
	to   []string
	raw  []byte
}

func testSMTPConfig() config.SMTPConfig {
	return config.SMTPConfig{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "hr@example.com",
		Password: "secret",
		From:     "hr@example.com",
		FromName: "Leave Summary Automation",
	}
}

func TestRenderLeaveSummary(t *testing.T) {
	svc, err := newEmailService(testSMTPConfig(), nil, 0)
	require.NoError(t, err)

	html, err := svc.RenderLeaveSummary(LeaveSummaryData{
		Name:            "Alice",
		Period:          "March 2024",
		AnnualTaken:     20,
		AnnualRemaining: -4,
		SickTaken:       0,
		SickRemaining:   40,
		WFHTaken:        4.5,
		ChartURL:        "https://quickchart.io/chart?c=%7B%7D&width=600",
	})
	require.NoError(t, err)

	assert.Contains(t, html, "Dear Alice,")
	assert.Contains(t, html, "<strong>March 2024</strong>")
	assert.Contains(t, html, "Annual Leave Taken:</strong> 20 hours")
	assert.Contains(t, html, "<strong>-4.0 hours</strong>")
	assert.Contains(t, html, "<strong>40.0 hours</strong>")
	assert.Contains(t, html, "WFH Taken:</strong> 4.5 hours")
	assert.Equal(t, 1, strings.Count(html, "(Overdrawn)"))
	assert.Contains(t, html, "#ef4444")
	assert.Contains(t, html, `src="https://quickchart.io/chart?c=%7B%7D&amp;width=600"`)
}

func TestFormatHours(t *testing.T) {
	cases := []struct {
		input float64
		want  string
	}{
		{20, "20"},
		{4.5, "4.5"},
		{0.30000000000000004, "0.3"},
		{-4, "-4"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, formatHours(c.input), "formatHours(%v)", c.input)
	}
}

func TestRenderLeaveSummary_NoChart(t *testing.T) {
	svc, err := newEmailService(testSMTPConfig(), nil, 0)
	require.NoError(t, err)

	html, err := svc.RenderLeaveSummary(LeaveSummaryData{Name: "Bob"})
	require.NoError(t, err)
	assert.NotContains(t, html, "Leave Usage Chart")
	assert.NotContains(t, html, "(Overdrawn)")
}

func TestSend(t *testing.T) {
	var got capturedMail
	send := func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		got = capturedMail{addr: addr, from: from, to: to, raw: msg}
		return nil
	}
	svc, err := newEmailService(testSMTPConfig(), send, 0)
	require.NoError(t, err)

	id, err := svc.Send(context.Background(), Message{
		To:      "alice@example.com",
		Cc:      []string{"boss@example.com"},
		Subject: "March Leave Summary - Alice",
		HTML:    "<p>hello</p>",
		Attachments: []Attachment{
			{Filename: "leave-summary.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.3")},
		},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(id, "@example.com>"))

	assert.Equal(t, "smtp.example.com:587", got.addr)
	assert.Equal(t, "hr@example.com", got.from)
	assert.Equal(t, []string{"alice@example.com", "boss@example.com"}, got.to)

	parsed, err := mail.ReadMessage(strings.NewReader(string(got.raw)))
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", parsed.Header.Get("To"))
	assert.Equal(t, "boss@example.com", parsed.Header.Get("Cc"))
	assert.Equal(t, id, parsed.Header.Get("Message-ID"))

	subject, err := new(mime.WordDecoder).DecodeHeader(parsed.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, "March Leave Summary - Alice", subject)

	mediaType, params, err := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/mixed", mediaType)

	mr := multipart.NewReader(parsed.Body, params["boundary"])
	htmlPart, err := mr.NextPart()
	require.NoError(t, err)
	assert.Contains(t, htmlPart.Header.Get("Content-Type"), "text/html")

	attachment, err := mr.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "leave-summary.pdf", attachment.FileName())

	_, err = mr.NextPart()
	assert.ErrorIs(t, err, io.EOF)
}

func TestSend_Retries(t *testing.T) {
	calls := 0
	send := func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		calls++
		if calls < 3 {
			return errors.New("421 try again")
		}
		return nil
	}
	svc, err := newEmailService(testSMTPConfig(), send, 0)
	require.NoError(t, err)

	_, err = svc.Send(context.Background(), Message{To: "alice@example.com", Subject: "s", HTML: "b"})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestSend_GivesUp(t *testing.T) {
	boom := errors.New("550 mailbox unavailable")
	send := func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		return boom
	}
	svc, err := newEmailService(testSMTPConfig(), send, 0)
	require.NoError(t, err)

	_, err = svc.Send(context.Background(), Message{To: "alice@example.com", Subject: "s", HTML: "b"})
	assert.ErrorIs(t, err, boom)
}

func TestSend_NotConfigured(t *testing.T) {
	svc, err := newEmailService(config.SMTPConfig{}, nil, 0)
	require.NoError(t, err)

	_, err = svc.Send(context.Background(), Message{To: "alice@example.com"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
