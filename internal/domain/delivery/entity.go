package delivery

import "time"

type Status string

const (
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

var StatusValues = []string{string(StatusSent), string(StatusFailed), string(StatusSkipped)}

type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeProduction  Mode = "production"
)

// Batch progress is published on ProgressTopic.
const (
	ProgressTopic = "mail.batch"

	EventBatchStarted   = "batch.started"
	EventBatchRecipient = "batch.recipient"
	EventBatchCompleted = "batch.completed"
)

// Delivery records one leave summary email attempt.
type Delivery struct {
	ID           string
	StaffID      string
	EmployeeName string
	Recipient    string
	Cc           []string
	Subject      string
	Mode         Mode
	Status       Status
	MessageID    string
	ChartURL     string
	ArchivePath  string
	Error        string
	CreatedAt    time.Time
}
