package delivery

import "errors"

// Delivery domain errors
var (
	ErrChartUnavailable    = errors.New("Chart generation failed")
	ErrMailerNotConfigured = errors.New("Mailer not configured")
	ErrTestReceiverMissing = errors.New("TEST_EMAIL_RECEIVER missing")
	ErrBatchInProgress     = errors.New("A batch send is already running")
)
