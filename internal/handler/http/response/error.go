package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/leave-dashboard-go/internal/domain/delivery"
	"github.com/cmlabs-hris/leave-dashboard-go/internal/domain/leave"
	"github.com/cmlabs-hris/leave-dashboard-go/internal/pkg/storage"
	"github.com/cmlabs-hris/leave-dashboard-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Leave domain errors
	case errors.Is(err, leave.ErrUpstreamFetch):
		slog.Error("Upstream fetch failed", "error", err)
		BadGateway(w, "Failed to fetch leave data", map[string]string{"cause": err.Error()})
	case errors.Is(err, leave.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Delivery domain errors
	case errors.Is(err, delivery.ErrChartUnavailable):
		BadGateway(w, "Chart generation failed", map[string]string{"cause": err.Error()})
	case errors.Is(err, delivery.ErrMailerNotConfigured):
		InternalServerError(w, "Mailer not configured")
	case errors.Is(err, delivery.ErrTestReceiverMissing):
		InternalServerError(w, "TEST_EMAIL_RECEIVER missing")
	case errors.Is(err, delivery.ErrBatchInProgress):
		Conflict(w, "A batch send is already running")

	// Storage errors
	case errors.Is(err, storage.ErrFileNotFound):
		NotFound(w, "File not found")
	case errors.Is(err, storage.ErrInvalidPath):
		BadRequest(w, "Invalid file path", nil)

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
