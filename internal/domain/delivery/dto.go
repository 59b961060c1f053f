package delivery

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/leave-dashboard-go/internal/domain/leave"
	"github.com/cmlabs-hris/leave-dashboard-go/internal/pkg/validator"
)

// ============= Request DTOs =============

// SendRequest is a leave report as shown on the dashboard, posted back to be
// mailed to its employee.
type SendRequest struct {
	leave.LeaveReport
}

// Validate checks the report carries a recipient. requiredDomain may be empty.
func (r *SendRequest) Validate(requiredDomain string) error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.User.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "user.name",
			Message: "user.name is required",
		})
	}
	if msg := validator.ValidateEmailDomain(r.User.Email, requiredDomain); msg != "" {
		errs = append(errs, validator.ValidationError{
			Field:   "user.email",
			Message: msg,
		})
	}
	for _, m := range r.User.Managers {
		if !validator.IsValidEmail(strings.TrimSpace(m)) {
			errs = append(errs, validator.ValidationError{
				Field:   "user.managers",
				Message: "user.managers contains an invalid email: " + m,
			})
			break
		}
	}
	for _, ds := range r.ChartConfig.Datasets {
		if len(ds.Data) != len(r.ChartConfig.Labels) {
			errs = append(errs, validator.ValidationError{
				Field:   "chart_config.datasets",
				Message: "every dataset must have one value per label",
			})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ListDeliveriesRequest filters the delivery log.
type ListDeliveriesRequest struct {
	Status   string
	StaffID  string
	Page     int
	PageSize int
}

func (r *ListDeliveriesRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Status != "" && !validator.IsInSlice(r.Status, StatusValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: " + strings.Join(StatusValues, ", "),
		})
	}
	if r.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if r.PageSize < 0 || r.PageSize > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "page_size",
			Message: "page_size must be between 1 and 100",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	if r.Page == 0 {
		r.Page = 1
	}
	if r.PageSize == 0 {
		r.PageSize = 20
	}
	return nil
}

// ============= Response DTOs =============

type SendResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id"`
	SentTo    string `json:"sent_to"`
	Mode      Mode   `json:"mode"`
	ChartURL  string `json:"chart_url"`
}

// RecipientResult is the outcome for one employee of a batch send.
type RecipientResult struct {
	StaffID   string `json:"staff_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Status    Status `json:"status"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

type BatchResponse struct {
	Total      int               `json:"total"`
	Sent       int               `json:"sent"`
	Failed     int               `json:"failed"`
	Unresolved int               `json:"unresolved"`
	Mode       Mode              `json:"mode"`
	Results    []RecipientResult `json:"results"`
}

// BatchStarted is published when a batch send begins.
type BatchStarted struct {
	Total      int  `json:"total"`
	Unresolved int  `json:"unresolved"`
	Mode       Mode `json:"mode"`
}

type DeliveryResponse struct {
	ID           string    `json:"id"`
	StaffID      string    `json:"staff_id"`
	EmployeeName string    `json:"employee_name"`
	Recipient    string    `json:"recipient"`
	Cc           []string  `json:"cc"`
	Subject      string    `json:"subject"`
	Mode         Mode      `json:"mode"`
	Status       Status    `json:"status"`
	MessageID    string    `json:"message_id,omitempty"`
	ChartURL     string    `json:"chart_url,omitempty"`
	ArchiveURL   string    `json:"archive_url,omitempty"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type ListDeliveriesResponse struct {
	Deliveries []DeliveryResponse `json:"deliveries"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
}
