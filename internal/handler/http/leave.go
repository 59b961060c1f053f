package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/leave-dashboard-go/internal/domain/leave"
	"github.com/cmlabs-hris/leave-dashboard-go/internal/handler/http/response"
	"github.com/cmlabs-hris/leave-dashboard-go/internal/pkg/pdf"
	"github.com/cmlabs-hris/leave-dashboard-go/internal/pkg/spreadsheet"
	"github.com/go-chi/chi/v5"
)

type LeaveHandler interface {
	ListReports(w http.ResponseWriter, r *http.Request)
	ListSummaries(w http.ResponseWriter, r *http.Request)
	ExportReports(w http.ResponseWriter, r *http.Request)
	GetReportPDF(w http.ResponseWriter, r *http.Request)
}

type leaveHandlerImpl struct {
	reportService leave.ReportService
}

func NewLeaveHandler(reportService leave.ReportService) LeaveHandler {
	return &leaveHandlerImpl{
		reportService: reportService,
	}
}

// ListReports handles GET /leave/reports
func (h *leaveHandlerImpl) ListReports(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.Generate(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, &response.Meta{
		TotalItems: int64(len(result.Reports)),
	})
}

// ListSummaries handles GET /leave/summaries
func (h *leaveHandlerImpl) ListSummaries(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.reportService.Summaries(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, summaries, &response.Meta{
		TotalItems: int64(len(summaries)),
	})
}

// ExportReports handles GET /leave/reports/export
func (h *leaveHandlerImpl) ExportReports(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.Generate(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := spreadsheet.ExportReports(&buf, result.Reports); err != nil {
		slog.Error("ExportReports failed", "error", err)
		response.InternalServerError(w, "Failed to export leave report")
		return
	}

	filename := fmt.Sprintf("leave-report-%s.xlsx", time.Now().Format("2006-01-02"))
	writeAttachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", filename, buf.Bytes())
}

// GetReportPDF handles GET /leave/reports/{staffID}/pdf
func (h *leaveHandlerImpl) GetReportPDF(w http.ResponseWriter, r *http.Request) {
	staffID := chi.URLParam(r, "staffID")
	if staffID == "" {
		response.BadRequest(w, "Staff ID is required", nil)
		return
	}

	report, err := h.reportService.FindByStaffID(r.Context(), staffID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	now := time.Now()
	data, err := pdf.LeaveSummary(report, now)
	if err != nil {
		slog.Error("GetReportPDF render failed", "staff_id", staffID, "error", err)
		response.InternalServerError(w, "Failed to render leave summary")
		return
	}

	filename := fmt.Sprintf("leave-summary-%s-%s.pdf", report.User.StaffID, now.Format("2006-01"))
	writeAttachment(w, "application/pdf", filename, data)
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Error("Failed to write attachment", "filename", filename, "error", err)
	}
}
