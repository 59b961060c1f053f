package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/leave-dashboard-go/internal/domain/delivery"
	"github.com/cmlabs-hris/leave-dashboard-go/internal/handler/http/response"
	"github.com/cmlabs-hris/leave-dashboard-go/internal/pkg/sse"
)

type DeliveryHandler interface {
	Send(w http.ResponseWriter, r *http.Request)
	SendAll(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Events(w http.ResponseWriter, r *http.Request)
}

type deliveryHandlerImpl struct {
	deliveryService delivery.Service
	hub             *sse.Hub
}

func NewDeliveryHandler(deliveryService delivery.Service, hub *sse.Hub) DeliveryHandler {
	return &deliveryHandlerImpl{
		deliveryService: deliveryService,
		hub:             hub,
	}
}

// Send handles POST /mail/send
func (h *deliveryHandlerImpl) Send(w http.ResponseWriter, r *http.Request) {
	var req delivery.SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Send decode error", "error", err)
		response.BadRequest(w, "Missing data in request body", nil)
		return
	}

	result, err := h.deliveryService.Send(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave summary sent", result)
}

// SendAll handles POST /mail/send-all
func (h *deliveryHandlerImpl) SendAll(w http.ResponseWriter, r *http.Request) {
	result, err := h.deliveryService.SendAll(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave summaries processed", result)
}

// List handles GET /mail/deliveries
func (h *deliveryHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	req := delivery.ListDeliveriesRequest{
		Status:  query.Get("status"),
		StaffID: query.Get("staff_id"),
	}
	if v := query.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil {
			response.BadRequest(w, "invalid page parameter", nil)
			return
		}
		req.Page = page
	}
	if v := query.Get("page_size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			response.BadRequest(w, "invalid page_size parameter", nil)
			return
		}
		req.PageSize = size
	}

	result, err := h.deliveryService.List(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	totalPages := 0
	if result.PageSize > 0 {
		totalPages = int((result.Total + int64(result.PageSize) - 1) / int64(result.PageSize))
	}
	response.SuccessWithMeta(w, result.Deliveries, &response.Meta{
		Page:       result.Page,
		Limit:      result.PageSize,
		TotalItems: result.Total,
		TotalPages: totalPages,
	})
}

// Events handles GET /mail/events, streaming batch progress as SSE.
func (h *deliveryHandlerImpl) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(delivery.ProgressTopic)
	defer cleanup()

	fmt.Fprint(w, "event: connected\ndata: {\"status\":\"connected\"}\n\n")
	flusher.Flush()

	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				slog.Error("Failed to encode progress event", "event", event.Event, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
