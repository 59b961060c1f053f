package http

import (
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"

	"github.com/cmlabs-hris/leave-dashboard-go/internal/handler/http/response"
	"github.com/cmlabs-hris/leave-dashboard-go/internal/pkg/storage"
	"github.com/go-chi/chi/v5"
)

type FileHandler interface {
	Serve(w http.ResponseWriter, r *http.Request)
}

type fileHandlerImpl struct {
	files storage.FileStorage
}

func NewFileHandler(files storage.FileStorage) FileHandler {
	return &fileHandlerImpl{files: files}
}

// Serve handles GET /files/*
func (h *fileHandlerImpl) Serve(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")

	rc, err := h.files.Download(r.Context(), key)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		slog.Error("Failed to stream file", "key", key, "error", err)
	}
}
