package project

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /api/projects.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	proj, err := h.service.Create(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, proj)
}

// Document handles GET /api/projects/{projectId}/document.
func (h *Handler) Document(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.Document(mux.Vars(r)["projectId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Gizmo handles GET /api/projects/{projectId}/gizmo.
func (h *Handler) Gizmo(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.Gizmo(mux.Vars(r)["projectId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// Preview handles GET /api/projects/{projectId}/preview.png.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.service.Preview(&buf, mux.Vars(r)["projectId"]); err != nil {
		handleServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// GetLatestSnapshot handles GET /api/projects/{projectId}/snapshots/latest.
func (h *Handler) GetLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.LatestSnapshot(r.Context(), mux.Vars(r)["projectId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, ErrInvalidID):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid project id"})
	case errors.Is(err, ErrNoStore):
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "snapshots are not persisted"})
	default:
		slog.Error("service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
