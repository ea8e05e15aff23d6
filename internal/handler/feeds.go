package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/oracle-enclave/internal/apperror"
	"github.com/sakif/oracle-enclave/internal/model"
	"github.com/sakif/oracle-enclave/internal/service"
)

// FeedService is the part of the service layer the feed admin endpoints
// need.
type FeedService interface {
	CreateFeed(ctx context.Context, params service.CreateFeedParams) (*model.Feed, error)
	GetFeed(ctx context.Context, id string) (*model.Feed, error)
}

// FeedHandler serves the feed administration endpoints.
type FeedHandler struct {
	service FeedService
	logger  *slog.Logger
}

// NewFeedHandler creates a FeedHandler.
func NewFeedHandler(service FeedService, logger *slog.Logger) *FeedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeedHandler{service: service, logger: logger}
}

type createFeedRequest struct {
	ID              string `json:"id"`
	Language        string `json:"language"`
	ReturnType      string `json:"return_type"`
	Script          string `json:"script"`
	BlobRef         string `json:"blob_ref"`
	UpdateCadenceMS uint64 `json:"update_cadence_ms"`
}

// Create handles POST /api/feeds.
func (h *FeedHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createFeedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperror.ValidationFailed("body", "invalid JSON"))
		return
	}

	feed, err := h.service.CreateFeed(r.Context(), service.CreateFeedParams{
		ID:              req.ID,
		Language:        req.Language,
		ReturnType:      req.ReturnType,
		Script:          req.Script,
		BlobRef:         req.BlobRef,
		UpdateCadenceMS: req.UpdateCadenceMS,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, feed)
}

// Get handles GET /api/feeds/{id}.
func (h *FeedHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	feed, err := h.service.GetFeed(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, feed)
}
