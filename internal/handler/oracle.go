// Package handler contains the HTTP layer: request decoding, response
// encoding and the mapping from service errors to statuses.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/oracle-enclave/internal/apperror"
	"github.com/sakif/oracle-enclave/internal/model"
)

// OracleService is the part of the service layer the oracle endpoints need.
type OracleService interface {
	ProcessFeed(ctx context.Context, feedID string) (*model.SignedEnvelope, error)
	ExecuteCode(ctx context.Context, language, source, returnType string) *model.ExecuteCodeResult
	AttestationKey() string
}

// OracleHandler serves the feed processing and ad-hoc execution endpoints.
type OracleHandler struct {
	service OracleService
	logger  *slog.Logger
}

// NewOracleHandler creates an OracleHandler.
func NewOracleHandler(service OracleService, logger *slog.Logger) *OracleHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OracleHandler{service: service, logger: logger}
}

type processFeedRequest struct {
	FeedID string `json:"feed_id"`
}

// ProcessFeed handles POST /api/process_feed.
func (h *OracleHandler) ProcessFeed(w http.ResponseWriter, r *http.Request) {
	var req processFeedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperror.ValidationFailed("body", "invalid JSON"))
		return
	}
	if req.FeedID == "" {
		writeError(w, h.logger, apperror.ValidationFailed("feed_id", "must not be empty"))
		return
	}

	env, err := h.service.ProcessFeed(r.Context(), req.FeedID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, env)
}

type executeRequest struct {
	Language   string `json:"language"`
	Code       string `json:"code"`
	ReturnType string `json:"return_type"`
}

// Execute handles POST /api/execute. The endpoint always answers 200 with a
// well-formed body; execution and coercion failures are reported on the
// success flag, not the status line.
func (h *OracleHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusOK, &model.ExecuteCodeResult{
			Result: model.StringValue(""),
			Error:  "invalid JSON body",
		})
		return
	}

	res := h.service.ExecuteCode(r.Context(), req.Language, req.Code, req.ReturnType)
	writeJSON(w, http.StatusOK, res)
}

type attestationResponse struct {
	PublicKey string `json:"public_key"`
}

// Attestation handles GET /api/attestation.
func (h *OracleHandler) Attestation(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, attestationResponse{PublicKey: h.service.AttestationKey()})
}
