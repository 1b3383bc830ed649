package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/zatekoja/elastic-opd/internal/domain/entities"
	"github.com/zatekoja/elastic-opd/internal/infrastructure/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// TokenService defines the token operations the handler depends on
type TokenService interface {
	IssueToken(ctx context.Context, doctorID string, source entities.TokenSource, patientName string) (*entities.Token, error)
	CancelToken(ctx context.Context, tokenID string) (*entities.Token, error)
}

// TokenHandler handles token HTTP requests
type TokenHandler struct {
	tokenService TokenService
	metrics      *observability.Metrics
}

// NewTokenHandler creates a new token handler
func NewTokenHandler(tokenService TokenService, metrics *observability.Metrics) *TokenHandler {
	return &TokenHandler{tokenService: tokenService, metrics: metrics}
}

type issueTokenRequest struct {
	DoctorID    string `json:"doctorId"`
	Source      string `json:"source"`
	PatientName string `json:"patientName"`
}

// IssueToken handles POST /api/tokens/issue
func (h *TokenHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req issueTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.tokenService.IssueToken(r.Context(), req.DoctorID, entities.TokenSource(req.Source), req.PatientName)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.TokensIssued.Add(r.Context(), 1, metric.WithAttributes(
			attribute.String("source", string(token.Source)),
		))
	}

	respondWithJSON(w, http.StatusCreated, token)
}

// CancelToken handles PATCH /api/tokens/{id}/cancel
func (h *TokenHandler) CancelToken(w http.ResponseWriter, r *http.Request) {
	tokenID := r.PathValue("id")
	if tokenID == "" {
		respondWithError(w, http.StatusBadRequest, "token id is required")
		return
	}

	token, err := h.tokenService.CancelToken(r.Context(), tokenID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "token cancelled",
		"token":   token,
	})
}
