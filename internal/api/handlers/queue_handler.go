package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/zatekoja/elastic-opd/internal/domain/entities"
)

// QueueService defines the queue operations the handler depends on
type QueueService interface {
	GetQueue(ctx context.Context, doctorID string) ([]*entities.Token, error)
	ApplyDelay(ctx context.Context, doctorID string, delayMinutes int) error
}

// QueueHandler handles queue HTTP requests
type QueueHandler struct {
	queueService QueueService
}

// NewQueueHandler creates a new queue handler
func NewQueueHandler(queueService QueueService) *QueueHandler {
	return &QueueHandler{queueService: queueService}
}

// GetQueue handles GET /api/doctors/{id}/queue
func (h *QueueHandler) GetQueue(w http.ResponseWriter, r *http.Request) {
	doctorID := r.PathValue("id")
	if doctorID == "" {
		respondWithError(w, http.StatusBadRequest, "doctor id is required")
		return
	}

	queue, err := h.queueService.GetQueue(r.Context(), doctorID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, queue)
}

type delayRequest struct {
	DelayMinutes int `json:"delayMinutes"`
}

// AddDelay handles POST /api/doctors/{id}/delay
func (h *QueueHandler) AddDelay(w http.ResponseWriter, r *http.Request) {
	doctorID := r.PathValue("id")
	if doctorID == "" {
		respondWithError(w, http.StatusBadRequest, "doctor id is required")
		return
	}

	var req delayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.queueService.ApplyDelay(r.Context(), doctorID, req.DelayMinutes); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("queue delayed by %d minutes", req.DelayMinutes),
	})
}
