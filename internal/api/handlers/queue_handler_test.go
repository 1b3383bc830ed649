package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/elastic-opd/internal/domain/entities"
	apperrors "github.com/zatekoja/elastic-opd/pkg/errors"
)

type stubQueueService struct {
	queue []*entities.Token
	err   error

	delayedBy int
}

func (s *stubQueueService) GetQueue(ctx context.Context, doctorID string) ([]*entities.Token, error) {
	return s.queue, s.err
}

func (s *stubQueueService) ApplyDelay(ctx context.Context, doctorID string, delayMinutes int) error {
	s.delayedBy = delayMinutes
	return s.err
}

func TestGetQueueSuccess(t *testing.T) {
	queue := []*entities.Token{
		{TokenNumber: "CAR-002", Source: entities.SourceEmergency},
		{TokenNumber: "CAR-001", Source: entities.SourceWalkIn},
	}
	handler := NewQueueHandler(&stubQueueService{queue: queue})

	req := httptest.NewRequest(http.MethodGet, "/api/doctors/doc-1/queue", nil)
	req.SetPathValue("id", "doc-1")
	rec := httptest.NewRecorder()

	handler.GetQueue(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var got []*entities.Token
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 2)
	assert.Equal(t, "CAR-002", got[0].TokenNumber)
}

func TestGetQueueDoctorNotFound(t *testing.T) {
	handler := NewQueueHandler(&stubQueueService{err: apperrors.NewNotFoundError("doctor not found")})

	req := httptest.NewRequest(http.MethodGet, "/api/doctors/missing/queue", nil)
	req.SetPathValue("id", "missing")
	rec := httptest.NewRecorder()

	handler.GetQueue(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddDelaySuccess(t *testing.T) {
	stub := &stubQueueService{}
	handler := NewQueueHandler(stub)

	body, _ := json.Marshal(map[string]int{"delayMinutes": 15})
	req := httptest.NewRequest(http.MethodPost, "/api/doctors/doc-1/delay", bytes.NewReader(body))
	req.SetPathValue("id", "doc-1")
	rec := httptest.NewRecorder()

	handler.AddDelay(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 15, stub.delayedBy)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "queue delayed by 15 minutes", resp["message"])
}

func TestAddDelayRejectsNonPositive(t *testing.T) {
	handler := NewQueueHandler(&stubQueueService{err: apperrors.NewValidationError("delayMinutes must be positive")})

	body, _ := json.Marshal(map[string]int{"delayMinutes": -5})
	req := httptest.NewRequest(http.MethodPost, "/api/doctors/doc-1/delay", bytes.NewReader(body))
	req.SetPathValue("id", "doc-1")
	rec := httptest.NewRecorder()

	handler.AddDelay(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddDelayInvalidBody(t *testing.T) {
	handler := NewQueueHandler(&stubQueueService{})

	req := httptest.NewRequest(http.MethodPost, "/api/doctors/doc-1/delay", bytes.NewReader([]byte("{")))
	req.SetPathValue("id", "doc-1")
	rec := httptest.NewRecorder()

	handler.AddDelay(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
