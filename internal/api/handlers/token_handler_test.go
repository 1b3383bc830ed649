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

type stubTokenService struct {
	token *entities.Token
	err   error
}

func (s *stubTokenService) IssueToken(ctx context.Context, doctorID string, source entities.TokenSource, patientName string) (*entities.Token, error) {
	return s.token, s.err
}

func (s *stubTokenService) CancelToken(ctx context.Context, tokenID string) (*entities.Token, error) {
	return s.token, s.err
}

func TestIssueTokenSuccess(t *testing.T) {
	token := &entities.Token{ID: "tok-1", TokenNumber: "CAR-001", Source: entities.SourceWalkIn}
	handler := NewTokenHandler(&stubTokenService{token: token}, nil)

	body, _ := json.Marshal(map[string]string{"doctorId": "doc-1", "source": "Walk-in"})
	req := httptest.NewRequest(http.MethodPost, "/api/tokens/issue", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.IssueToken(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var got entities.Token
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "CAR-001", got.TokenNumber)
}

func TestIssueTokenInvalidBody(t *testing.T) {
	handler := NewTokenHandler(&stubTokenService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/tokens/issue", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()

	handler.IssueToken(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIssueTokenErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"doctor not found", apperrors.NewNotFoundError("doctor not found"), http.StatusNotFound},
		{"bad source", apperrors.NewValidationError("source is required"), http.StatusBadRequest},
		{"queue full", apperrors.NewNoSlotError("no available slot"), http.StatusConflict},
		{"store down", apperrors.NewStoreError("store failed", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewTokenHandler(&stubTokenService{err: tt.err}, nil)

			body, _ := json.Marshal(map[string]string{"doctorId": "doc-1", "source": "Walk-in"})
			req := httptest.NewRequest(http.MethodPost, "/api/tokens/issue", bytes.NewReader(body))
			rec := httptest.NewRecorder()

			handler.IssueToken(rec, req)

			assert.Equal(t, tt.code, rec.Code)

			var resp map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestCancelTokenSuccess(t *testing.T) {
	token := &entities.Token{ID: "tok-1", TokenNumber: "CAR-001", Status: entities.StatusCancelled}
	handler := NewTokenHandler(&stubTokenService{token: token}, nil)

	req := httptest.NewRequest(http.MethodPatch, "/api/tokens/tok-1/cancel", nil)
	req.SetPathValue("id", "tok-1")
	rec := httptest.NewRecorder()

	handler.CancelToken(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Message string          `json:"message"`
		Token   *entities.Token `json:"token"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "token cancelled", resp.Message)
	assert.Equal(t, entities.StatusCancelled, resp.Token.Status)
}

func TestCancelTokenMissingID(t *testing.T) {
	handler := NewTokenHandler(&stubTokenService{}, nil)

	req := httptest.NewRequest(http.MethodPatch, "/api/tokens//cancel", nil)
	rec := httptest.NewRecorder()

	handler.CancelToken(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
