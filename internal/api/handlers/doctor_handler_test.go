package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/elastic-opd/internal/domain/entities"
	apperrors "github.com/zatekoja/elastic-opd/pkg/errors"
)

type stubDoctorRepo struct {
	doctor  *entities.Doctor
	doctors []*entities.Doctor
	err     error

	created *entities.Doctor
}

func (s *stubDoctorRepo) Create(ctx context.Context, doctor *entities.Doctor) error {
	s.created = doctor
	return s.err
}

func (s *stubDoctorRepo) GetByID(ctx context.Context, id string) (*entities.Doctor, error) {
	return s.doctor, s.err
}

func (s *stubDoctorRepo) List(ctx context.Context) ([]*entities.Doctor, error) {
	return s.doctors, s.err
}

func validDoctorBody() []byte {
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	body, _ := json.Marshal(map[string]interface{}{
		"name":                  "Dr. Rao",
		"department":            "Cardiology",
		"avg_consultation_time": 10,
		"active_slots": []entities.Slot{
			{Start: start, End: start.Add(time.Hour), MaxCapacity: 5},
		},
	})
	return body
}

func TestCreateDoctorSuccess(t *testing.T) {
	repo := &stubDoctorRepo{}
	handler := NewDoctorHandler(repo)

	req := httptest.NewRequest(http.MethodPost, "/api/doctors", bytes.NewReader(validDoctorBody()))
	rec := httptest.NewRecorder()

	handler.CreateDoctor(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, repo.created)
	assert.NotEmpty(t, repo.created.ID)
	assert.Equal(t, "Cardiology", repo.created.Department)
}

func TestCreateDoctorValidationFailure(t *testing.T) {
	handler := NewDoctorHandler(&stubDoctorRepo{})

	body, _ := json.Marshal(map[string]interface{}{"name": "Dr. Rao"})
	req := httptest.NewRequest(http.MethodPost, "/api/doctors", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.CreateDoctor(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateDoctorStoreFailure(t *testing.T) {
	handler := NewDoctorHandler(&stubDoctorRepo{err: apperrors.NewStoreError("store failed", nil)})

	req := httptest.NewRequest(http.MethodPost, "/api/doctors", bytes.NewReader(validDoctorBody()))
	rec := httptest.NewRecorder()

	handler.CreateDoctor(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestListDoctors(t *testing.T) {
	handler := NewDoctorHandler(&stubDoctorRepo{doctors: []*entities.Doctor{
		{ID: "doc-1", Name: "Dr. Rao"},
		{ID: "doc-2", Name: "Dr. Verma"},
	}})

	req := httptest.NewRequest(http.MethodGet, "/api/doctors", nil)
	rec := httptest.NewRecorder()

	handler.ListDoctors(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var got []*entities.Doctor
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Len(t, got, 2)
}

func TestGetDoctorNotFound(t *testing.T) {
	handler := NewDoctorHandler(&stubDoctorRepo{err: apperrors.NewNotFoundError("doctor not found")})

	req := httptest.NewRequest(http.MethodGet, "/api/doctors/missing", nil)
	req.SetPathValue("id", "missing")
	rec := httptest.NewRecorder()

	handler.GetDoctor(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
