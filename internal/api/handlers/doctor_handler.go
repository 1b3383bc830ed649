package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/elastic-opd/internal/domain/entities"
	"github.com/zatekoja/elastic-opd/internal/domain/repositories"
	"github.com/zatekoja/elastic-opd/internal/infrastructure/observability"
)

// DoctorHandler handles doctor HTTP requests
type DoctorHandler struct {
	doctorRepo repositories.DoctorRepository
}

// NewDoctorHandler creates a new doctor handler
func NewDoctorHandler(doctorRepo repositories.DoctorRepository) *DoctorHandler {
	return &DoctorHandler{doctorRepo: doctorRepo}
}

type createDoctorRequest struct {
	Name                string          `json:"name"`
	Department          string          `json:"department"`
	AvgConsultationTime int             `json:"avg_consultation_time"`
	ActiveSlots         []entities.Slot `json:"active_slots"`
}

// CreateDoctor handles POST /api/doctors
func (h *DoctorHandler) CreateDoctor(w http.ResponseWriter, r *http.Request) {
	var req createDoctorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	now := time.Now().UTC()
	doctor := &entities.Doctor{
		ID:                  uuid.New().String(),
		Name:                req.Name,
		Department:          req.Department,
		AvgConsultationTime: req.AvgConsultationTime,
		ActiveSlots:         req.ActiveSlots,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := doctor.Validate(); err != nil {
		respondWithAppError(w, err)
		return
	}

	if err := h.doctorRepo.Create(r.Context(), doctor); err != nil {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("Failed to create doctor")
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, doctor)
}

// ListDoctors handles GET /api/doctors
func (h *DoctorHandler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.doctorRepo.List(r.Context())
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("Failed to list doctors")
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, doctors)
}

// GetDoctor handles GET /api/doctors/{id}
func (h *DoctorHandler) GetDoctor(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "doctor id is required")
		return
	}

	doctor, err := h.doctorRepo.GetByID(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, doctor)
}
