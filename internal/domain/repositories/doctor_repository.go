package repositories

import (
	"context"

	"github.com/zatekoja/elastic-opd/internal/domain/entities"
)

// DoctorRepository defines the interface for doctor data operations
type DoctorRepository interface {
	// Create creates a new doctor
	Create(ctx context.Context, doctor *entities.Doctor) error

	// GetByID retrieves a doctor by ID
	GetByID(ctx context.Context, id string) (*entities.Doctor, error)

	// List retrieves all doctors
	List(ctx context.Context) ([]*entities.Doctor, error)
}
