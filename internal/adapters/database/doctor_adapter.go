package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/zatekoja/elastic-opd/internal/domain/entities"
	"github.com/zatekoja/elastic-opd/internal/domain/repositories"
	"github.com/zatekoja/elastic-opd/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/elastic-opd/pkg/errors"
)

// DoctorAdapter implements the DoctorRepository interface on PostgreSQL.
// Active slots are stored as a JSONB column; they are immutable after
// creation so no slot-level writes exist.
type DoctorAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewDoctorAdapter creates a new doctor adapter
func NewDoctorAdapter(client *postgres.Client) repositories.DoctorRepository {
	return &DoctorAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new doctor
func (a *DoctorAdapter) Create(ctx context.Context, doctor *entities.Doctor) error {
	slots, err := json.Marshal(doctor.ActiveSlots)
	if err != nil {
		return apperrors.NewInternalError("failed to encode active slots", err)
	}

	record := goqu.Record{
		"id":                    doctor.ID,
		"name":                  doctor.Name,
		"department":            doctor.Department,
		"avg_consultation_time": doctor.AvgConsultationTime,
		"active_slots":          slots,
		"created_at":            doctor.CreatedAt,
		"updated_at":            doctor.UpdatedAt,
	}

	query, args, err := a.db.Insert("doctors").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewStoreError("failed to create doctor", err)
	}

	return nil
}

// GetByID retrieves a doctor by ID
func (a *DoctorAdapter) GetByID(ctx context.Context, id string) (*entities.Doctor, error) {
	query, args, err := a.db.Select(
		"id", "name", "department", "avg_consultation_time",
		"active_slots", "created_at", "updated_at",
	).From("doctors").
		Where(goqu.Ex{"id": id}).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	doctor := &entities.Doctor{}
	var slots []byte

	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&doctor.ID,
		&doctor.Name,
		&doctor.Department,
		&doctor.AvgConsultationTime,
		&slots,
		&doctor.CreatedAt,
		&doctor.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("doctor with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewStoreError("failed to get doctor", err)
	}

	if err := json.Unmarshal(slots, &doctor.ActiveSlots); err != nil {
		return nil, apperrors.NewInternalError("failed to decode active slots", err)
	}

	return doctor, nil
}

// List retrieves all doctors ordered by name
func (a *DoctorAdapter) List(ctx context.Context) ([]*entities.Doctor, error) {
	query, args, err := a.db.Select(
		"id", "name", "department", "avg_consultation_time",
		"active_slots", "created_at", "updated_at",
	).From("doctors").
		Order(goqu.I("name").Asc()).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreError("failed to list doctors", err)
	}
	defer rows.Close()

	var doctors []*entities.Doctor
	for rows.Next() {
		doctor := &entities.Doctor{}
		var slots []byte

		err := rows.Scan(
			&doctor.ID,
			&doctor.Name,
			&doctor.Department,
			&doctor.AvgConsultationTime,
			&slots,
			&doctor.CreatedAt,
			&doctor.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.NewStoreError("failed to scan doctor", err)
		}

		if err := json.Unmarshal(slots, &doctor.ActiveSlots); err != nil {
			return nil, apperrors.NewInternalError("failed to decode active slots", err)
		}

		doctors = append(doctors, doctor)
	}

	return doctors, nil
}
