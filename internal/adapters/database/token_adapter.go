package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/zatekoja/elastic-opd/internal/domain/entities"
	"github.com/zatekoja/elastic-opd/internal/domain/repositories"
	"github.com/zatekoja/elastic-opd/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/elastic-opd/pkg/errors"
)

// TokenAdapter implements the TokenRepository interface
type TokenAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewTokenAdapter creates a new token adapter
func NewTokenAdapter(client *postgres.Client) repositories.TokenRepository {
	return &TokenAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var tokenColumns = []interface{}{
	"id", "token_number", "doctor_id", "patient_name", "source",
	"base_weight", "priority_score", "scheduled_time",
	"estimated_start_time", "status", "created_at", "updated_at",
}

// Create creates a new token
func (a *TokenAdapter) Create(ctx context.Context, token *entities.Token) error {
	record := goqu.Record{
		"id":                   token.ID,
		"token_number":         token.TokenNumber,
		"doctor_id":            token.DoctorID,
		"patient_name":         token.PatientName,
		"source":               token.Source,
		"base_weight":          token.BaseWeight,
		"priority_score":       token.PriorityScore,
		"scheduled_time":       token.ScheduledTime,
		"estimated_start_time": token.EstimatedStartTime,
		"status":               token.Status,
		"created_at":           token.CreatedAt,
		"updated_at":           token.UpdatedAt,
	}

	query, args, err := a.db.Insert("tokens").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewStoreError("failed to create token", err)
	}

	return nil
}

// GetByID retrieves a token by ID
func (a *TokenAdapter) GetByID(ctx context.Context, id string) (*entities.Token, error) {
	query, args, err := a.db.Select(tokenColumns...).From("tokens").
		Where(goqu.Ex{"id": id}).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	row := a.client.DB().QueryRowContext(ctx, query, args...)
	token, err := scanToken(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("token with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewStoreError("failed to get token", err)
	}

	return token, nil
}

// Update persists the mutable scheduling fields of a token
func (a *TokenAdapter) Update(ctx context.Context, token *entities.Token) error {
	token.UpdatedAt = time.Now()

	record := goqu.Record{
		"priority_score":       token.PriorityScore,
		"scheduled_time":       token.ScheduledTime,
		"estimated_start_time": token.EstimatedStartTime,
		"status":               token.Status,
		"updated_at":           token.UpdatedAt,
	}

	query, args, err := a.db.Update("tokens").
		Set(record).
		Where(goqu.Ex{"id": token.ID}).
		ToSQL()

	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewStoreError("failed to update token", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewStoreError("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("token with id %s not found", token.ID))
	}

	return nil
}

// CountByDoctor counts every token ever issued for a doctor
func (a *TokenAdapter) CountByDoctor(ctx context.Context, doctorID string) (int, error) {
	query, args, err := a.db.Select(goqu.COUNT("*")).From("tokens").
		Where(goqu.Ex{"doctor_id": doctorID}).
		ToSQL()

	if err != nil {
		return 0, apperrors.NewInternalError("failed to build count query", err)
	}

	var count int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, apperrors.NewStoreError("failed to count tokens", err)
	}

	return count, nil
}

// CountActiveInSlot counts non-Cancelled tokens bound to the slot
func (a *TokenAdapter) CountActiveInSlot(ctx context.Context, doctorID string, slotStart time.Time) (int, error) {
	query, args, err := a.db.Select(goqu.COUNT("*")).From("tokens").
		Where(
			goqu.Ex{"doctor_id": doctorID, "scheduled_time": slotStart},
			goqu.C("status").Neq(entities.StatusCancelled),
		).
		ToSQL()

	if err != nil {
		return 0, apperrors.NewInternalError("failed to build count query", err)
	}

	var count int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, apperrors.NewStoreError("failed to count slot tokens", err)
	}

	return count, nil
}

// ListActiveInSlot retrieves non-Cancelled tokens bound to the slot,
// lowest priority score first
func (a *TokenAdapter) ListActiveInSlot(ctx context.Context, doctorID string, slotStart time.Time) ([]*entities.Token, error) {
	query, args, err := a.db.Select(tokenColumns...).From("tokens").
		Where(
			goqu.Ex{"doctor_id": doctorID, "scheduled_time": slotStart},
			goqu.C("status").Neq(entities.StatusCancelled),
		).
		Order(goqu.I("priority_score").Asc(), goqu.I("created_at").Asc()).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build slot query", err)
	}

	return a.queryTokens(ctx, query, args)
}

// ListWaitingByDoctor retrieves all Waiting tokens for a doctor
func (a *TokenAdapter) ListWaitingByDoctor(ctx context.Context, doctorID string) ([]*entities.Token, error) {
	query, args, err := a.db.Select(tokenColumns...).From("tokens").
		Where(goqu.Ex{"doctor_id": doctorID, "status": entities.StatusWaiting}).
		Order(goqu.I("scheduled_time").Asc(), goqu.I("created_at").Asc()).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build waiting query", err)
	}

	return a.queryTokens(ctx, query, args)
}

// ListQueue retrieves the active queue for a doctor
func (a *TokenAdapter) ListQueue(ctx context.Context, doctorID string) ([]*entities.Token, error) {
	query, args, err := a.db.Select(tokenColumns...).From("tokens").
		Where(
			goqu.Ex{"doctor_id": doctorID},
			goqu.C("status").In(entities.StatusWaiting, entities.StatusInConsultation),
		).
		Order(goqu.I("estimated_start_time").Asc(), goqu.I("priority_score").Desc()).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build queue query", err)
	}

	return a.queryTokens(ctx, query, args)
}

// ShiftEstimatedStartTimes pushes estimated start times of Waiting tokens
// forward by delay in a single bulk update
func (a *TokenAdapter) ShiftEstimatedStartTimes(ctx context.Context, doctorID string, delay time.Duration) (int64, error) {
	minutes := int(delay.Minutes())

	query, args, err := a.db.Update("tokens").
		Set(goqu.Record{
			"estimated_start_time": goqu.L("estimated_start_time + make_interval(mins => ?)", minutes),
			"updated_at":           time.Now(),
		}).
		Where(goqu.Ex{"doctor_id": doctorID, "status": entities.StatusWaiting}).
		ToSQL()

	if err != nil {
		return 0, apperrors.NewInternalError("failed to build shift query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return 0, apperrors.NewStoreError("failed to shift estimated start times", err)
	}

	shifted, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.NewStoreError("failed to get rows affected", err)
	}

	return shifted, nil
}

func (a *TokenAdapter) queryTokens(ctx context.Context, query string, args []interface{}) ([]*entities.Token, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreError("failed to list tokens", err)
	}
	defer rows.Close()

	var tokens []*entities.Token
	for rows.Next() {
		token, err := scanToken(rows)
		if err != nil {
			return nil, apperrors.NewStoreError("failed to scan token", err)
		}
		tokens = append(tokens, token)
	}

	return tokens, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanToken(row rowScanner) (*entities.Token, error) {
	token := &entities.Token{}
	var patientName sql.NullString

	err := row.Scan(
		&token.ID,
		&token.TokenNumber,
		&token.DoctorID,
		&patientName,
		&token.Source,
		&token.BaseWeight,
		&token.PriorityScore,
		&token.ScheduledTime,
		&token.EstimatedStartTime,
		&token.Status,
		&token.CreatedAt,
		&token.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	token.PatientName = patientName.String
	return token, nil
}
