package repositories

import (
	"context"
	"time"

	"github.com/zatekoja/elastic-opd/internal/domain/entities"
)

// TokenRepository defines the interface for token data operations. Slot
// membership is keyed by exact ScheduledTime equality.
type TokenRepository interface {
	// Create creates a new token
	Create(ctx context.Context, token *entities.Token) error

	// GetByID retrieves a token by ID
	GetByID(ctx context.Context, id string) (*entities.Token, error)

	// Update persists the mutable scheduling fields of a token
	Update(ctx context.Context, token *entities.Token) error

	// CountByDoctor counts every token ever issued for a doctor,
	// cancelled ones included. Token numbers derive from this lifetime
	// count and are never reused.
	CountByDoctor(ctx context.Context, doctorID string) (int, error)

	// CountActiveInSlot counts non-Cancelled tokens bound to the slot
	// starting at slotStart
	CountActiveInSlot(ctx context.Context, doctorID string, slotStart time.Time) (int, error)

	// ListActiveInSlot retrieves non-Cancelled tokens bound to the slot,
	// ordered by priority score ascending (lowest first)
	ListActiveInSlot(ctx context.Context, doctorID string, slotStart time.Time) ([]*entities.Token, error)

	// ListWaitingByDoctor retrieves all Waiting tokens for a doctor
	ListWaitingByDoctor(ctx context.Context, doctorID string) ([]*entities.Token, error)

	// ListQueue retrieves Waiting and In-Consultation tokens for a
	// doctor, ordered by estimated start time ascending, then priority
	// score descending
	ListQueue(ctx context.Context, doctorID string) ([]*entities.Token, error)

	// ShiftEstimatedStartTimes pushes the estimated start time of every
	// Waiting token of the doctor forward by delay in one bulk update.
	// Returns the number of tokens shifted.
	ShiftEstimatedStartTimes(ctx context.Context, doctorID string, delay time.Duration) (int64, error)
}
