package entities

import (
	"strings"
	"time"
	"unicode"

	apperrors "github.com/zatekoja/elastic-opd/pkg/errors"
)

// Slot is a capacity-bounded time window during which a doctor can serve
// tokens. Slots are tried for admission in the order they are stored.
type Slot struct {
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	MaxCapacity int       `json:"max_capacity"`
}

// Doctor is the resource being scheduled. ActiveSlots are immutable once
// the doctor is created.
type Doctor struct {
	ID                  string    `json:"id" db:"id"`
	Name                string    `json:"name" db:"name"`
	Department          string    `json:"department" db:"department"`
	AvgConsultationTime int       `json:"avg_consultation_time" db:"avg_consultation_time"`
	ActiveSlots         []Slot    `json:"active_slots" db:"active_slots"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

// ConsultationInterval is the spacing unit between estimated start times
// within one slot.
func (d *Doctor) ConsultationInterval() time.Duration {
	return time.Duration(d.AvgConsultationTime) * time.Minute
}

// TokenPrefix derives the token-number prefix from the department: the
// first three letters, uppercased.
func (d *Doctor) TokenPrefix() string {
	prefix := make([]rune, 0, 3)
	for _, r := range d.Department {
		if len(prefix) == 3 {
			break
		}
		prefix = append(prefix, unicode.ToUpper(r))
	}
	return string(prefix)
}

// Validate checks the fields required at creation
func (d *Doctor) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return apperrors.NewValidationError("doctor name is required")
	}
	if strings.TrimSpace(d.Department) == "" {
		return apperrors.NewValidationError("department is required")
	}
	if d.AvgConsultationTime <= 0 {
		return apperrors.NewValidationError("avg consultation time must be a positive number of minutes")
	}
	if len(d.ActiveSlots) == 0 {
		return apperrors.NewValidationError("at least one active slot is required")
	}
	for _, slot := range d.ActiveSlots {
		if !slot.Start.Before(slot.End) {
			return apperrors.NewValidationError("slot start must be before slot end")
		}
		if slot.MaxCapacity <= 0 {
			return apperrors.NewValidationError("slot max capacity must be positive")
		}
	}
	return nil
}
