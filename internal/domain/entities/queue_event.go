package entities

import (
	"time"
)

// QueueEventType identifies what changed in a doctor's queue
type QueueEventType string

const (
	QueueEventTokenIssued    QueueEventType = "token.issued"
	QueueEventTokenCancelled QueueEventType = "token.cancelled"
	QueueEventTokenBumped    QueueEventType = "token.bumped"
	QueueEventDelayApplied   QueueEventType = "queue.delayed"
)

// QueueEvent is published on a doctor's queue channel whenever slot
// membership or estimated times change.
type QueueEvent struct {
	ID          string         `json:"id"`
	Type        QueueEventType `json:"type"`
	DoctorID    string         `json:"doctor_id"`
	TokenID     string         `json:"token_id,omitempty"`
	TokenNumber string         `json:"token_number,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}
