package entities

import (
	"time"
)

// TokenSource is the origin category of a token request
type TokenSource string

const (
	SourceOnline    TokenSource = "Online"
	SourceWalkIn    TokenSource = "Walk-in"
	SourcePriority  TokenSource = "Priority"
	SourceFollowUp  TokenSource = "Follow-up"
	SourceEmergency TokenSource = "Emergency"
)

// DefaultBaseWeight is used for sources outside the known set. Unknown
// sources degrade to the walk-in weight rather than being rejected.
const DefaultBaseWeight = 10

// WaitScorePerMinute is the rate at which a waiting token's priority
// score grows.
const WaitScorePerMinute = 0.5

// sourceWeights maps each source to its fixed base weight. "Paid Priority"
// is a legacy alias still accepted at issuance.
var sourceWeights = map[TokenSource]float64{
	SourceEmergency:              100,
	SourcePriority:               50,
	TokenSource("Paid Priority"): 50,
	SourceFollowUp:               30,
	SourceOnline:                 20,
	SourceWalkIn:                 10,
}

// BaseWeight returns the fixed priority contribution of the source
func (s TokenSource) BaseWeight() float64 {
	if w, ok := sourceWeights[s]; ok {
		return w
	}
	return DefaultBaseWeight
}

// TokenStatus is the lifecycle state of a token
type TokenStatus string

const (
	StatusWaiting        TokenStatus = "Waiting"
	StatusInConsultation TokenStatus = "In-Consultation"
	StatusCompleted      TokenStatus = "Completed"
	StatusCancelled      TokenStatus = "Cancelled"
	StatusNoShow         TokenStatus = "No-Show"
)

// Terminal reports whether the status is a final state the engine never
// re-ranks or mutates.
func (s TokenStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Token is one request's position in a doctor's queue, bound to a slot by
// its ScheduledTime.
type Token struct {
	ID                 string      `json:"id" db:"id"`
	TokenNumber        string      `json:"token_number" db:"token_number"`
	DoctorID           string      `json:"doctor_id" db:"doctor_id"`
	PatientName        string      `json:"patient_name,omitempty" db:"patient_name"`
	Source             TokenSource `json:"source" db:"source"`
	BaseWeight         float64     `json:"base_weight" db:"base_weight"`
	PriorityScore      float64     `json:"priority_score" db:"priority_score"`
	ScheduledTime      time.Time   `json:"scheduled_time" db:"scheduled_time"`
	EstimatedStartTime time.Time   `json:"estimated_start_time" db:"estimated_start_time"`
	Status             TokenStatus `json:"status" db:"status"`
	CreatedAt          time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at" db:"updated_at"`
}

// ScoreAt computes the priority score for a token that has waited since
// CreatedAt: baseWeight + waitMinutes * 0.5.
func (t *Token) ScoreAt(now time.Time) float64 {
	waited := now.Sub(t.CreatedAt)
	if waited < 0 {
		waited = 0
	}
	return t.BaseWeight + waited.Minutes()*WaitScorePerMinute
}

// RefreshScore recomputes PriorityScore from the elapsed wait time. Only
// Waiting tokens accrue score; all other states keep their frozen value.
// Returns true when the stored score changed.
func (t *Token) RefreshScore(now time.Time) bool {
	if t.Status != StatusWaiting {
		return false
	}
	score := t.ScoreAt(now)
	if score == t.PriorityScore {
		return false
	}
	t.PriorityScore = score
	return true
}
