package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/elastic-opd/internal/domain/entities"
	"github.com/zatekoja/elastic-opd/internal/domain/providers"
	"github.com/zatekoja/elastic-opd/internal/domain/repositories"
	apperrors "github.com/zatekoja/elastic-opd/pkg/errors"
)

// bumpFallback is how far a preempted token is pushed when the doctor has
// no later slot to move it into.
const bumpFallback = time.Hour

// QueueService is the scheduling engine: slot admission, emergency
// preemption, estimate re-leveling, cancellation, and delay propagation.
type QueueService struct {
	doctors  repositories.DoctorRepository
	tokens   repositories.TokenRepository
	eventBus providers.EventBus
	locks    doctorLocks
	now      func() time.Time
}

// NewQueueService creates a new queue service
func NewQueueService(doctors repositories.DoctorRepository, tokens repositories.TokenRepository) *QueueService {
	return &QueueService{
		doctors: doctors,
		tokens:  tokens,
		now:     time.Now,
	}
}

// SetEventBus enables queue change notifications
func (s *QueueService) SetEventBus(bus providers.EventBus) {
	s.eventBus = bus
}

// SetClock overrides the wall clock. Used by tests that need
// deterministic wait times and slot boundaries.
func (s *QueueService) SetClock(now func() time.Time) {
	s.now = now
}

// bumpRecord remembers a preempted token's previous slot binding so a
// failed admission can restore it.
type bumpRecord struct {
	token    *entities.Token
	previous time.Time
}

// IssueToken admits a new token for the doctor. Slots are tried in stored
// order; an Emergency arrival may preempt the lowest-priority occupant of a
// full slot. The whole doctor queue is re-leveled before the token is
// returned, so its estimated start time reflects its priority rank.
func (s *QueueService) IssueToken(ctx context.Context, doctorID string, source entities.TokenSource, patientName string) (*entities.Token, error) {
	if doctorID == "" {
		return nil, apperrors.NewValidationError("doctorId is required")
	}
	if source == "" {
		return nil, apperrors.NewValidationError("source is required")
	}

	unlock := s.locks.lock(doctorID)
	defer unlock()

	doctor, err := s.doctors.GetByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	target, bumped, err := s.selectSlot(ctx, doctor, source, now)
	if err != nil {
		return nil, err
	}

	issued, err := s.tokens.CountByDoctor(ctx, doctorID)
	if err != nil {
		s.restoreBumped(ctx, bumped)
		return nil, err
	}

	weight := source.BaseWeight()
	token := &entities.Token{
		ID:            uuid.New().String(),
		TokenNumber:   fmt.Sprintf("%s-%03d", doctor.TokenPrefix(), issued+1),
		DoctorID:      doctorID,
		PatientName:   patientName,
		Source:        source,
		BaseWeight:    weight,
		PriorityScore: weight,
		ScheduledTime: target.Start,
		// Provisional; corrected by the re-leveling pass below.
		EstimatedStartTime: target.Start,
		Status:             entities.StatusWaiting,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.tokens.Create(ctx, token); err != nil {
		s.restoreBumped(ctx, bumped)
		return nil, err
	}

	// The insert is the commit point: from here the token exists and the
	// issue succeeds. A re-leveling failure leaves provisional estimates
	// that the next re-leveling pass corrects.
	if err := s.recomputeEstimates(ctx, doctor, now); err != nil {
		log.Warn().
			Err(err).
			Str("doctor_id", doctorID).
			Str("token_id", token.ID).
			Msg("re-leveling after issue failed, keeping provisional estimates")
	}

	if bumped != nil {
		s.publish(ctx, entities.QueueEventTokenBumped, bumped.token)
	}
	s.publish(ctx, entities.QueueEventTokenIssued, token)

	refreshed, err := s.tokens.GetByID(ctx, token.ID)
	if err != nil {
		log.Warn().
			Err(err).
			Str("token_id", token.ID).
			Msg("failed to re-read issued token, returning provisional state")
		return token, nil
	}
	return refreshed, nil
}

// selectSlot walks the doctor's slots in stored order and returns the first
// one the token can be admitted to, together with the record of any token
// preempted to make room.
func (s *QueueService) selectSlot(ctx context.Context, doctor *entities.Doctor, source entities.TokenSource, now time.Time) (*entities.Slot, *bumpRecord, error) {
	for i := range doctor.ActiveSlots {
		slot := &doctor.ActiveSlots[i]
		if !slot.End.After(now) {
			continue
		}

		count, err := s.tokens.CountActiveInSlot(ctx, doctor.ID, slot.Start)
		if err != nil {
			return nil, nil, err
		}
		if count < slot.MaxCapacity {
			return slot, nil, nil
		}

		if source != entities.SourceEmergency {
			continue
		}

		bumped, err := s.preempt(ctx, doctor, slot)
		if err != nil {
			return nil, nil, err
		}
		if bumped != nil {
			return slot, bumped, nil
		}
		// Lowest occupant is itself an Emergency; try the next slot.
	}

	return nil, nil, apperrors.NewNoSlotError("no available slot")
}

// preempt bumps the lowest-priority occupant of a full slot into the next
// later slot, freeing one capacity unit. Emergencies never bump
// Emergencies; in that case preempt returns nil without error.
func (s *QueueService) preempt(ctx context.Context, doctor *entities.Doctor, slot *entities.Slot) (*bumpRecord, error) {
	occupants, err := s.tokens.ListActiveInSlot(ctx, doctor.ID, slot.Start)
	if err != nil {
		return nil, err
	}
	if len(occupants) == 0 {
		return nil, nil
	}

	lowest := occupants[0]
	if lowest.Source == entities.SourceEmergency {
		return nil, nil
	}

	previous := lowest.ScheduledTime
	next := nextSlotStart(doctor.ActiveSlots, previous)
	if next.IsZero() {
		// No later slot exists; push the token forward a fixed hour.
		next = previous.Add(bumpFallback)
	}

	lowest.ScheduledTime = next
	if err := s.tokens.Update(ctx, lowest); err != nil {
		return nil, err
	}

	log.Warn().
		Str("doctor_id", doctor.ID).
		Str("token_number", lowest.TokenNumber).
		Time("from", previous).
		Time("to", next).
		Msg("token bumped by emergency arrival")

	return &bumpRecord{token: lowest, previous: previous}, nil
}

// nextSlotStart returns the start of the first stored slot strictly later
// than after, or the zero time when none exists.
func nextSlotStart(slots []entities.Slot, after time.Time) time.Time {
	for _, slot := range slots {
		if slot.Start.After(after) {
			return slot.Start
		}
	}
	return time.Time{}
}

// restoreBumped undoes a preemption whose admission failed, so a failed
// issue leaves no partial state behind.
func (s *QueueService) restoreBumped(ctx context.Context, bumped *bumpRecord) {
	if bumped == nil {
		return
	}
	bumped.token.ScheduledTime = bumped.previous
	if err := s.tokens.Update(ctx, bumped.token); err != nil {
		log.Error().
			Err(err).
			Str("token_id", bumped.token.ID).
			Msg("failed to restore bumped token after aborted issue")
	}
}

// CancelToken marks the token Cancelled and re-levels the owning doctor's
// queue so later tokens shift into the freed capacity. Cancelling an
// already-terminal token is a no-op success.
func (s *QueueService) CancelToken(ctx context.Context, tokenID string) (*entities.Token, error) {
	if tokenID == "" {
		return nil, apperrors.NewValidationError("token ID is required")
	}

	token, err := s.tokens.GetByID(ctx, tokenID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(token.DoctorID)
	defer unlock()

	// Re-read under the lock; the status may have changed in between.
	token, err = s.tokens.GetByID(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	if token.Status.Terminal() {
		return token, nil
	}

	token.Status = entities.StatusCancelled
	if err := s.tokens.Update(ctx, token); err != nil {
		return nil, err
	}

	doctor, err := s.doctors.GetByID(ctx, token.DoctorID)
	if err != nil {
		return nil, err
	}
	if err := s.recomputeEstimates(ctx, doctor, s.now()); err != nil {
		return nil, err
	}

	s.publish(ctx, entities.QueueEventTokenCancelled, token)
	return token, nil
}

// ApplyDelay shifts the estimated start time of every Waiting token of the
// doctor forward in one bulk adjustment. Schedule slippage is not a
// re-ranking event: scheduledTime, priorityScore, and capacity accounting
// are untouched and re-leveling is bypassed.
func (s *QueueService) ApplyDelay(ctx context.Context, doctorID string, delayMinutes int) error {
	if doctorID == "" {
		return apperrors.NewValidationError("doctorId is required")
	}
	if delayMinutes <= 0 {
		return apperrors.NewValidationError("delayMinutes must be positive")
	}

	unlock := s.locks.lock(doctorID)
	defer unlock()

	if _, err := s.doctors.GetByID(ctx, doctorID); err != nil {
		return err
	}

	shifted, err := s.tokens.ShiftEstimatedStartTimes(ctx, doctorID, time.Duration(delayMinutes)*time.Minute)
	if err != nil {
		return err
	}

	log.Info().
		Str("doctor_id", doctorID).
		Int("delay_minutes", delayMinutes).
		Int64("tokens_shifted", shifted).
		Msg("delay propagated")

	s.publish(ctx, entities.QueueEventDelayApplied, &entities.Token{DoctorID: doctorID})
	return nil
}

// GetQueue returns the doctor's Waiting and In-Consultation tokens ordered
// by estimated start time, then by priority score for ties. Scores of
// Waiting tokens are refreshed from their current wait time and persisted
// before ordering.
func (s *QueueService) GetQueue(ctx context.Context, doctorID string) ([]*entities.Token, error) {
	if doctorID == "" {
		return nil, apperrors.NewValidationError("doctorId is required")
	}

	unlock := s.locks.lock(doctorID)
	defer unlock()

	if _, err := s.doctors.GetByID(ctx, doctorID); err != nil {
		return nil, err
	}

	queue, err := s.tokens.ListQueue(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	for _, token := range queue {
		if token.RefreshScore(now) {
			if err := s.tokens.Update(ctx, token); err != nil {
				return nil, err
			}
		}
	}

	sort.SliceStable(queue, func(i, j int) bool {
		if !queue[i].EstimatedStartTime.Equal(queue[j].EstimatedStartTime) {
			return queue[i].EstimatedStartTime.Before(queue[j].EstimatedStartTime)
		}
		return queue[i].PriorityScore > queue[j].PriorityScore
	})

	return queue, nil
}

// RecomputeEstimates re-levels the doctor's queue: every Waiting token gets
// an estimated start time derived from its priority rank within its slot
// bucket. Idempotent on an unchanged token set.
func (s *QueueService) RecomputeEstimates(ctx context.Context, doctorID string) error {
	if doctorID == "" {
		return apperrors.NewValidationError("doctorId is required")
	}

	unlock := s.locks.lock(doctorID)
	defer unlock()

	doctor, err := s.doctors.GetByID(ctx, doctorID)
	if err != nil {
		return err
	}
	return s.recomputeEstimates(ctx, doctor, s.now())
}

// recomputeEstimates is the re-leveling pass. Caller holds the doctor lock.
// Tokens are bucketed by exact scheduledTime; within a bucket they are
// ranked by priority score descending (ties broken by createdAt, then ID,
// for stability) and spaced one consultation interval apart starting at
// max(bucketStart, now). Only tokens whose estimate changed are written.
func (s *QueueService) recomputeEstimates(ctx context.Context, doctor *entities.Doctor, now time.Time) error {
	waiting, err := s.tokens.ListWaitingByDoctor(ctx, doctor.ID)
	if err != nil {
		return err
	}

	buckets := make(map[int64][]*entities.Token)
	for _, token := range waiting {
		key := token.ScheduledTime.UnixNano()
		buckets[key] = append(buckets[key], token)
	}

	interval := doctor.ConsultationInterval()
	for _, bucket := range buckets {
		sort.SliceStable(bucket, func(i, j int) bool {
			if bucket[i].PriorityScore != bucket[j].PriorityScore {
				return bucket[i].PriorityScore > bucket[j].PriorityScore
			}
			if !bucket[i].CreatedAt.Equal(bucket[j].CreatedAt) {
				return bucket[i].CreatedAt.Before(bucket[j].CreatedAt)
			}
			return bucket[i].ID < bucket[j].ID
		})

		start := bucket[0].ScheduledTime
		if start.Before(now) {
			start = now
		}

		for i, token := range bucket {
			estimate := start.Add(time.Duration(i) * interval)
			if token.EstimatedStartTime.Equal(estimate) {
				continue
			}
			token.EstimatedStartTime = estimate
			if err := s.tokens.Update(ctx, token); err != nil {
				return err
			}
		}
	}

	return nil
}

// publish emits a queue event on the doctor's channel and the global
// updates channel. Event delivery is best effort.
func (s *QueueService) publish(ctx context.Context, eventType entities.QueueEventType, token *entities.Token) {
	if s.eventBus == nil {
		return
	}
	event := &entities.QueueEvent{
		ID:          uuid.New().String(),
		Type:        eventType,
		DoctorID:    token.DoctorID,
		TokenID:     token.ID,
		TokenNumber: token.TokenNumber,
		Timestamp:   s.now(),
	}
	for _, channel := range []string{providers.GetQueueChannel(token.DoctorID), providers.EventChannelQueueUpdates} {
		if err := s.eventBus.Publish(ctx, channel, event); err != nil {
			log.Warn().Err(err).Str("channel", channel).Msg("failed to publish queue event")
		}
	}
}
