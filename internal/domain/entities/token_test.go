package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBaseWeight(t *testing.T) {
	tests := []struct {
		source TokenSource
		weight float64
	}{
		{SourceEmergency, 100},
		{SourcePriority, 50},
		{TokenSource("Paid Priority"), 50},
		{SourceFollowUp, 30},
		{SourceOnline, 20},
		{SourceWalkIn, 10},
		{TokenSource("Telephone"), 10},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.weight, tt.source.BaseWeight(), "source %q", tt.source)
	}
}

func TestScoreAt(t *testing.T) {
	created := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	token := &Token{BaseWeight: 20, CreatedAt: created}

	assert.Equal(t, 20.0, token.ScoreAt(created))
	assert.Equal(t, 25.0, token.ScoreAt(created.Add(10*time.Minute)))
	assert.Equal(t, 50.0, token.ScoreAt(created.Add(time.Hour)))

	// Clock skew never reduces the score below the base weight.
	assert.Equal(t, 20.0, token.ScoreAt(created.Add(-time.Minute)))
}

func TestRefreshScoreOnlyWhileWaiting(t *testing.T) {
	created := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	later := created.Add(20 * time.Minute)

	waiting := &Token{BaseWeight: 10, PriorityScore: 10, Status: StatusWaiting, CreatedAt: created}
	assert.True(t, waiting.RefreshScore(later))
	assert.Equal(t, 20.0, waiting.PriorityScore)
	assert.False(t, waiting.RefreshScore(later))

	frozen := &Token{BaseWeight: 10, PriorityScore: 10, Status: StatusInConsultation, CreatedAt: created}
	assert.False(t, frozen.RefreshScore(later))
	assert.Equal(t, 10.0, frozen.PriorityScore)
}

func TestTerminalStatuses(t *testing.T) {
	assert.False(t, StatusWaiting.Terminal())
	assert.False(t, StatusInConsultation.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.True(t, StatusNoShow.Terminal())
}
