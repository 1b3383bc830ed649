package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/elastic-opd/internal/domain/entities"
)

type stubEventBus struct {
	events     chan *entities.QueueEvent
	subscribed string
	err        error
}

func (b *stubEventBus) Publish(ctx context.Context, channel string, event *entities.QueueEvent) error {
	return b.err
}

func (b *stubEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.QueueEvent, error) {
	b.subscribed = channel
	return b.events, b.err
}

func (b *stubEventBus) Unsubscribe(ctx context.Context, channel string) error { return nil }

func (b *stubEventBus) Close() error { return nil }

func TestStreamQueueUpdates(t *testing.T) {
	bus := &stubEventBus{events: make(chan *entities.QueueEvent, 1)}
	handler := NewSSEHandler(bus)

	bus.events <- &entities.QueueEvent{
		ID:          "evt-1",
		Type:        entities.QueueEventTokenIssued,
		DoctorID:    "doc-1",
		TokenNumber: "CAR-001",
	}
	close(bus.events)

	req := httptest.NewRequest(http.MethodGet, "/api/stream/doctors/doc-1/queue", nil)
	req.SetPathValue("id", "doc-1")
	rec := httptest.NewRecorder()

	handler.StreamQueueUpdates(rec, req)

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "queue:doc-1", bus.subscribed)

	body := rec.Body.String()
	assert.Contains(t, body, "event: connected")
	assert.Contains(t, body, "event: token.issued")
	assert.Contains(t, body, "CAR-001")
}

func TestStreamQueueUpdatesRequiresDoctorID(t *testing.T) {
	handler := NewSSEHandler(&stubEventBus{})

	req := httptest.NewRequest(http.MethodGet, "/api/stream/doctors//queue", nil)
	rec := httptest.NewRecorder()

	handler.StreamQueueUpdates(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
