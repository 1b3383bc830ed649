package providers

import (
	"context"

	"github.com/zatekoja/elastic-opd/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to queue
// change events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.QueueEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.QueueEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

const (
	// EventChannelQueueUpdates is the channel carrying updates for every queue
	EventChannelQueueUpdates = "queue:updates"

	// EventChannelQueuePrefix is the prefix for per-doctor queue channels
	EventChannelQueuePrefix = "queue:"
)

// GetQueueChannel returns the channel name for one doctor's queue
func GetQueueChannel(doctorID string) string {
	return EventChannelQueuePrefix + doctorID
}
