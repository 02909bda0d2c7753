package interfaces

import (
	"github.com/ternarybob/mediascope/internal/models"
)

// Subscriber receives events for a single media item. Send must be safe
// for concurrent use; a non-nil error tells the notifier to drop the
// subscriber.
type Subscriber interface {
	Send(event models.Event) error
}

// Notifier fans events out to subscribers keyed by media ID. Publishing
// to a media item with no subscribers is a no-op, never an error.
type Notifier interface {
	Subscribe(mediaID string, sub Subscriber)
	Unsubscribe(mediaID string, sub Subscriber)
	Publish(mediaID string, event models.Event)
	// SubscriberCount returns the number of live subscribers for a media item
	SubscriberCount(mediaID string) int
}
