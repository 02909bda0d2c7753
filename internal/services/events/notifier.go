package events

import (
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mediascope/internal/interfaces"
	"github.com/ternarybob/mediascope/internal/models"
	"golang.org/x/time/rate"
)

// Notifier implements the Notifier interface with a per-media subscriber
// registry. Subscribers for different media items never see each other's
// events.
type Notifier struct {
	subscribers map[string]map[interfaces.Subscriber]struct{}
	limiters    map[string]*rate.Limiter
	throttle    time.Duration
	mu          sync.RWMutex
	logger      arbor.ILogger
}

// NewNotifier creates a new notifier. A non-zero throttle limits the rate
// of progress events per media item; terminal events always go through.
func NewNotifier(logger arbor.ILogger, throttle time.Duration) *Notifier {
	return &Notifier{
		subscribers: make(map[string]map[interfaces.Subscriber]struct{}),
		limiters:    make(map[string]*rate.Limiter),
		throttle:    throttle,
		logger:      logger,
	}
}

// Subscribe registers a subscriber for a media item's events
func (n *Notifier) Subscribe(mediaID string, sub interfaces.Subscriber) {
	if sub == nil {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	set, ok := n.subscribers[mediaID]
	if !ok {
		set = make(map[interfaces.Subscriber]struct{})
		n.subscribers[mediaID] = set
	}
	set[sub] = struct{}{}

	n.logger.Debug().
		Str("media_id", mediaID).
		Int("subscriber_count", len(set)).
		Msg("Subscriber registered")
}

// Unsubscribe removes a subscriber. The media item's entry is dropped when
// its last subscriber leaves, so the registry never grows without bound.
func (n *Notifier) Unsubscribe(mediaID string, sub interfaces.Subscriber) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.removeLocked(mediaID, sub)
}

func (n *Notifier) removeLocked(mediaID string, sub interfaces.Subscriber) {
	set, ok := n.subscribers[mediaID]
	if !ok {
		return
	}

	delete(set, sub)
	if len(set) == 0 {
		delete(n.subscribers, mediaID)
		delete(n.limiters, mediaID)
	}

	n.logger.Debug().
		Str("media_id", mediaID).
		Int("subscriber_count", len(set)).
		Msg("Subscriber removed")
}

// Publish delivers an event to every subscriber of a media item. No
// subscribers means no work. A subscriber whose Send fails is dropped so
// one dead connection cannot wedge future publishes.
func (n *Notifier) Publish(mediaID string, event models.Event) {
	if !event.Terminal() && !n.allowProgress(mediaID) {
		return
	}

	n.mu.RLock()
	set := n.subscribers[mediaID]
	targets := make([]interfaces.Subscriber, 0, len(set))
	for sub := range set {
		targets = append(targets, sub)
	}
	n.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	var failed []interfaces.Subscriber
	for _, sub := range targets {
		if err := sub.Send(event); err != nil {
			n.logger.Warn().
				Err(err).
				Str("media_id", mediaID).
				Str("event_type", event.EventType()).
				Msg("Subscriber send failed, dropping subscriber")
			failed = append(failed, sub)
		}
	}

	if len(failed) > 0 {
		n.mu.Lock()
		for _, sub := range failed {
			n.removeLocked(mediaID, sub)
		}
		n.mu.Unlock()
	}
}

// SubscriberCount returns the number of live subscribers for a media item
func (n *Notifier) SubscriberCount(mediaID string) int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subscribers[mediaID])
}

// allowProgress rate-limits progress events per media item. Terminal
// events bypass this check entirely.
func (n *Notifier) allowProgress(mediaID string) bool {
	if n.throttle <= 0 {
		return true
	}

	n.mu.Lock()
	limiter, ok := n.limiters[mediaID]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(n.throttle), 1)
		n.limiters[mediaID] = limiter
	}
	n.mu.Unlock()

	return limiter.Allow()
}
