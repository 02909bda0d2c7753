package events

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mediascope/internal/models"
)

// recordingSubscriber collects events and optionally fails every send
type recordingSubscriber struct {
	mu     sync.Mutex
	events []models.Event
	fail   bool
}

func (s *recordingSubscriber) Send(event models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("connection closed")
	}
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSubscriber) received() []models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Event, len(s.events))
	copy(out, s.events)
	return out
}

func TestPublishScopedToMediaID(t *testing.T) {
	n := NewNotifier(arbor.NewLogger(), 0)

	subA := &recordingSubscriber{}
	subB := &recordingSubscriber{}
	n.Subscribe("media-a", subA)
	n.Subscribe("media-b", subB)

	n.Publish("media-a", models.NewProgressEvent("video", 20, "Extracting frames"))

	if got := len(subA.received()); got != 1 {
		t.Fatalf("Expected 1 event for media-a subscriber, got %d", got)
	}
	if got := len(subB.received()); got != 0 {
		t.Fatalf("media-b subscriber must not see media-a events, got %d", got)
	}
}

func TestPublishWithNoSubscribersIsNoOp(t *testing.T) {
	n := NewNotifier(arbor.NewLogger(), 0)

	// Must not panic or error
	n.Publish("media-x", models.NewErrorEvent("analysis failed"))

	if count := n.SubscriberCount("media-x"); count != 0 {
		t.Fatalf("Expected 0 subscribers, got %d", count)
	}
}

func TestFailedSendDropsSubscriber(t *testing.T) {
	n := NewNotifier(arbor.NewLogger(), 0)

	good := &recordingSubscriber{}
	bad := &recordingSubscriber{fail: true}
	n.Subscribe("media-1", good)
	n.Subscribe("media-1", bad)

	n.Publish("media-1", models.NewProgressEvent("audio", 60, "Transcribing"))

	if count := n.SubscriberCount("media-1"); count != 1 {
		t.Fatalf("Expected failed subscriber to be dropped, count=%d", count)
	}

	// Healthy subscriber keeps receiving
	n.Publish("media-1", models.NewAnalysisCompleteEvent("media-1", map[string]interface{}{"summary": "done"}))
	if got := len(good.received()); got != 2 {
		t.Fatalf("Expected 2 events for healthy subscriber, got %d", got)
	}
}

func TestUnsubscribeRemovesEmptyEntry(t *testing.T) {
	n := NewNotifier(arbor.NewLogger(), 0)

	sub := &recordingSubscriber{}
	n.Subscribe("media-1", sub)
	n.Unsubscribe("media-1", sub)

	if count := n.SubscriberCount("media-1"); count != 0 {
		t.Fatalf("Expected 0 subscribers after unsubscribe, got %d", count)
	}

	// Unsubscribing twice is harmless
	n.Unsubscribe("media-1", sub)
}

func TestProgressThrottleNeverDropsTerminalEvents(t *testing.T) {
	n := NewNotifier(arbor.NewLogger(), time.Minute)

	sub := &recordingSubscriber{}
	n.Subscribe("media-1", sub)

	// First progress event passes, the burst after it is throttled
	n.Publish("media-1", models.NewProgressEvent("video", 0, "Starting"))
	n.Publish("media-1", models.NewProgressEvent("video", 20, "Extracting frames"))
	n.Publish("media-1", models.NewProgressEvent("video", 60, "Analyzing frames"))

	// Terminal event always goes through
	n.Publish("media-1", models.NewAnalysisCompleteEvent("media-1", map[string]interface{}{}))

	events := sub.received()
	if len(events) != 2 {
		t.Fatalf("Expected 2 delivered events (1 progress + terminal), got %d", len(events))
	}
	if events[len(events)-1].EventType() != models.EventTypeAnalysisComplete {
		t.Fatalf("Last event must be terminal, got %s", events[len(events)-1].EventType())
	}
}

func TestConcurrentPublishAndSubscribe(t *testing.T) {
	n := NewNotifier(arbor.NewLogger(), 0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			sub := &recordingSubscriber{}
			n.Subscribe("media-1", sub)
			n.Unsubscribe("media-1", sub)
		}()
		go func() {
			defer wg.Done()
			n.Publish("media-1", models.NewProgressEvent("text", 90, "Summarizing"))
		}()
	}
	wg.Wait()
}
