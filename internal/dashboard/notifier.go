package dashboard

import (
	"sync"

	"github.com/google/uuid"

	"github.com/storefront-kit/catalog-dashboard/internal/view"
)

// Severity classifies a notification for the presentation surface.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification is a dismissible user-facing message. The ID lets a
// surface deduplicate or dismiss individual toasts.
type Notification struct {
	ID       uuid.UUID `json:"id"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
}

// EventKind discriminates controller events.
type EventKind string

const (
	// EventView signals that the derived view changed and carries the
	// fresh projection.
	EventView EventKind = "view"
	// EventNotification carries a user-facing message.
	EventNotification EventKind = "notification"
)

// Busy reports which workflows have a request in flight. It is
// advisory: surfaces use it to disable re-submission, the controller
// does not enforce it.
type Busy struct {
	Loading  bool `json:"loading"`
	Updating bool `json:"updating"`
	Creating bool `json:"creating"`
}

// Event is what presentation surfaces receive when they subscribe to
// the controller.
type Event struct {
	Kind         EventKind     `json:"kind"`
	View         *view.View    `json:"view,omitempty"`
	Busy         Busy          `json:"busy"`
	LoadFailed   bool          `json:"loadFailed"`
	Notification *Notification `json:"notification,omitempty"`
}

// Notifier fans controller events out to subscribers. Sends never
// block: a subscriber whose buffer is full misses the event.
type Notifier struct {
	mu   sync.Mutex
	subs map[uint64]chan Event
	next uint64
}

// NewNotifier returns an empty Notifier.
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[uint64]chan Event)}
}

// Subscribe registers a subscriber with the given channel buffer and
// returns the event channel plus a cancel function that closes it.
func (n *Notifier) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	n.mu.Lock()
	id := n.next
	n.next++
	n.subs[id] = ch
	n.mu.Unlock()

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if sub, ok := n.subs[id]; ok {
			delete(n.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber that can accept it
// without blocking.
func (n *Notifier) Publish(e Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs {
		select {
		case ch <- e:
		default:
		}
	}
}
