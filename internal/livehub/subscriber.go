package livehub

import "complaintdesk/backend/internal/models"

// Subscriber is any consumer of change events: a WebSocket connection or an
// in-process feed. The hub owns the send channel and is the only writer.
type Subscriber interface {
	// GetID returns a unique id of the subscription.
	GetID() string
	// GetFilters returns the filters; an event matching any of them is delivered.
	GetFilters() []Filter
	// GetSendChannel returns the buffered channel the hub delivers into.
	GetSendChannel() chan<- models.ChangeEvent
	// Run starts the subscriber goroutines.
	Run()
	// Close stops delivery. The hub calls it on unregister or when the buffer is full.
	Close()
}

func matchesAny(s Subscriber, ev models.ChangeEvent) bool {
	for _, f := range s.GetFilters() {
		if f.Matches(ev) {
			return true
		}
	}
	return false
}
