// Package livehub fans row-change events out to live subscribers. Events travel
// between server instances over Redis pub/sub and are delivered locally when no
// broker is configured.
package livehub

import (
	"context"
	"errors"
	"log/slog"

	"complaintdesk/backend/internal/logging"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/observability"
	"complaintdesk/backend/internal/storage"
)

const eventsBuffer = 256

// Hub є диспетчером підписок. Усі зміни стану виконуються в горутині Run.
type Hub struct {
	Broker storage.ChangeBroker

	subscribers map[string]Subscriber

	RegisterCh   chan Subscriber
	UnregisterCh chan Subscriber
	EventsCh     chan models.ChangeEvent

	done chan struct{}
	log  *slog.Logger
}

// NewHub створює хаб. якщо broker дорівнює nil, доставка лише локальна.
func NewHub(broker storage.ChangeBroker) *Hub {
	return &Hub{
		Broker:       broker,
		subscribers:  make(map[string]Subscriber),
		RegisterCh:   make(chan Subscriber),
		UnregisterCh: make(chan Subscriber),
		EventsCh:     make(chan models.ChangeEvent, eventsBuffer),
		done:         make(chan struct{}),
		log:          logging.Component("livehub"),
	}
}

// Run обробляє реєстрації та події, доки ctx не скасовано.
func (h *Hub) Run(ctx context.Context) error {
	defer h.shutdown()

	if err := h.StartPubSubListener(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case sub := <-h.RegisterCh:
			h.subscribers[sub.GetID()] = sub
			observability.LiveSubscribers.Inc()
			h.log.Debug("subscriber registered", "id", sub.GetID(), "filters", len(sub.GetFilters()))

		case sub := <-h.UnregisterCh:
			h.remove(sub.GetID())

		case ev := <-h.EventsCh:
			h.dispatch(ev)
		}
	}
}

// Register adds a subscriber. It is a no-op once the hub has stopped.
func (h *Hub) Register(s Subscriber) bool {
	select {
	case h.RegisterCh <- s:
		return true
	case <-h.done:
		s.Close()
		return false
	}
}

func (h *Hub) Unregister(s Subscriber) {
	select {
	case h.UnregisterCh <- s:
	case <-h.done:
	}
}

// Publish sends an event to every instance through the broker, falling back
// to local delivery when the broker is absent or failing.
func (h *Hub) Publish(ctx context.Context, ev models.ChangeEvent) {
	if h.Broker != nil {
		err := h.Broker.PublishChange(ctx, ev)
		if err == nil {
			return
		}
		if !errors.Is(err, storage.ErrNoBroker) {
			h.log.WarnContext(ctx, "failed to publish change, delivering locally", "table", ev.Table, "row_id", ev.RowID, "error", err)
		}
	}
	h.deliverLocal(ev)
}

func (h *Hub) deliverLocal(ev models.ChangeEvent) {
	select {
	case h.EventsCh <- ev:
	default:
		h.log.Warn("event queue full, dropping change", "table", ev.Table, "row_id", ev.RowID)
	}
}

// dispatch never blocks: a subscriber with a full buffer is dropped and will
// refetch after reconnecting.
func (h *Hub) dispatch(ev models.ChangeEvent) {
	observability.LiveEvents.WithLabelValues(string(ev.Table), string(ev.Type)).Inc()
	for id, sub := range h.subscribers {
		if !matchesAny(sub, ev) {
			continue
		}
		select {
		case sub.GetSendChannel() <- ev:
		default:
			h.log.Warn("subscriber buffer full, dropping", "id", id)
			observability.LiveDropped.Inc()
			h.remove(id)
		}
	}
}

func (h *Hub) remove(id string) {
	sub, ok := h.subscribers[id]
	if !ok {
		return
	}
	delete(h.subscribers, id)
	observability.LiveSubscribers.Dec()
	sub.Close()
}

func (h *Hub) shutdown() {
	close(h.done)
	for id := range h.subscribers {
		h.remove(id)
	}
}

// Len returns the number of subscribers. Only safe after Run has returned or in tests.
func (h *Hub) Len() int { return len(h.subscribers) }
