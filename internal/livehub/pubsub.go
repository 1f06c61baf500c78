package livehub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/storage"
)

// StartPubSubListener запускає горутину, яка слухає Redis Pub/Sub і передає події в EventsCh.
func (h *Hub) StartPubSubListener(ctx context.Context) error {
	if h.Broker == nil {
		return nil
	}
	pubsub, err := h.Broker.SubscribeChanges(ctx)
	if errors.Is(err, storage.ErrNoBroker) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to subscribe to changes: %w", err)
	}

	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev models.ChangeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					h.log.Warn("error unmarshalling change event", "error", err)
					continue
				}
				select {
				case h.EventsCh <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return nil
}
