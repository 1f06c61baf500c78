package storage

import (
	"context"
	"encoding/json"

	"complaintdesk/backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// PublishChange публікує подію зміни рядка в Redis Pub/Sub.
func (s *Service) PublishChange(ctx context.Context, ev models.ChangeEvent) error {
	if s.Redis == nil {
		return ErrNoBroker
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.Redis.Publish(ctx, s.Channel, payload).Err()
}

// SubscribeChanges підписується на канал змін. Підписку закриває викликач.
func (s *Service) SubscribeChanges(ctx context.Context) (*redis.PubSub, error) {
	if s.Redis == nil {
		return nil, ErrNoBroker
	}
	pubsub := s.Redis.Subscribe(ctx, s.Channel)
	// Receive чекає підтвердження, щоб помилка з'єднання повернулась одразу
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}
	return pubsub, nil
}
