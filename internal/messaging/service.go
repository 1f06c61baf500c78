// Package messaging implements the per-complaint message thread and read receipts.
package messaging

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/logging"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/observability"
	"complaintdesk/backend/internal/storage"
)

type Store interface {
	storage.MessageStore
	GetComplaintByID(ctx context.Context, id string) (*models.Complaint, error)
	GetProfilesByIDs(ctx context.Context, ids []string) (map[string]*models.Profile, error)
}

type Publisher interface {
	Publish(ctx context.Context, ev models.ChangeEvent)
}

type Service struct {
	Storage          Store
	Events           Publisher
	Now              func() time.Time
	MaxMessageLength int

	log *slog.Logger
}

func NewService(s Store, events Publisher) *Service {
	return &Service{
		Storage:          s,
		Events:           events,
		Now:              time.Now,
		MaxMessageLength: config.DefaultMaxMessageLength,
		log:              logging.Component("messaging"),
	}
}

// Post appends a message to a complaint thread. The body is trimmed and must not be empty.
func (s *Service) Post(ctx context.Context, p models.Principal, complaintID, body string) (*models.ThreadMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperr.InvalidField("message", "Message cannot be empty")
	}
	if s.MaxMessageLength > 0 && utf8.RuneCountInString(body) > s.MaxMessageLength {
		return nil, apperr.InvalidField("message", fmt.Sprintf("Message must be at most %d characters", s.MaxMessageLength))
	}

	c, err := s.participant(ctx, p, complaintID)
	if err != nil {
		return nil, err
	}

	now := s.Now().UTC()
	m := &models.Message{
		ComplaintID: c.ID,
		SenderID:    p.ID,
		Body:        body,
		CreatedAt:   now,
	}
	if err := s.Storage.CreateMessage(ctx, m); err != nil {
		s.log.ErrorContext(ctx, "failed to save message", "complaint_id", c.ID, "error", err)
		return nil, apperr.Internal("Failed to send message", err)
	}

	observability.MessagesPosted.WithLabelValues(string(p.Role)).Inc()
	s.Events.Publish(ctx, models.MessageChanged(models.ChangeInsert, m, c.StudentID, now))

	return &models.ThreadMessage{
		Message:    *m,
		SenderName: senderName(p),
		SenderRole: p.Role,
		IsOwn:      true,
	}, nil
}

// Thread returns the messages of a complaint oldest first.
func (s *Service) Thread(ctx context.Context, p models.Principal, complaintID string) ([]models.ThreadMessage, error) {
	c, err := s.participant(ctx, p, complaintID)
	if err != nil {
		return nil, err
	}

	msgs, err := s.Storage.ListMessages(ctx, c.ID)
	if err != nil {
		return nil, apperr.Internal("Failed to load messages", err)
	}
	slices.SortStableFunc(msgs, func(a, b models.Message) int {
		if d := a.CreatedAt.Compare(b.CreatedAt); d != 0 {
			return d
		}
		return cmp.Compare(a.ID, b.ID)
	})

	senders, err := s.Storage.GetProfilesByIDs(ctx, senderIDs(msgs))
	if err != nil {
		// sender names degrade to "Unknown"
		s.log.WarnContext(ctx, "failed to load sender profiles", "complaint_id", c.ID, "error", err)
		senders = nil
	}

	out := make([]models.ThreadMessage, 0, len(msgs))
	for _, m := range msgs {
		sender := senders[m.SenderID]
		tm := models.ThreadMessage{
			Message:    m,
			SenderName: models.DisplayName(sender),
			IsOwn:      m.SenderID == p.ID,
		}
		if sender != nil {
			tm.SenderRole = sender.Role
		}
		out = append(out, tm)
	}
	return out, nil
}

// MarkRead sets read_at on a message the caller received. Repeated calls keep
// the first read_at and emit no event.
func (s *Service) MarkRead(ctx context.Context, p models.Principal, messageID string) (*models.Message, error) {
	m, err := s.Storage.GetMessageByID(ctx, messageID)
	if err != nil {
		return nil, apperr.Internal("Failed to load message", err)
	}
	if m == nil {
		return nil, apperr.NotFound("Message not found")
	}

	c, err := s.participant(ctx, p, m.ComplaintID)
	if err != nil {
		return nil, err
	}
	if m.SenderID == p.ID {
		return nil, apperr.Forbidden("You cannot mark your own message as read")
	}

	now := s.Now().UTC()
	changed, err := s.Storage.MarkMessageRead(ctx, m.ID, now)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to mark message read", "message_id", m.ID, "error", err)
		return nil, apperr.Internal("Failed to update message", err)
	}

	if !changed {
		if m.ReadAt == nil {
			// read concurrently between the load and the update
			if fresh, err := s.Storage.GetMessageByID(ctx, m.ID); err == nil && fresh != nil {
				m = fresh
			}
		}
		return m, nil
	}

	m.ReadAt = &now
	observability.MessagesRead.Inc()
	s.Events.Publish(ctx, models.MessageChanged(models.ChangeUpdate, m, c.StudentID, now))
	return m, nil
}

func (s *Service) participant(ctx context.Context, p models.Principal, complaintID string) (*models.Complaint, error) {
	c, err := s.Storage.GetComplaintByID(ctx, complaintID)
	if err != nil {
		return nil, apperr.Internal("Failed to load complaint", err)
	}
	if c == nil {
		return nil, apperr.NotFound("Complaint not found")
	}
	if !p.CanAccess(c) {
		return nil, apperr.Forbidden("You do not have access to this complaint")
	}
	return c, nil
}

func senderName(p models.Principal) string {
	if p.IsAdmin() {
		return models.AdminSender
	}
	if p.Name == "" {
		return models.UnknownSender
	}
	return p.Name
}

func senderIDs(msgs []models.Message) []string {
	seen := make(map[string]struct{}, len(msgs))
	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if _, ok := seen[m.SenderID]; ok {
			continue
		}
		seen[m.SenderID] = struct{}{}
		ids = append(ids, m.SenderID)
	}
	return ids
}
