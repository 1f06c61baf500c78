package storage

import (
	"context"
	"errors"
	"time"

	"complaintdesk/backend/internal/models"

	"gorm.io/gorm"
)

func (s *Service) CreateMessage(ctx context.Context, m *models.Message) error {
	return translate(s.DB.WithContext(ctx).Create(m).Error)
}

func (s *Service) GetMessageByID(ctx context.Context, id string) (*models.Message, error) {
	id, ok := canonicalID(id)
	if !ok {
		return nil, nil
	}
	var m models.Message
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMessages повертає тему скарги за зростанням created_at; однакові мітки впорядковуються за id.
func (s *Service) ListMessages(ctx context.Context, complaintID string) ([]models.Message, error) {
	var rows []models.Message
	complaintID, ok := canonicalID(complaintID)
	if !ok {
		return rows, nil
	}
	err := s.DB.WithContext(ctx).
		Where("complaint_id = ?", complaintID).
		Order("created_at asc").
		Order("id asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// MarkMessageRead встановлює read_at лише якщо він ще NULL.
// Повертає true, якщо рядок змінився.
func (s *Service) MarkMessageRead(ctx context.Context, id string, at time.Time) (bool, error) {
	id, ok := canonicalID(id)
	if !ok {
		return false, nil
	}
	res := s.DB.WithContext(ctx).
		Model(&models.Message{}).
		Where("id = ? AND read_at IS NULL", id).
		Update("read_at", at)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListUnreadMessages повертає непрочитані повідомлення від найновіших.
func (s *Service) ListUnreadMessages(ctx context.Context, q UnreadQuery) ([]models.Message, error) {
	var rows []models.Message
	tx := s.DB.WithContext(ctx).
		Model(&models.Message{}).
		Select("complaint_messages.*").
		Where("complaint_messages.read_at IS NULL")
	if sender, ok := canonicalID(q.ExcludeSenderID); ok {
		tx = tx.Where("complaint_messages.sender_id <> ?", sender)
	}
	if q.OwnerID != "" {
		owner, ok := canonicalID(q.OwnerID)
		if !ok {
			return rows, nil
		}
		tx = tx.Joins("JOIN complaints ON complaints.id = complaint_messages.complaint_id").
			Where("complaints.student_id = ?", owner)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	err := tx.Order("complaint_messages.created_at desc").
		Order("complaint_messages.id desc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
