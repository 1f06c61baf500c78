package storage

import (
	"context"
	"errors"

	"complaintdesk/backend/internal/models"

	"gorm.io/gorm"
)

func (s *Service) CreateProfile(ctx context.Context, p *models.Profile) error {
	return translate(s.DB.WithContext(ctx).Create(p).Error)
}

// GetProfileByID повертає (nil, nil), якщо профіль не знайдено.
func (s *Service) GetProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	id, ok := canonicalID(id)
	if !ok {
		return nil, nil
	}
	return s.firstProfile(ctx, "id = ?", id)
}

func (s *Service) GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	return s.firstProfile(ctx, "lower(email) = lower(?)", email)
}

func (s *Service) GetProfileByStudentID(ctx context.Context, studentID string) (*models.Profile, error) {
	return s.firstProfile(ctx, "student_id = ?", studentID)
}

// EmailByStudentID виконує серверний пошук email (логіна) за номером студента.
// Повертає "" для невідомого номера або профілю, що не є студентським.
func (s *Service) EmailByStudentID(ctx context.Context, studentID string) (string, error) {
	var emails []string
	err := s.DB.WithContext(ctx).
		Model(&models.Profile{}).
		Where("student_id = ? AND role = ?", studentID, models.RoleStudent).
		Limit(1).
		Pluck("email", &emails).Error
	if err != nil || len(emails) == 0 {
		return "", err
	}
	return emails[0], nil
}

func (s *Service) GetProfilesByIDs(ctx context.Context, ids []string) (map[string]*models.Profile, error) {
	out := make(map[string]*models.Profile, len(ids))
	if ids = canonicalIDs(ids); len(ids) == 0 {
		return out, nil
	}
	var profiles []models.Profile
	if err := s.DB.WithContext(ctx).Where("id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, err
	}
	for i := range profiles {
		out[profiles[i].ID] = &profiles[i]
	}
	return out, nil
}

func (s *Service) firstProfile(ctx context.Context, query string, args ...any) (*models.Profile, error) {
	var p models.Profile
	err := s.DB.WithContext(ctx).Where(query, args...).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
