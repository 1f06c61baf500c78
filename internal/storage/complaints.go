package storage

import (
	"context"
	"errors"
	"time"

	"complaintdesk/backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *Service) CreateComplaint(ctx context.Context, c *models.Complaint) error {
	return translate(s.DB.WithContext(ctx).Create(c).Error)
}

// GetComplaintByID повертає (nil, nil), якщо скаргу не знайдено.
func (s *Service) GetComplaintByID(ctx context.Context, id string) (*models.Complaint, error) {
	id, ok := canonicalID(id)
	if !ok {
		return nil, nil
	}
	var c models.Complaint
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Service) GetComplaintsByIDs(ctx context.Context, ids []string) (map[string]*models.Complaint, error) {
	out := make(map[string]*models.Complaint, len(ids))
	if ids = canonicalIDs(ids); len(ids) == 0 {
		return out, nil
	}
	var rows []models.Complaint
	if err := s.DB.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].ID] = &rows[i]
	}
	return out, nil
}

// ListComplaints повертає скарги від найновіших до найстаріших.
func (s *Service) ListComplaints(ctx context.Context, q ComplaintQuery) ([]models.Complaint, error) {
	tx := s.DB.WithContext(ctx).Model(&models.Complaint{})
	if q.StudentID != "" {
		owner, ok := canonicalID(q.StudentID)
		if !ok {
			return []models.Complaint{}, nil
		}
		tx = tx.Where("student_id = ?", owner)
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	if q.WithStudent {
		tx = tx.Preload("Student")
	}

	var rows []models.Complaint
	if err := tx.Order("created_at desc").Order("id desc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Service) CountComplaintsByStatus(ctx context.Context) (models.StatusCounts, error) {
	var rows []struct {
		Status models.Status
		Count  int64
	}
	err := s.DB.WithContext(ctx).
		Model(&models.Complaint{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(models.StatusCounts, len(models.Statuses()))
	for _, st := range models.Statuses() {
		counts[st] = 0
	}
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// UpdateComplaintStatus оновлює один рядок і повертає його новий стан.
// Повертає (nil, nil), якщо скаргу не знайдено.
func (s *Service) UpdateComplaintStatus(ctx context.Context, id string, u StatusUpdate) (*models.Complaint, error) {
	id, ok := canonicalID(id)
	if !ok {
		return nil, nil
	}
	fields := map[string]interface{}{
		"status":      u.Status,
		"updated_at":  u.UpdatedAt,
		"resolved_at": u.ResolvedAt,
	}
	if u.SetFeedback {
		fields["admin_feedback"] = u.Feedback
	}

	var updated []models.Complaint
	res := s.DB.WithContext(ctx).
		Model(&updated).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 || len(updated) == 0 {
		return nil, nil
	}
	return &updated[0], nil
}

// DeleteResolvedBefore видаляє вирішені скарги з resolved_at <= cutoff одним запитом
// і повертає їхні id та student_id. Повідомлення видаляються каскадно.
func (s *Service) DeleteResolvedBefore(ctx context.Context, cutoff time.Time) ([]models.Complaint, error) {
	var deleted []models.Complaint
	err := s.DB.WithContext(ctx).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "id"}, {Name: "student_id"}}}).
		Where("status = ? AND resolved_at IS NOT NULL AND resolved_at <= ?", models.StatusResolved, cutoff).
		Delete(&deleted).Error
	if err != nil {
		return nil, err
	}
	return deleted, nil
}
