// Package complaint implements the complaint lifecycle: submission by students,
// status transitions by admins and the dashboard read paths.
package complaint

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/logging"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/observability"
	"complaintdesk/backend/internal/storage"
	"complaintdesk/backend/internal/validation"
)

// Publisher receives a change event after every committed write.
type Publisher interface {
	Publish(ctx context.Context, ev models.ChangeEvent)
}

// Service handles the business logic for complaints.
type Service struct {
	Storage storage.ComplaintStore
	Events  Publisher
	Now     func() time.Time

	validate *validation.Validator
	log      *slog.Logger
}

// NewService creates a new complaint service.
func NewService(s storage.ComplaintStore, events Publisher) *Service {
	return &Service{
		Storage:  s,
		Events:   events,
		Now:      time.Now,
		validate: validation.New(),
		log:      logging.Component("complaint"),
	}
}

// CreateInput is the submission form. Description bounds mirror
// config.DescriptionMinLength and config.DescriptionMaxLength.
type CreateInput struct {
	Category    string `json:"category" validate:"required,complaint_category"`
	Description string `json:"description" validate:"required,min=10,max=1000"`
	Emergency   bool   `json:"is_emergency"`
}

// StatusInput is an admin transition. A nil Feedback leaves the stored feedback
// unchanged; a blank one clears it.
type StatusInput struct {
	Status   string  `json:"status" validate:"required,complaint_status"`
	Feedback *string `json:"admin_feedback"`
}

// ListFilter narrows ListComplaints. Empty fields match everything.
type ListFilter struct {
	StudentID string
	Status    string
}

// Create submits a complaint owned by the calling student.
func (s *Service) Create(ctx context.Context, p models.Principal, in CreateInput) (*models.Complaint, error) {
	if !p.IsStudent() {
		return nil, apperr.Forbidden("Only students can raise complaints")
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	now := s.Now().UTC()
	c := &models.Complaint{
		StudentID:   p.ID,
		Category:    models.Category(in.Category),
		Description: in.Description,
		Status:      models.InitialStatus(in.Emergency),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Storage.CreateComplaint(ctx, c); err != nil {
		s.log.ErrorContext(ctx, "failed to save complaint", "student_id", p.ID, "error", err)
		return nil, apperr.Internal("Failed to submit complaint", err)
	}

	observability.ComplaintsCreated.WithLabelValues(string(c.Category), string(c.Status)).Inc()
	s.Events.Publish(ctx, models.ComplaintChanged(models.ChangeInsert, c, now))
	return c, nil
}

// UpdateStatus sets a new status. resolved_at is stamped on every transition
// to resolved and cleared on every other one.
func (s *Service) UpdateStatus(ctx context.Context, p models.Principal, id string, in StatusInput) (*models.Complaint, error) {
	if !p.IsAdmin() {
		return nil, apperr.Forbidden("Only admins can update complaint status")
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	now := s.Now().UTC()
	status := models.Status(in.Status)
	upd := storage.StatusUpdate{Status: status, UpdatedAt: now}
	if status == models.StatusResolved {
		upd.ResolvedAt = &now
	}
	if in.Feedback != nil {
		upd.SetFeedback = true
		if fb := strings.TrimSpace(*in.Feedback); fb != "" {
			upd.Feedback = &fb
		}
	}

	c, err := s.Storage.UpdateComplaintStatus(ctx, id, upd)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to update complaint", "complaint_id", id, "error", err)
		return nil, apperr.Internal("Failed to update complaint", err)
	}
	if c == nil {
		return nil, apperr.NotFound("Complaint not found")
	}

	observability.StatusTransitions.WithLabelValues(string(status)).Inc()
	s.Events.Publish(ctx, models.ComplaintChanged(models.ChangeUpdate, c, now))
	return c, nil
}

// Get returns a complaint to its owner or any admin.
func (s *Service) Get(ctx context.Context, p models.Principal, id string) (*models.Complaint, error) {
	c, err := s.Storage.GetComplaintByID(ctx, id)
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

// List returns complaints newest first. Students only ever see their own;
// admins see all of them annotated with the owner's details.
func (s *Service) List(ctx context.Context, p models.Principal, f ListFilter) ([]models.ComplaintView, error) {
	q := storage.ComplaintQuery{}
	if f.Status != "" {
		st, err := models.ParseStatus(f.Status)
		if err != nil {
			return nil, apperr.InvalidField("status", "Invalid status")
		}
		q.Status = st
	}

	switch p.Role {
	case models.RoleStudent:
		if f.StudentID != "" && f.StudentID != p.ID {
			return nil, apperr.Forbidden("You can only view your own complaints")
		}
		q.StudentID = p.ID
	case models.RoleAdmin:
		q.StudentID = f.StudentID
		q.WithStudent = true
	default:
		return nil, apperr.Forbidden("not permitted")
	}

	rows, err := s.Storage.ListComplaints(ctx, q)
	if err != nil {
		return nil, apperr.Internal("Failed to load complaints", err)
	}

	views := make([]models.ComplaintView, 0, len(rows))
	for _, c := range rows {
		v := models.ComplaintView{Complaint: c}
		if q.WithStudent {
			annotate(&v, c.Student)
		}
		v.Student = nil
		views = append(views, v)
	}
	return views, nil
}

// CountByStatus returns the admin dashboard counters.
func (s *Service) CountByStatus(ctx context.Context, p models.Principal) (models.StatusCounts, error) {
	if !p.IsAdmin() {
		return nil, apperr.Forbidden("Only admins can view complaint statistics")
	}
	counts, err := s.Storage.CountComplaintsByStatus(ctx)
	if err != nil {
		return nil, apperr.Internal("Failed to load statistics", err)
	}
	return counts, nil
}

func annotate(v *models.ComplaintView, owner *models.Profile) {
	if owner == nil {
		v.StudentName = models.UnknownSender
		return
	}
	v.StudentName = owner.Name
	if owner.StudentID != nil {
		v.StudentNumber = *owner.StudentID
	}
	if owner.Batch != nil {
		v.StudentBatch = *owner.Batch
	}
}
