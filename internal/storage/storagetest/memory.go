package storagetest

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/storage"

	"github.com/redis/go-redis/v9"
)

// MemoryStore is an in-memory storage.Storage with the same ordering and
// conditional-update semantics as the PostgreSQL implementation.
type MemoryStore struct {
	mu         sync.Mutex
	profiles   map[string]models.Profile
	complaints map[string]models.Complaint
	messages   map[string]models.Message
}

var _ storage.Storage = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles:   make(map[string]models.Profile),
		complaints: make(map[string]models.Complaint),
		messages:   make(map[string]models.Message),
	}
}

func (s *MemoryStore) CreateProfile(_ context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = p.BeforeCreate(nil)
	for _, existing := range s.profiles {
		if existing.Email == p.Email {
			return storage.ErrDuplicate
		}
		if p.StudentID != nil && existing.StudentID != nil && *existing.StudentID == *p.StudentID {
			return storage.ErrDuplicate
		}
	}
	s.profiles[p.ID] = *p
	return nil
}

func (s *MemoryStore) GetProfileByID(_ context.Context, id string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.profiles[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (s *MemoryStore) GetProfilesByIDs(_ context.Context, ids []string) (map[string]*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*models.Profile, len(ids))
	for _, id := range ids {
		if p, ok := s.profiles[id]; ok {
			out[id] = &p
		}
	}
	return out, nil
}

func (s *MemoryStore) GetProfileByEmail(_ context.Context, email string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if p.Email == email {
			return &p, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) GetProfileByStudentID(_ context.Context, studentID string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if p.StudentID != nil && *p.StudentID == studentID {
			return &p, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) EmailByStudentID(ctx context.Context, studentID string) (string, error) {
	p, _ := s.GetProfileByStudentID(ctx, studentID)
	if p == nil || p.Role != models.RoleStudent {
		return "", nil
	}
	return p.Email, nil
}

func (s *MemoryStore) CreateComplaint(_ context.Context, c *models.Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = c.BeforeCreate(nil)
	s.complaints[c.ID] = *c
	return nil
}

func (s *MemoryStore) GetComplaintByID(_ context.Context, id string) (*models.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.complaints[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (s *MemoryStore) GetComplaintsByIDs(_ context.Context, ids []string) (map[string]*models.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*models.Complaint, len(ids))
	for _, id := range ids {
		if c, ok := s.complaints[id]; ok {
			out[id] = &c
		}
	}
	return out, nil
}

func (s *MemoryStore) ListComplaints(_ context.Context, q storage.ComplaintQuery) ([]models.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Complaint
	for _, c := range s.complaints {
		if q.StudentID != "" && c.StudentID != q.StudentID {
			continue
		}
		if q.Status != "" && c.Status != q.Status {
			continue
		}
		if q.WithStudent {
			if p, ok := s.profiles[c.StudentID]; ok {
				c.Student = &p
			}
		}
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b models.Complaint) int {
		if d := b.CreatedAt.Compare(a.CreatedAt); d != 0 {
			return d
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

func (s *MemoryStore) CountComplaintsByStatus(_ context.Context) (models.StatusCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := models.StatusCounts{}
	for _, st := range models.Statuses() {
		counts[st] = 0
	}
	for _, c := range s.complaints {
		counts[c.Status]++
	}
	return counts, nil
}

func (s *MemoryStore) UpdateComplaintStatus(_ context.Context, id string, u storage.StatusUpdate) (*models.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.complaints[id]
	if !ok {
		return nil, nil
	}
	c.Status = u.Status
	c.UpdatedAt = u.UpdatedAt
	c.ResolvedAt = u.ResolvedAt
	if u.SetFeedback {
		c.AdminFeedback = u.Feedback
	}
	s.complaints[id] = c
	return &c, nil
}

func (s *MemoryStore) DeleteResolvedBefore(_ context.Context, cutoff time.Time) ([]models.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted []models.Complaint
	for id, c := range s.complaints {
		if c.Status != models.StatusResolved || c.ResolvedAt == nil || c.ResolvedAt.After(cutoff) {
			continue
		}
		delete(s.complaints, id)
		deleted = append(deleted, models.Complaint{ID: c.ID, StudentID: c.StudentID})
		for mid, m := range s.messages {
			if m.ComplaintID == id {
				delete(s.messages, mid)
			}
		}
	}
	return deleted, nil
}

func (s *MemoryStore) CreateMessage(_ context.Context, m *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = m.BeforeCreate(nil)
	s.messages[m.ID] = *m
	return nil
}

func (s *MemoryStore) GetMessageByID(_ context.Context, id string) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.messages[id]; ok {
		return &m, nil
	}
	return nil, nil
}

func (s *MemoryStore) ListMessages(_ context.Context, complaintID string) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Message
	for _, m := range s.messages {
		if m.ComplaintID == complaintID {
			out = append(out, m)
		}
	}
	slices.SortFunc(out, func(a, b models.Message) int {
		if d := a.CreatedAt.Compare(b.CreatedAt); d != 0 {
			return d
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (s *MemoryStore) MarkMessageRead(_ context.Context, id string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	if !ok || m.ReadAt != nil {
		return false, nil
	}
	m.ReadAt = &at
	s.messages[id] = m
	return true, nil
}

func (s *MemoryStore) ListUnreadMessages(_ context.Context, q storage.UnreadQuery) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Message
	for _, m := range s.messages {
		if m.ReadAt != nil || m.SenderID == q.ExcludeSenderID {
			continue
		}
		if q.OwnerID != "" {
			c, ok := s.complaints[m.ComplaintID]
			if !ok || c.StudentID != q.OwnerID {
				continue
			}
		}
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b models.Message) int {
		if d := b.CreatedAt.Compare(a.CreatedAt); d != 0 {
			return d
		}
		return cmp.Compare(b.ID, a.ID)
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *MemoryStore) PublishChange(context.Context, models.ChangeEvent) error {
	return storage.ErrNoBroker
}

func (s *MemoryStore) SubscribeChanges(context.Context) (*redis.PubSub, error) {
	return nil, storage.ErrNoBroker
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

// MessageCount returns how many messages are stored.
func (s *MemoryStore) MessageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}
