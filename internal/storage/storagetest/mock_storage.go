// Package storagetest provides testify mocks of the storage interfaces.
package storagetest

import (
	"context"
	"sync"
	"time"

	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/storage"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

var _ storage.Storage = (*MockStorage)(nil)

func (m *MockStorage) CreateProfile(ctx context.Context, p *models.Profile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockStorage) GetProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*models.Profile)
	return p, args.Error(1)
}

func (m *MockStorage) GetProfilesByIDs(ctx context.Context, ids []string) (map[string]*models.Profile, error) {
	args := m.Called(ctx, ids)
	p, _ := args.Get(0).(map[string]*models.Profile)
	return p, args.Error(1)
}

func (m *MockStorage) GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	args := m.Called(ctx, email)
	p, _ := args.Get(0).(*models.Profile)
	return p, args.Error(1)
}

func (m *MockStorage) GetProfileByStudentID(ctx context.Context, studentID string) (*models.Profile, error) {
	args := m.Called(ctx, studentID)
	p, _ := args.Get(0).(*models.Profile)
	return p, args.Error(1)
}

func (m *MockStorage) EmailByStudentID(ctx context.Context, studentID string) (string, error) {
	args := m.Called(ctx, studentID)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) CreateComplaint(ctx context.Context, c *models.Complaint) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockStorage) GetComplaintByID(ctx context.Context, id string) (*models.Complaint, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*models.Complaint)
	return c, args.Error(1)
}

func (m *MockStorage) GetComplaintsByIDs(ctx context.Context, ids []string) (map[string]*models.Complaint, error) {
	args := m.Called(ctx, ids)
	c, _ := args.Get(0).(map[string]*models.Complaint)
	return c, args.Error(1)
}

func (m *MockStorage) ListComplaints(ctx context.Context, q storage.ComplaintQuery) ([]models.Complaint, error) {
	args := m.Called(ctx, q)
	c, _ := args.Get(0).([]models.Complaint)
	return c, args.Error(1)
}

func (m *MockStorage) CountComplaintsByStatus(ctx context.Context) (models.StatusCounts, error) {
	args := m.Called(ctx)
	c, _ := args.Get(0).(models.StatusCounts)
	return c, args.Error(1)
}

func (m *MockStorage) UpdateComplaintStatus(ctx context.Context, id string, u storage.StatusUpdate) (*models.Complaint, error) {
	args := m.Called(ctx, id, u)
	c, _ := args.Get(0).(*models.Complaint)
	return c, args.Error(1)
}

func (m *MockStorage) DeleteResolvedBefore(ctx context.Context, cutoff time.Time) ([]models.Complaint, error) {
	args := m.Called(ctx, cutoff)
	rows, _ := args.Get(0).([]models.Complaint)
	return rows, args.Error(1)
}

func (m *MockStorage) CreateMessage(ctx context.Context, msg *models.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockStorage) GetMessageByID(ctx context.Context, id string) (*models.Message, error) {
	args := m.Called(ctx, id)
	msg, _ := args.Get(0).(*models.Message)
	return msg, args.Error(1)
}

func (m *MockStorage) ListMessages(ctx context.Context, complaintID string) ([]models.Message, error) {
	args := m.Called(ctx, complaintID)
	msgs, _ := args.Get(0).([]models.Message)
	return msgs, args.Error(1)
}

func (m *MockStorage) MarkMessageRead(ctx context.Context, id string, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) ListUnreadMessages(ctx context.Context, q storage.UnreadQuery) ([]models.Message, error) {
	args := m.Called(ctx, q)
	msgs, _ := args.Get(0).([]models.Message)
	return msgs, args.Error(1)
}

func (m *MockStorage) PublishChange(ctx context.Context, ev models.ChangeEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func (m *MockStorage) SubscribeChanges(ctx context.Context) (*redis.PubSub, error) {
	args := m.Called(ctx)
	ps, _ := args.Get(0).(*redis.PubSub)
	return ps, args.Error(1)
}

func (m *MockStorage) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// RecordingPublisher collects published change events.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []models.ChangeEvent
}

func (p *RecordingPublisher) Publish(_ context.Context, ev models.ChangeEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *RecordingPublisher) Events() []models.ChangeEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.ChangeEvent, len(p.events))
	copy(out, p.events)
	return out
}

// FixedClock returns a Now func that always reports t.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
