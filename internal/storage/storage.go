package storage

import (
	"context"
	"errors"
	"time"

	"complaintdesk/backend/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ErrDuplicate повертається, коли вставка порушує унікальний індекс.
var ErrDuplicate = errors.New("storage: duplicate key")

// ErrNoBroker повертається, коли Redis не налаштовано.
var ErrNoBroker = errors.New("storage: change broker is not configured")

type ProfileStore interface {
	CreateProfile(ctx context.Context, p *models.Profile) error
	GetProfileByID(ctx context.Context, id string) (*models.Profile, error)
	GetProfilesByIDs(ctx context.Context, ids []string) (map[string]*models.Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error)
	GetProfileByStudentID(ctx context.Context, studentID string) (*models.Profile, error)
	EmailByStudentID(ctx context.Context, studentID string) (string, error)
}

type ComplaintStore interface {
	CreateComplaint(ctx context.Context, c *models.Complaint) error
	GetComplaintByID(ctx context.Context, id string) (*models.Complaint, error)
	GetComplaintsByIDs(ctx context.Context, ids []string) (map[string]*models.Complaint, error)
	ListComplaints(ctx context.Context, q ComplaintQuery) ([]models.Complaint, error)
	CountComplaintsByStatus(ctx context.Context) (models.StatusCounts, error)
	UpdateComplaintStatus(ctx context.Context, id string, u StatusUpdate) (*models.Complaint, error)
	DeleteResolvedBefore(ctx context.Context, cutoff time.Time) ([]models.Complaint, error)
}

type MessageStore interface {
	CreateMessage(ctx context.Context, m *models.Message) error
	GetMessageByID(ctx context.Context, id string) (*models.Message, error)
	ListMessages(ctx context.Context, complaintID string) ([]models.Message, error)
	MarkMessageRead(ctx context.Context, id string, at time.Time) (bool, error)
	ListUnreadMessages(ctx context.Context, q UnreadQuery) ([]models.Message, error)
}

type ChangeBroker interface {
	PublishChange(ctx context.Context, ev models.ChangeEvent) error
	SubscribeChanges(ctx context.Context) (*redis.PubSub, error)
}

// Storage описує повний набір операцій сховища. Сервіси залежать від вужчих інтерфейсів.
type Storage interface {
	ProfileStore
	ComplaintStore
	MessageStore
	ChangeBroker
	Ping(ctx context.Context) error
}

// ComplaintQuery фільтрує список скарг. Порожні поля не застосовуються.
type ComplaintQuery struct {
	StudentID   string
	Status      models.Status
	WithStudent bool
}

// StatusUpdate описує зміну статусу, яку виконує адміністратор.
// Якщо SetFeedback == false, admin_feedback не змінюється.
type StatusUpdate struct {
	Status      models.Status
	Feedback    *string
	SetFeedback bool
	UpdatedAt   time.Time
	ResolvedAt  *time.Time
}

// UnreadQuery вибирає непрочитані повідомлення, надіслані не ExcludeSenderID.
// OwnerID обмежує вибірку скаргами одного студента.
type UnreadQuery struct {
	ExcludeSenderID string
	OwnerID         string
	Limit           int
}

type Service struct {
	DB      *gorm.DB
	Redis   *redis.Client
	Channel string
}

var _ Storage = (*Service)(nil)

// NewStorageService Constructor. rdb може бути nil (CLI, тести).
func NewStorageService(db *gorm.DB, rdb *redis.Client, channel string) *Service {
	return &Service{
		DB:      db,
		Redis:   rdb,
		Channel: channel,
	}
}

// Ping перевіряє з'єднання з PostgreSQL та, якщо налаштовано, з Redis.
func (s *Service) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return err
	}
	if s.Redis != nil {
		return s.Redis.Ping(ctx).Err()
	}
	return nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

// canonicalID повертає id у канонічній формі UUID; ok == false для будь-якого іншого рядка.
func canonicalID(id string) (string, bool) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return u.String(), true
}

func canonicalIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if v, ok := canonicalID(id); ok {
			out = append(out, v)
		}
	}
	return out
}
