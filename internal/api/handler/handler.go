package handler

import (
	"context"
	"time"

	"complaintdesk/backend/internal/complaint"
	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/identity"
	"complaintdesk/backend/internal/livehub"
	"complaintdesk/backend/internal/localization"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/notify"
	"complaintdesk/backend/internal/retention"
)

type ComplaintService interface {
	Create(ctx context.Context, p models.Principal, in complaint.CreateInput) (*models.Complaint, error)
	UpdateStatus(ctx context.Context, p models.Principal, id string, in complaint.StatusInput) (*models.Complaint, error)
	Get(ctx context.Context, p models.Principal, id string) (*models.Complaint, error)
	List(ctx context.Context, p models.Principal, f complaint.ListFilter) ([]models.ComplaintView, error)
	CountByStatus(ctx context.Context, p models.Principal) (models.StatusCounts, error)
}

type MessageService interface {
	Post(ctx context.Context, p models.Principal, complaintID, body string) (*models.ThreadMessage, error)
	Thread(ctx context.Context, p models.Principal, complaintID string) ([]models.ThreadMessage, error)
	MarkRead(ctx context.Context, p models.Principal, messageID string) (*models.Message, error)
}

type IdentityService interface {
	RegisterStudent(ctx context.Context, in identity.RegisterInput) (*identity.Session, error)
	LoginStudent(ctx context.Context, in identity.StudentLogin) (*identity.Session, error)
	LoginAdmin(ctx context.Context, in identity.AdminLogin) (*identity.Session, error)
	Resolve(ctx context.Context, token string) (models.Principal, error)
	Profile(ctx context.Context, p models.Principal) (*models.Profile, error)
}

type Sweeper interface {
	Run(ctx context.Context) (retention.Result, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler містить сервіси, які обслуговують HTTP та WebSocket маршрути.
type Handler struct {
	Complaints    ComplaintService
	Messages      MessageService
	Identity      IdentityService
	Notifications *notify.Aggregator
	Sweeper       Sweeper
	Hub           *livehub.Hub
	Lookup        livehub.ComplaintLookup
	Localizer     *localization.Localizer
	Health        Pinger

	MaintenanceToken string
	ResyncInterval   time.Duration
}

func NewHandler(h Handler) *Handler {
	if h.ResyncInterval == 0 {
		h.ResyncInterval = config.DefaultLiveResyncInterval
	}
	return &h
}
