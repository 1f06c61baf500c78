// Package notify computes the unread-message bell for a principal and keeps a
// live copy of it up to date from change events.
package notify

import (
	"context"
	"log/slog"
	"strconv"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/logging"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/observability"
	"complaintdesk/backend/internal/storage"
)

const unknownCategory = "Unknown"

type Store interface {
	ListUnreadMessages(ctx context.Context, q storage.UnreadQuery) ([]models.Message, error)
	GetComplaintsByIDs(ctx context.Context, ids []string) (map[string]*models.Complaint, error)
	GetProfilesByIDs(ctx context.Context, ids []string) (map[string]*models.Profile, error)
}

// Marker marks a message read on behalf of a principal.
type Marker interface {
	MarkRead(ctx context.Context, p models.Principal, messageID string) (*models.Message, error)
}

// Page is one notification page. Badge under-reports past the page size:
// with more than PageSize unread messages it still shows "9+".
type Page struct {
	Items []models.Notification `json:"items"`
	Count int                   `json:"count"`
	Full  bool                  `json:"full"`
	Badge string                `json:"badge"`
}

type Aggregator struct {
	Storage  Store
	Marker   Marker
	PageSize int

	log *slog.Logger
}

func NewAggregator(s Store, marker Marker) *Aggregator {
	return &Aggregator{
		Storage:  s,
		Marker:   marker,
		PageSize: config.NotificationPageSize,
		log:      logging.Component("notify"),
	}
}

// Unread returns the newest unread messages sent to the principal, restricted
// to complaints they can see.
func (a *Aggregator) Unread(ctx context.Context, p models.Principal) (Page, error) {
	q := storage.UnreadQuery{ExcludeSenderID: p.ID, Limit: a.PageSize}
	switch p.Role {
	case models.RoleStudent:
		q.OwnerID = p.ID
	case models.RoleAdmin:
	default:
		return Page{}, apperr.Forbidden("not permitted")
	}

	msgs, err := a.Storage.ListUnreadMessages(ctx, q)
	if err != nil {
		a.log.ErrorContext(ctx, "failed to load notifications", "principal", p.ID, "error", err)
		return Page{}, apperr.Internal("Failed to load notifications", err)
	}
	items := a.decorate(ctx, msgs)
	return a.page(items), nil
}

// Open marks a notification read and returns the complaint to navigate to.
func (a *Aggregator) Open(ctx context.Context, p models.Principal, messageID string) (string, error) {
	m, err := a.Marker.MarkRead(ctx, p, messageID)
	if err != nil {
		return "", err
	}
	observability.NotificationsOpened.Inc()
	return m.ComplaintID, nil
}

func (a *Aggregator) page(items []models.Notification) Page {
	if items == nil {
		items = []models.Notification{}
	}
	return Page{
		Items: items,
		Count: len(items),
		Full:  a.PageSize > 0 && len(items) >= a.PageSize,
		Badge: Badge(len(items)),
	}
}

// decorate attaches complaint and sender context. Lookup failures degrade to
// display defaults instead of failing the page.
func (a *Aggregator) decorate(ctx context.Context, msgs []models.Message) []models.Notification {
	complaintIDs := make([]string, 0, len(msgs))
	senderIDs := make([]string, 0, len(msgs))
	for _, m := range msgs {
		complaintIDs = append(complaintIDs, m.ComplaintID)
		senderIDs = append(senderIDs, m.SenderID)
	}

	complaints, err := a.Storage.GetComplaintsByIDs(ctx, dedupe(complaintIDs))
	if err != nil {
		a.log.WarnContext(ctx, "failed to load notification complaints", "error", err)
	}
	senders, err := a.Storage.GetProfilesByIDs(ctx, dedupe(senderIDs))
	if err != nil {
		a.log.WarnContext(ctx, "failed to load notification senders", "error", err)
	}

	items := make([]models.Notification, 0, len(msgs))
	for _, m := range msgs {
		items = append(items, notification(m, complaints[m.ComplaintID], senders[m.SenderID]))
	}
	return items
}

func notification(m models.Message, c *models.Complaint, sender *models.Profile) models.Notification {
	n := models.Notification{
		MessageID:            m.ID,
		ComplaintID:          m.ComplaintID,
		Body:                 m.Body,
		CreatedAt:            m.CreatedAt,
		SenderID:             m.SenderID,
		SenderName:           models.DisplayName(sender),
		ComplaintCategory:    unknownCategory,
		ComplaintDescription: "",
	}
	if sender != nil {
		n.SenderRole = sender.Role
	}
	if c != nil {
		n.ComplaintCategory = string(c.Category)
		n.ComplaintDescription = c.Description
	}
	return n
}

// Badge renders the bell counter: empty for none, the count up to the cap, then "9+".
func Badge(n int) string {
	switch {
	case n <= 0:
		return ""
	case n > config.BadgeCap:
		return strconv.Itoa(config.BadgeCap) + "+"
	default:
		return strconv.Itoa(n)
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func newestFirst(a, b models.Notification) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	switch {
	case a.MessageID > b.MessageID:
		return -1
	case a.MessageID < b.MessageID:
		return 1
	}
	return 0
}
