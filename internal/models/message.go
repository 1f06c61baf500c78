package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message є повідомленням в темі скарги. Змінюється лише ReadAt, і лише один раз.
type Message struct {
	ID          string     `gorm:"type:uuid;primaryKey" json:"id"`
	ComplaintID string     `gorm:"type:uuid;not null;index:idx_messages_thread,priority:1" json:"complaint_id"`
	SenderID    string     `gorm:"type:uuid;not null;index" json:"sender_id"`
	Body        string     `gorm:"column:message;type:text;not null" json:"message"`
	CreatedAt   time.Time  `gorm:"autoCreateTime:false;index:idx_messages_thread,priority:2" json:"created_at"`
	ReadAt      *time.Time `json:"read_at"`
}

func (Message) TableName() string { return "complaint_messages" }

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}

func (m *Message) IsRead() bool { return m.ReadAt != nil }

// ThreadMessage is a message annotated for display in a complaint thread.
type ThreadMessage struct {
	Message
	SenderName string `json:"sender_name"`
	SenderRole Role   `json:"sender_role,omitempty"`
	IsOwn      bool   `json:"is_own"`
}

// Notification is one unread message with the context of its complaint.
type Notification struct {
	MessageID            string    `json:"message_id"`
	ComplaintID          string    `json:"complaint_id"`
	Body                 string    `json:"message"`
	CreatedAt            time.Time `json:"created_at"`
	SenderID             string    `json:"sender_id"`
	SenderName           string    `json:"sender_name"`
	SenderRole           Role      `json:"sender_role,omitempty"`
	ComplaintCategory    string    `json:"complaint_category"`
	ComplaintDescription string    `json:"complaint_description"`
}
