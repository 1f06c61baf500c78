package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Complaint описує скаргу студента. StudentID посилається на profiles.id власника.
// ResolvedAt не nil тоді й лише тоді, коли останній встановлений статус є resolved.
type Complaint struct {
	ID            string     `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID     string     `gorm:"type:uuid;not null;index" json:"student_id"`
	Category      Category   `gorm:"type:text;not null" json:"category"`
	Description   string     `gorm:"type:text;not null" json:"description"`
	Status        Status     `gorm:"type:text;not null;index" json:"status"`
	AdminFeedback *string    `gorm:"type:text" json:"admin_feedback"`
	CreatedAt     time.Time  `gorm:"autoCreateTime:false;index" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime:false" json:"updated_at"`
	ResolvedAt    *time.Time `json:"resolved_at"`

	Student *Profile `gorm:"foreignKey:StudentID" json:"-"`
}

func (Complaint) TableName() string { return "complaints" }

func (c *Complaint) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

// OwnedBy reports whether the profile id owns the complaint.
func (c *Complaint) OwnedBy(profileID string) bool {
	return c != nil && c.StudentID == profileID
}

// ComplaintView is a complaint annotated with its owner for the admin dashboard.
type ComplaintView struct {
	Complaint
	StudentName   string `json:"student_name,omitempty"`
	StudentNumber string `json:"student_number,omitempty"`
	StudentBatch  string `json:"student_batch,omitempty"`
}

// StatusCounts holds the per-status counters of the dashboard summary.
type StatusCounts map[Status]int64

// Total sums every counter.
func (s StatusCounts) Total() int64 {
	var n int64
	for _, v := range s {
		n += v
	}
	return n
}
