package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// UnknownSender показується, коли профіль відправника не знайдено.
	UnknownSender = "Unknown"
	// AdminSender показується замість імені будь-якого адміністратора.
	AdminSender = "Admin"
)

// Profile представляє обліковий запис студента або адміністратора.
// StudentID тут є номером студента в інституті, а не посиланням на іншу таблицю.
type Profile struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"type:text;not null" json:"name"`
	Role         Role      `gorm:"type:text;not null" json:"role"`
	StudentID    *string   `gorm:"column:student_id;uniqueIndex" json:"student_id,omitempty"`
	Batch        *string   `json:"batch,omitempty"`
	Phone        *string   `json:"phone,omitempty"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `gorm:"autoCreateTime:false" json:"created_at"`
}

func (Profile) TableName() string { return "profiles" }

// BeforeCreate є хуком GORM, який генерує UUID, якщо ID ще не встановлено.
func (p *Profile) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return
}

func (p *Profile) IsAdmin() bool { return p != nil && p.Role == RoleAdmin }

// DisplayName повертає ім'я для стрічки повідомлень та сповіщень.
func DisplayName(p *Profile) string {
	switch {
	case p == nil:
		return UnknownSender
	case p.Role == RoleAdmin:
		return AdminSender
	default:
		return p.Name
	}
}
