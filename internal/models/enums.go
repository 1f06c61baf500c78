package models

import "fmt"

// Role визначає роль профілю. Роль фіксується під час створення профілю.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleAdmin:
		return true
	}
	return false
}

// Status is the lifecycle state of a complaint.
type Status string

const (
	StatusPending    Status = "pending"
	StatusEmergency  Status = "emergency"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
)

// Statuses returns every status in dashboard order.
func Statuses() []Status {
	return []Status{StatusPending, StatusEmergency, StatusInProgress, StatusResolved}
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusEmergency, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

// ParseStatus перетворює рядок на Status або повертає помилку для невідомого значення.
func ParseStatus(v string) (Status, error) {
	s := Status(v)
	if !s.Valid() {
		return "", fmt.Errorf("unknown complaint status %q", v)
	}
	return s, nil
}

// InitialStatus повертає стартовий статус нової скарги.
func InitialStatus(emergency bool) Status {
	if emergency {
		return StatusEmergency
	}
	return StatusPending
}

type Category string

const (
	CategoryElectrical     Category = "electrical"
	CategorySystem         Category = "system"
	CategoryHostel         Category = "hostel"
	CategoryAcademic       Category = "academic"
	CategoryInfrastructure Category = "infrastructure"
	CategoryOther          Category = "other"
)

func Categories() []Category {
	return []Category{
		CategoryElectrical,
		CategorySystem,
		CategoryHostel,
		CategoryAcademic,
		CategoryInfrastructure,
		CategoryOther,
	}
}

func (c Category) Valid() bool {
	switch c {
	case CategoryElectrical, CategorySystem, CategoryHostel,
		CategoryAcademic, CategoryInfrastructure, CategoryOther:
		return true
	}
	return false
}

func ParseCategory(v string) (Category, error) {
	c := Category(v)
	if !c.Valid() {
		return "", fmt.Errorf("unknown complaint category %q", v)
	}
	return c, nil
}
