package models

import (
	"encoding/json"
	"time"
)

// Table задає ім'я таблиці, зміни якої транслюються підписникам.
type Table string

const (
	TableComplaints Table = "complaints"
	TableMessages   Table = "complaint_messages"
)

func (t Table) Valid() bool {
	switch t {
	case TableComplaints, TableMessages:
		return true
	}
	return false
}

type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

// Filter columns carried by every change event.
const (
	ColumnID          = "id"
	ColumnComplaintID = "complaint_id"
	ColumnStudentID   = "student_id"
	ColumnSenderID    = "sender_id"
)

// ChangeEvent описує одну зміну рядка. Record містить повний рядок після зміни
// (для DELETE це останній відомий стан або nil).
type ChangeEvent struct {
	Table      Table             `json:"table"`
	Type       ChangeType        `json:"type"`
	RowID      string            `json:"row_id"`
	Columns    map[string]string `json:"columns"`
	Record     json.RawMessage   `json:"record,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// Column returns a filter column value, "" when absent.
func (e ChangeEvent) Column(name string) string {
	if name == ColumnID {
		return e.RowID
	}
	return e.Columns[name]
}

// Decode unmarshals Record into dst.
func (e ChangeEvent) Decode(dst any) error {
	return json.Unmarshal(e.Record, dst)
}

// ComplaintChanged будує подію для таблиці complaints.
func ComplaintChanged(t ChangeType, c *Complaint, at time.Time) ChangeEvent {
	ev := ChangeEvent{
		Table:      TableComplaints,
		Type:       t,
		RowID:      c.ID,
		Columns:    map[string]string{ColumnStudentID: c.StudentID},
		OccurredAt: at,
	}
	ev.Record, _ = json.Marshal(c)
	return ev
}

// MessageChanged будує подію для таблиці complaint_messages. ownerID є власником скарги.
func MessageChanged(t ChangeType, m *Message, ownerID string, at time.Time) ChangeEvent {
	ev := ChangeEvent{
		Table: TableMessages,
		Type:  t,
		RowID: m.ID,
		Columns: map[string]string{
			ColumnComplaintID: m.ComplaintID,
			ColumnSenderID:    m.SenderID,
			ColumnStudentID:   ownerID,
		},
		OccurredAt: at,
	}
	ev.Record, _ = json.Marshal(m)
	return ev
}
