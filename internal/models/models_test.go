package models_test

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"complaintdesk/backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBeforeCreate_GeneratesUUID verifies that every model hook fills a valid UUID.
func TestBeforeCreate_GeneratesUUID(t *testing.T) {
	// Arrange
	p := &models.Profile{Name: "Asha", Role: models.RoleStudent, Email: "asha@example.com"}
	c := &models.Complaint{Category: models.CategoryHostel, Description: "Water leaking in room 12"}
	m := &models.Message{Body: "hello"}

	// Act
	require.NoError(t, p.BeforeCreate(nil))
	require.NoError(t, c.BeforeCreate(nil))
	require.NoError(t, m.BeforeCreate(nil))

	// Assert
	for _, id := range []string{p.ID, c.ID, m.ID} {
		parsed, err := uuid.Parse(id)
		assert.NoError(t, err, "ID must be a valid UUID string")
		assert.NotEqual(t, uuid.Nil, parsed)
	}
	assert.NotEqual(t, c.ID, m.ID, "each row gets its own id")
}

func TestBeforeCreate_PreservesExistingID(t *testing.T) {
	existing := uuid.New().String()
	c := &models.Complaint{ID: existing}

	assert.NoError(t, c.BeforeCreate(nil))
	assert.Equal(t, existing, c.ID, "BeforeCreate should preserve existing ID")
}

// TestModelStructTags catches accidental tag removal during refactoring.
func TestModelStructTags(t *testing.T) {
	msgType := reflect.TypeOf(models.Message{})
	body, found := msgType.FieldByName("Body")
	require.True(t, found)
	assert.Contains(t, body.Tag.Get("gorm"), "column:message", "body is stored in the message column")

	profType := reflect.TypeOf(models.Profile{})
	hash, found := profType.FieldByName("PasswordHash")
	require.True(t, found)
	assert.Equal(t, "-", hash.Tag.Get("json"), "password hash must never be serialized")

	assert.Equal(t, "complaint_messages", models.Message{}.TableName())
	assert.Equal(t, "complaints", models.Complaint{}.TableName())
	assert.Equal(t, "profiles", models.Profile{}.TableName())
}

func TestStatus_ClosedSet(t *testing.T) {
	for _, s := range models.Statuses() {
		parsed, err := models.ParseStatus(string(s))
		assert.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	for _, bad := range []string{"", "closed", "RESOLVED", "in progress"} {
		_, err := models.ParseStatus(bad)
		assert.Error(t, err, "status %q must be rejected", bad)
	}
	assert.Len(t, models.Statuses(), 4)
}

func TestCategory_ClosedSet(t *testing.T) {
	assert.Len(t, models.Categories(), 6)
	for _, c := range models.Categories() {
		assert.True(t, c.Valid())
	}
	_, err := models.ParseCategory("plumbing")
	assert.Error(t, err)
}

func TestInitialStatus(t *testing.T) {
	assert.Equal(t, models.StatusEmergency, models.InitialStatus(true))
	assert.Equal(t, models.StatusPending, models.InitialStatus(false))
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name    string
		profile *models.Profile
		want    string
	}{
		{"missing profile", nil, "Unknown"},
		{"admin is anonymised", &models.Profile{Name: "Dr. Rao", Role: models.RoleAdmin}, "Admin"},
		{"student uses own name", &models.Profile{Name: "Asha", Role: models.RoleStudent}, "Asha"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, models.DisplayName(tt.profile))
		})
	}
}

func TestPrincipal_CanAccess(t *testing.T) {
	c := &models.Complaint{ID: "c1", StudentID: "s1"}

	assert.True(t, models.Principal{ID: "s1", Role: models.RoleStudent}.CanAccess(c))
	assert.False(t, models.Principal{ID: "s2", Role: models.RoleStudent}.CanAccess(c))
	assert.True(t, models.Principal{ID: "a1", Role: models.RoleAdmin}.CanAccess(c))
	assert.False(t, models.Principal{ID: "a1", Role: models.RoleAdmin}.CanAccess(nil))
}

func TestMessageChanged_CarriesFilterColumns(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m := &models.Message{ID: "m1", ComplaintID: "c1", SenderID: "a1", Body: "on it", CreatedAt: at}

	ev := models.MessageChanged(models.ChangeInsert, m, "s1", at)

	assert.Equal(t, models.TableMessages, ev.Table)
	assert.Equal(t, "m1", ev.Column(models.ColumnID))
	assert.Equal(t, "c1", ev.Column(models.ColumnComplaintID))
	assert.Equal(t, "s1", ev.Column(models.ColumnStudentID))
	assert.Equal(t, "a1", ev.Column(models.ColumnSenderID))

	var decoded models.Message
	require.NoError(t, ev.Decode(&decoded))
	assert.Equal(t, "on it", decoded.Body)

	raw, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"type":"INSERT"`)
}

func TestStatusCounts_Total(t *testing.T) {
	counts := models.StatusCounts{models.StatusPending: 2, models.StatusResolved: 3}
	assert.Equal(t, int64(5), counts.Total())
}
