package notify_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/notify"
	"complaintdesk/backend/internal/storage"
	"complaintdesk/backend/internal/storage/storagetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	now     = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	student = models.Principal{ID: "s-1", Role: models.RoleStudent, Name: "Asha"}
	admin   = models.Principal{ID: "a-1", Role: models.RoleAdmin, Name: "Warden"}
)

type mockMarker struct {
	mock.Mock
}

func (m *mockMarker) MarkRead(ctx context.Context, p models.Principal, id string) (*models.Message, error) {
	args := m.Called(ctx, p, id)
	msg, _ := args.Get(0).(*models.Message)
	return msg, args.Error(1)
}

func unread(n int, complaintID, senderID string) []models.Message {
	out := make([]models.Message, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.Message{
			ID:          fmt.Sprintf("m-%02d", i),
			ComplaintID: complaintID,
			SenderID:    senderID,
			Body:        "update",
			CreatedAt:   now.Add(-time.Duration(i) * time.Minute),
		})
	}
	return out
}

func TestBadge(t *testing.T) {
	assert.Equal(t, "", notify.Badge(0))
	assert.Equal(t, "1", notify.Badge(1))
	assert.Equal(t, "9", notify.Badge(9))
	assert.Equal(t, "9+", notify.Badge(10))
}

func TestUnread_StudentScope(t *testing.T) {
	// Arrange
	store := new(storagetest.MockStorage)
	agg := notify.NewAggregator(store, nil)
	store.On("ListUnreadMessages", mock.Anything, storage.UnreadQuery{ExcludeSenderID: student.ID, OwnerID: student.ID, Limit: 10}).
		Return(unread(2, "c-1", admin.ID), nil)
	store.On("GetComplaintsByIDs", mock.Anything, []string{"c-1"}).
		Return(map[string]*models.Complaint{"c-1": {ID: "c-1", Category: models.CategoryHostel, Description: "Leaking tap in washroom"}}, nil)
	store.On("GetProfilesByIDs", mock.Anything, []string{admin.ID}).
		Return(map[string]*models.Profile{admin.ID: {ID: admin.ID, Name: "Dr. Rao", Role: models.RoleAdmin}}, nil)

	// Act
	page, err := agg.Unread(context.Background(), student)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, page.Count)
	assert.Equal(t, "2", page.Badge)
	assert.False(t, page.Full)
	assert.Equal(t, "Admin", page.Items[0].SenderName)
	assert.Equal(t, "hostel", page.Items[0].ComplaintCategory)
	assert.Equal(t, "Leaking tap in washroom", page.Items[0].ComplaintDescription)
	store.AssertExpectations(t)
}

func TestUnread_AdminSeesAllAndPageCaps(t *testing.T) {
	store := new(storagetest.MockStorage)
	agg := notify.NewAggregator(store, nil)
	store.On("ListUnreadMessages", mock.Anything, storage.UnreadQuery{ExcludeSenderID: admin.ID, Limit: 10}).
		Return(unread(10, "gone", student.ID), nil)
	store.On("GetComplaintsByIDs", mock.Anything, mock.Anything).Return(map[string]*models.Complaint{}, nil)
	store.On("GetProfilesByIDs", mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))

	page, err := agg.Unread(context.Background(), admin)

	require.NoError(t, err, "lookup failures degrade instead of failing")
	assert.True(t, page.Full)
	assert.Equal(t, "9+", page.Badge)
	assert.Equal(t, "Unknown", page.Items[0].ComplaintCategory)
	assert.Equal(t, "", page.Items[0].ComplaintDescription)
	assert.Equal(t, "Unknown", page.Items[0].SenderName)
}

func TestUnread_StoreFailure(t *testing.T) {
	store := new(storagetest.MockStorage)
	agg := notify.NewAggregator(store, nil)
	store.On("ListUnreadMessages", mock.Anything, mock.Anything).Return(nil, errors.New("conn reset"))

	_, err := agg.Unread(context.Background(), admin)

	assert.True(t, apperr.Is(err, apperr.CodeInternal))
}

func TestUnread_EmptyPage(t *testing.T) {
	store := new(storagetest.MockStorage)
	agg := notify.NewAggregator(store, nil)
	store.On("ListUnreadMessages", mock.Anything, mock.Anything).Return([]models.Message{}, nil)
	store.On("GetComplaintsByIDs", mock.Anything, mock.Anything).Return(map[string]*models.Complaint{}, nil)
	store.On("GetProfilesByIDs", mock.Anything, mock.Anything).Return(map[string]*models.Profile{}, nil)

	page, err := agg.Unread(context.Background(), student)

	require.NoError(t, err)
	assert.NotNil(t, page.Items, "items serialise as [] not null")
	assert.Equal(t, "", page.Badge)
}

func TestOpen_ReturnsComplaint(t *testing.T) {
	marker := new(mockMarker)
	agg := notify.NewAggregator(new(storagetest.MockStorage), marker)
	marker.On("MarkRead", mock.Anything, admin, "m-1").Return(&models.Message{ID: "m-1", ComplaintID: "c-7"}, nil)
	marker.On("MarkRead", mock.Anything, admin, "m-x").Return(nil, apperr.NotFound("Message not found"))

	id, err := agg.Open(context.Background(), admin, "m-1")
	require.NoError(t, err)
	assert.Equal(t, "c-7", id)

	_, err = agg.Open(context.Background(), admin, "m-x")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}
