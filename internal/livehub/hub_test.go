package livehub_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"complaintdesk/backend/internal/livehub"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/storage"
	"complaintdesk/backend/internal/storage/storagetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T, broker storage.ChangeBroker) *livehub.Hub {
	t.Helper()
	hub := livehub.NewHub(broker)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return hub
}

func messageEvent(complaintID, ownerID string) models.ChangeEvent {
	m := &models.Message{ID: "m-" + complaintID, ComplaintID: complaintID, SenderID: "a-1"}
	return models.MessageChanged(models.ChangeInsert, m, ownerID, time.Now())
}

func receive(t *testing.T, s *mockSubscriber) (models.ChangeEvent, bool) {
	t.Helper()
	select {
	case ev := <-s.send:
		return ev, true
	case <-time.After(500 * time.Millisecond):
		return models.ChangeEvent{}, false
	}
}

func TestHub_DeliversMatchingEventsLocally(t *testing.T) {
	// Arrange
	hub := startHub(t, nil)
	owner := newMockSubscriber("owner", 4, livehub.Filter{Table: models.TableMessages, Column: models.ColumnStudentID, Value: "s-1"})
	other := newMockSubscriber("other", 4, livehub.Filter{Table: models.TableMessages, Column: models.ColumnStudentID, Value: "s-2"})
	require.True(t, hub.Register(owner))
	require.True(t, hub.Register(other))

	// Act
	hub.Publish(context.Background(), messageEvent("c-1", "s-1"))

	// Assert
	ev, ok := receive(t, owner)
	require.True(t, ok, "owner should receive the event")
	assert.Equal(t, "c-1", ev.Column(models.ColumnComplaintID))

	_, ok = receive(t, other)
	assert.False(t, ok, "non-matching subscriber must not receive the event")
}

func TestHub_DropsSlowSubscriber(t *testing.T) {
	hub := startHub(t, nil)
	slow := newMockSubscriber("slow", 1, livehub.Filter{Table: models.TableMessages})
	fast := newMockSubscriber("fast", 8, livehub.Filter{Table: models.TableMessages})
	require.True(t, hub.Register(slow))
	require.True(t, hub.Register(fast))

	for i := 0; i < 3; i++ {
		hub.Publish(context.Background(), messageEvent("c-1", "s-1"))
	}

	assert.Eventually(t, slow.isClosed, time.Second, 10*time.Millisecond, "full buffer drops the subscriber")
	assert.Eventually(t, func() bool { return len(fast.send) == 3 }, time.Second, 10*time.Millisecond)
	assert.False(t, fast.isClosed())
}

func TestHub_UnregisterClosesSubscriber(t *testing.T) {
	hub := startHub(t, nil)
	sub := newMockSubscriber("s", 1, livehub.Filter{Table: models.TableComplaints})
	require.True(t, hub.Register(sub))

	hub.Unregister(sub)

	assert.Eventually(t, sub.isClosed, time.Second, 10*time.Millisecond)
}

func TestHub_ShutdownClosesEverything(t *testing.T) {
	hub := livehub.NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.Run(ctx)
		close(done)
	}()

	sub := newMockSubscriber("s", 1, livehub.Filter{Table: models.TableComplaints})
	require.True(t, hub.Register(sub))

	cancel()
	<-done

	assert.True(t, sub.isClosed())
	late := newMockSubscriber("late", 1)
	assert.False(t, hub.Register(late), "register after shutdown is refused")
	assert.True(t, late.isClosed())
}

func TestHub_PublishUsesBroker(t *testing.T) {
	broker := new(storagetest.MockStorage)
	broker.On("PublishChange", mock.Anything, mock.Anything).Return(nil)
	hub := livehub.NewHub(broker)

	hub.Publish(context.Background(), messageEvent("c-1", "s-1"))

	broker.AssertCalled(t, "PublishChange", mock.Anything, mock.Anything)
	assert.Len(t, hub.EventsCh, 0, "broker delivery comes back through the listener")
}

func TestHub_PublishFallsBackWhenBrokerFails(t *testing.T) {
	broker := new(storagetest.MockStorage)
	broker.On("PublishChange", mock.Anything, mock.Anything).Return(errors.New("redis: connection refused"))
	hub := livehub.NewHub(broker)

	hub.Publish(context.Background(), messageEvent("c-1", "s-1"))

	assert.Len(t, hub.EventsCh, 1)
}
