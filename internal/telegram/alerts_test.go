package telegram_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"complaintdesk/backend/internal/localization"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/storage/storagetest"
	"complaintdesk/backend/internal/telegram"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	args := m.Called(c)
	return tgbotapi.Message{}, args.Error(0)
}

func complaintEvent(t models.ChangeType, status models.Status) models.ChangeEvent {
	c := &models.Complaint{
		ID: "c-1", StudentID: "s-1", Category: models.CategoryElectrical,
		Description: "Sparking socket <near> the desk", Status: status,
	}
	return models.ComplaintChanged(t, c, time.Now())
}

func startAlerter(t *testing.T, sender *mockSender) *telegram.Alerter {
	t.Helper()
	store := storagetest.NewMemoryStore()
	sid := "BCR-2041"
	require.NoError(t, store.CreateProfile(context.Background(), &models.Profile{
		ID: "s-1", Name: "Asha", Role: models.RoleStudent, StudentID: &sid, Email: "asha@example.edu",
	}))
	loc, err := localization.New()
	require.NoError(t, err)

	a := telegram.NewAlerter(sender, 4242, store, loc)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = a.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return a
}

func TestAlerter_SendsEmergencyInserts(t *testing.T) {
	// Arrange
	sender := new(mockSender)
	sent := make(chan tgbotapi.MessageConfig, 1)
	sender.On("Send", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		sent <- args.Get(0).(tgbotapi.MessageConfig)
	}).Once()
	a := startAlerter(t, sender)

	// Act
	a.Publish(context.Background(), complaintEvent(models.ChangeInsert, models.StatusEmergency))

	// Assert
	select {
	case msg := <-sent:
		assert.Equal(t, tgbotapi.ModeHTML, msg.ParseMode)
		assert.Contains(t, msg.Text, "Emergency complaint")
		assert.Contains(t, msg.Text, "Electrical")
		assert.Contains(t, msg.Text, "Asha (BCR-2041)")
		assert.Contains(t, msg.Text, "Sparking socket &lt;near&gt; the desk")
	case <-time.After(time.Second):
		require.FailNow(t, "alert was not sent")
	}
}

func TestAlerter_IgnoresOtherEvents(t *testing.T) {
	sender := new(mockSender)
	a := startAlerter(t, sender)

	a.Publish(context.Background(), complaintEvent(models.ChangeInsert, models.StatusPending))
	a.Publish(context.Background(), complaintEvent(models.ChangeUpdate, models.StatusEmergency))
	m := &models.Message{ID: "m-1", ComplaintID: "c-1"}
	a.Publish(context.Background(), models.MessageChanged(models.ChangeInsert, m, "s-1", time.Now()))

	time.Sleep(50 * time.Millisecond)
	sender.AssertNotCalled(t, "Send", mock.Anything)
}

func TestAlerter_SendFailureIsLogged(t *testing.T) {
	sender := new(mockSender)
	called := make(chan struct{}, 2)
	sender.On("Send", mock.Anything).Return(errors.New("chat not found")).Run(func(mock.Arguments) {
		called <- struct{}{}
	})
	a := startAlerter(t, sender)

	a.Publish(context.Background(), complaintEvent(models.ChangeInsert, models.StatusEmergency))
	a.Publish(context.Background(), complaintEvent(models.ChangeInsert, models.StatusEmergency))

	for i := 0; i < 2; i++ {
		select {
		case <-called:
		case <-time.After(time.Second):
			require.FailNow(t, "alerter stopped after a failed send")
		}
	}
}
