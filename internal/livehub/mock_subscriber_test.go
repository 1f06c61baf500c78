package livehub_test

import (
	"sync"

	"complaintdesk/backend/internal/livehub"
	"complaintdesk/backend/internal/models"
)

type mockSubscriber struct {
	id      string
	filters []livehub.Filter
	send    chan models.ChangeEvent

	once   sync.Once
	closed chan struct{}
}

func newMockSubscriber(id string, buffer int, filters ...livehub.Filter) *mockSubscriber {
	return &mockSubscriber{
		id:      id,
		filters: filters,
		send:    make(chan models.ChangeEvent, buffer),
		closed:  make(chan struct{}),
	}
}

func (s *mockSubscriber) GetID() string                             { return s.id }
func (s *mockSubscriber) GetFilters() []livehub.Filter              { return s.filters }
func (s *mockSubscriber) GetSendChannel() chan<- models.ChangeEvent { return s.send }
func (s *mockSubscriber) Run()                                      {}

func (s *mockSubscriber) Close() {
	s.once.Do(func() { close(s.closed) })
}

func (s *mockSubscriber) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}
