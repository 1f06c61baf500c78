package notify

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"complaintdesk/backend/internal/livehub"
	"complaintdesk/backend/internal/models"

	"github.com/google/uuid"
)

const feedBuffer = 32

// Feed keeps one principal's notification page in memory. Read receipts and
// complaint deletions are applied as deltas; new messages, removals from a
// full page and the periodic resync refetch the page from the aggregator.
type Feed struct {
	ID        string
	Principal models.Principal

	agg     *Aggregator
	index   *livehub.Index[string, models.Notification]
	events  chan models.ChangeEvent
	updates chan Page
	resync  time.Duration
	ctx     context.Context
	full    atomic.Bool

	closeOnce sync.Once
	log       *slog.Logger
}

var _ livehub.Subscriber = (*Feed)(nil)

func NewFeed(ctx context.Context, agg *Aggregator, p models.Principal, resync time.Duration) *Feed {
	return &Feed{
		ID:        uuid.NewString(),
		Principal: p,
		agg:       agg,
		index:     livehub.NewIndex[string, models.Notification](newestFirst),
		events:    make(chan models.ChangeEvent, feedBuffer),
		updates:   make(chan Page, 1),
		resync:    resync,
		ctx:       ctx,
		log:       agg.log.With("feed", p.ID),
	}
}

func (f *Feed) GetID() string { return f.ID }

func (f *Feed) GetFilters() []livehub.Filter {
	if f.Principal.IsAdmin() {
		return []livehub.Filter{
			{Table: models.TableMessages},
			{Table: models.TableComplaints},
		}
	}
	return []livehub.Filter{
		{Table: models.TableMessages, Column: models.ColumnStudentID, Value: f.Principal.ID},
		{Table: models.TableComplaints, Column: models.ColumnStudentID, Value: f.Principal.ID},
	}
}

func (f *Feed) GetSendChannel() chan<- models.ChangeEvent { return f.events }

// Updates delivers the latest page after every change. Only the newest page
// is kept when the reader falls behind.
func (f *Feed) Updates() <-chan Page { return f.updates }

func (f *Feed) Run() { go f.loop() }

func (f *Feed) Close() {
	f.closeOnce.Do(func() { close(f.events) })
}

func (f *Feed) loop() {
	defer close(f.updates)

	var tick <-chan time.Time
	if f.resync > 0 {
		t := time.NewTicker(f.resync)
		defer t.Stop()
		tick = t.C
	}

	f.refresh()
	for {
		select {
		case <-f.ctx.Done():
			return
		case ev, ok := <-f.events:
			if !ok {
				return
			}
			f.Apply(ev)
		case <-tick:
			f.refresh()
		}
	}
}

// Apply folds one change event into the page and emits it when it changed.
// It must not be called concurrently with Run.
func (f *Feed) Apply(ev models.ChangeEvent) {
	switch ev.Table {
	case models.TableMessages:
		f.applyMessage(ev)
	case models.TableComplaints:
		if ev.Type != models.ChangeDelete {
			return
		}
		removed := f.index.DeleteWhere(func(n models.Notification) bool { return n.ComplaintID == ev.RowID })
		f.afterRemoval(removed > 0)
	}
}

func (f *Feed) applyMessage(ev models.ChangeEvent) {
	switch ev.Type {
	case models.ChangeInsert:
		if ev.Column(models.ColumnSenderID) == f.Principal.ID {
			return
		}
		f.refresh()
	case models.ChangeUpdate:
		var m models.Message
		if err := ev.Decode(&m); err != nil || m.ReadAt == nil {
			f.refresh()
			return
		}
		f.afterRemoval(f.index.Delete(ev.RowID))
	case models.ChangeDelete:
		f.afterRemoval(f.index.Delete(ev.RowID))
	}
}

// afterRemoval refetches a page that was full, since older unread messages
// may now fit. Otherwise the local delta is enough.
func (f *Feed) afterRemoval(removed bool) {
	switch {
	case !removed:
	case f.full.Load():
		f.refresh()
	default:
		f.emit()
	}
}

func (f *Feed) refresh() {
	page, err := f.agg.Unread(f.ctx, f.Principal)
	if err != nil {
		f.log.Warn("failed to refresh notification feed", "error", err)
		return
	}
	f.index.Replace(page.Items, func(n models.Notification) string { return n.MessageID })
	f.full.Store(page.Full)
	f.emit()
}

func (f *Feed) emit() {
	page := f.agg.page(f.index.Sorted())
	page.Full = f.full.Load()

	select {
	case f.updates <- page:
		return
	default:
	}
	select {
	case <-f.updates:
	default:
	}
	select {
	case f.updates <- page:
	default:
	}
}

// Snapshot returns the current page without waiting for an update.
// It may be called while Run is active.
func (f *Feed) Snapshot() Page {
	page := f.agg.page(f.index.Sorted())
	page.Full = f.full.Load()
	return page
}
