package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chatlink-service/internal/mocks"
	"chatlink-service/internal/models"
	"chatlink-service/internal/ws"
)

type testConn struct {
	id     string
	events []string
}

func (c *testConn) ID() string { return c.id }

func (c *testConn) Send(event string, payload any) error {
	c.events = append(c.events, event)
	return nil
}

func (c *testConn) Close() error { return nil }

type fixture struct {
	schedules     *mocks.ScheduleRepositoryMock
	reminders     *mocks.ReminderRepositoryMock
	messages      *mocks.MessageRepositoryMock
	notifications *mocks.NotificationRepositoryMock
	registry      *ws.Registry
	dispatcher    *Dispatcher
	now           time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		schedules:     new(mocks.ScheduleRepositoryMock),
		reminders:     new(mocks.ReminderRepositoryMock),
		messages:      new(mocks.MessageRepositoryMock),
		notifications: new(mocks.NotificationRepositoryMock),
		registry:      ws.NewRegistry(),
		now:           time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	f.dispatcher = New(f.schedules, f.reminders, f.messages, f.notifications,
		ws.NewRouter(f.registry), nil, time.Minute)
	f.dispatcher.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) assertExpectations(t *testing.T) {
	t.Helper()
	f.schedules.AssertExpectations(t)
	f.reminders.AssertExpectations(t)
	f.messages.AssertExpectations(t)
	f.notifications.AssertExpectations(t)
}

func TestTickMaterializesDueMessage(t *testing.T) {
	f := newFixture(t)
	receiver := &testConn{id: "c2"}
	f.registry.Register(2, receiver)

	due := models.ScheduledMessage{ID: 5, SenderID: 1, ReceiverID: 2, Text: "later"}
	created := models.Message{ID: 40, SenderID: 1, Text: "later"}

	f.schedules.On("ListDue", mock.Anything, f.now).Return([]models.ScheduledMessage{due}, nil).Once()
	f.messages.On("CreateDirectMessage", mock.Anything, int64(1), int64(2), "later", "").Return(created, nil).Once()
	f.notifications.On("CreateNotification", mock.Anything, int64(2), mock.Anything).Return(models.Notification{}, nil).Once()
	f.notifications.On("CreateNotification", mock.Anything, int64(1), mock.Anything).Return(models.Notification{}, nil).Once()
	f.schedules.On("MarkSent", mock.Anything, int64(5)).Return(nil).Once()
	f.reminders.On("ListDue", mock.Anything, f.now).Return(nil, nil).Once()

	f.dispatcher.Tick(context.Background())

	require.Equal(t, []string{models.EventNewMessage, models.EventNewNotification}, receiver.events)
	f.assertExpectations(t)
}

func TestTickSecondPassIsNoOp(t *testing.T) {
	f := newFixture(t)

	f.schedules.On("ListDue", mock.Anything, f.now).Return(nil, nil).Twice()
	f.reminders.On("ListDue", mock.Anything, f.now).Return(nil, nil).Twice()

	f.dispatcher.Tick(context.Background())
	f.dispatcher.Tick(context.Background())

	f.assertExpectations(t)
}

func TestTickOfflineRecipientStillMarkedSent(t *testing.T) {
	f := newFixture(t)

	due := models.ScheduledMessage{ID: 5, SenderID: 1, ReceiverID: 2, Text: "later"}

	f.schedules.On("ListDue", mock.Anything, f.now).Return([]models.ScheduledMessage{due}, nil).Once()
	f.messages.On("CreateDirectMessage", mock.Anything, int64(1), int64(2), "later", "").Return(models.Message{ID: 40}, nil).Once()
	f.notifications.On("CreateNotification", mock.Anything, mock.Anything, mock.Anything).Return(models.Notification{}, nil).Twice()
	f.schedules.On("MarkSent", mock.Anything, int64(5)).Return(nil).Once()
	f.reminders.On("ListDue", mock.Anything, f.now).Return(nil, nil).Once()

	f.dispatcher.Tick(context.Background())

	f.assertExpectations(t)
}

func TestTickMaterializeFailureRetriesNextTick(t *testing.T) {
	f := newFixture(t)

	first := models.ScheduledMessage{ID: 5, SenderID: 1, ReceiverID: 2, Text: "fails"}
	second := models.ScheduledMessage{ID: 6, SenderID: 1, ReceiverID: 3, Text: "works"}

	f.schedules.On("ListDue", mock.Anything, f.now).Return([]models.ScheduledMessage{first, second}, nil).Once()
	f.messages.On("CreateDirectMessage", mock.Anything, int64(1), int64(2), "fails", "").Return(models.Message{}, errors.New("db down")).Once()
	f.messages.On("CreateDirectMessage", mock.Anything, int64(1), int64(3), "works", "").Return(models.Message{ID: 41}, nil).Once()
	f.notifications.On("CreateNotification", mock.Anything, mock.Anything, mock.Anything).Return(models.Notification{}, nil).Twice()
	// MarkSent only for the item that materialized
	f.schedules.On("MarkSent", mock.Anything, int64(6)).Return(nil).Once()
	f.reminders.On("ListDue", mock.Anything, f.now).Return(nil, nil).Once()

	f.dispatcher.Tick(context.Background())

	f.assertExpectations(t)
	f.schedules.AssertNotCalled(t, "MarkSent", mock.Anything, int64(5))
}

func TestTickDispatchesReminder(t *testing.T) {
	f := newFixture(t)
	owner := &testConn{id: "c1"}
	f.registry.Register(1, owner)

	due := models.Reminder{ID: 9, UserID: 1, Text: "stand up"}

	f.schedules.On("ListDue", mock.Anything, f.now).Return(nil, nil).Once()
	f.reminders.On("ListDue", mock.Anything, f.now).Return([]models.Reminder{due}, nil).Once()
	f.notifications.On("CreateNotification", mock.Anything, int64(1), "Reminder: stand up").Return(models.Notification{}, nil).Once()
	f.reminders.On("MarkSent", mock.Anything, int64(9)).Return(nil).Once()

	f.dispatcher.Tick(context.Background())

	require.Equal(t, []string{models.EventNewNotification}, owner.events)
	f.assertExpectations(t)
}

func TestTickListFailureSkipsSection(t *testing.T) {
	f := newFixture(t)

	f.schedules.On("ListDue", mock.Anything, f.now).Return(nil, errors.New("db down")).Once()
	f.reminders.On("ListDue", mock.Anything, f.now).Return(nil, nil).Once()

	f.dispatcher.Tick(context.Background())

	f.assertExpectations(t)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	f := newFixture(t)
	f.dispatcher.interval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.dispatcher.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop on cancel")
	}
}
