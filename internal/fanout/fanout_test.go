package fanout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chatlink-service/internal/mocks"
	"chatlink-service/internal/models"
	"chatlink-service/internal/ws"
)

type recordingConn struct {
	id     string
	events []string
}

func (c *recordingConn) ID() string { return c.id }

func (c *recordingConn) Send(event string, payload any) error {
	c.events = append(c.events, event)
	return nil
}

func (c *recordingConn) Close() error { return nil }

func setup(t *testing.T) (*ws.Registry, *ws.Router, *mocks.GroupRepositoryMock) {
	t.Helper()
	reg := ws.NewRegistry()
	return reg, ws.NewRouter(reg), new(mocks.GroupRepositoryMock)
}

func connectUser(reg *ws.Registry, userID int64, connID string) *recordingConn {
	conn := &recordingConn{id: connID}
	reg.Register(userID, conn)
	return conn
}

func int64p(v int64) *int64 { return &v }

func TestDirectMessageGoesToReceiverOnly(t *testing.T) {
	reg, router, groups := setup(t)
	fan := New(router, groups, nil)

	sender := connectUser(reg, 1, "c1")
	receiver := connectUser(reg, 2, "c2")

	fan.MessageSent(context.Background(), models.Message{ID: 10, SenderID: 1, ReceiverID: int64p(2), Text: "hi"})

	require.Equal(t, []string{models.EventNewMessage}, receiver.events)
	require.Empty(t, sender.events)
}

func TestGroupMessageExcludesSender(t *testing.T) {
	reg, router, groups := setup(t)
	fan := New(router, groups, nil)

	sender := connectUser(reg, 1, "c1")
	member := connectUser(reg, 2, "c2")
	connectUser(reg, 4, "c4")

	groups.On("ListMembers", mock.Anything, int64(7)).Return([]int64{1, 2, 3, 4}, nil).Once()

	fan.MessageSent(context.Background(), models.Message{ID: 11, SenderID: 1, GroupID: int64p(7), Text: "hi all"})

	require.Empty(t, sender.events)
	require.Equal(t, []string{models.EventNewMessage}, member.events)
	groups.AssertExpectations(t)
}

func TestHardDeleteDirectRoutesToBothSides(t *testing.T) {
	reg, router, groups := setup(t)
	fan := New(router, groups, nil)

	actor := connectUser(reg, 1, "c1")
	receiver := connectUser(reg, 2, "c2")

	fan.MessageHardDeleted(context.Background(), models.Message{ID: 10, SenderID: 1, ReceiverID: int64p(2)}, 1)

	require.Equal(t, []string{models.EventMessageDeleted}, receiver.events)
	require.Equal(t, []string{models.EventMessageDeleted}, actor.events)
}

func TestHardDeleteGroupRoutesToMembersOnce(t *testing.T) {
	reg, router, groups := setup(t)
	fan := New(router, groups, nil)

	actor := connectUser(reg, 1, "c1")
	member := connectUser(reg, 2, "c2")

	groups.On("ListMembers", mock.Anything, int64(7)).Return([]int64{1, 2}, nil).Once()

	fan.MessageHardDeleted(context.Background(), models.Message{ID: 11, SenderID: 1, GroupID: int64p(7)}, 1)

	require.Equal(t, []string{models.EventMessageDeleted}, member.events)
	require.Equal(t, []string{models.EventMessageDeleted}, actor.events)
	groups.AssertExpectations(t)
}

func TestSoftDeleteRoutesToActorOnly(t *testing.T) {
	reg, router, groups := setup(t)
	fan := New(router, groups, nil)

	actor := connectUser(reg, 1, "c1")
	other := connectUser(reg, 2, "c2")

	fan.MessageSoftDeleted(1, 10)

	require.Equal(t, []string{models.EventMessageDeletedForMe}, actor.events)
	require.Empty(t, other.events)
}

func TestOfflineRecipientsAreSkipped(t *testing.T) {
	_, router, groups := setup(t)
	fan := New(router, groups, nil)

	// nobody online; must not panic and must not call the repo for
	// direct messages
	fan.MessageSent(context.Background(), models.Message{ID: 10, SenderID: 1, ReceiverID: int64p(2)})
}
