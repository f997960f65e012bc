package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"chatlink-service/internal/models"
)

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateDirectMessage(ctx context.Context, senderID, receiverID int64, text, image string) (models.Message, error) {
	args := m.Called(ctx, senderID, receiverID, text, image)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) CreateGroupMessage(ctx context.Context, senderID, groupID int64, text, image string) (models.Message, error) {
	args := m.Called(ctx, senderID, groupID, text, image)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) GetMessage(ctx context.Context, messageID int64) (models.Message, error) {
	args := m.Called(ctx, messageID)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) GetDirectHistory(ctx context.Context, userID, otherID int64) ([]models.Message, error) {
	args := m.Called(ctx, userID, otherID)
	var list []models.Message
	if val := args.Get(0); val != nil {
		list = val.([]models.Message)
	}
	return list, args.Error(1)
}

func (m *MessageRepositoryMock) GetGroupHistory(ctx context.Context, groupID, userID int64) ([]models.Message, error) {
	args := m.Called(ctx, groupID, userID)
	var list []models.Message
	if val := args.Get(0); val != nil {
		list = val.([]models.Message)
	}
	return list, args.Error(1)
}

func (m *MessageRepositoryMock) DeleteMessage(ctx context.Context, messageID int64) error {
	args := m.Called(ctx, messageID)
	return args.Error(0)
}

func (m *MessageRepositoryMock) MarkDeletedForUser(ctx context.Context, messageID, userID int64) error {
	args := m.Called(ctx, messageID, userID)
	return args.Error(0)
}

func (m *MessageRepositoryMock) DeletedForUsers(ctx context.Context, messageID int64) ([]int64, error) {
	args := m.Called(ctx, messageID)
	var ids []int64
	if val := args.Get(0); val != nil {
		ids = val.([]int64)
	}
	return ids, args.Error(1)
}

type GroupRepositoryMock struct {
	mock.Mock
}

func (m *GroupRepositoryMock) CreateGroup(ctx context.Context, adminID int64, name, image string, memberIDs []int64) (models.Group, error) {
	args := m.Called(ctx, adminID, name, image, memberIDs)
	var group models.Group
	if val := args.Get(0); val != nil {
		group = val.(models.Group)
	}
	return group, args.Error(1)
}

func (m *GroupRepositoryMock) GetGroup(ctx context.Context, groupID int64) (models.Group, error) {
	args := m.Called(ctx, groupID)
	var group models.Group
	if val := args.Get(0); val != nil {
		group = val.(models.Group)
	}
	return group, args.Error(1)
}

func (m *GroupRepositoryMock) ListGroupsForUser(ctx context.Context, userID int64) ([]models.Group, error) {
	args := m.Called(ctx, userID)
	var list []models.Group
	if val := args.Get(0); val != nil {
		list = val.([]models.Group)
	}
	return list, args.Error(1)
}

func (m *GroupRepositoryMock) ListMembers(ctx context.Context, groupID int64) ([]int64, error) {
	args := m.Called(ctx, groupID)
	var ids []int64
	if val := args.Get(0); val != nil {
		ids = val.([]int64)
	}
	return ids, args.Error(1)
}

func (m *GroupRepositoryMock) IsMember(ctx context.Context, groupID, userID int64) (bool, error) {
	args := m.Called(ctx, groupID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *GroupRepositoryMock) UpdateInfo(ctx context.Context, groupID int64, name, image string) error {
	args := m.Called(ctx, groupID, name, image)
	return args.Error(0)
}

func (m *GroupRepositoryMock) AddMembers(ctx context.Context, groupID int64, memberIDs []int64) error {
	args := m.Called(ctx, groupID, memberIDs)
	return args.Error(0)
}

func (m *GroupRepositoryMock) RemoveMember(ctx context.Context, groupID, memberID int64) error {
	args := m.Called(ctx, groupID, memberID)
	return args.Error(0)
}

func (m *GroupRepositoryMock) SetAdmin(ctx context.Context, groupID, newAdminID int64) error {
	args := m.Called(ctx, groupID, newAdminID)
	return args.Error(0)
}

func (m *GroupRepositoryMock) DeleteGroup(ctx context.Context, groupID int64) error {
	args := m.Called(ctx, groupID)
	return args.Error(0)
}

type ScheduleRepositoryMock struct {
	mock.Mock
}

func (m *ScheduleRepositoryMock) CreateScheduledMessage(ctx context.Context, senderID, receiverID int64, text, image string, scheduledFor time.Time) (models.ScheduledMessage, error) {
	args := m.Called(ctx, senderID, receiverID, text, image, scheduledFor)
	var sm models.ScheduledMessage
	if val := args.Get(0); val != nil {
		sm = val.(models.ScheduledMessage)
	}
	return sm, args.Error(1)
}

func (m *ScheduleRepositoryMock) ListDue(ctx context.Context, now time.Time) ([]models.ScheduledMessage, error) {
	args := m.Called(ctx, now)
	var list []models.ScheduledMessage
	if val := args.Get(0); val != nil {
		list = val.([]models.ScheduledMessage)
	}
	return list, args.Error(1)
}

func (m *ScheduleRepositoryMock) MarkSent(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type ReminderRepositoryMock struct {
	mock.Mock
}

func (m *ReminderRepositoryMock) CreateReminder(ctx context.Context, userID int64, text string, scheduledFor time.Time) (models.Reminder, error) {
	args := m.Called(ctx, userID, text, scheduledFor)
	var rem models.Reminder
	if val := args.Get(0); val != nil {
		rem = val.(models.Reminder)
	}
	return rem, args.Error(1)
}

func (m *ReminderRepositoryMock) ListForUser(ctx context.Context, userID int64) ([]models.Reminder, error) {
	args := m.Called(ctx, userID)
	var list []models.Reminder
	if val := args.Get(0); val != nil {
		list = val.([]models.Reminder)
	}
	return list, args.Error(1)
}

func (m *ReminderRepositoryMock) ListDue(ctx context.Context, now time.Time) ([]models.Reminder, error) {
	args := m.Called(ctx, now)
	var list []models.Reminder
	if val := args.Get(0); val != nil {
		list = val.([]models.Reminder)
	}
	return list, args.Error(1)
}

func (m *ReminderRepositoryMock) UpdateReminder(ctx context.Context, id, userID int64, text string, scheduledFor time.Time) (models.Reminder, error) {
	args := m.Called(ctx, id, userID, text, scheduledFor)
	var rem models.Reminder
	if val := args.Get(0); val != nil {
		rem = val.(models.Reminder)
	}
	return rem, args.Error(1)
}

func (m *ReminderRepositoryMock) DeleteReminder(ctx context.Context, id, userID int64) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *ReminderRepositoryMock) MarkSent(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type StatusRepositoryMock struct {
	mock.Mock
}

func (m *StatusRepositoryMock) CreateStatus(ctx context.Context, userID int64, mediaURL, mediaType, caption string) (models.Status, error) {
	args := m.Called(ctx, userID, mediaURL, mediaType, caption)
	var st models.Status
	if val := args.Get(0); val != nil {
		st = val.(models.Status)
	}
	return st, args.Error(1)
}

func (m *StatusRepositoryMock) ListStatuses(ctx context.Context) ([]models.Status, error) {
	args := m.Called(ctx)
	var list []models.Status
	if val := args.Get(0); val != nil {
		list = val.([]models.Status)
	}
	return list, args.Error(1)
}

func (m *StatusRepositoryMock) MarkViewed(ctx context.Context, statusID, viewerID int64) error {
	args := m.Called(ctx, statusID, viewerID)
	return args.Error(0)
}

func (m *StatusRepositoryMock) DeleteStatus(ctx context.Context, statusID, ownerID int64) error {
	args := m.Called(ctx, statusID, ownerID)
	return args.Error(0)
}

type NotificationRepositoryMock struct {
	mock.Mock
}

func (m *NotificationRepositoryMock) CreateNotification(ctx context.Context, userID int64, text string) (models.Notification, error) {
	args := m.Called(ctx, userID, text)
	var n models.Notification
	if val := args.Get(0); val != nil {
		n = val.(models.Notification)
	}
	return n, args.Error(1)
}

func (m *NotificationRepositoryMock) ListForUser(ctx context.Context, userID int64) ([]models.Notification, error) {
	args := m.Called(ctx, userID)
	var list []models.Notification
	if val := args.Get(0); val != nil {
		list = val.([]models.Notification)
	}
	return list, args.Error(1)
}

func (m *NotificationRepositoryMock) DeleteNotification(ctx context.Context, id, userID int64) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *NotificationRepositoryMock) ClearForUser(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MediaStoreMock struct {
	mock.Mock
}

func (m *MediaStoreMock) Upload(ctx context.Context, data string, mediaType string) (string, error) {
	args := m.Called(ctx, data, mediaType)
	return args.String(0), args.Error(1)
}
