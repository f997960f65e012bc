package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chatlink-service/internal/fanout"
	"chatlink-service/internal/media"
	"chatlink-service/internal/mocks"
	"chatlink-service/internal/models"
	"chatlink-service/internal/repositories"
	"chatlink-service/internal/ws"
)

func int64p(v int64) *int64 { return &v }

func newMessageHandler(messageRepo *mocks.MessageRepositoryMock, groupRepo *mocks.GroupRepositoryMock) *MessageHandler {
	fan := fanout.New(ws.NewRouter(ws.NewRegistry()), groupRepo, nil)
	return NewMessageHandler(messageRepo, groupRepo, new(mocks.ScheduleRepositoryMock), media.PassthroughStore{}, fan)
}

func setupMessageRouter(handler *MessageHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", int64(1))
		c.Next()
	})
	r.GET("/messages/:id", handler.GetMessages)
	r.POST("/messages/:id", handler.SendDirectMessage)
	r.POST("/messages/group/:group_id", handler.SendGroupMessage)
	r.DELETE("/messages/:message_id/all", handler.DeleteMessageForAll)
	r.DELETE("/messages/:message_id/me", handler.DeleteMessageForMe)
	return r
}

func TestGetDirectHistory(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	groupRepo := new(mocks.GroupRepositoryMock)
	router := setupMessageRouter(newMessageHandler(messageRepo, groupRepo))

	messageRepo.On("GetDirectHistory", mock.Anything, int64(1), int64(2)).
		Return([]models.Message{{ID: 10, SenderID: 2, ReceiverID: int64p(1), Text: "hi"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/messages/2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	messageRepo.AssertExpectations(t)
}

func TestGetGroupHistoryRequiresMembership(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	groupRepo := new(mocks.GroupRepositoryMock)
	router := setupMessageRouter(newMessageHandler(messageRepo, groupRepo))

	groupRepo.On("IsMember", mock.Anything, int64(7), int64(1)).Return(false, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/messages/7?group=true", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	groupRepo.AssertExpectations(t)
	messageRepo.AssertNotCalled(t, "GetGroupHistory", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetGroupHistoryAsMember(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	groupRepo := new(mocks.GroupRepositoryMock)
	router := setupMessageRouter(newMessageHandler(messageRepo, groupRepo))

	groupRepo.On("IsMember", mock.Anything, int64(7), int64(1)).Return(true, nil).Once()
	messageRepo.On("GetGroupHistory", mock.Anything, int64(7), int64(1)).
		Return([]models.Message{{ID: 11, SenderID: 2, GroupID: int64p(7), Text: "yo"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/messages/7?group=true", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	messageRepo.AssertExpectations(t)
}

func TestSendDirectMessage(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	groupRepo := new(mocks.GroupRepositoryMock)
	router := setupMessageRouter(newMessageHandler(messageRepo, groupRepo))

	messageRepo.On("CreateDirectMessage", mock.Anything, int64(1), int64(2), "hello", "").
		Return(models.Message{ID: 10, SenderID: 1, ReceiverID: int64p(2), Text: "hello"}, nil).Once()

	body := bytes.NewBufferString(`{"text":"hello"}`)
	req := httptest.NewRequest(http.MethodPost, "/messages/2", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	messageRepo.AssertExpectations(t)
}

func TestSendDirectMessageEmptyBody(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	groupRepo := new(mocks.GroupRepositoryMock)
	router := setupMessageRouter(newMessageHandler(messageRepo, groupRepo))

	req := httptest.NewRequest(http.MethodPost, "/messages/2", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	messageRepo.AssertNotCalled(t, "CreateDirectMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSendGroupMessageNonMember(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	groupRepo := new(mocks.GroupRepositoryMock)
	router := setupMessageRouter(newMessageHandler(messageRepo, groupRepo))

	groupRepo.On("IsMember", mock.Anything, int64(7), int64(1)).Return(false, nil).Once()

	body := bytes.NewBufferString(`{"text":"hello"}`)
	req := httptest.NewRequest(http.MethodPost, "/messages/group/7", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	messageRepo.AssertNotCalled(t, "CreateGroupMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSendGroupMessage(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	groupRepo := new(mocks.GroupRepositoryMock)
	router := setupMessageRouter(newMessageHandler(messageRepo, groupRepo))

	groupRepo.On("IsMember", mock.Anything, int64(7), int64(1)).Return(true, nil).Once()
	messageRepo.On("CreateGroupMessage", mock.Anything, int64(1), int64(7), "hello", "").
		Return(models.Message{ID: 12, SenderID: 1, GroupID: int64p(7), Text: "hello"}, nil).Once()
	groupRepo.On("ListMembers", mock.Anything, int64(7)).Return([]int64{1, 2}, nil).Once()

	body := bytes.NewBufferString(`{"text":"hello"}`)
	req := httptest.NewRequest(http.MethodPost, "/messages/group/7", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	messageRepo.AssertExpectations(t)
	groupRepo.AssertExpectations(t)
}

func TestScheduleMessage(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	groupRepo := new(mocks.GroupRepositoryMock)
	scheduleRepo := new(mocks.ScheduleRepositoryMock)
	fan := fanout.New(ws.NewRouter(ws.NewRegistry()), groupRepo, nil)
	handler := NewMessageHandler(messageRepo, groupRepo, scheduleRepo, media.PassthroughStore{}, fan)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("userID", int64(1)); c.Next() })
	r.POST("/messages/schedule", handler.ScheduleMessage)

	when := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	scheduleRepo.On("CreateScheduledMessage", mock.Anything, int64(1), int64(2), "later", "", when).
		Return(models.ScheduledMessage{ID: 3, SenderID: 1, ReceiverID: 2, Text: "later", ScheduledFor: when}, nil).Once()

	body := bytes.NewBufferString(`{"receiver_id":2,"text":"later","scheduled_for":"2025-07-01T09:00:00Z"}`)
	req := httptest.NewRequest(http.MethodPost, "/messages/schedule", body)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	scheduleRepo.AssertExpectations(t)
}

func TestDeleteMessageForAllNotSender(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	groupRepo := new(mocks.GroupRepositoryMock)
	router := setupMessageRouter(newMessageHandler(messageRepo, groupRepo))

	messageRepo.On("GetMessage", mock.Anything, int64(10)).
		Return(models.Message{ID: 10, SenderID: 2, ReceiverID: int64p(1)}, nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/messages/10/all", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	messageRepo.AssertNotCalled(t, "DeleteMessage", mock.Anything, mock.Anything)
}

func TestDeleteMessageForAllAsSender(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	groupRepo := new(mocks.GroupRepositoryMock)
	router := setupMessageRouter(newMessageHandler(messageRepo, groupRepo))

	messageRepo.On("GetMessage", mock.Anything, int64(10)).
		Return(models.Message{ID: 10, SenderID: 1, ReceiverID: int64p(2)}, nil).Once()
	messageRepo.On("DeleteMessage", mock.Anything, int64(10)).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/messages/10/all", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	messageRepo.AssertExpectations(t)
}

func TestDeleteMessageForMe(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	groupRepo := new(mocks.GroupRepositoryMock)
	router := setupMessageRouter(newMessageHandler(messageRepo, groupRepo))

	messageRepo.On("GetMessage", mock.Anything, int64(10)).
		Return(models.Message{ID: 10, SenderID: 2, ReceiverID: int64p(1)}, nil).Once()
	messageRepo.On("MarkDeletedForUser", mock.Anything, int64(10), int64(1)).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/messages/10/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	messageRepo.AssertExpectations(t)
}

func TestDeleteMessageNotFound(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	groupRepo := new(mocks.GroupRepositoryMock)
	router := setupMessageRouter(newMessageHandler(messageRepo, groupRepo))

	messageRepo.On("GetMessage", mock.Anything, int64(99)).
		Return(models.Message{}, repositories.ErrMessageNotFound).Once()

	req := httptest.NewRequest(http.MethodDelete, "/messages/99/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
