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

	"chatlink-service/internal/mocks"
	"chatlink-service/internal/models"
	"chatlink-service/internal/repositories"
)

func setupReminderRouter(handler *ReminderHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", int64(1))
		c.Next()
	})
	r.POST("/reminders", handler.CreateReminder)
	r.GET("/reminders", handler.ListReminders)
	r.PUT("/reminders/:id", handler.UpdateReminder)
	r.DELETE("/reminders/:id", handler.DeleteReminder)
	return r
}

func TestCreateReminder(t *testing.T) {
	reminderRepo := new(mocks.ReminderRepositoryMock)
	router := setupReminderRouter(NewReminderHandler(reminderRepo))

	when := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	reminderRepo.On("CreateReminder", mock.Anything, int64(1), "stand up", when).
		Return(models.Reminder{ID: 3, UserID: 1, Text: "stand up", ScheduledFor: when}, nil).Once()

	body := bytes.NewBufferString(`{"text":"stand up","scheduled_for":"2025-07-01T09:00:00Z"}`)
	req := httptest.NewRequest(http.MethodPost, "/reminders", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	reminderRepo.AssertExpectations(t)
}

func TestCreateReminderMissingTime(t *testing.T) {
	reminderRepo := new(mocks.ReminderRepositoryMock)
	router := setupReminderRouter(NewReminderHandler(reminderRepo))

	req := httptest.NewRequest(http.MethodPost, "/reminders", bytes.NewBufferString(`{"text":"stand up"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	reminderRepo.AssertNotCalled(t, "CreateReminder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListReminders(t *testing.T) {
	reminderRepo := new(mocks.ReminderRepositoryMock)
	router := setupReminderRouter(NewReminderHandler(reminderRepo))

	reminderRepo.On("ListForUser", mock.Anything, int64(1)).
		Return([]models.Reminder{{ID: 3, UserID: 1, Text: "stand up"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/reminders", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	reminderRepo.AssertExpectations(t)
}

func TestUpdateReminderNotFound(t *testing.T) {
	reminderRepo := new(mocks.ReminderRepositoryMock)
	router := setupReminderRouter(NewReminderHandler(reminderRepo))

	when := time.Date(2025, 7, 2, 9, 0, 0, 0, time.UTC)
	reminderRepo.On("UpdateReminder", mock.Anything, int64(9), int64(1), "moved", when).
		Return(models.Reminder{}, repositories.ErrReminderNotFound).Once()

	body := bytes.NewBufferString(`{"text":"moved","scheduled_for":"2025-07-02T09:00:00Z"}`)
	req := httptest.NewRequest(http.MethodPut, "/reminders/9", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteReminder(t *testing.T) {
	reminderRepo := new(mocks.ReminderRepositoryMock)
	router := setupReminderRouter(NewReminderHandler(reminderRepo))

	reminderRepo.On("DeleteReminder", mock.Anything, int64(3), int64(1)).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/reminders/3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	reminderRepo.AssertExpectations(t)
}
