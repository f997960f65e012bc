package repositories

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"chatlink-service/internal/models"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationRepository defines interactions for the notification
// center.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, userID int64, text string) (models.Notification, error)
	ListForUser(ctx context.Context, userID int64) ([]models.Notification, error)
	DeleteNotification(ctx context.Context, id, userID int64) error
	ClearForUser(ctx context.Context, userID int64) error
}

// NotificationRepo is a sqlx-backed implementation.
type NotificationRepo struct {
	db *sqlx.DB
}

// NewNotificationRepo constructs a NotificationRepo.
func NewNotificationRepo(db *sqlx.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

// CreateNotification persists a notification row.
func (r *NotificationRepo) CreateNotification(ctx context.Context, userID int64, text string) (models.Notification, error) {
	var n models.Notification
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO notifications (user_id, text) VALUES ($1, $2) RETURNING id, user_id, text, created_at`,
		userID, text).StructScan(&n)
	return n, err
}

// ListForUser returns the user's notifications newest first.
func (r *NotificationRepo) ListForUser(ctx context.Context, userID int64) ([]models.Notification, error) {
	var ns []models.Notification
	err := r.db.SelectContext(ctx, &ns,
		`SELECT id, user_id, text, created_at FROM notifications WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	return ns, err
}

// DeleteNotification removes one notification owned by the user.
func (r *NotificationRepo) DeleteNotification(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// ClearForUser removes every notification owned by the user.
func (r *NotificationRepo) ClearForUser(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE user_id=$1`, userID)
	return err
}
