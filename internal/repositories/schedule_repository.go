package repositories

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"chatlink-service/internal/models"
)

const scheduledColumns = `id, sender_id, receiver_id, text, image, scheduled_for, is_sent`

// ScheduleRepository defines interactions for scheduled messages.
type ScheduleRepository interface {
	CreateScheduledMessage(ctx context.Context, senderID, receiverID int64, text, image string, scheduledFor time.Time) (models.ScheduledMessage, error)
	ListDue(ctx context.Context, now time.Time) ([]models.ScheduledMessage, error)
	MarkSent(ctx context.Context, id int64) error
}

// ScheduleRepo is a sqlx-backed implementation.
type ScheduleRepo struct {
	db *sqlx.DB
}

// NewScheduleRepo constructs a ScheduleRepo.
func NewScheduleRepo(db *sqlx.DB) *ScheduleRepo {
	return &ScheduleRepo{db: db}
}

// CreateScheduledMessage persists a message to be delivered later.
func (r *ScheduleRepo) CreateScheduledMessage(ctx context.Context, senderID, receiverID int64, text, image string, scheduledFor time.Time) (models.ScheduledMessage, error) {
	var msg models.ScheduledMessage
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO scheduled_messages (sender_id, receiver_id, text, image, scheduled_for) VALUES ($1, $2, $3, $4, $5) RETURNING `+scheduledColumns,
		senderID, receiverID, text, image, scheduledFor).StructScan(&msg)
	return msg, err
}

// ListDue returns unsent scheduled messages whose time has passed.
func (r *ScheduleRepo) ListDue(ctx context.Context, now time.Time) ([]models.ScheduledMessage, error) {
	var msgs []models.ScheduledMessage
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT `+scheduledColumns+` FROM scheduled_messages WHERE scheduled_for <= $1 AND is_sent = FALSE ORDER BY scheduled_for ASC`, now)
	return msgs, err
}

// MarkSent flags a scheduled message as dispatched.
func (r *ScheduleRepo) MarkSent(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE scheduled_messages SET is_sent = TRUE WHERE id=$1`, id)
	return err
}
