package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"chatlink-service/internal/models"
)

var ErrReminderNotFound = errors.New("reminder not found")

const reminderColumns = `id, user_id, text, scheduled_for, is_sent`

// ReminderRepository defines interactions for reminders.
type ReminderRepository interface {
	CreateReminder(ctx context.Context, userID int64, text string, scheduledFor time.Time) (models.Reminder, error)
	ListForUser(ctx context.Context, userID int64) ([]models.Reminder, error)
	ListDue(ctx context.Context, now time.Time) ([]models.Reminder, error)
	UpdateReminder(ctx context.Context, id, userID int64, text string, scheduledFor time.Time) (models.Reminder, error)
	DeleteReminder(ctx context.Context, id, userID int64) error
	MarkSent(ctx context.Context, id int64) error
}

// ReminderRepo is a sqlx-backed implementation.
type ReminderRepo struct {
	db *sqlx.DB
}

// NewReminderRepo constructs a ReminderRepo.
func NewReminderRepo(db *sqlx.DB) *ReminderRepo {
	return &ReminderRepo{db: db}
}

// CreateReminder persists a reminder for a user.
func (r *ReminderRepo) CreateReminder(ctx context.Context, userID int64, text string, scheduledFor time.Time) (models.Reminder, error) {
	var rem models.Reminder
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO reminders (user_id, text, scheduled_for) VALUES ($1, $2, $3) RETURNING `+reminderColumns,
		userID, text, scheduledFor).StructScan(&rem)
	return rem, err
}

// ListForUser returns all reminders owned by the user.
func (r *ReminderRepo) ListForUser(ctx context.Context, userID int64) ([]models.Reminder, error) {
	var rems []models.Reminder
	err := r.db.SelectContext(ctx, &rems,
		`SELECT `+reminderColumns+` FROM reminders WHERE user_id=$1 ORDER BY scheduled_for ASC`, userID)
	return rems, err
}

// ListDue returns unsent reminders whose time has passed.
func (r *ReminderRepo) ListDue(ctx context.Context, now time.Time) ([]models.Reminder, error) {
	var rems []models.Reminder
	err := r.db.SelectContext(ctx, &rems,
		`SELECT `+reminderColumns+` FROM reminders WHERE scheduled_for <= $1 AND is_sent = FALSE ORDER BY scheduled_for ASC`, now)
	return rems, err
}

// UpdateReminder edits text and time. The sent flag is reset so a
// rescheduled reminder fires again.
func (r *ReminderRepo) UpdateReminder(ctx context.Context, id, userID int64, text string, scheduledFor time.Time) (models.Reminder, error) {
	var rem models.Reminder
	err := r.db.QueryRowxContext(ctx,
		`UPDATE reminders SET text=$3, scheduled_for=$4, is_sent = FALSE WHERE id=$1 AND user_id=$2 RETURNING `+reminderColumns,
		id, userID, text, scheduledFor).StructScan(&rem)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Reminder{}, ErrReminderNotFound
	}
	return rem, err
}

// DeleteReminder removes a reminder owned by the user.
func (r *ReminderRepo) DeleteReminder(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrReminderNotFound
	}
	return nil
}

// MarkSent flags a reminder as dispatched.
func (r *ReminderRepo) MarkSent(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE reminders SET is_sent = TRUE WHERE id=$1`, id)
	return err
}
