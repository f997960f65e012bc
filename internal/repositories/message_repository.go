package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"chatlink-service/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

const messageColumns = `id, sender_id, receiver_id, group_id, text, image, created_at`

// MessageRepository defines interactions for chat messages.
type MessageRepository interface {
	CreateDirectMessage(ctx context.Context, senderID, receiverID int64, text, image string) (models.Message, error)
	CreateGroupMessage(ctx context.Context, senderID, groupID int64, text, image string) (models.Message, error)
	GetMessage(ctx context.Context, messageID int64) (models.Message, error)
	GetDirectHistory(ctx context.Context, userID, otherID int64) ([]models.Message, error)
	GetGroupHistory(ctx context.Context, groupID, userID int64) ([]models.Message, error)
	DeleteMessage(ctx context.Context, messageID int64) error
	MarkDeletedForUser(ctx context.Context, messageID, userID int64) error
	DeletedForUsers(ctx context.Context, messageID int64) ([]int64, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateDirectMessage stores a one-to-one message.
func (r *MessageRepo) CreateDirectMessage(ctx context.Context, senderID, receiverID int64, text, image string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO messages (sender_id, receiver_id, text, image) VALUES ($1, $2, $3, $4) RETURNING `+messageColumns,
		senderID, receiverID, text, image).StructScan(&msg)
	return msg, err
}

// CreateGroupMessage stores a message addressed to a group.
func (r *MessageRepo) CreateGroupMessage(ctx context.Context, senderID, groupID int64, text, image string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO messages (sender_id, group_id, text, image) VALUES ($1, $2, $3, $4) RETURNING `+messageColumns,
		senderID, groupID, text, image).StructScan(&msg)
	return msg, err
}

// GetMessage retrieves a single message.
func (r *MessageRepo) GetMessage(ctx context.Context, messageID int64) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `SELECT `+messageColumns+` FROM messages WHERE id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// GetDirectHistory returns the conversation between two users, excluding
// messages the requesting user soft-deleted.
func (r *MessageRepo) GetDirectHistory(ctx context.Context, userID, otherID int64) ([]models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages m
        WHERE ((sender_id=$1 AND receiver_id=$2) OR (sender_id=$2 AND receiver_id=$1))
        AND NOT EXISTS (SELECT 1 FROM message_deletions d WHERE d.message_id=m.id AND d.user_id=$1)
        ORDER BY created_at ASC`
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, query, userID, otherID)
	return msgs, err
}

// GetGroupHistory returns a group's messages filtered by the requesting
// user's soft deletes, with the same predicate as direct history.
func (r *MessageRepo) GetGroupHistory(ctx context.Context, groupID, userID int64) ([]models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages m
        WHERE group_id=$1
        AND NOT EXISTS (SELECT 1 FROM message_deletions d WHERE d.message_id=m.id AND d.user_id=$2)
        ORDER BY created_at ASC`
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, query, groupID, userID)
	return msgs, err
}

// DeleteMessage removes a message row entirely.
func (r *MessageRepo) DeleteMessage(ctx context.Context, messageID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id=$1`, messageID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// MarkDeletedForUser records a per-user soft delete. Inserting the same
// pair twice is a no-op.
func (r *MessageRepo) MarkDeletedForUser(ctx context.Context, messageID, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO message_deletions (message_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		messageID, userID)
	return err
}

// DeletedForUsers lists the users a message is soft-deleted for.
func (r *MessageRepo) DeletedForUsers(ctx context.Context, messageID int64) ([]int64, error) {
	var ids []int64
	err := r.db.SelectContext(ctx, &ids, `SELECT user_id FROM message_deletions WHERE message_id=$1 ORDER BY user_id`, messageID)
	return ids, err
}
