package repositories

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"chatlink-service/internal/models"
)

var ErrStatusNotFound = errors.New("status not found")

// StatusRepository defines interactions for status posts.
type StatusRepository interface {
	CreateStatus(ctx context.Context, userID int64, mediaURL, mediaType, caption string) (models.Status, error)
	ListStatuses(ctx context.Context) ([]models.Status, error)
	MarkViewed(ctx context.Context, statusID, viewerID int64) error
	DeleteStatus(ctx context.Context, statusID, ownerID int64) error
}

// StatusRepo is a sqlx-backed implementation.
type StatusRepo struct {
	db *sqlx.DB
}

// NewStatusRepo constructs a StatusRepo.
func NewStatusRepo(db *sqlx.DB) *StatusRepo {
	return &StatusRepo{db: db}
}

// CreateStatus persists a status post.
func (r *StatusRepo) CreateStatus(ctx context.Context, userID int64, mediaURL, mediaType, caption string) (models.Status, error) {
	var st models.Status
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO statuses (user_id, media_url, media_type, caption) VALUES ($1, $2, $3, $4) RETURNING id, user_id, media_url, media_type, caption, created_at`,
		userID, mediaURL, mediaType, caption).StructScan(&st)
	return st, err
}

// ListStatuses returns all statuses newest first, each with its viewer
// set.
func (r *StatusRepo) ListStatuses(ctx context.Context) ([]models.Status, error) {
	var statuses []models.Status
	err := r.db.SelectContext(ctx, &statuses,
		`SELECT id, user_id, media_url, media_type, caption, created_at FROM statuses ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	for i := range statuses {
		var viewers []int64
		if err := r.db.SelectContext(ctx, &viewers,
			`SELECT user_id FROM status_viewers WHERE status_id=$1 ORDER BY user_id`, statuses[i].ID); err != nil {
			return nil, err
		}
		statuses[i].Viewers = viewers
	}
	return statuses, nil
}

// MarkViewed records a viewer; repeated views are no-ops.
func (r *StatusRepo) MarkViewed(ctx context.Context, statusID, viewerID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO status_viewers (status_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		statusID, viewerID)
	return err
}

// DeleteStatus removes a status owned by the caller.
func (r *StatusRepo) DeleteStatus(ctx context.Context, statusID, ownerID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM statuses WHERE id=$1 AND user_id=$2`, statusID, ownerID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrStatusNotFound
	}
	return nil
}
