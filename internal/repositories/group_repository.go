package repositories

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"github.com/jmoiron/sqlx"

	"chatlink-service/internal/models"
)

var (
	ErrGroupNotFound = errors.New("group not found")
	ErrNotAMember    = errors.New("user is not a group member")
)

// GroupRepository abstracts group persistence.
type GroupRepository interface {
	CreateGroup(ctx context.Context, adminID int64, name, image string, memberIDs []int64) (models.Group, error)
	GetGroup(ctx context.Context, groupID int64) (models.Group, error)
	ListGroupsForUser(ctx context.Context, userID int64) ([]models.Group, error)
	ListMembers(ctx context.Context, groupID int64) ([]int64, error)
	IsMember(ctx context.Context, groupID, userID int64) (bool, error)
	UpdateInfo(ctx context.Context, groupID int64, name, image string) error
	AddMembers(ctx context.Context, groupID int64, memberIDs []int64) error
	RemoveMember(ctx context.Context, groupID, memberID int64) error
	SetAdmin(ctx context.Context, groupID, newAdminID int64) error
	DeleteGroup(ctx context.Context, groupID int64) error
}

// GroupRepo is a sqlx implementation of GroupRepository.
type GroupRepo struct {
	db *sqlx.DB
}

// NewGroupRepo constructs a GroupRepo.
func NewGroupRepo(db *sqlx.DB) *GroupRepo {
	return &GroupRepo{db: db}
}

// CreateGroup creates a group and its members atomically. The admin is
// always inserted as a member.
func (r *GroupRepo) CreateGroup(ctx context.Context, adminID int64, name, image string, memberIDs []int64) (models.Group, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Group{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var group models.Group
	if err = tx.QueryRowxContext(ctx,
		`INSERT INTO groups (name, image, admin_id) VALUES ($1, $2, $3) RETURNING id, name, image, admin_id, created_at`,
		name, image, adminID).StructScan(&group); err != nil {
		return models.Group{}, err
	}

	memberSet := map[int64]struct{}{adminID: {}}
	for _, id := range memberIDs {
		memberSet[id] = struct{}{}
	}
	ids := make([]int64, 0, len(memberSet))
	for id := range memberSet {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		if _, err = tx.ExecContext(ctx, `INSERT INTO group_members (group_id, user_id) VALUES ($1, $2)`, group.ID, id); err != nil {
			return models.Group{}, err
		}
	}

	if err = tx.Commit(); err != nil {
		return models.Group{}, err
	}
	group.Members = ids
	return group, nil
}

// GetGroup fetches a single group with its member list.
func (r *GroupRepo) GetGroup(ctx context.Context, groupID int64) (models.Group, error) {
	var group models.Group
	err := r.db.GetContext(ctx, &group, `SELECT id, name, image, admin_id, created_at FROM groups WHERE id=$1`, groupID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Group{}, ErrGroupNotFound
	}
	if err != nil {
		return models.Group{}, err
	}
	members, err := r.ListMembers(ctx, groupID)
	if err != nil {
		return models.Group{}, err
	}
	group.Members = members
	return group, nil
}

// ListGroupsForUser returns groups that include the user.
func (r *GroupRepo) ListGroupsForUser(ctx context.Context, userID int64) ([]models.Group, error) {
	var groups []models.Group
	err := r.db.SelectContext(ctx, &groups,
		`SELECT g.id, g.name, g.image, g.admin_id, g.created_at FROM groups g
         INNER JOIN group_members gm ON gm.group_id = g.id
         WHERE gm.user_id=$1 ORDER BY g.created_at DESC`, userID)
	return groups, err
}

// ListMembers returns the member ids of a group.
func (r *GroupRepo) ListMembers(ctx context.Context, groupID int64) ([]int64, error) {
	var ids []int64
	err := r.db.SelectContext(ctx, &ids, `SELECT user_id FROM group_members WHERE group_id=$1 ORDER BY user_id`, groupID)
	return ids, err
}

// IsMember checks membership.
func (r *GroupRepo) IsMember(ctx context.Context, groupID, userID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id=$1 AND user_id=$2)`, groupID, userID)
	return exists, err
}

// UpdateInfo updates name and/or image; empty values leave the column
// unchanged.
func (r *GroupRepo) UpdateInfo(ctx context.Context, groupID int64, name, image string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE groups SET name = COALESCE(NULLIF($2, ''), name), image = COALESCE(NULLIF($3, ''), image) WHERE id=$1`,
		groupID, name, image)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrGroupNotFound
	}
	return nil
}

// AddMembers inserts members, ignoring ids already present.
func (r *GroupRepo) AddMembers(ctx context.Context, groupID int64, memberIDs []int64) error {
	for _, id := range memberIDs {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO group_members (group_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			groupID, id); err != nil {
			return err
		}
	}
	return nil
}

// RemoveMember removes one member from the group.
func (r *GroupRepo) RemoveMember(ctx context.Context, groupID, memberID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM group_members WHERE group_id=$1 AND user_id=$2`, groupID, memberID)
	return err
}

// SetAdmin transfers the admin role. The new admin must already be a
// member.
func (r *GroupRepo) SetAdmin(ctx context.Context, groupID, newAdminID int64) error {
	member, err := r.IsMember(ctx, groupID, newAdminID)
	if err != nil {
		return err
	}
	if !member {
		return ErrNotAMember
	}
	_, err = r.db.ExecContext(ctx, `UPDATE groups SET admin_id=$2 WHERE id=$1`, groupID, newAdminID)
	return err
}

// DeleteGroup removes the group; members and messages cascade.
func (r *GroupRepo) DeleteGroup(ctx context.Context, groupID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE id=$1`, groupID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrGroupNotFound
	}
	return nil
}
