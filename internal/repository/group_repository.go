package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ironbros/aura-api/internal/models"
)

// GroupRepository reads friend-groups and their member lists. Membership
// management lives outside this service.
type GroupRepository struct {
	db *sqlx.DB
}

// NewGroupRepository constructs a GroupRepository.
func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// FindByID loads the group and its members.
func (r *GroupRepository) FindByID(ctx context.Context, id string) (*models.Group, error) {
	var group models.Group
	if err := r.db.GetContext(ctx, &group, `SELECT id, nombre FROM groups WHERE id = $1`, id); err != nil {
		return nil, err
	}
	if err := r.db.SelectContext(ctx, &group.Members,
		`SELECT group_id, user_id, user_name FROM group_members WHERE group_id = $1 ORDER BY user_name`, id); err != nil {
		return nil, fmt.Errorf("load group members: %w", err)
	}
	return &group, nil
}
