package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/listmasterapp/listmaster/internal/models"
	"github.com/listmasterapp/listmaster/internal/storage"
)

// getGroup fetches a group row, mapping absence to ErrGroupNotFound.
func getGroup(ctx context.Context, q querier, groupID string) (*models.Group, error) {
	group := &models.Group{}
	err := q.QueryRowContext(ctx,
		"SELECT id, title, owner_id, created_at FROM groups WHERE id = ?",
		groupID,
	).Scan(&group.ID, &group.Title, &group.OwnerID, &group.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrGroupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return group, nil
}

// CreateGroup inserts the group row and the owner's membership row in one
// transaction.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO groups (id, title, owner_id, created_at) VALUES (?, ?, ?, ?)",
			group.ID, group.Title, group.OwnerID, group.CreatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return storage.ErrDuplicateID
			}
			return fmt.Errorf("failed to insert group: %w", err)
		}
		return groupLedger.grant(ctx, tx, group.OwnerID, group.ID)
	})
}

// UpdateGroupTitle updates the title in place.
func (s *SQLiteStore) UpdateGroupTitle(ctx context.Context, groupID, title string) error {
	if _, err := getGroup(ctx, s.db, groupID); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "UPDATE groups SET title = ? WHERE id = ?", title, groupID); err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	return nil
}

// DeleteGroup removes the group and all its membership rows. Only the owner
// may delete a group; unlike lists, there is no member-leave path.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, groupID, requesterID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		group, err := getGroup(ctx, tx, groupID)
		if err != nil {
			return err
		}
		if group.OwnerID != requesterID {
			return storage.ErrNotOwner
		}
		if err := groupLedger.revokeAll(ctx, tx, groupID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM groups WHERE id = ?", groupID); err != nil {
			return fmt.Errorf("failed to delete group: %w", err)
		}
		return nil
	})
}

// AddGroupMember resolves the target email and grants membership in one
// transaction. Adding an existing member is a no-op success.
func (s *SQLiteStore) AddGroupMember(ctx context.Context, groupID, targetEmail string) (*models.User, error) {
	var target *models.User
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		target, err = getUserByEmail(ctx, tx, targetEmail)
		if err != nil {
			return err
		}
		if _, err := getGroup(ctx, tx, groupID); err != nil {
			return err
		}
		return groupLedger.grant(ctx, tx, target.ID, groupID)
	})
	if err != nil {
		return nil, err
	}
	return target, nil
}

// RemoveGroupMember revokes a member's row. The owner's row is only ever
// removed by group deletion.
func (s *SQLiteStore) RemoveGroupMember(ctx context.Context, groupID, targetUserID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		group, err := getGroup(ctx, tx, groupID)
		if err != nil {
			return err
		}
		if group.OwnerID == targetUserID {
			return storage.ErrNotOwner
		}
		removed, err := groupLedger.revoke(ctx, tx, targetUserID, groupID)
		if err != nil {
			return err
		}
		if !removed {
			return storage.ErrMemberNotFound
		}
		return nil
	})
}

// GroupMembers returns every member of the group, the owner included.
func (s *SQLiteStore) GroupMembers(ctx context.Context, groupID string) ([]*models.Member, error) {
	if _, err := getGroup(ctx, s.db, groupID); err != nil {
		return nil, err
	}
	rows, err := groupLedger.members(ctx, s.db, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list group members: %w", err)
	}
	return scanMembers(rows)
}

// GroupsForUser returns every group the user holds a membership row for.
func (s *SQLiteStore) GroupsForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT groups.id, groups.title, groups.owner_id, groups.created_at
		 FROM groups INNER JOIN users_groups ON groups.id = users_groups.group_id
		 WHERE users_groups.user_id = ?`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list user groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		group := &models.Group{}
		if err := rows.Scan(&group.ID, &group.Title, &group.OwnerID, &group.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}
	return groups, nil
}
