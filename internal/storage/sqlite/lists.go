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

// getList fetches a list row, mapping absence to ErrListNotFound.
func getList(ctx context.Context, q querier, listID string) (*models.List, error) {
	list := &models.List{}
	err := q.QueryRowContext(ctx,
		"SELECT id, title, elements, is_shared, owner_id, created_at FROM lists WHERE id = ?",
		listID,
	).Scan(&list.ID, &list.Title, &list.Elements, &list.IsShared, &list.OwnerID, &list.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrListNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get list: %w", err)
	}
	return list, nil
}

// CreateList inserts the list row and the owner's membership row in one
// transaction. Interrupting either insert leaves nothing behind.
func (s *SQLiteStore) CreateList(ctx context.Context, list *models.List) error {
	if list.ID == "" {
		list.ID = uuid.New().String()
	}
	if list.CreatedAt == 0 {
		list.CreatedAt = time.Now().Unix()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO lists (id, title, elements, is_shared, owner_id, created_at) VALUES (?, ?, ?, ?, ?, ?)",
			list.ID, list.Title, list.Elements, list.IsShared, list.OwnerID, list.CreatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return storage.ErrDuplicateID
			}
			return fmt.Errorf("failed to insert list: %w", err)
		}
		return listLedger.grant(ctx, tx, list.OwnerID, list.ID)
	})
}

// GetList returns the list only if the requester holds a membership row for
// it. Membership is the read authorization: a list the requester cannot see
// is indistinguishable from one that does not exist.
func (s *SQLiteStore) GetList(ctx context.Context, listID, requesterID string) (*models.List, error) {
	member, err := listLedger.exists(ctx, s.db, requesterID, listID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, storage.ErrListNotFound
	}
	return getList(ctx, s.db, listID)
}

// ListsForUser returns every list the user holds a membership row for.
// No ordering is guaranteed.
func (s *SQLiteStore) ListsForUser(ctx context.Context, userID string) ([]*models.List, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT lists.id, lists.title, lists.elements, lists.is_shared, lists.owner_id, lists.created_at
		 FROM lists INNER JOIN users_lists ON lists.id = users_lists.list_id
		 WHERE users_lists.user_id = ?`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list user lists: %w", err)
	}
	defer rows.Close()

	var lists []*models.List
	for rows.Next() {
		list := &models.List{}
		if err := rows.Scan(&list.ID, &list.Title, &list.Elements, &list.IsShared, &list.OwnerID, &list.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan list: %w", err)
		}
		lists = append(lists, list)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lists: %w", err)
	}
	return lists, nil
}

// ListMembers returns every member of the list, the owner included.
func (s *SQLiteStore) ListMembers(ctx context.Context, listID string) ([]*models.Member, error) {
	if _, err := getList(ctx, s.db, listID); err != nil {
		return nil, err
	}
	rows, err := listLedger.members(ctx, s.db, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return scanMembers(rows)
}

// ShareList resolves the target email, grants membership and flips the
// shared flag, all in one transaction. Sharing with an existing member is a
// no-op success. This is the only path that transitions is_shared to true.
func (s *SQLiteStore) ShareList(ctx context.Context, listID, targetEmail string) (*models.User, error) {
	var target *models.User
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		target, err = getUserByEmail(ctx, tx, targetEmail)
		if err != nil {
			return err
		}
		if _, err := getList(ctx, tx, listID); err != nil {
			return err
		}
		if err := listLedger.grant(ctx, tx, target.ID, listID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "UPDATE lists SET is_shared = 1 WHERE id = ?", listID); err != nil {
			return fmt.Errorf("failed to mark list shared: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return target, nil
}

// CopyList creates an entirely new list owned by the email-resolved target,
// copying title, elements and the shared flag from the source. The source is
// unaffected: this is a deep, ownership-transferring copy, distinct from
// sharing.
func (s *SQLiteStore) CopyList(ctx context.Context, listID, targetEmail, newListID string) (*models.User, error) {
	var target *models.User
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		target, err = getUserByEmail(ctx, tx, targetEmail)
		if err != nil {
			return err
		}
		src, err := getList(ctx, tx, listID)
		if err != nil {
			return err
		}
		return insertListCopy(ctx, tx, src, newListID, target.ID, src.IsShared)
	})
	if err != nil {
		return nil, err
	}
	return target, nil
}

// DuplicateList creates a new list that keeps the source list's owner and
// additionally grants membership to the requester. Used when a member wants
// a personal, independent snapshot while the original owner stays the owner
// of the duplicate too.
func (s *SQLiteStore) DuplicateList(ctx context.Context, listID, requesterID, newListID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		src, err := getList(ctx, tx, listID)
		if err != nil {
			return err
		}
		// A non-owner requester becomes a non-owner member of the
		// duplicate, so the duplicate must be marked shared.
		shared := src.IsShared || requesterID != src.OwnerID
		if err := insertListCopy(ctx, tx, src, newListID, src.OwnerID, shared); err != nil {
			return err
		}
		return listLedger.grant(ctx, tx, requesterID, newListID)
	})
}

// insertListCopy inserts a copy of src under newID with the given owner,
// plus the owner's membership row.
func insertListCopy(ctx context.Context, tx *sql.Tx, src *models.List, newID, ownerID string, shared bool) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO lists (id, title, elements, is_shared, owner_id, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		newID, src.Title, src.Elements, shared, ownerID, time.Now().Unix(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrDuplicateID
		}
		return fmt.Errorf("failed to insert list copy: %w", err)
	}
	return listLedger.grant(ctx, tx, ownerID, newID)
}

// UpdateListTitle updates the title in place.
func (s *SQLiteStore) UpdateListTitle(ctx context.Context, listID, title string) error {
	return s.updateListField(ctx, listID, "UPDATE lists SET title = ? WHERE id = ?", title)
}

// UpdateListElements replaces the opaque elements payload. Last write wins;
// there is no merge of concurrent edits.
func (s *SQLiteStore) UpdateListElements(ctx context.Context, listID, elements string) error {
	return s.updateListField(ctx, listID, "UPDATE lists SET elements = ? WHERE id = ?", elements)
}

func (s *SQLiteStore) updateListField(ctx context.Context, listID, query, value string) error {
	if _, err := getList(ctx, s.db, listID); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, value, listID); err != nil {
		return fmt.Errorf("failed to update list: %w", err)
	}
	return nil
}

// RevokeAllShares clears the shared flag and removes every non-owner
// membership row, atomically. Idempotent if the list is already unshared.
func (s *SQLiteStore) RevokeAllShares(ctx context.Context, listID, ownerID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		list, err := getList(ctx, tx, listID)
		if err != nil {
			return err
		}
		if list.OwnerID != ownerID {
			return storage.ErrNotOwner
		}
		if _, err := tx.ExecContext(ctx, "UPDATE lists SET is_shared = 0 WHERE id = ?", listID); err != nil {
			return fmt.Errorf("failed to clear shared flag: %w", err)
		}
		return listLedger.revokeAllExceptOwner(ctx, tx, listID, list.OwnerID)
	})
}

// RevokeShare removes exactly one non-owner membership row. The shared flag
// is deliberately left untouched even when this removes the last non-owner
// member; only RevokeAllShares flips it back to false.
func (s *SQLiteStore) RevokeShare(ctx context.Context, listID, targetUserID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		list, err := getList(ctx, tx, listID)
		if err != nil {
			return err
		}
		if list.OwnerID == targetUserID {
			return storage.ErrNotOwner
		}
		removed, err := listLedger.revoke(ctx, tx, targetUserID, listID)
		if err != nil {
			return err
		}
		if !removed {
			return storage.ErrMemberNotFound
		}
		return nil
	})
}

// DeleteList tears the list down entirely when the requester is the owner.
// A non-owner member merely leaves: only that member's row is removed and
// the list persists for everyone else.
func (s *SQLiteStore) DeleteList(ctx context.Context, listID, requesterID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		list, err := getList(ctx, tx, listID)
		if err != nil {
			return err
		}

		if list.OwnerID == requesterID {
			if err := listLedger.revokeAll(ctx, tx, listID); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, "DELETE FROM lists WHERE id = ?", listID); err != nil {
				return fmt.Errorf("failed to delete list: %w", err)
			}
			return nil
		}

		removed, err := listLedger.revoke(ctx, tx, requesterID, listID)
		if err != nil {
			return err
		}
		if !removed {
			return storage.ErrMemberNotFound
		}
		return nil
	})
}

// scanMembers drains a members query into Member values.
func scanMembers(rows *sql.Rows) ([]*models.Member, error) {
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		m := &models.Member{}
		if err := rows.Scan(&m.ID, &m.Name, &m.Email); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}
