package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/listmasterapp/listmaster/internal/models"
	"github.com/listmasterapp/listmaster/internal/storage"
)

const userColumns = "id, email, name, password_hash, created_at"

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return user, nil
}

// getUserByEmail is the email-resolution lookup used inside share, copy and
// add-member transactions.
func getUserByEmail(ctx context.Context, q querier, email string) (*models.User, error) {
	return scanUser(q.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ?", email))
}

// CreateUser inserts a new user. The unique index on email is the
// authoritative guard against duplicate registration; a concurrent duplicate
// surfaces as ErrEmailTaken rather than a raw constraint failure.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, email, name, password_hash, created_at) VALUES (?, ?, ?, ?, ?)",
		user.ID, user.Email, user.Name, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByEmail retrieves a user by email address.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return getUserByEmail(ctx, s.db, email)
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id))
}

// UpdateUserName updates the display name.
func (s *SQLiteStore) UpdateUserName(ctx context.Context, userID, name string) error {
	return s.updateUserField(ctx, userID, "UPDATE users SET name = ? WHERE id = ?", name)
}

// UpdateUserEmail updates the email address. A collision with another
// account's email is reported as ErrEmailTaken.
func (s *SQLiteStore) UpdateUserEmail(ctx context.Context, userID, email string) error {
	return s.updateUserField(ctx, userID, "UPDATE users SET email = ? WHERE id = ?", email)
}

// UpdateUserPassword replaces the stored credential hash.
func (s *SQLiteStore) UpdateUserPassword(ctx context.Context, userID, passwordHash string) error {
	return s.updateUserField(ctx, userID, "UPDATE users SET password_hash = ? WHERE id = ?", passwordHash)
}

func (s *SQLiteStore) updateUserField(ctx context.Context, userID, query, value string) error {
	if _, err := s.GetUserByID(ctx, userID); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, value, userID); err != nil {
		if isUniqueViolation(err) {
			return storage.ErrEmailTaken
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// DeleteUser cascades in one transaction:
//
//  1. every list membership row naming the user or referencing a list the
//     user owns,
//  2. every list the user owns,
//  3. every group membership row naming the user or referencing a group the
//     user owns,
//  4. every group the user owns,
//  5. the user row itself.
//
// A failure at any step rolls back all of them; a partially cascaded
// deletion is never observable.
func (s *SQLiteStore) DeleteUser(ctx context.Context, userID string) error {
	if _, err := s.GetUserByID(ctx, userID); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"DELETE FROM users_lists WHERE list_id IN (SELECT id FROM lists WHERE owner_id = ?) OR user_id = ?",
			userID, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to delete list memberships: %w", err)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM lists WHERE owner_id = ?", userID); err != nil {
			return fmt.Errorf("failed to delete owned lists: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			"DELETE FROM users_groups WHERE group_id IN (SELECT id FROM groups WHERE owner_id = ?) OR user_id = ?",
			userID, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to delete group memberships: %w", err)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM groups WHERE owner_id = ?", userID); err != nil {
			return fmt.Errorf("failed to delete owned groups: %w", err)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id = ?", userID); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
}
