// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/listmasterapp/listmaster/internal/models"
)

// Store defines the interface for the ownership and sharing engine's
// persistence operations. This abstraction allows swapping storage backends
// (SQLite, PostgreSQL, etc.) without changing the service layer.
//
// Every multi-row mutation runs inside a single transaction in the
// implementation; no method may leave a partially applied state behind.
type Store interface {
	// --- users ---

	// CreateUser persists a new user. Returns ErrEmailTaken if the email
	// is already registered.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email address.
	// Returns ErrUserNotFound if no such user exists.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID.
	// Returns ErrUserNotFound if no such user exists.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// UpdateUserName, UpdateUserEmail and UpdateUserPassword update a
	// single profile field. All return ErrUserNotFound if the user row is
	// absent; UpdateUserEmail returns ErrEmailTaken on a unique collision.
	UpdateUserName(ctx context.Context, userID, name string) error
	UpdateUserEmail(ctx context.Context, userID, email string) error
	UpdateUserPassword(ctx context.Context, userID, passwordHash string) error

	// DeleteUser removes the user and, atomically, every list and group
	// the user owns, every membership row naming the user, and every
	// membership row under a resource the user owned.
	// Returns ErrUserNotFound if the user id does not resolve.
	DeleteUser(ctx context.Context, userID string) error

	// --- lists ---

	// CreateList inserts the list row and the owner's membership row in
	// one transaction.
	CreateList(ctx context.Context, list *models.List) error

	// GetList returns the list only if requesterID holds a membership row
	// for it; otherwise ErrListNotFound, regardless of whether the list
	// physically exists.
	GetList(ctx context.Context, listID, requesterID string) (*models.List, error)

	// ListsForUser returns every list the user holds a membership row for.
	ListsForUser(ctx context.Context, userID string) ([]*models.List, error)

	// ListMembers returns every member of the list.
	// Returns ErrListNotFound if the list does not exist.
	ListMembers(ctx context.Context, listID string) ([]*models.Member, error)

	// ShareList grants membership to the user registered under
	// targetEmail and marks the list shared, atomically. Granting to an
	// existing member is a no-op success. Returns the target user so the
	// caller can notify them.
	ShareList(ctx context.Context, listID, targetEmail string) (*models.User, error)

	// CopyList creates a new list owned by the user registered under
	// targetEmail, copying title, elements and the shared flag from the
	// source. The source is unaffected. Returns the target user.
	CopyList(ctx context.Context, listID, targetEmail, newListID string) (*models.User, error)

	// DuplicateList creates a new list that keeps the source list's owner
	// and additionally grants membership to requesterID.
	DuplicateList(ctx context.Context, listID, requesterID, newListID string) error

	// UpdateListTitle and UpdateListElements update a single field in
	// place. Both return ErrListNotFound if the list row is absent.
	UpdateListTitle(ctx context.Context, listID, title string) error
	UpdateListElements(ctx context.Context, listID, elements string) error

	// RevokeAllShares clears the shared flag and removes every non-owner
	// membership row, atomically. Idempotent if already unshared.
	RevokeAllShares(ctx context.Context, listID, ownerID string) error

	// RevokeShare removes exactly one non-owner membership row. It does
	// not recompute the shared flag even when it removes the last
	// non-owner member; only RevokeAllShares flips it back.
	// Returns ErrMemberNotFound if no such membership exists.
	RevokeShare(ctx context.Context, listID, targetUserID string) error

	// DeleteList tears the list down entirely when requesterID is the
	// owner; when the requester is merely a member it removes only the
	// requester's membership row.
	DeleteList(ctx context.Context, listID, requesterID string) error

	// --- groups ---

	// CreateGroup inserts the group row and the owner's membership row in
	// one transaction.
	CreateGroup(ctx context.Context, group *models.Group) error

	// UpdateGroupTitle updates the title in place.
	// Returns ErrGroupNotFound if the group row is absent.
	UpdateGroupTitle(ctx context.Context, groupID, title string) error

	// DeleteGroup removes the group and all its membership rows. Only the
	// owner may delete; other users get ErrNotOwner.
	DeleteGroup(ctx context.Context, groupID, requesterID string) error

	// AddGroupMember grants membership to the user registered under
	// targetEmail. Granting to an existing member is a no-op success.
	// Returns the target user.
	AddGroupMember(ctx context.Context, groupID, targetEmail string) (*models.User, error)

	// RemoveGroupMember revokes a member's row. The owner's row cannot be
	// removed this way. Returns ErrMemberNotFound if no membership exists.
	RemoveGroupMember(ctx context.Context, groupID, targetUserID string) error

	// GroupMembers returns every member of the group.
	// Returns ErrGroupNotFound if the group does not exist.
	GroupMembers(ctx context.Context, groupID string) ([]*models.Member, error)

	// GroupsForUser returns every group the user holds a membership row for.
	GroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)

	// Close releases any resources held by the store.
	Close() error
}
