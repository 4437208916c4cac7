package sqlite

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listmasterapp/listmaster/internal/models"
	"github.com/listmasterapp/listmaster/internal/storage"
)

func TestCreateList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := mustUser(t, store, "a@example.com", "Alice")

	list := mustList(t, store, owner.ID, "Groceries", "[]")
	assert.NotEmpty(t, list.ID)
	assert.NotZero(t, list.CreatedAt)

	// The owner's membership row is created with the list.
	got, err := store.GetList(ctx, list.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", got.Title)
	assert.Equal(t, owner.ID, got.OwnerID)
	assert.False(t, got.IsShared)

	members, err := store.ListMembers(ctx, list.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{owner.ID}, memberIDs(members))
}

func TestCreateListDuplicateID(t *testing.T) {
	store := newTestStore(t)
	owner := mustUser(t, store, "a@example.com", "Alice")
	list := mustList(t, store, owner.ID, "First", "[]")

	err := store.CreateList(context.Background(), &models.List{
		ID: list.ID, Title: "Second", Elements: "[]", OwnerID: owner.ID,
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateID)
}

func TestCreateListAtomicity(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := mustUser(t, store, "a@example.com", "Alice")

	// A failing membership insert (unknown owner violates the FK) must
	// roll back the already-inserted list row.
	id := uuid.New().String()
	err := store.CreateList(ctx, &models.List{
		ID: id, Title: "Ghost", Elements: "[]", OwnerID: "no-such-user",
	})
	require.Error(t, err)

	_, err = store.GetList(ctx, id, owner.ID)
	assert.ErrorIs(t, err, storage.ErrListNotFound)
	_, err = store.ListMembers(ctx, id)
	assert.ErrorIs(t, err, storage.ErrListNotFound)
}

func TestGetListRequiresMembership(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := mustUser(t, store, "a@example.com", "Alice")
	stranger := mustUser(t, store, "b@example.com", "Bob")
	list := mustList(t, store, owner.ID, "Private", "[]")

	// A non-member sees not-found regardless of physical existence.
	_, err := store.GetList(ctx, list.ID, stranger.ID)
	assert.ErrorIs(t, err, storage.ErrListNotFound)
}

func TestShareList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := mustUser(t, store, "a@example.com", "Alice")
	bob := mustUser(t, store, "b@example.com", "Bob")
	list := mustList(t, store, owner.ID, "Groceries", "[]")

	target, err := store.ShareList(ctx, list.ID, bob.Email)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, target.ID)

	got, err := store.GetList(ctx, list.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, got.IsShared)

	t.Run("idempotent grant", func(t *testing.T) {
		_, err := store.ShareList(ctx, list.ID, bob.Email)
		require.NoError(t, err)

		members, err := store.ListMembers(ctx, list.ID)
		require.NoError(t, err)
		assert.Len(t, members, 2, "sharing twice must not duplicate the membership row")
	})

	t.Run("unknown target email", func(t *testing.T) {
		_, err := store.ShareList(ctx, list.ID, "nobody@example.com")
		assert.ErrorIs(t, err, storage.ErrUserNotFound)
	})

	t.Run("unknown list", func(t *testing.T) {
		_, err := store.ShareList(ctx, "no-such-list", bob.Email)
		assert.ErrorIs(t, err, storage.ErrListNotFound)
	})
}

func TestCopyList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := mustUser(t, store, "a@example.com", "Alice")
	carol := mustUser(t, store, "c@example.com", "Carol")
	src := mustList(t, store, owner.ID, "Recipes", `["pasta"]`)

	newID := uuid.New().String()
	target, err := store.CopyList(ctx, src.ID, carol.Email, newID)
	require.NoError(t, err)
	assert.Equal(t, carol.ID, target.ID)

	// The copy belongs to the target; the source is untouched.
	copied, err := store.GetList(ctx, newID, carol.ID)
	require.NoError(t, err)
	assert.Equal(t, "Recipes", copied.Title)
	assert.Equal(t, `["pasta"]`, copied.Elements)
	assert.Equal(t, carol.ID, copied.OwnerID)

	_, err = store.GetList(ctx, newID, owner.ID)
	assert.ErrorIs(t, err, storage.ErrListNotFound, "the source owner gets no membership in the copy")

	original, err := store.GetList(ctx, src.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, original.OwnerID)

	t.Run("unregistered target leaves no trace", func(t *testing.T) {
		ghostID := uuid.New().String()
		_, err := store.CopyList(ctx, src.ID, "nobody@example.com", ghostID)
		assert.ErrorIs(t, err, storage.ErrUserNotFound)

		_, err = store.ListMembers(ctx, ghostID)
		assert.ErrorIs(t, err, storage.ErrListNotFound)
	})
}

func TestDuplicateList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := mustUser(t, store, "a@example.com", "Alice")
	bob := mustUser(t, store, "b@example.com", "Bob")
	src := mustList(t, store, owner.ID, "Chores", "[]")
	_, err := store.ShareList(ctx, src.ID, bob.Email)
	require.NoError(t, err)

	newID := uuid.New().String()
	require.NoError(t, store.DuplicateList(ctx, src.ID, bob.ID, newID))

	// The duplicate keeps the original owner; the requester is a member.
	dup, err := store.GetList(ctx, newID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, dup.OwnerID)
	assert.True(t, dup.IsShared)

	members, err := store.ListMembers(ctx, newID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{owner.ID, bob.ID}, memberIDs(members))
}

func TestUpdateList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := mustUser(t, store, "a@example.com", "Alice")
	list := mustList(t, store, owner.ID, "Old", "[]")

	require.NoError(t, store.UpdateListTitle(ctx, list.ID, "New"))
	require.NoError(t, store.UpdateListElements(ctx, list.ID, `["x"]`))

	got, err := store.GetList(ctx, list.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
	assert.Equal(t, `["x"]`, got.Elements)

	assert.ErrorIs(t, store.UpdateListTitle(ctx, "nope", "t"), storage.ErrListNotFound)
	assert.ErrorIs(t, store.UpdateListElements(ctx, "nope", "e"), storage.ErrListNotFound)
}

func TestRevokeShare(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := mustUser(t, store, "a@example.com", "Alice")
	bob := mustUser(t, store, "b@example.com", "Bob")
	list := mustList(t, store, owner.ID, "Shared", "[]")
	_, err := store.ShareList(ctx, list.ID, bob.Email)
	require.NoError(t, err)

	require.NoError(t, store.RevokeShare(ctx, list.ID, bob.ID))

	_, err = store.GetList(ctx, list.ID, bob.ID)
	assert.ErrorIs(t, err, storage.ErrListNotFound)

	// Removing the last non-owner member does not flip is_shared back;
	// only RevokeAllShares does.
	got, err := store.GetList(ctx, list.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, got.IsShared)

	t.Run("owner row is not revocable", func(t *testing.T) {
		assert.ErrorIs(t, store.RevokeShare(ctx, list.ID, owner.ID), storage.ErrNotOwner)
	})

	t.Run("absent membership", func(t *testing.T) {
		assert.ErrorIs(t, store.RevokeShare(ctx, list.ID, bob.ID), storage.ErrMemberNotFound)
	})
}

func TestRevokeAllShares(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := mustUser(t, store, "a@example.com", "Alice")
	bob := mustUser(t, store, "b@example.com", "Bob")
	carol := mustUser(t, store, "c@example.com", "Carol")
	list := mustList(t, store, owner.ID, "Party", "[]")
	_, err := store.ShareList(ctx, list.ID, bob.Email)
	require.NoError(t, err)
	_, err = store.ShareList(ctx, list.ID, carol.Email)
	require.NoError(t, err)

	require.NoError(t, store.RevokeAllShares(ctx, list.ID, owner.ID))

	got, err := store.GetList(ctx, list.ID, owner.ID)
	require.NoError(t, err)
	assert.False(t, got.IsShared)

	members, err := store.ListMembers(ctx, list.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{owner.ID}, memberIDs(members))

	t.Run("idempotent when already unshared", func(t *testing.T) {
		require.NoError(t, store.RevokeAllShares(ctx, list.ID, owner.ID))
	})

	t.Run("non-owner cannot revoke", func(t *testing.T) {
		assert.ErrorIs(t, store.RevokeAllShares(ctx, list.ID, bob.ID), storage.ErrNotOwner)
	})
}

func TestDeleteListOwnerVsMember(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := mustUser(t, store, "a@example.com", "Alice")
	bob := mustUser(t, store, "b@example.com", "Bob")
	list := mustList(t, store, owner.ID, "Trip", "[]")
	_, err := store.ShareList(ctx, list.ID, bob.Email)
	require.NoError(t, err)

	// A member deleting the list merely leaves it.
	require.NoError(t, store.DeleteList(ctx, list.ID, bob.ID))

	got, err := store.GetList(ctx, list.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, got.OwnerID)

	members, err := store.ListMembers(ctx, list.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{owner.ID}, memberIDs(members))

	// The owner deleting the list tears it down entirely.
	require.NoError(t, store.DeleteList(ctx, list.ID, owner.ID))
	_, err = store.ListMembers(ctx, list.ID)
	assert.ErrorIs(t, err, storage.ErrListNotFound)
}

func TestListsForUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := mustUser(t, store, "a@example.com", "Alice")
	bob := mustUser(t, store, "b@example.com", "Bob")
	l1 := mustList(t, store, owner.ID, "One", "[]")
	mustList(t, store, owner.ID, "Two", "[]")
	_, err := store.ShareList(ctx, l1.ID, bob.Email)
	require.NoError(t, err)

	aliceLists, err := store.ListsForUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, aliceLists, 2)

	bobLists, err := store.ListsForUser(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, bobLists, 1)
	assert.Equal(t, l1.ID, bobLists[0].ID)
}

// TestGroceriesScenario walks the end-to-end sharing story: share, member
// leaves, owner revokes all.
func TestGroceriesScenario(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	alice := mustUser(t, store, "alice@example.com", "Alice")
	bob := mustUser(t, store, "bob@example.com", "Bob")

	l := mustList(t, store, alice.ID, "Groceries", "[]")

	_, err := store.ShareList(ctx, l.ID, bob.Email)
	require.NoError(t, err)

	members, err := store.ListMembers(ctx, l.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{alice.ID, bob.ID}, memberIDs(members))

	got, err := store.GetList(ctx, l.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, got.IsShared)

	// Bob leaves; the list survives under Alice.
	require.NoError(t, store.DeleteList(ctx, l.ID, bob.ID))
	got, err = store.GetList(ctx, l.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.OwnerID)

	// Alice revokes all shares; flag drops, only the owner remains.
	require.NoError(t, store.RevokeAllShares(ctx, l.ID, alice.ID))
	got, err = store.GetList(ctx, l.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, got.IsShared)

	members, err = store.ListMembers(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{alice.ID}, memberIDs(members))
}
