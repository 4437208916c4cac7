package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listmasterapp/listmaster/internal/storage"
)

func TestCreateGroup(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := mustUser(t, store, "a@example.com", "Alice")

	group := mustGroup(t, store, owner.ID, "Family")
	assert.NotEmpty(t, group.ID)

	members, err := store.GroupMembers(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{owner.ID}, memberIDs(members))
}

func TestAddGroupMember(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := mustUser(t, store, "a@example.com", "Alice")
	bob := mustUser(t, store, "b@example.com", "Bob")
	group := mustGroup(t, store, owner.ID, "Family")

	target, err := store.AddGroupMember(ctx, group.ID, bob.Email)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, target.ID)

	t.Run("idempotent grant", func(t *testing.T) {
		_, err := store.AddGroupMember(ctx, group.ID, bob.Email)
		require.NoError(t, err)

		members, err := store.GroupMembers(ctx, group.ID)
		require.NoError(t, err)
		assert.Len(t, members, 2, "adding twice must not duplicate the membership row")
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := store.AddGroupMember(ctx, group.ID, "nobody@example.com")
		assert.ErrorIs(t, err, storage.ErrUserNotFound)
	})

	t.Run("unknown group", func(t *testing.T) {
		_, err := store.AddGroupMember(ctx, "no-such-group", bob.Email)
		assert.ErrorIs(t, err, storage.ErrGroupNotFound)
	})
}

func TestRemoveGroupMember(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := mustUser(t, store, "a@example.com", "Alice")
	bob := mustUser(t, store, "b@example.com", "Bob")
	group := mustGroup(t, store, owner.ID, "Family")
	_, err := store.AddGroupMember(ctx, group.ID, bob.Email)
	require.NoError(t, err)

	require.NoError(t, store.RemoveGroupMember(ctx, group.ID, bob.ID))

	members, err := store.GroupMembers(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{owner.ID}, memberIDs(members))

	t.Run("absent membership", func(t *testing.T) {
		assert.ErrorIs(t, store.RemoveGroupMember(ctx, group.ID, bob.ID), storage.ErrMemberNotFound)
	})

	t.Run("owner row is not removable", func(t *testing.T) {
		assert.ErrorIs(t, store.RemoveGroupMember(ctx, group.ID, owner.ID), storage.ErrNotOwner)
	})
}

func TestDeleteGroup(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := mustUser(t, store, "a@example.com", "Alice")
	bob := mustUser(t, store, "b@example.com", "Bob")
	group := mustGroup(t, store, owner.ID, "Family")
	_, err := store.AddGroupMember(ctx, group.ID, bob.Email)
	require.NoError(t, err)

	// Unlike lists, a member cannot leave or delete a group.
	assert.ErrorIs(t, store.DeleteGroup(ctx, group.ID, bob.ID), storage.ErrNotOwner)

	require.NoError(t, store.DeleteGroup(ctx, group.ID, owner.ID))
	_, err = store.GroupMembers(ctx, group.ID)
	assert.ErrorIs(t, err, storage.ErrGroupNotFound)

	bobGroups, err := store.GroupsForUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, bobGroups)
}

func TestUpdateGroupTitle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := mustUser(t, store, "a@example.com", "Alice")
	group := mustGroup(t, store, owner.ID, "Old")

	require.NoError(t, store.UpdateGroupTitle(ctx, group.ID, "New"))

	groups, err := store.GroupsForUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "New", groups[0].Title)

	assert.ErrorIs(t, store.UpdateGroupTitle(ctx, "nope", "t"), storage.ErrGroupNotFound)
}
