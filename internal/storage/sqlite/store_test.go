package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/listmasterapp/listmaster/internal/models"
)

// newTestStore creates a store backed by a throwaway database file.
func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// mustUser registers a user and returns it.
func mustUser(t *testing.T, store *SQLiteStore, email, name string) *models.User {
	t.Helper()
	user := models.NewUser(email, name, "hash-"+name)
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

// mustList creates a list owned by ownerID and returns it.
func mustList(t *testing.T, store *SQLiteStore, ownerID, title, elements string) *models.List {
	t.Helper()
	list := &models.List{Title: title, Elements: elements, OwnerID: ownerID}
	require.NoError(t, store.CreateList(context.Background(), list))
	return list
}

// mustGroup creates a group owned by ownerID and returns it.
func mustGroup(t *testing.T, store *SQLiteStore, ownerID, title string) *models.Group {
	t.Helper()
	group := &models.Group{Title: title, OwnerID: ownerID}
	require.NoError(t, store.CreateGroup(context.Background(), group))
	return group
}

// memberIDs projects a member slice to its user ids.
func memberIDs(members []*models.Member) []string {
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	return ids
}
