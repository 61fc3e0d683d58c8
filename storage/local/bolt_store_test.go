package local_test

import (
	"path/filepath"
	"testing"

	"github.com/creativeprojects/folderfix/lib"
	"github.com/creativeprojects/folderfix/mailbox"
	"github.com/creativeprojects/folderfix/storage/local"
	"github.com/creativeprojects/folderfix/storage/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoltDirectory(t *testing.T) {
	store, err := local.NewBoltStoreWithLogger(filepath.Join(t.TempDir(), "store.db"), lib.NewTestLogger(t, "bolt"))
	require.NoError(t, err)

	defer store.Close()

	err = test.PrepareDirectory(store)
	require.NoError(t, err)

	test.RunTestsOnDirectory(t, store)
}

func TestBoltStorePersistence(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "store.db")

	store, err := local.NewBoltStore(filename)
	require.NoError(t, err)
	root, err := store.Root()
	require.NoError(t, err)
	folder, err := store.CreateFolder(root, "Inbox")
	require.NoError(t, err)
	require.NoError(t, store.AddItems(folder, 3))
	require.NoError(t, store.AssignRole(mailbox.RoleInbox, folder))
	require.NoError(t, store.Close())

	// reopen and read everything back
	store, err = local.NewBoltStore(filename)
	require.NoError(t, err)
	defer store.Close()

	bound, err := store.BindRole(mailbox.RoleInbox)
	require.NoError(t, err)
	assert.Equal(t, folder.ID, bound.ID)
	assert.Equal(t, "Inbox", bound.Name)

	page, hasMore, err := store.ListItemPage(bound, 0, 10)
	require.NoError(t, err)
	assert.Len(t, page, 3)
	assert.False(t, hasMore)
}
