package test

import (
	"errors"
	"testing"

	"github.com/creativeprojects/folderfix/lib"
	"github.com/creativeprojects/folderfix/mailbox"
	"github.com/creativeprojects/folderfix/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Directory is the interface a storage implementation exposes to the shared
// tests: the directory itself plus the seeding methods to build fixtures.
type Directory interface {
	storage.Directory
	CreateFolder(parent mailbox.Folder, name string) (mailbox.Folder, error)
	AddItems(folder mailbox.Folder, count int) error
	AssignRole(role mailbox.Role, folder mailbox.Folder) error
}

// PrepareDirectory seeds the baseline fixture: a canonical Inbox with a few
// items, bound to the Inbox role.
func PrepareDirectory(dir Directory) error {
	root, err := dir.Root()
	if err != nil {
		return err
	}
	inbox, err := dir.CreateFolder(root, "Inbox")
	if err != nil {
		return err
	}
	if err = dir.AddItems(inbox, 2); err != nil {
		return err
	}
	return dir.AssignRole(mailbox.RoleInbox, inbox)
}

// RunTestsOnDirectory is the unit tests runner called by the concrete
// implementations of storage.Directory
func RunTestsOnDirectory(t *testing.T, dir Directory) {
	require.NotNil(t, dir)

	root, err := dir.Root()
	require.NoError(t, err)

	t.Run("RootIsItsOwnParent", func(t *testing.T) {
		assert.True(t, root.IsRoot())

		bound, err := dir.BindID(root.ID)
		require.NoError(t, err)
		assert.Equal(t, root.ID, bound.ID)
	})

	t.Run("BindRole", func(t *testing.T) {
		inbox, err := dir.BindRole(mailbox.RoleInbox)
		require.NoError(t, err)
		assert.Equal(t, "Inbox", inbox.Name)

		_, err = dir.BindRole(mailbox.RoleJournal)
		require.Error(t, err)
	})

	t.Run("FindChildByName", func(t *testing.T) {
		found, err := dir.FindChildByName(root, "Inbox")
		require.NoError(t, err)
		assert.Equal(t, "Inbox", found.Name)
		assert.Equal(t, root.ID, found.ParentID)

		_, err = dir.FindChildByName(root, "No folder at that name")
		require.Error(t, err)
		assert.True(t, errors.Is(err, lib.ErrFolderNotFound))
	})

	t.Run("ListChildren", func(t *testing.T) {
		parent, err := dir.CreateFolder(root, "Listing")
		require.NoError(t, err)
		for _, name := range []string{"One", "Two", "Three"} {
			_, err = dir.CreateFolder(parent, name)
			require.NoError(t, err)
		}

		children, err := dir.ListChildren(parent, storage.MaxListChildren)
		require.NoError(t, err)
		assert.Len(t, children, 3)

		capped, err := dir.ListChildren(parent, 2)
		require.NoError(t, err)
		assert.Len(t, capped, 2)
	})

	t.Run("PaginationIsStableWhileDraining", func(t *testing.T) {
		source, err := dir.CreateFolder(root, "Paging")
		require.NoError(t, err)
		dest, err := dir.CreateFolder(root, "Paging Target")
		require.NoError(t, err)
		require.NoError(t, dir.AddItems(source, 5))

		page, hasMore, err := dir.ListItemPage(source, 0, 2)
		require.NoError(t, err)
		assert.Len(t, page, 2)
		assert.True(t, hasMore)

		// drain the first page, then keep paging: positions must not shift
		require.NoError(t, dir.MoveItems(page, dest))

		page, hasMore, err = dir.ListItemPage(source, 2, 2)
		require.NoError(t, err)
		assert.Len(t, page, 2)
		assert.True(t, hasMore)
		require.NoError(t, dir.MoveItems(page, dest))

		page, hasMore, err = dir.ListItemPage(source, 4, 2)
		require.NoError(t, err)
		assert.Len(t, page, 1)
		assert.False(t, hasMore)
		require.NoError(t, dir.MoveItems(page, dest))

		// everything arrived
		page, hasMore, err = dir.ListItemPage(dest, 0, 10)
		require.NoError(t, err)
		assert.Len(t, page, 5)
		assert.False(t, hasMore)

		page, _, err = dir.ListItemPage(source, 0, 10)
		require.NoError(t, err)
		assert.Empty(t, page)
	})

	t.Run("MoveFolderKeepsSubtree", func(t *testing.T) {
		outer, err := dir.CreateFolder(root, "Outer")
		require.NoError(t, err)
		inner, err := dir.CreateFolder(outer, "Inner")
		require.NoError(t, err)
		require.NoError(t, dir.AddItems(inner, 1))
		dest, err := dir.CreateFolder(root, "New Home")
		require.NoError(t, err)

		moved, err := dir.MoveFolder(outer, dest)
		require.NoError(t, err)
		assert.Equal(t, dest.ID, moved.ParentID)

		// gone from the old parent
		_, err = dir.FindChildByName(root, "Outer")
		require.Error(t, err)

		// subtree followed the move
		found, err := dir.FindChildByName(dest, "Outer")
		require.NoError(t, err)
		foundInner, err := dir.FindChildByName(found, "Inner")
		require.NoError(t, err)
		page, _, err := dir.ListItemPage(foundInner, 0, 10)
		require.NoError(t, err)
		assert.Len(t, page, 1)
	})

	t.Run("SoftDeleteRefusesContent", func(t *testing.T) {
		folder, err := dir.CreateFolder(root, "Loaded")
		require.NoError(t, err)
		require.NoError(t, dir.AddItems(folder, 1))

		err = dir.SoftDelete(folder)
		require.Error(t, err)

		// still there
		_, err = dir.FindChildByName(root, "Loaded")
		require.NoError(t, err)
	})

	t.Run("SoftDeleteEmptyFolder", func(t *testing.T) {
		folder, err := dir.CreateFolder(root, "Disposable")
		require.NoError(t, err)

		err = dir.SoftDelete(folder)
		require.NoError(t, err)

		_, err = dir.FindChildByName(root, "Disposable")
		require.Error(t, err)
		assert.True(t, errors.Is(err, lib.ErrFolderNotFound))
	})

	t.Run("ResolvePath", func(t *testing.T) {
		parent, err := dir.CreateFolder(root, "Path Parent")
		require.NoError(t, err)
		child, err := dir.CreateFolder(parent, "Path Child")
		require.NoError(t, err)

		path := storage.ResolvePath(dir, child)
		assert.Equal(t, `\Path Parent\Path Child`, path)
	})
}
