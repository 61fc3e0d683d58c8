package remote

import (
	"testing"

	"github.com/creativeprojects/folderfix/mailbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewImapMissingConfig(t *testing.T) {
	_, err := NewImap(Config{})
	require.Error(t, err)
}

func TestFolderFromPath(t *testing.T) {
	imap := &Imap{delimiter: "/"}

	folder := imap.folderFromPath("INBOX")
	assert.Equal(t, mailbox.Folder{ID: "INBOX", Name: "INBOX", ParentID: ""}, folder)

	folder = imap.folderFromPath("INBOX/Work/Reports")
	assert.Equal(t, mailbox.Folder{ID: "INBOX/Work/Reports", Name: "Reports", ParentID: "INBOX/Work"}, folder)
}

func TestChildPath(t *testing.T) {
	imap := &Imap{delimiter: "."}

	root, err := imap.Root()
	require.NoError(t, err)
	assert.True(t, root.IsRoot())
	assert.Equal(t, "Postvak IN", imap.childPath(root, "Postvak IN"))

	parent := imap.folderFromPath("INBOX")
	assert.Equal(t, "INBOX.Werk", imap.childPath(parent, "Werk"))
}

func TestItemIDRoundTrip(t *testing.T) {
	id := itemID("INBOX.Werk", 12345)
	path, uid, err := splitItemID(id)
	require.NoError(t, err)
	assert.Equal(t, "INBOX.Werk", path)
	assert.Equal(t, uint32(12345), uid)

	_, _, err = splitItemID("not an item id")
	require.Error(t, err)
}
