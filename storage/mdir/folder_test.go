package mdir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFolderFromID(t *testing.T) {
	folder := folderFromID("Inbox")
	assert.Equal(t, "Inbox", folder.Name)
	assert.Equal(t, rootFolderID, string(folder.ParentID))

	folder = folderFromID("Inbox.Work.Reports")
	assert.Equal(t, "Reports", folder.Name)
	assert.Equal(t, "Inbox.Work", string(folder.ParentID))
}
