package merge

import (
	"errors"

	"github.com/creativeprojects/folderfix/mailbox"
	"github.com/creativeprojects/folderfix/storage/mem"
)

// callRecorder wraps the in-memory directory to count calls and to inject
// failures on selected operations
type callRecorder struct {
	*mem.Directory
	listChildrenCalls int
	listPageCalls     int
	movedBatches      []int
	folderMoves       int
	deletedNames      []string

	failMoveItemsOnce bool
	failedOnce        bool
	failMoveItemsTo   map[mailbox.FolderID]bool
	failMoveFolder    bool
	failSoftDelete    bool
}

func newRecorder() *callRecorder {
	return &callRecorder{
		Directory:       mem.New(),
		failMoveItemsTo: make(map[mailbox.FolderID]bool),
	}
}

func (r *callRecorder) ListChildren(parent mailbox.Folder, maxResults int) ([]mailbox.Folder, error) {
	r.listChildrenCalls++
	return r.Directory.ListChildren(parent, maxResults)
}

func (r *callRecorder) ListItemPage(folder mailbox.Folder, offset, pageSize int) ([]mailbox.ItemID, bool, error) {
	r.listPageCalls++
	return r.Directory.ListItemPage(folder, offset, pageSize)
}

func (r *callRecorder) MoveItems(ids []mailbox.ItemID, dest mailbox.Folder) error {
	r.movedBatches = append(r.movedBatches, len(ids))
	if r.failMoveItemsOnce && !r.failedOnce {
		r.failedOnce = true
		return errors.New("injected: move items failed")
	}
	if r.failMoveItemsTo[dest.ID] {
		return errors.New("injected: move items failed")
	}
	return r.Directory.MoveItems(ids, dest)
}

func (r *callRecorder) MoveFolder(folder, newParent mailbox.Folder) (mailbox.Folder, error) {
	r.folderMoves++
	if r.failMoveFolder {
		return mailbox.Folder{}, errors.New("injected: move folder failed")
	}
	return r.Directory.MoveFolder(folder, newParent)
}

func (r *callRecorder) SoftDelete(folder mailbox.Folder) error {
	if r.failSoftDelete {
		return errors.New("injected: delete failed")
	}
	err := r.Directory.SoftDelete(folder)
	if err == nil {
		r.deletedNames = append(r.deletedNames, folder.Name)
	}
	return err
}
