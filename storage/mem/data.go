package mem

import (
	"github.com/creativeprojects/folderfix/mailbox"
)

type memFolder struct {
	id       mailbox.FolderID
	name     string
	parentID mailbox.FolderID
	children []mailbox.FolderID
	items    []mailbox.ItemID
}

func (f *memFolder) folder() mailbox.Folder {
	return mailbox.Folder{
		ID:       f.id,
		Name:     f.name,
		ParentID: f.parentID,
	}
}

func (f *memFolder) removeChild(id mailbox.FolderID) {
	for index, child := range f.children {
		if child == id {
			f.children = append(f.children[:index], f.children[index+1:]...)
			return
		}
	}
}

func (f *memFolder) removeItem(id mailbox.ItemID) bool {
	for index, item := range f.items {
		if item == id {
			f.items = append(f.items[:index], f.items[index+1:]...)
			return true
		}
	}
	return false
}
