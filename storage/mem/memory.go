package mem

import (
	"fmt"

	"github.com/creativeprojects/folderfix/lib"
	"github.com/creativeprojects/folderfix/mailbox"
)

const Separator = "/"

const rootID mailbox.FolderID = "root"

// Directory is an in-memory folder directory, used by the unit tests and as
// a reference for the semantics the other implementations follow.
type Directory struct {
	folders  map[mailbox.FolderID]*memFolder
	location map[mailbox.ItemID]mailbox.FolderID
	roles    map[mailbox.Role]mailbox.FolderID
	captures map[mailbox.FolderID][]mailbox.ItemID
	deleted  []mailbox.Folder
	nextID   int
	log      lib.Logger
}

func New() *Directory {
	return NewWithLogger(nil)
}

func NewWithLogger(logger lib.Logger) *Directory {
	if logger == nil {
		logger = &lib.NoLog{}
	}
	dir := &Directory{
		folders:  make(map[mailbox.FolderID]*memFolder),
		location: make(map[mailbox.ItemID]mailbox.FolderID),
		roles:    make(map[mailbox.Role]mailbox.FolderID),
		captures: make(map[mailbox.FolderID][]mailbox.ItemID),
		log:      logger,
	}
	// the root is its own parent: top-of-hierarchy sentinel
	dir.folders[rootID] = &memFolder{
		id:       rootID,
		name:     "",
		parentID: rootID,
	}
	return dir
}

func (d *Directory) DebugLogger(logger lib.Logger) {
	d.log = logger
}

func (d *Directory) Separator() string {
	return Separator
}

func (d *Directory) Close() error {
	d.folders = make(map[mailbox.FolderID]*memFolder)
	d.location = make(map[mailbox.ItemID]mailbox.FolderID)
	d.roles = make(map[mailbox.Role]mailbox.FolderID)
	d.captures = make(map[mailbox.FolderID][]mailbox.ItemID)
	return nil
}

func (d *Directory) Root() (mailbox.Folder, error) {
	return d.folders[rootID].folder(), nil
}

func (d *Directory) BindRole(role mailbox.Role) (mailbox.Folder, error) {
	id, ok := d.roles[role]
	if !ok {
		return mailbox.Folder{}, fmt.Errorf("%w: %s", lib.ErrRoleNotBound, role)
	}
	return d.BindID(id)
}

func (d *Directory) BindID(id mailbox.FolderID) (mailbox.Folder, error) {
	entry, ok := d.folders[id]
	if !ok {
		return mailbox.Folder{}, fmt.Errorf("%w: id %q", lib.ErrFolderNotFound, id)
	}
	return entry.folder(), nil
}

func (d *Directory) FindChildByName(parent mailbox.Folder, name string) (mailbox.Folder, error) {
	entry, ok := d.folders[parent.ID]
	if !ok {
		return mailbox.Folder{}, fmt.Errorf("%w: id %q", lib.ErrFolderNotFound, parent.ID)
	}
	// last enumerated match wins
	found := mailbox.FolderID("")
	for _, childID := range entry.children {
		if d.folders[childID].name == name {
			found = childID
		}
	}
	if found == "" {
		return mailbox.Folder{}, fmt.Errorf("%w: %q under %q", lib.ErrFolderNotFound, name, parent.Name)
	}
	return d.BindID(found)
}

func (d *Directory) ListChildren(parent mailbox.Folder, maxResults int) ([]mailbox.Folder, error) {
	entry, ok := d.folders[parent.ID]
	if !ok {
		return nil, fmt.Errorf("%w: id %q", lib.ErrFolderNotFound, parent.ID)
	}
	list := make([]mailbox.Folder, 0, len(entry.children))
	for _, childID := range entry.children {
		if len(list) >= maxResults {
			break
		}
		list = append(list, d.folders[childID].folder())
	}
	return list, nil
}

func (d *Directory) ListItemPage(folder mailbox.Folder, offset, pageSize int) ([]mailbox.ItemID, bool, error) {
	entry, ok := d.folders[folder.ID]
	if !ok {
		return nil, false, fmt.Errorf("%w: id %q", lib.ErrFolderNotFound, folder.ID)
	}
	capture, ok := d.captures[folder.ID]
	if offset == 0 || !ok {
		capture = append([]mailbox.ItemID(nil), entry.items...)
		d.captures[folder.ID] = capture
	}
	page, hasMore := lib.Page(capture, offset, pageSize)
	if !hasMore {
		delete(d.captures, folder.ID)
	}
	return page, hasMore, nil
}

func (d *Directory) MoveFolder(folder, newParent mailbox.Folder) (mailbox.Folder, error) {
	entry, ok := d.folders[folder.ID]
	if !ok {
		return mailbox.Folder{}, fmt.Errorf("%w: id %q", lib.ErrFolderNotFound, folder.ID)
	}
	parent, ok := d.folders[newParent.ID]
	if !ok {
		return mailbox.Folder{}, fmt.Errorf("%w: id %q", lib.ErrFolderNotFound, newParent.ID)
	}
	if entry.id == parent.id {
		return mailbox.Folder{}, fmt.Errorf("cannot move folder %q under itself", entry.name)
	}
	d.log.Printf("moving folder %q under %q", entry.name, parent.name)
	d.folders[entry.parentID].removeChild(entry.id)
	entry.parentID = parent.id
	parent.children = append(parent.children, entry.id)
	return entry.folder(), nil
}

func (d *Directory) MoveItems(ids []mailbox.ItemID, dest mailbox.Folder) error {
	target, ok := d.folders[dest.ID]
	if !ok {
		return fmt.Errorf("%w: id %q", lib.ErrFolderNotFound, dest.ID)
	}
	for _, id := range ids {
		sourceID, ok := d.location[id]
		if !ok {
			return fmt.Errorf("%w: %q", lib.ErrItemNotFound, id)
		}
		if sourceID == dest.ID {
			continue
		}
		if !d.folders[sourceID].removeItem(id) {
			return fmt.Errorf("%w: %q", lib.ErrItemNotFound, id)
		}
		target.items = append(target.items, id)
		d.location[id] = dest.ID
	}
	d.log.Printf("moved %d items to folder %q", len(ids), target.name)
	return nil
}

func (d *Directory) SoftDelete(folder mailbox.Folder) error {
	entry, ok := d.folders[folder.ID]
	if !ok {
		return fmt.Errorf("%w: id %q", lib.ErrFolderNotFound, folder.ID)
	}
	if entry.id == rootID {
		return fmt.Errorf("cannot delete the root folder")
	}
	if len(entry.children) > 0 || len(entry.items) > 0 {
		return fmt.Errorf("%w: %q", lib.ErrFolderNotEmpty, entry.name)
	}
	d.log.Printf("deleting folder %q", entry.name)
	d.folders[entry.parentID].removeChild(entry.id)
	delete(d.folders, entry.id)
	delete(d.captures, entry.id)
	// deleted folders are kept around: "soft" deletion is recoverable
	d.deleted = append(d.deleted, folder)
	return nil
}

//
// seeding and inspection, for the tests
//

func (d *Directory) CreateFolder(parent mailbox.Folder, name string) (mailbox.Folder, error) {
	entry, ok := d.folders[parent.ID]
	if !ok {
		return mailbox.Folder{}, fmt.Errorf("%w: id %q", lib.ErrFolderNotFound, parent.ID)
	}
	d.nextID++
	id := mailbox.FolderID(fmt.Sprintf("folder-%d", d.nextID))
	d.folders[id] = &memFolder{
		id:       id,
		name:     name,
		parentID: entry.id,
	}
	entry.children = append(entry.children, id)
	return d.folders[id].folder(), nil
}

func (d *Directory) AddItems(folder mailbox.Folder, count int) error {
	entry, ok := d.folders[folder.ID]
	if !ok {
		return fmt.Errorf("%w: id %q", lib.ErrFolderNotFound, folder.ID)
	}
	for i := 0; i < count; i++ {
		id := mailbox.ItemID(fmt.Sprintf("%s-item-%d", entry.id, len(entry.items)+1))
		entry.items = append(entry.items, id)
		d.location[id] = entry.id
	}
	return nil
}

func (d *Directory) AssignRole(role mailbox.Role, folder mailbox.Folder) error {
	if _, ok := d.folders[folder.ID]; !ok {
		return fmt.Errorf("%w: id %q", lib.ErrFolderNotFound, folder.ID)
	}
	d.roles[role] = folder.ID
	return nil
}

// ItemCount returns the number of items currently in the folder.
func (d *Directory) ItemCount(folder mailbox.Folder) int {
	entry, ok := d.folders[folder.ID]
	if !ok {
		return 0
	}
	return len(entry.items)
}

// TotalItems returns the number of items across the whole store.
func (d *Directory) TotalItems() int {
	return len(d.location)
}

// Deleted returns the folders removed by SoftDelete, in deletion order.
func (d *Directory) Deleted() []mailbox.Folder {
	return d.deleted
}
