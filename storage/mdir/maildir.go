package mdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/creativeprojects/folderfix/lib"
	"github.com/creativeprojects/folderfix/mailbox"
	"github.com/emersion/go-maildir"
)

const (
	Separator = "."

	// rootFolderID is the identifier of the store root
	rootFolderID = "."
	// atticDir receives soft-deleted folders
	atticDir = "_deleted"
	// metadataFile keeps the role assignments
	metadataFile = ".folderfix.json"
)

// Maildir is a folder directory over a tree of maildir folders. Folder
// identifiers are the dot-separated folder paths relative to the root:
// moving a folder renews its identifier, the handle returned by MoveFolder
// must be used from then on.
type Maildir struct {
	root     string
	log      lib.Logger
	captures map[mailbox.FolderID][]mailbox.ItemID
}

type metadata struct {
	Roles map[string]string `json:"roles,omitempty"`
}

func New(root string) (*Maildir, error) {
	return NewWithLogger(root, nil)
}

func NewWithLogger(root string, logger lib.Logger) (*Maildir, error) {
	if runtime.GOOS == "windows" {
		return nil, errors.New("maildir is not supported on Windows")
	}
	if logger == nil {
		logger = &lib.NoLog{}
	}
	err := os.MkdirAll(root, 0700)
	if err != nil {
		return nil, err
	}

	return &Maildir{
		root:     root,
		log:      logger,
		captures: make(map[mailbox.FolderID][]mailbox.ItemID),
	}, nil
}

func (m *Maildir) DebugLogger(logger lib.Logger) {
	m.log = logger
}

func (m *Maildir) Separator() string {
	return Separator
}

func (m *Maildir) Close() error {
	return nil
}

func (m *Maildir) Root() (mailbox.Folder, error) {
	return mailbox.Folder{
		ID:       rootFolderID,
		Name:     "",
		ParentID: rootFolderID,
	}, nil
}

func (m *Maildir) BindRole(role mailbox.Role) (mailbox.Folder, error) {
	meta, err := m.getMetadata()
	if err != nil {
		return mailbox.Folder{}, err
	}
	id, ok := meta.Roles[string(role)]
	if !ok {
		return mailbox.Folder{}, fmt.Errorf("%w: %s", lib.ErrRoleNotBound, role)
	}
	return m.BindID(mailbox.FolderID(id))
}

func (m *Maildir) BindID(id mailbox.FolderID) (mailbox.Folder, error) {
	if id == rootFolderID {
		return m.Root()
	}
	info, err := os.Stat(filepath.Join(m.root, string(id)))
	if err != nil || !info.IsDir() {
		return mailbox.Folder{}, fmt.Errorf("%w: id %q", lib.ErrFolderNotFound, id)
	}
	return folderFromID(string(id)), nil
}

func folderFromID(id string) mailbox.Folder {
	name := id
	parent := rootFolderID
	if index := strings.LastIndex(id, Separator); index >= 0 {
		name = id[index+1:]
		parent = id[:index]
	}
	return mailbox.Folder{
		ID:       mailbox.FolderID(id),
		Name:     name,
		ParentID: mailbox.FolderID(parent),
	}
}

func childID(parent mailbox.Folder, name string) string {
	if parent.ID == rootFolderID {
		return name
	}
	return string(parent.ID) + Separator + name
}

func (m *Maildir) FindChildByName(parent mailbox.Folder, name string) (mailbox.Folder, error) {
	if name == "" || strings.Contains(name, Separator) {
		return mailbox.Folder{}, fmt.Errorf("%w: %q under %q", lib.ErrFolderNotFound, name, parent.Name)
	}
	return m.BindID(mailbox.FolderID(childID(parent, name)))
}

func (m *Maildir) ListChildren(parent mailbox.Folder, maxResults int) ([]mailbox.Folder, error) {
	if _, err := m.BindID(parent.ID); err != nil {
		return nil, err
	}
	prefix := ""
	if parent.ID != rootFolderID {
		prefix = string(parent.ID) + Separator
	}
	entries, err := os.ReadDir(m.root)
	if err != nil {
		return nil, err
	}
	list := make([]mailbox.Folder, 0, 10)
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == atticDir || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		id := entry.Name()
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		// immediate children only
		if strings.Contains(id[len(prefix):], Separator) {
			continue
		}
		if len(list) >= maxResults {
			break
		}
		list = append(list, folderFromID(id))
	}
	return list, nil
}

func (m *Maildir) ListItemPage(folder mailbox.Folder, offset, pageSize int) ([]mailbox.ItemID, bool, error) {
	if folder.ID == rootFolderID {
		// the store root holds no items
		return nil, false, nil
	}
	capture, ok := m.captures[folder.ID]
	if offset == 0 || !ok {
		keys, err := m.listKeys(folder)
		if err != nil {
			return nil, false, err
		}
		capture = make([]mailbox.ItemID, len(keys))
		for index, key := range keys {
			capture[index] = itemID(folder.ID, key)
		}
		m.captures[folder.ID] = capture
	}
	page, hasMore := lib.Page(capture, offset, pageSize)
	if !hasMore {
		delete(m.captures, folder.ID)
	}
	return page, hasMore, nil
}

func (m *Maildir) listKeys(folder mailbox.Folder) ([]string, error) {
	dir := maildir.Dir(filepath.Join(m.root, string(folder.ID)))
	// flush new messages into cur so they are all enumerated
	if _, err := dir.Unseen(); err != nil {
		return nil, err
	}
	messages, err := dir.Messages()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(messages))
	for _, message := range messages {
		keys = append(keys, message.Key())
	}
	sort.Strings(keys)
	return keys, nil
}

// itemID ties the maildir key to the folder holding the message
func itemID(folder mailbox.FolderID, key string) mailbox.ItemID {
	return mailbox.ItemID(string(folder) + ":" + key)
}

func splitItemID(id mailbox.ItemID) (mailbox.FolderID, string, error) {
	// a folder name may contain a colon, a maildir key cannot
	index := strings.LastIndex(string(id), ":")
	if index < 0 {
		return "", "", fmt.Errorf("%w: malformed id %q", lib.ErrItemNotFound, id)
	}
	return mailbox.FolderID(id[:index]), string(id[index+1:]), nil
}

func (m *Maildir) MoveFolder(folder, newParent mailbox.Folder) (mailbox.Folder, error) {
	if folder.ID == newParent.ID {
		return mailbox.Folder{}, fmt.Errorf("cannot move folder %q under itself", folder.Name)
	}
	if _, err := m.BindID(folder.ID); err != nil {
		return mailbox.Folder{}, err
	}
	if _, err := m.BindID(newParent.ID); err != nil {
		return mailbox.Folder{}, err
	}
	newID := childID(newParent, folder.Name)
	if newID == string(folder.ID) {
		return folder, nil
	}
	if _, err := os.Stat(filepath.Join(m.root, newID)); err == nil {
		return mailbox.Folder{}, fmt.Errorf("folder %q already exists", newID)
	}
	// rename the folder itself, then every descendant
	err := os.Rename(filepath.Join(m.root, string(folder.ID)), filepath.Join(m.root, newID))
	if err != nil {
		return mailbox.Folder{}, err
	}
	oldPrefix := string(folder.ID) + Separator
	entries, err := os.ReadDir(m.root)
	if err != nil {
		return mailbox.Folder{}, err
	}
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), oldPrefix) {
			continue
		}
		descendant := newID + Separator + entry.Name()[len(oldPrefix):]
		err = os.Rename(filepath.Join(m.root, entry.Name()), filepath.Join(m.root, descendant))
		if err != nil {
			return mailbox.Folder{}, err
		}
	}
	m.log.Printf("moved folder %q to %q", folder.ID, newID)
	return folderFromID(newID), nil
}

func (m *Maildir) MoveItems(ids []mailbox.ItemID, dest mailbox.Folder) error {
	if _, err := m.BindID(dest.ID); err != nil {
		return err
	}
	target := maildir.Dir(filepath.Join(m.root, string(dest.ID)))
	for _, id := range ids {
		folder, key, err := splitItemID(id)
		if err != nil {
			return err
		}
		if folder == dest.ID {
			continue
		}
		source := maildir.Dir(filepath.Join(m.root, string(folder)))
		message, err := source.MessageByKey(key)
		if err != nil {
			return fmt.Errorf("%w: %q in folder %q", lib.ErrItemNotFound, key, folder)
		}
		if err = message.MoveTo(target); err != nil {
			return fmt.Errorf("cannot move message %q to %q: %w", key, dest.ID, err)
		}
	}
	m.log.Printf("moved %d items to folder %q", len(ids), dest.ID)
	return nil
}

func (m *Maildir) SoftDelete(folder mailbox.Folder) error {
	if folder.ID == rootFolderID {
		return errors.New("cannot delete the root folder")
	}
	if _, err := m.BindID(folder.ID); err != nil {
		return err
	}
	children, err := m.ListChildren(folder, 1)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return fmt.Errorf("%w: %q", lib.ErrFolderNotEmpty, folder.Name)
	}
	keys, err := m.listKeys(folder)
	if err != nil {
		return err
	}
	if len(keys) > 0 {
		return fmt.Errorf("%w: %q", lib.ErrFolderNotEmpty, folder.Name)
	}
	// parked in the attic rather than removed from disk
	attic := filepath.Join(m.root, atticDir)
	if err = os.MkdirAll(attic, 0700); err != nil {
		return err
	}
	err = os.Rename(filepath.Join(m.root, string(folder.ID)), filepath.Join(attic, string(folder.ID)))
	if err != nil {
		return err
	}
	m.log.Printf("deleted folder %q", folder.ID)
	delete(m.captures, folder.ID)
	return nil
}

//
// seeding, used by the tests
//

func (m *Maildir) CreateFolder(parent mailbox.Folder, name string) (mailbox.Folder, error) {
	if name == "" || strings.Contains(name, Separator) {
		return mailbox.Folder{}, fmt.Errorf("invalid folder name %q", name)
	}
	if _, err := m.BindID(parent.ID); err != nil {
		return mailbox.Folder{}, err
	}
	id := childID(parent, name)
	dir := maildir.Dir(filepath.Join(m.root, id))
	if err := dir.Init(); err != nil {
		return mailbox.Folder{}, err
	}
	return folderFromID(id), nil
}

func (m *Maildir) AddItems(folder mailbox.Folder, count int) error {
	if _, err := m.BindID(folder.ID); err != nil {
		return err
	}
	path := filepath.Join(m.root, string(folder.ID))
	for i := 0; i < count; i++ {
		delivery, err := maildir.NewDelivery(path)
		if err != nil {
			return err
		}
		_, err = io.WriteString(delivery, "Subject: test message\r\n\r\nbody\r\n")
		if err != nil {
			_ = delivery.Abort()
			return err
		}
		if err = delivery.Close(); err != nil {
			return err
		}
	}
	return nil
}

func (m *Maildir) AssignRole(role mailbox.Role, folder mailbox.Folder) error {
	if _, err := m.BindID(folder.ID); err != nil {
		return err
	}
	meta, err := m.getMetadata()
	if err != nil {
		return err
	}
	if meta.Roles == nil {
		meta.Roles = make(map[string]string)
	}
	meta.Roles[string(role)] = string(folder.ID)
	return m.setMetadata(meta)
}

func (m *Maildir) getMetadata() (*metadata, error) {
	meta := &metadata{}
	content, err := os.ReadFile(filepath.Join(m.root, metadataFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return meta, nil
		}
		return nil, err
	}
	err = json.Unmarshal(content, meta)
	if err != nil {
		return nil, fmt.Errorf("cannot read metadata: %w", err)
	}
	return meta, nil
}

func (m *Maildir) setMetadata(meta *metadata) error {
	content, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(m.root, metadataFile), content, 0600)
}
