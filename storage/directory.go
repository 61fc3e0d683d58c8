package storage

import (
	"fmt"

	"github.com/creativeprojects/folderfix/cfg"
	"github.com/creativeprojects/folderfix/lib"
	"github.com/creativeprojects/folderfix/mailbox"
	"github.com/creativeprojects/folderfix/storage/local"
	"github.com/creativeprojects/folderfix/storage/mdir"
	"github.com/creativeprojects/folderfix/storage/mem"
	"github.com/creativeprojects/folderfix/storage/remote"
)

// MaxListChildren is the cap passed to a folder listing call. Practically unbounded.
const MaxListChildren = 99999

// Directory is the folder directory of a message store.
//
// A pagination over a folder's items starts at offset 0: that call captures a
// stable listing of the folder, and later offsets page through the capture
// until hasMore comes back false. Items moved away in between therefore keep
// their position in the ongoing pagination.
type Directory interface {
	// DebugLogger sets a logger to send debug information to
	DebugLogger(logger lib.Logger)
	// Separator used between folder names in a path
	Separator() string
	// Close the directory
	Close() error
	// Root returns the top folder of the message store
	Root() (mailbox.Folder, error)
	// BindRole resolves a well-known role to its canonical folder,
	// independently of the folder display name
	BindRole(role mailbox.Role) (mailbox.Folder, error)
	// BindID re-reads a folder from its identifier
	BindID(id mailbox.FolderID) (mailbox.Folder, error)
	// FindChildByName is an exact-match lookup of an immediate child.
	// It returns lib.ErrFolderNotFound when there is no child of that name.
	// When several children share the name, the last one enumerated wins.
	FindChildByName(parent mailbox.Folder, name string) (mailbox.Folder, error)
	// ListChildren enumerates immediate children, capped at maxResults
	ListChildren(parent mailbox.Folder, maxResults int) ([]mailbox.Folder, error)
	// ListItemPage returns one page of the folder's item identifiers
	ListItemPage(folder mailbox.Folder, offset, pageSize int) ([]mailbox.ItemID, bool, error)
	// MoveFolder relocates a folder and its whole subtree under a new parent
	// in a single operation
	MoveFolder(folder, newParent mailbox.Folder) (mailbox.Folder, error)
	// MoveItems relocates a batch of items in a single operation
	MoveItems(ids []mailbox.ItemID, dest mailbox.Folder) error
	// SoftDelete deletes a folder expected to be childless and itemless.
	// The deletion may be recoverable through the store's own retention.
	SoftDelete(folder mailbox.Folder) error
}

// verify interface
var (
	_ Directory = &remote.Imap{}
	_ Directory = &local.BoltStore{}
	_ Directory = &mdir.Maildir{}
	_ Directory = &mem.Directory{}
)

func NewDirectory(config cfg.Account) (Directory, error) {
	switch config.Type {
	case cfg.IMAP:
		return remote.NewImap(remote.Config{
			ServerURL:           config.ServerURL,
			Username:            config.Username,
			Password:            config.Password,
			NoTLS:               config.NoTLS,
			SkipTLSVerification: config.SkipTLSVerification,
			Proxy:               config.Proxy,
		})
	case cfg.LOCAL:
		return local.NewBoltStore(config.File)
	case cfg.MAILDIR:
		return mdir.New(config.Root)
	default:
		return nil, fmt.Errorf("unsupported account type %q", config.Type)
	}
}
