package remote

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/creativeprojects/folderfix/lib"
	"github.com/creativeprojects/folderfix/mailbox"
	"github.com/emersion/go-imap"
	compress "github.com/emersion/go-imap-compress"
	uidplus "github.com/emersion/go-imap-uidplus"
	"github.com/emersion/go-imap/client"
	"golang.org/x/net/proxy"
	"golang.org/x/time/rate"
)

// itemSeparator joins the folder path and the message UID inside an item
// identifier. A NUL cannot appear in a mailbox name.
const itemSeparator = "\x00"

// DefaultRequestsPerSecond caps the remote round-trips
const DefaultRequestsPerSecond = 20

type Config struct {
	ServerURL           string
	Username            string
	Password            string
	DebugLogger         lib.Logger
	NoTLS               bool
	SkipTLSVerification bool
	// Proxy is the address of an optional SOCKS5 proxy
	Proxy string
	// RequestsPerSecond overrides the rate limit on remote calls
	RequestsPerSecond int
}

// Imap is a folder directory over a live IMAP mailbox. Folder identifiers
// are the full mailbox paths: MoveFolder renews the moved folder's handle.
type Imap struct {
	client        *client.Client
	uidplusClient *uidplus.Client
	log           lib.Logger
	limiter       *rate.Limiter
	delimiter     string
	supportMove   bool
	selected      string
	captures      map[mailbox.FolderID][]mailbox.ItemID
}

func NewImap(cfg Config) (*Imap, error) {
	log := cfg.DebugLogger
	if log == nil {
		log = &lib.NoLog{}
	}
	if cfg.ServerURL == "" || cfg.Username == "" || cfg.Password == "" {
		return nil, errors.New("missing information from Config object")
	}

	imapClient, err := dial(cfg, log)
	if err != nil {
		return nil, err
	}
	log.Print("Connected")

	if err := imapClient.Login(cfg.Username, cfg.Password); err != nil {
		return nil, fmt.Errorf("authentication failure: %w", err)
	}
	log.Printf("Logged in as %s", cfg.Username)

	if caps, err := imapClient.Capability(); err == nil {
		log.Printf("capabilities: %+v", caps)
	}

	// enable DEFLATE when the server offers it
	comp := compress.NewClient(imapClient)
	if ok, err := comp.SupportCompress(compress.Deflate); err == nil && ok {
		if err := comp.Compress(compress.Deflate); err == nil {
			log.Print("compression enabled")
		}
	}

	// UIDPLUS gives us UID EXPUNGE for the move fallback
	uidExt := uidplus.NewClient(imapClient)
	supported, err := uidExt.SupportUidPlus()
	if err != nil || !supported {
		log.Print("IMAP server does NOT support UIDPLUS extension")
		uidExt = nil
	}

	supportMove, err := imapClient.Support("MOVE")
	if err != nil {
		supportMove = false
	}
	if !supportMove {
		log.Print("IMAP server does NOT support MOVE, using copy and expunge")
	}

	requestsPerSecond := cfg.RequestsPerSecond
	if requestsPerSecond <= 0 {
		requestsPerSecond = DefaultRequestsPerSecond
	}

	return &Imap{
		client:        imapClient,
		uidplusClient: uidExt,
		log:           log,
		limiter:       rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		supportMove:   supportMove,
		captures:      make(map[mailbox.FolderID][]mailbox.ItemID),
	}, nil
}

func dial(cfg Config, log lib.Logger) (*client.Client, error) {
	log.Printf("Connecting to server %s...", cfg.ServerURL)

	var dialer client.Dialer = proxy.Direct
	if cfg.Proxy != "" {
		socks, err := proxy.SOCKS5("tcp", cfg.Proxy, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("cannot use proxy %s: %w", cfg.Proxy, err)
		}
		log.Printf("Using proxy %s", cfg.Proxy)
		dialer = socks
	}

	var imapClient *client.Client
	var err error
	if cfg.NoTLS {
		imapClient, err = client.DialWithDialer(dialer, cfg.ServerURL)
	} else {
		tlsConfig := &tls.Config{}
		if cfg.SkipTLSVerification {
			tlsConfig.InsecureSkipVerify = true
		}
		imapClient, err = client.DialWithDialerTLS(dialer, cfg.ServerURL, tlsConfig)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot connect to server %s: %w", cfg.ServerURL, err)
	}
	return imapClient, nil
}

func (i *Imap) DebugLogger(logger lib.Logger) {
	i.log = logger
	i.client.SetDebug(&debugWriter{logger: logger})
}

func (i *Imap) Separator() string {
	if i.delimiter == "" {
		_, _ = i.listMailboxes("%")
	}
	return i.delimiter
}

func (i *Imap) Close() error {
	i.log.Print("Closing connection")
	i.wait()
	return i.client.Logout()
}

// wait applies the client-side rate limit before a remote round-trip
func (i *Imap) wait() {
	_ = i.limiter.Wait(context.Background())
}

func (i *Imap) Root() (mailbox.Folder, error) {
	// the root of the mailbox is its own parent
	return mailbox.Folder{ID: "", Name: "", ParentID: ""}, nil
}

// specialUse maps the well-known roles the IMAP SPECIAL-USE extension
// can advertise
var specialUse = map[mailbox.Role]string{
	mailbox.RoleSentItems:    imap.SentAttr,
	mailbox.RoleDeletedItems: imap.TrashAttr,
	mailbox.RoleDrafts:       imap.DraftsAttr,
	mailbox.RoleJunkEmail:    imap.JunkAttr,
}

// canonicalName is the fallback lookup for roles with no SPECIAL-USE
// attribute: servers carrying these folders expose them under their
// canonical names
var canonicalName = map[mailbox.Role]string{
	mailbox.RoleSentItems:    "Sent",
	mailbox.RoleDeletedItems: "Trash",
	mailbox.RoleDrafts:       "Drafts",
	mailbox.RoleJunkEmail:    "Junk",
	mailbox.RoleOutbox:       "Outbox",
	mailbox.RoleContacts:     "Contacts",
	mailbox.RoleCalendar:     "Calendar",
	mailbox.RoleTasks:        "Tasks",
	mailbox.RoleNotes:        "Notes",
	mailbox.RoleJournal:      "Journal",
}

func (i *Imap) BindRole(role mailbox.Role) (mailbox.Folder, error) {
	if role == mailbox.RoleInbox {
		return i.BindID("INBOX")
	}
	if attr, ok := specialUse[role]; ok {
		mailboxes, err := i.listMailboxes("*")
		if err != nil {
			return mailbox.Folder{}, err
		}
		for _, info := range mailboxes {
			for _, attribute := range info.Attributes {
				if attribute == attr {
					return i.folderFromPath(info.Name), nil
				}
			}
		}
	}
	if name, ok := canonicalName[role]; ok {
		folder, err := i.BindID(mailbox.FolderID(name))
		if err == nil {
			return folder, nil
		}
	}
	return mailbox.Folder{}, fmt.Errorf("%w: %s", lib.ErrRoleNotBound, role)
}

func (i *Imap) BindID(id mailbox.FolderID) (mailbox.Folder, error) {
	if id == "" {
		return i.Root()
	}
	mailboxes, err := i.listMailboxes(string(id))
	if err != nil {
		return mailbox.Folder{}, err
	}
	for _, info := range mailboxes {
		if info.Name == string(id) {
			return i.folderFromPath(info.Name), nil
		}
	}
	return mailbox.Folder{}, fmt.Errorf("%w: id %q", lib.ErrFolderNotFound, id)
}

func (i *Imap) folderFromPath(path string) mailbox.Folder {
	name := path
	parent := ""
	if delimiter := i.Separator(); delimiter != "" {
		if index := strings.LastIndex(path, delimiter); index >= 0 {
			name = path[index+len(delimiter):]
			parent = path[:index]
		}
	}
	return mailbox.Folder{
		ID:       mailbox.FolderID(path),
		Name:     name,
		ParentID: mailbox.FolderID(parent),
	}
}

func (i *Imap) childPath(parent mailbox.Folder, name string) string {
	if parent.ID == "" {
		return name
	}
	return string(parent.ID) + i.Separator() + name
}

func (i *Imap) FindChildByName(parent mailbox.Folder, name string) (mailbox.Folder, error) {
	path := i.childPath(parent, name)
	mailboxes, err := i.listMailboxes(path)
	if err != nil {
		return mailbox.Folder{}, err
	}
	// an exact-match pattern can still produce several entries when the
	// name carries wildcard characters: the last one enumerated wins
	found := ""
	for _, info := range mailboxes {
		found = info.Name
	}
	if found == "" {
		return mailbox.Folder{}, fmt.Errorf("%w: %q under %q", lib.ErrFolderNotFound, name, parent.Name)
	}
	return i.folderFromPath(found), nil
}

func (i *Imap) ListChildren(parent mailbox.Folder, maxResults int) ([]mailbox.Folder, error) {
	pattern := "%"
	if parent.ID != "" {
		pattern = string(parent.ID) + i.Separator() + "%"
	}
	mailboxes, err := i.listMailboxes(pattern)
	if err != nil {
		return nil, err
	}
	list := make([]mailbox.Folder, 0, len(mailboxes))
	for _, info := range mailboxes {
		if len(list) >= maxResults {
			break
		}
		list = append(list, i.folderFromPath(info.Name))
	}
	return list, nil
}

func (i *Imap) listMailboxes(pattern string) ([]*imap.MailboxInfo, error) {
	i.wait()
	receiver := make(chan *imap.MailboxInfo, 10)
	done := make(chan error, 1)
	go func() {
		done <- i.client.List("", pattern, receiver)
	}()

	list := make([]*imap.MailboxInfo, 0, 10)
	for info := range receiver {
		list = append(list, info)
		// sets the delimiter (if not already set)
		if i.delimiter == "" {
			i.delimiter = info.Delimiter
		}
	}
	if err := <-done; err != nil {
		return nil, err
	}
	return list, nil
}

func (i *Imap) ListItemPage(folder mailbox.Folder, offset, pageSize int) ([]mailbox.ItemID, bool, error) {
	if folder.ID == "" {
		// the mailbox root holds no items
		return nil, false, nil
	}
	capture, ok := i.captures[folder.ID]
	if offset == 0 || !ok {
		uids, err := i.searchAllUids(string(folder.ID))
		if err != nil {
			return nil, false, err
		}
		capture = make([]mailbox.ItemID, len(uids))
		for index, uid := range uids {
			capture[index] = itemID(folder.ID, uid)
		}
		i.captures[folder.ID] = capture
	}
	page, hasMore := lib.Page(capture, offset, pageSize)
	if !hasMore {
		delete(i.captures, folder.ID)
	}
	return page, hasMore, nil
}

func (i *Imap) searchAllUids(path string) ([]uint32, error) {
	if err := i.selectMailbox(path); err != nil {
		return nil, err
	}
	i.wait()
	uids, err := i.client.UidSearch(imap.NewSearchCriteria())
	if err != nil {
		return nil, fmt.Errorf("cannot search items of %q: %w", path, err)
	}
	sort.Slice(uids, func(a, b int) bool { return uids[a] < uids[b] })
	return uids, nil
}

func (i *Imap) selectMailbox(path string) error {
	if i.selected == path {
		return nil
	}
	i.wait()
	_, err := i.client.Select(path, false)
	if err != nil {
		i.selected = ""
		return fmt.Errorf("cannot select %q: %w", path, err)
	}
	i.selected = path
	return nil
}

func itemID(folder mailbox.FolderID, uid uint32) mailbox.ItemID {
	return mailbox.ItemID(string(folder) + itemSeparator + strconv.FormatUint(uint64(uid), 10))
}

func splitItemID(id mailbox.ItemID) (string, uint32, error) {
	path, value, found := strings.Cut(string(id), itemSeparator)
	if !found {
		return "", 0, fmt.Errorf("%w: malformed id %q", lib.ErrItemNotFound, id)
	}
	uid, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return "", 0, fmt.Errorf("%w: malformed id %q", lib.ErrItemNotFound, id)
	}
	return path, uint32(uid), nil
}

func (i *Imap) MoveFolder(folder, newParent mailbox.Folder) (mailbox.Folder, error) {
	if folder.ID == newParent.ID {
		return mailbox.Folder{}, fmt.Errorf("cannot move folder %q under itself", folder.Name)
	}
	newPath := i.childPath(newParent, folder.Name)
	i.unselect()
	i.wait()
	i.log.Printf("Renaming mailbox %q to %q", folder.ID, newPath)
	// the server relocates the whole subtree with the rename
	err := i.client.Rename(string(folder.ID), newPath)
	if err != nil {
		return mailbox.Folder{}, fmt.Errorf("cannot move folder %q: %w", folder.ID, err)
	}
	return i.folderFromPath(newPath), nil
}

func (i *Imap) MoveItems(ids []mailbox.ItemID, dest mailbox.Folder) error {
	// group the UIDs per source mailbox, preserving listing order
	groups := make(map[string]*imap.SeqSet)
	order := make([]string, 0, 1)
	for _, id := range ids {
		path, uid, err := splitItemID(id)
		if err != nil {
			return err
		}
		if path == string(dest.ID) {
			continue
		}
		seqset, ok := groups[path]
		if !ok {
			seqset = new(imap.SeqSet)
			groups[path] = seqset
			order = append(order, path)
		}
		seqset.AddNum(uid)
	}
	for _, path := range order {
		if err := i.moveUids(path, groups[path], string(dest.ID)); err != nil {
			return err
		}
	}
	return nil
}

func (i *Imap) moveUids(path string, seqset *imap.SeqSet, dest string) error {
	if err := i.selectMailbox(path); err != nil {
		return err
	}
	if i.supportMove {
		i.wait()
		err := i.client.UidMove(seqset, dest)
		if err != nil {
			return fmt.Errorf("cannot move items from %q to %q: %w", path, dest, err)
		}
		return nil
	}
	// fallback: copy, flag deleted, then expunge exactly these UIDs
	i.wait()
	if err := i.client.UidCopy(seqset, dest); err != nil {
		return fmt.Errorf("cannot copy items from %q to %q: %w", path, dest, err)
	}
	i.wait()
	flags := []interface{}{imap.DeletedFlag}
	if err := i.client.UidStore(seqset, imap.FormatFlagsOp(imap.AddFlags, true), flags, nil); err != nil {
		return fmt.Errorf("cannot flag items of %q: %w", path, err)
	}
	i.wait()
	if i.uidplusClient != nil {
		if err := i.uidplusClient.UidExpunge(seqset, nil); err != nil {
			return fmt.Errorf("cannot expunge items of %q: %w", path, err)
		}
		return nil
	}
	if err := i.client.Expunge(nil); err != nil {
		return fmt.Errorf("cannot expunge items of %q: %w", path, err)
	}
	return nil
}

func (i *Imap) SoftDelete(folder mailbox.Folder) error {
	if folder.ID == "" {
		return errors.New("cannot delete the root folder")
	}
	// the folder is expected to be drained: make sure of it
	i.wait()
	status, err := i.client.Select(string(folder.ID), true)
	if err != nil {
		i.selected = ""
		return fmt.Errorf("cannot check %q before deletion: %w", folder.ID, err)
	}
	i.selected = string(folder.ID)
	if status.Messages > 0 {
		return fmt.Errorf("%w: %q still has %d items", lib.ErrFolderNotEmpty, folder.Name, status.Messages)
	}
	i.unselect()
	i.wait()
	i.log.Printf("Deleting mailbox %q", folder.ID)
	err = i.client.Delete(string(folder.ID))
	if err != nil {
		return fmt.Errorf("cannot delete folder %q: %w", folder.ID, err)
	}
	delete(i.captures, folder.ID)
	return nil
}

func (i *Imap) unselect() {
	if i.selected == "" {
		return
	}
	i.wait()
	_ = i.client.Unselect()
	i.selected = ""
}
