package local

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/creativeprojects/folderfix/lib"
	"github.com/creativeprojects/folderfix/mailbox"
	bolt "go.etcd.io/bbolt"
)

const (
	metadataBucket  = "metadata"
	foldersBucket   = "folders"
	itemsBucket     = "items"
	rolesBucket     = "roles"
	atticBucket     = "deleted"
	versionKey      = "version"
	boltFileVersion = 1

	rootFolderID = "root"

	Separator = "/"
)

// folderRecord is the gob-encoded value stored per folder.
type folderRecord struct {
	Name   string
	Parent string
	Items  []string
}

// BoltStore is a folder directory backed by a single-file database. It holds
// a local snapshot of a mailbox folder tree, which makes it possible to
// rehearse a merge offline before running it against the live mailbox.
type BoltStore struct {
	dbFile   string
	db       *bolt.DB
	log      lib.Logger
	captures map[mailbox.FolderID][]mailbox.ItemID
}

func NewBoltStore(filename string) (*BoltStore, error) {
	return NewBoltStoreWithLogger(filename, nil)
}

func NewBoltStoreWithLogger(filename string, logger lib.Logger) (*BoltStore, error) {
	if logger == nil {
		logger = &lib.NoLog{}
	}
	options := bolt.DefaultOptions
	options.Timeout = 10 * time.Second

	err := os.MkdirAll(filepath.Dir(filename), 0700)
	if err != nil {
		return nil, fmt.Errorf("cannot open %q: %w", filename, err)
	}

	db, err := bolt.Open(filename, 0600, options)
	if err != nil {
		return nil, err
	}

	store := &BoltStore{
		dbFile:   filename,
		db:       db,
		log:      logger,
		captures: make(map[mailbox.FolderID][]mailbox.ItemID),
	}
	err = store.init()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *BoltStore) init() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{metadataBucket, foldersBucket, itemsBucket, rolesBucket, atticBucket} {
			_, err := tx.CreateBucketIfNotExists([]byte(name))
			if err != nil {
				return err
			}
		}
		metadata := tx.Bucket([]byte(metadataBucket))
		if metadata.Get([]byte(versionKey)) == nil {
			err := metadata.Put([]byte(versionKey), []byte{boltFileVersion})
			if err != nil {
				return err
			}
		}
		folders := tx.Bucket([]byte(foldersBucket))
		if folders.Get([]byte(rootFolderID)) == nil {
			// the root is its own parent: top-of-hierarchy sentinel
			record, err := serializeObject(&folderRecord{Name: "", Parent: rootFolderID})
			if err != nil {
				return err
			}
			return folders.Put([]byte(rootFolderID), record)
		}
		return nil
	})
}

func (s *BoltStore) DebugLogger(logger lib.Logger) {
	s.log = logger
}

func (s *BoltStore) Separator() string {
	return Separator
}

func (s *BoltStore) Close() error {
	s.log.Printf("closing database %q", s.dbFile)
	return s.db.Close()
}

func (s *BoltStore) Root() (mailbox.Folder, error) {
	return s.BindID(rootFolderID)
}

func (s *BoltStore) BindRole(role mailbox.Role) (mailbox.Folder, error) {
	var id string
	err := s.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket([]byte(rolesBucket)).Get([]byte(role))
		if value == nil {
			return fmt.Errorf("%w: %s", lib.ErrRoleNotBound, role)
		}
		id = string(value)
		return nil
	})
	if err != nil {
		return mailbox.Folder{}, err
	}
	return s.BindID(mailbox.FolderID(id))
}

func (s *BoltStore) BindID(id mailbox.FolderID) (mailbox.Folder, error) {
	folder := mailbox.Folder{}
	err := s.db.View(func(tx *bolt.Tx) error {
		record, err := getFolder(tx, string(id))
		if err != nil {
			return err
		}
		folder = mailbox.Folder{
			ID:       id,
			Name:     record.Name,
			ParentID: mailbox.FolderID(record.Parent),
		}
		return nil
	})
	return folder, err
}

func (s *BoltStore) FindChildByName(parent mailbox.Folder, name string) (mailbox.Folder, error) {
	found := mailbox.Folder{}
	err := s.db.View(func(tx *bolt.Tx) error {
		// keys are enumerated in order: the last match wins
		err := eachChild(tx, string(parent.ID), func(id string, record *folderRecord) error {
			if record.Name == name {
				found = mailbox.Folder{
					ID:       mailbox.FolderID(id),
					Name:     record.Name,
					ParentID: parent.ID,
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		if found.ID == "" {
			return fmt.Errorf("%w: %q under %q", lib.ErrFolderNotFound, name, parent.Name)
		}
		return nil
	})
	return found, err
}

func (s *BoltStore) ListChildren(parent mailbox.Folder, maxResults int) ([]mailbox.Folder, error) {
	list := make([]mailbox.Folder, 0, 10)
	err := s.db.View(func(tx *bolt.Tx) error {
		return eachChild(tx, string(parent.ID), func(id string, record *folderRecord) error {
			if len(list) >= maxResults {
				return nil
			}
			list = append(list, mailbox.Folder{
				ID:       mailbox.FolderID(id),
				Name:     record.Name,
				ParentID: parent.ID,
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (s *BoltStore) ListItemPage(folder mailbox.Folder, offset, pageSize int) ([]mailbox.ItemID, bool, error) {
	capture, ok := s.captures[folder.ID]
	if offset == 0 || !ok {
		err := s.db.View(func(tx *bolt.Tx) error {
			record, err := getFolder(tx, string(folder.ID))
			if err != nil {
				return err
			}
			capture = make([]mailbox.ItemID, len(record.Items))
			for index, item := range record.Items {
				capture[index] = mailbox.ItemID(item)
			}
			return nil
		})
		if err != nil {
			return nil, false, err
		}
		s.captures[folder.ID] = capture
	}
	page, hasMore := lib.Page(capture, offset, pageSize)
	if !hasMore {
		delete(s.captures, folder.ID)
	}
	return page, hasMore, nil
}

func (s *BoltStore) MoveFolder(folder, newParent mailbox.Folder) (mailbox.Folder, error) {
	if folder.ID == newParent.ID {
		return mailbox.Folder{}, fmt.Errorf("cannot move folder %q under itself", folder.Name)
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		record, err := getFolder(tx, string(folder.ID))
		if err != nil {
			return err
		}
		if _, err = getFolder(tx, string(newParent.ID)); err != nil {
			return err
		}
		record.Parent = string(newParent.ID)
		return putFolder(tx, string(folder.ID), record)
	})
	if err != nil {
		return mailbox.Folder{}, err
	}
	s.log.Printf("moved folder %q under %q", folder.Name, newParent.Name)
	folder.ParentID = newParent.ID
	return folder, nil
}

func (s *BoltStore) MoveItems(ids []mailbox.ItemID, dest mailbox.Folder) error {
	// the whole batch commits in one transaction
	err := s.db.Update(func(tx *bolt.Tx) error {
		index := tx.Bucket([]byte(itemsBucket))
		target, err := getFolder(tx, string(dest.ID))
		if err != nil {
			return err
		}
		for _, id := range ids {
			location := index.Get([]byte(id))
			if location == nil {
				return fmt.Errorf("%w: %q", lib.ErrItemNotFound, id)
			}
			if string(location) == string(dest.ID) {
				continue
			}
			source, err := getFolder(tx, string(location))
			if err != nil {
				return err
			}
			if !removeItem(source, string(id)) {
				return fmt.Errorf("%w: %q", lib.ErrItemNotFound, id)
			}
			if err = putFolder(tx, string(location), source); err != nil {
				return err
			}
			target.Items = append(target.Items, string(id))
			if err = index.Put([]byte(id), []byte(dest.ID)); err != nil {
				return err
			}
		}
		return putFolder(tx, string(dest.ID), target)
	})
	if err != nil {
		return err
	}
	s.log.Printf("moved %d items to folder %q", len(ids), dest.Name)
	return nil
}

func (s *BoltStore) SoftDelete(folder mailbox.Folder) error {
	if string(folder.ID) == rootFolderID {
		return errors.New("cannot delete the root folder")
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		record, err := getFolder(tx, string(folder.ID))
		if err != nil {
			return err
		}
		if len(record.Items) > 0 {
			return fmt.Errorf("%w: %q", lib.ErrFolderNotEmpty, record.Name)
		}
		childless := true
		err = eachChild(tx, string(folder.ID), func(id string, child *folderRecord) error {
			childless = false
			return nil
		})
		if err != nil {
			return err
		}
		if !childless {
			return fmt.Errorf("%w: %q", lib.ErrFolderNotEmpty, record.Name)
		}
		// parked in the attic bucket rather than purged
		value, err := serializeObject(record)
		if err != nil {
			return err
		}
		if err = tx.Bucket([]byte(atticBucket)).Put([]byte(folder.ID), value); err != nil {
			return err
		}
		return tx.Bucket([]byte(foldersBucket)).Delete([]byte(folder.ID))
	})
	if err != nil {
		return err
	}
	s.log.Printf("deleted folder %q", folder.Name)
	delete(s.captures, folder.ID)
	return nil
}

//
// seeding: used by the tests and when importing a mailbox snapshot
//

func (s *BoltStore) CreateFolder(parent mailbox.Folder, name string) (mailbox.Folder, error) {
	folder := mailbox.Folder{}
	err := s.db.Update(func(tx *bolt.Tx) error {
		if _, err := getFolder(tx, string(parent.ID)); err != nil {
			return err
		}
		folders := tx.Bucket([]byte(foldersBucket))
		sequence, err := folders.NextSequence()
		if err != nil {
			return err
		}
		id := fmt.Sprintf("folder-%08d", sequence)
		record := &folderRecord{Name: name, Parent: string(parent.ID)}
		if err = putFolder(tx, id, record); err != nil {
			return err
		}
		folder = mailbox.Folder{
			ID:       mailbox.FolderID(id),
			Name:     name,
			ParentID: parent.ID,
		}
		return nil
	})
	return folder, err
}

func (s *BoltStore) AddItems(folder mailbox.Folder, count int) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		record, err := getFolder(tx, string(folder.ID))
		if err != nil {
			return err
		}
		index := tx.Bucket([]byte(itemsBucket))
		for i := 0; i < count; i++ {
			sequence, err := index.NextSequence()
			if err != nil {
				return err
			}
			id := fmt.Sprintf("item-%08d", sequence)
			record.Items = append(record.Items, id)
			if err = index.Put([]byte(id), []byte(folder.ID)); err != nil {
				return err
			}
		}
		return putFolder(tx, string(folder.ID), record)
	})
}

func (s *BoltStore) AssignRole(role mailbox.Role, folder mailbox.Folder) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if _, err := getFolder(tx, string(folder.ID)); err != nil {
			return err
		}
		return tx.Bucket([]byte(rolesBucket)).Put([]byte(role), []byte(folder.ID))
	})
}

//
// bucket helpers
//

func getFolder(tx *bolt.Tx, id string) (*folderRecord, error) {
	value := tx.Bucket([]byte(foldersBucket)).Get([]byte(id))
	if value == nil {
		return nil, fmt.Errorf("%w: id %q", lib.ErrFolderNotFound, id)
	}
	return deserializeObject[folderRecord](value)
}

func putFolder(tx *bolt.Tx, id string, record *folderRecord) error {
	value, err := serializeObject(record)
	if err != nil {
		return err
	}
	return tx.Bucket([]byte(foldersBucket)).Put([]byte(id), value)
}

func removeItem(record *folderRecord, id string) bool {
	for index, item := range record.Items {
		if item == id {
			record.Items = append(record.Items[:index], record.Items[index+1:]...)
			return true
		}
	}
	return false
}

func eachChild(tx *bolt.Tx, parentID string, callback func(id string, record *folderRecord) error) error {
	return tx.Bucket([]byte(foldersBucket)).ForEach(func(key, value []byte) error {
		if string(key) == parentID {
			return nil
		}
		record, err := deserializeObject[folderRecord](value)
		if err != nil {
			return err
		}
		if record.Parent != parentID {
			return nil
		}
		return callback(string(key), record)
	})
}
