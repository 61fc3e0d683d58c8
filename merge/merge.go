package merge

import (
	"github.com/creativeprojects/folderfix/lib"
	"github.com/creativeprojects/folderfix/storage"
)

const (
	// DefaultBatchSize is the number of items moved per remote call
	DefaultBatchSize = 1000
	// DefaultNumericalMax is the highest numeric suffix probed for
	DefaultNumericalMax = 1
)

// Progresser receives a tick for every batch of items moved
type Progresser interface {
	Increment()
}

type Options struct {
	// BatchSize overrides the number of items moved per call
	BatchSize int
	// MaxChildren overrides the cap on children per listing call
	MaxChildren int
	// Logger receives debug information
	Logger lib.Logger
	// Progress is incremented once per batch of items moved
	Progress Progresser
}

// Merger reconciles a source folder tree into a target folder tree.
// All operations are synchronous and single-threaded: every call to the
// directory completes before the next step proceeds.
type Merger struct {
	dir         storage.Directory
	log         lib.Logger
	progress    Progresser
	batchSize   int
	maxChildren int
}

func NewMerger(dir storage.Directory, options Options) *Merger {
	logger := options.Logger
	if logger == nil {
		logger = &lib.NoLog{}
	}
	batchSize := options.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	maxChildren := options.MaxChildren
	if maxChildren <= 0 {
		maxChildren = storage.MaxListChildren
	}
	return &Merger{
		dir:         dir,
		log:         logger,
		progress:    options.Progress,
		batchSize:   batchSize,
		maxChildren: maxChildren,
	}
}

// Stats accumulates the side effects of a merge.
type Stats struct {
	FoldersMoved   int
	ItemsMoved     int
	FoldersDeleted int
}

func (s *Stats) add(other Stats) {
	s.FoldersMoved += other.FoldersMoved
	s.ItemsMoved += other.ItemsMoved
	s.FoldersDeleted += other.FoldersDeleted
}
