package merge

import (
	"errors"
	"fmt"

	"github.com/creativeprojects/folderfix/mailbox"
)

// moveAllItems relocates every item of the source folder into target, one
// page at a time. Each page is fully committed with a single move call
// before the next page is requested. A failed batch does not stop the
// pagination: the remaining pages are still drained so that items listed
// after the failure are not stranded, and the overall failure is reported
// at the end.
func (m *Merger) moveAllItems(source, target mailbox.Folder, stats *Stats) error {
	offset := 0
	var failures []error
	for {
		page, hasMore, err := m.dir.ListItemPage(source, offset, m.batchSize)
		if err != nil {
			// without a listing there is nothing left to drain
			failures = append(failures, fmt.Errorf("cannot list items of %q: %w", source.Name, err))
			break
		}
		if len(page) > 0 {
			if err = m.dir.MoveItems(page, target); err != nil {
				failures = append(failures, fmt.Errorf("cannot move %d items from %q to %q: %w",
					len(page), source.Name, target.Name, err))
			} else {
				m.log.Printf("moved %d items from %q to %q", len(page), source.Name, target.Name)
				stats.ItemsMoved += len(page)
				if m.progress != nil {
					m.progress.Increment()
				}
			}
			offset += len(page)
		}
		if !hasMore {
			break
		}
	}
	return errors.Join(failures...)
}
