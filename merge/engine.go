package merge

import (
	"errors"
	"fmt"

	"github.com/creativeprojects/folderfix/lib"
	"github.com/creativeprojects/folderfix/mailbox"
)

// MergeFolder merges the subtree rooted at source into the subtree rooted at
// target, then deletes the emptied source folder. Children present on both
// sides are merged recursively, children with no counterpart are relocated
// wholesale, and the source folder's own items are moved in batches.
//
// The source folder is only deleted when every nested operation succeeded:
// a failure anywhere in the subtree disables deletion at every ancestor on
// the way back up. Completed moves are never undone.
func (m *Merger) MergeFolder(source, target mailbox.Folder, depth int) (Stats, error) {
	stats := Stats{}
	err := m.mergeFolder(source, target, depth, &stats)
	return stats, err
}

func (m *Merger) mergeFolder(source, target mailbox.Folder, depth int, stats *Stats) error {
	// A folder is never merged into itself. At the top of the hierarchy the
	// canonical folder can carry the candidate display name, and recursing
	// into it would never terminate.
	if source.ID == target.ID {
		m.log.Printf("folder %q is already the target, nothing to do", source.Name)
		return nil
	}

	m.log.Printf("merging folder %q into %q (depth %d)", source.Name, target.Name, depth)

	children, err := m.dir.ListChildren(source, m.maxChildren)
	if err != nil {
		return fmt.Errorf("cannot list subfolders of %q: %w", source.Name, err)
	}

	canDelete := true
	var failures []error

	for _, child := range children {
		matching, err := m.dir.FindChildByName(target, child.Name)
		if err == nil {
			// the folder exists on both sides: merge the contents
			if err = m.mergeFolder(child, matching, depth+1, stats); err != nil {
				canDelete = false
				failures = append(failures, err)
			}
			continue
		}
		if !errors.Is(err, lib.ErrFolderNotFound) {
			canDelete = false
			failures = append(failures, fmt.Errorf("cannot look up %q under %q: %w", child.Name, target.Name, err))
			continue
		}
		// no counterpart on the target side: a single move relocates the
		// whole subtree and vacates the source location
		if _, err = m.dir.MoveFolder(child, target); err != nil {
			// the child stays behind, so the source folder keeps content
			canDelete = false
			failures = append(failures, fmt.Errorf("cannot move folder %q under %q: %w", child.Name, target.Name, err))
			continue
		}
		m.log.Printf("moved folder %q under %q", child.Name, target.Name)
		stats.FoldersMoved++
	}

	if err = m.moveAllItems(source, target, stats); err != nil {
		canDelete = false
		failures = append(failures, err)
	}

	if canDelete {
		if err = m.dir.SoftDelete(source); err != nil {
			failures = append(failures, fmt.Errorf("cannot delete folder %q: %w", source.Name, err))
		} else {
			m.log.Printf("deleted folder %q", source.Name)
			stats.FoldersDeleted++
		}
	}
	return errors.Join(failures...)
}
