package merge

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/creativeprojects/folderfix/lib"
	"github.com/creativeprojects/folderfix/locale"
	"github.com/creativeprojects/folderfix/mailbox"
	"github.com/creativeprojects/folderfix/storage"
)

type SweepOptions struct {
	// ScanNumericals also probes the numeric-suffix name variants left
	// behind by create-if-exists collisions ("Inbox1", "Inbox2", ...)
	ScanNumericals bool
	// NumericalMax is the highest suffix probed (default 1)
	NumericalMax int
}

// Candidates builds the list of source folder names to probe for one role:
// the base display name, optionally extended with its numeric-suffix
// variants.
func Candidates(baseName string, scanNumericals bool, numericalMax int) []string {
	list := []string{baseName}
	if !scanNumericals {
		return list
	}
	for suffix := 1; suffix <= numericalMax; suffix++ {
		list = append(list, baseName+strconv.Itoa(suffix))
	}
	return list
}

// ResolveAndMerge probes the mailbox root for the source-locale folders of
// one well-known role and merges every folder found into the role's
// canonical target folder. A candidate that does not exist is not an error:
// most candidates will not.
func (m *Merger) ResolveAndMerge(role mailbox.Role, names locale.FolderNames, options SweepOptions) []Result {
	baseName, err := names.Name(role)
	if err != nil {
		return []Result{{Role: role, Status: StatusFailed, Err: err}}
	}
	root, err := m.dir.Root()
	if err != nil {
		return []Result{{Role: role, Candidate: baseName, Status: StatusFailed,
			Err: fmt.Errorf("cannot access the mailbox root: %w", err)}}
	}

	numericalMax := options.NumericalMax
	if numericalMax <= 0 {
		numericalMax = DefaultNumericalMax
	}

	target, targetErr := m.dir.BindRole(role)

	results := make([]Result, 0, 1)
	for _, candidate := range Candidates(baseName, options.ScanNumericals, numericalMax) {
		source, err := m.dir.FindChildByName(root, candidate)
		if err != nil {
			if errors.Is(err, lib.ErrFolderNotFound) {
				results = append(results, Result{Role: role, Candidate: candidate, Status: StatusNotFound})
				continue
			}
			results = append(results, Result{Role: role, Candidate: candidate, Status: StatusFailed, Err: err})
			continue
		}
		if targetErr != nil {
			// there is content to merge but nowhere to put it
			results = append(results, Result{Role: role, Candidate: candidate, Status: StatusFailed,
				Err: fmt.Errorf("found folder %q but %w", candidate, targetErr)})
			continue
		}
		m.log.Printf("folder %q found at %q, merging into %q",
			candidate, storage.ResolvePath(m.dir, source), storage.ResolvePath(m.dir, target))
		stats, err := m.MergeFolder(source, target, 1)
		result := Result{Role: role, Candidate: candidate, Status: StatusMerged, Stats: stats}
		if err != nil {
			result.Status = StatusFailed
			result.Err = err
		}
		results = append(results, result)
	}
	return results
}

// MergeAll runs the resolution sweep over every well-known role, in the
// fixed role order. Roles are processed independently: a failure on one
// does not block the next.
func (m *Merger) MergeAll(names locale.FolderNames, options SweepOptions) []Result {
	results := make([]Result, 0, len(mailbox.Roles))
	for _, role := range mailbox.Roles {
		results = append(results, m.ResolveAndMerge(role, names, options)...)
	}
	return results
}
