package mailbox

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"
)

// Journal keeps a record of the merge runs executed against one account.
// It is purely informative: the merge itself never reads it back to take
// a decision, re-running a merge is idempotent on its own.
type Journal struct {
	Runs []JournalRun
}

type JournalRun struct {
	Date       time.Time
	FromLocale string
	ToLocale   string
	Entries    []JournalEntry
}

type JournalEntry struct {
	Role           Role
	Candidate      string
	Status         string
	FoldersMoved   int
	ItemsMoved     int
	FoldersDeleted int
	Error          string `json:",omitempty"`
}

// AccountTag derives a stable identifier for an account, safe to use as a
// file name.
func AccountTag(serverURL, username string) string {
	hasher := sha256.New()
	hasher.Write([]byte(username))
	hasher.Write([]byte(":"))
	hasher.Write([]byte(serverURL))
	hasher.Write([]byte("\n"))
	return hex.EncodeToString(hasher.Sum(nil))
}

func GetJournalFromFile(filename string) (*Journal, error) {
	journal := &Journal{}
	file, err := os.Open(filename)
	if err != nil {
		// no file means no previous run: return an empty journal
		return journal, nil
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	err = decoder.Decode(journal)
	if err != nil {
		return nil, fmt.Errorf("error reading journal file: %w", err)
	}

	sort.SliceStable(journal.Runs, func(i, j int) bool {
		return journal.Runs[i].Date.Before(journal.Runs[j].Date)
	})
	return journal, nil
}

func SaveJournalToFile(filename string, journal *Journal) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cannot save journal: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	err = encoder.Encode(journal)
	if err != nil {
		return fmt.Errorf("cannot encode journal: %w", err)
	}
	return nil
}

// FindLastRun returns the date of the most recent run, or the zero time when
// the journal is empty.
func FindLastRun(journal *Journal) time.Time {
	last := time.Time{}
	if journal == nil {
		return last
	}
	for _, run := range journal.Runs {
		if run.Date.After(last) {
			last = run.Date
		}
	}
	return last
}
