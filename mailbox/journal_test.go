package mailbox

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccountTag(t *testing.T) {
	expected := "d6549d2a410fe02063abe508d42102f65b3ef71e8b68ce11b8f4e62072a2a1d8"
	tag := AccountTag("mail.example.com:993", "user@example.com")
	assert.Equal(t, expected, tag)
}

func TestGetEmptyJournal(t *testing.T) {
	journal, err := GetJournalFromFile("/file_really_should_not_exist_here")
	assert.NoError(t, err)
	assert.Equal(t, &Journal{}, journal) // empty journal
}

func TestSaveAndLoadJournal(t *testing.T) {
	journal := &Journal{
		Runs: []JournalRun{
			{
				FromLocale: "nl-NL",
				ToLocale:   "en-US",
				Entries: []JournalEntry{
					{Role: RoleInbox, Candidate: "Postvak IN", Status: "merged", FoldersMoved: 1, ItemsMoved: 3, FoldersDeleted: 1},
					{Role: RoleDrafts, Candidate: "Concepten", Status: "not found"},
				},
			},
		},
	}
	filename := filepath.Join(t.TempDir(), "TestSaveAndLoadJournal.json")
	err := SaveJournalToFile(filename, journal)
	require.NoError(t, err)

	loaded, err := GetJournalFromFile(filename)
	require.NoError(t, err)

	assert.Equal(t, journal, loaded)
}

func TestFindLastRun(t *testing.T) {
	assert.True(t, FindLastRun(nil).IsZero())
	assert.True(t, FindLastRun(&Journal{}).IsZero())

	first := time.Date(2023, 1, 10, 9, 0, 0, 0, time.UTC)
	second := time.Date(2023, 3, 2, 18, 30, 0, 0, time.UTC)
	journal := &Journal{
		Runs: []JournalRun{
			{Date: second},
			{Date: first},
		},
	}
	assert.Equal(t, second, FindLastRun(journal))
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("inbox")
	require.NoError(t, err)
	assert.Equal(t, RoleInbox, role)

	role, err = ParseRole("JunkEmail")
	require.NoError(t, err)
	assert.Equal(t, RoleJunkEmail, role)

	_, err = ParseRole("Attic")
	assert.Error(t, err)
}
