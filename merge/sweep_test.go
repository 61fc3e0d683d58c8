package merge

import (
	"testing"

	"github.com/creativeprojects/folderfix/lib"
	"github.com/creativeprojects/folderfix/locale"
	"github.com/creativeprojects/folderfix/mailbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidates(t *testing.T) {
	testCases := []struct {
		baseName       string
		scanNumericals bool
		numericalMax   int
		expected       []string
	}{
		{"Inbox", false, 1, []string{"Inbox"}},
		{"Inbox", true, 1, []string{"Inbox", "Inbox1"}},
		{"Inbox", true, 3, []string{"Inbox", "Inbox1", "Inbox2", "Inbox3"}},
		{"Postvak IN", true, 1, []string{"Postvak IN", "Postvak IN1"}},
		{"Inbox", true, 0, []string{"Inbox"}},
	}
	for _, testCase := range testCases {
		list := Candidates(testCase.baseName, testCase.scanNumericals, testCase.numericalMax)
		assert.Equal(t, testCase.expected, list)
	}
}

func dutchNames(t *testing.T) locale.FolderNames {
	t.Helper()
	table, err := locale.LoadTable()
	require.NoError(t, err)
	names, err := table.Lookup("nl-NL")
	require.NoError(t, err)
	return names
}

func TestEndToEndDutchInbox(t *testing.T) {
	recorder := newRecorder()
	root, err := recorder.Root()
	require.NoError(t, err)

	// mailbox imported under nl-NL then switched to en-US
	source, err := recorder.CreateFolder(root, "Postvak IN")
	require.NoError(t, err)
	require.NoError(t, recorder.AddItems(source, 3))
	werk, err := recorder.CreateFolder(source, "Werk")
	require.NoError(t, err)
	require.NoError(t, recorder.AddItems(werk, 2))

	inbox, err := recorder.CreateFolder(root, "Inbox")
	require.NoError(t, err)
	require.NoError(t, recorder.AssignRole(mailbox.RoleInbox, inbox))

	merger := NewMerger(recorder, Options{Logger: lib.NewTestLogger(t, "merge")})
	results := merger.ResolveAndMerge(mailbox.RoleInbox, dutchNames(t), SweepOptions{})

	require.Len(t, results, 1)
	assert.Equal(t, StatusMerged, results[0].Status)
	assert.Equal(t, Stats{FoldersMoved: 1, ItemsMoved: 3, FoldersDeleted: 1}, results[0].Stats)

	// "Werk" moved wholesale: one folder move, one batch of items
	assert.Equal(t, 1, recorder.folderMoves)
	assert.Equal(t, []int{3}, recorder.movedBatches)
	assert.Equal(t, []string{"Postvak IN"}, recorder.deletedNames)

	// final state: Inbox holds the 3 items plus "Werk" with its 2 items
	assert.Equal(t, 3, recorder.ItemCount(inbox))
	moved, err := recorder.FindChildByName(inbox, "Werk")
	require.NoError(t, err)
	assert.Equal(t, 2, recorder.ItemCount(moved))
	_, err = recorder.FindChildByName(root, "Postvak IN")
	require.Error(t, err)
}

func TestSweepIsIdempotent(t *testing.T) {
	recorder := newRecorder()
	root, err := recorder.Root()
	require.NoError(t, err)
	source, err := recorder.CreateFolder(root, "Postvak IN")
	require.NoError(t, err)
	require.NoError(t, recorder.AddItems(source, 3))
	inbox, err := recorder.CreateFolder(root, "Inbox")
	require.NoError(t, err)
	require.NoError(t, recorder.AssignRole(mailbox.RoleInbox, inbox))

	merger := NewMerger(recorder, Options{Logger: lib.NewTestLogger(t, "merge")})

	results := merger.MergeAll(dutchNames(t), SweepOptions{ScanNumericals: true})
	assert.False(t, Failed(results))
	assert.Equal(t, Stats{ItemsMoved: 3, FoldersDeleted: 1}, Totals(results))

	// the second run finds no source candidate and changes nothing
	before := recorder.TotalItems()
	results = merger.MergeAll(dutchNames(t), SweepOptions{ScanNumericals: true})
	assert.False(t, Failed(results))
	assert.Equal(t, Stats{}, Totals(results))
	for _, result := range results {
		assert.Equal(t, StatusNotFound, result.Status, "candidate %q", result.Candidate)
	}
	assert.Equal(t, before, recorder.TotalItems())
	assert.Equal(t, 3, recorder.ItemCount(inbox))
}

func TestSweepScansNumericalSuffixes(t *testing.T) {
	recorder := newRecorder()
	root, err := recorder.Root()
	require.NoError(t, err)
	// two leftovers from repeated imports
	first, err := recorder.CreateFolder(root, "Postvak IN")
	require.NoError(t, err)
	require.NoError(t, recorder.AddItems(first, 2))
	second, err := recorder.CreateFolder(root, "Postvak IN1")
	require.NoError(t, err)
	require.NoError(t, recorder.AddItems(second, 1))

	inbox, err := recorder.CreateFolder(root, "Inbox")
	require.NoError(t, err)
	require.NoError(t, recorder.AssignRole(mailbox.RoleInbox, inbox))

	merger := NewMerger(recorder, Options{Logger: lib.NewTestLogger(t, "merge")})
	results := merger.ResolveAndMerge(mailbox.RoleInbox, dutchNames(t), SweepOptions{ScanNumericals: true, NumericalMax: 1})

	require.Len(t, results, 2)
	assert.Equal(t, StatusMerged, results[0].Status)
	assert.Equal(t, StatusMerged, results[1].Status)
	assert.Equal(t, 3, recorder.ItemCount(inbox))
	assert.ElementsMatch(t, []string{"Postvak IN", "Postvak IN1"}, recorder.deletedNames)
}

func TestSweepTargetIsCandidate(t *testing.T) {
	// the canonical folder itself carries the source-locale name: the
	// self-merge check turns the candidate into a successful no-op
	recorder := newRecorder()
	root, err := recorder.Root()
	require.NoError(t, err)
	inbox, err := recorder.CreateFolder(root, "Postvak IN")
	require.NoError(t, err)
	require.NoError(t, recorder.AddItems(inbox, 4))
	require.NoError(t, recorder.AssignRole(mailbox.RoleInbox, inbox))

	merger := NewMerger(recorder, Options{Logger: lib.NewTestLogger(t, "merge")})
	results := merger.ResolveAndMerge(mailbox.RoleInbox, dutchNames(t), SweepOptions{})

	require.Len(t, results, 1)
	assert.Equal(t, StatusMerged, results[0].Status)
	assert.Equal(t, Stats{}, results[0].Stats)
	assert.Equal(t, 4, recorder.ItemCount(inbox))
	assert.Empty(t, recorder.deletedNames)
}

func TestSweepRoleNotBound(t *testing.T) {
	recorder := newRecorder()
	root, err := recorder.Root()
	require.NoError(t, err)

	merger := NewMerger(recorder, Options{Logger: lib.NewTestLogger(t, "merge")})

	// no candidate folder: the unbound role is not a problem
	results := merger.ResolveAndMerge(mailbox.RoleJournal, dutchNames(t), SweepOptions{})
	require.Len(t, results, 1)
	assert.Equal(t, StatusNotFound, results[0].Status)

	// a candidate exists but there is no target to merge it into
	_, err = recorder.CreateFolder(root, "Logboek")
	require.NoError(t, err)
	results = merger.ResolveAndMerge(mailbox.RoleJournal, dutchNames(t), SweepOptions{})
	require.Len(t, results, 1)
	assert.Equal(t, StatusFailed, results[0].Status)
	assert.Error(t, results[0].Err)
}

func TestSweepProcessesRolesIndependently(t *testing.T) {
	recorder := newRecorder()
	root, err := recorder.Root()
	require.NoError(t, err)

	// Inbox merge will fail on deletion
	source, err := recorder.CreateFolder(root, "Postvak IN")
	require.NoError(t, err)
	require.NoError(t, recorder.AddItems(source, 1))
	inbox, err := recorder.CreateFolder(root, "Inbox")
	require.NoError(t, err)
	require.NoError(t, recorder.AssignRole(mailbox.RoleInbox, inbox))

	// Drafts merge is fine
	drafts, err := recorder.CreateFolder(root, "Concepten")
	require.NoError(t, err)
	require.NoError(t, recorder.AddItems(drafts, 2))
	targetDrafts, err := recorder.CreateFolder(root, "Drafts")
	require.NoError(t, err)
	require.NoError(t, recorder.AssignRole(mailbox.RoleDrafts, targetDrafts))

	recorder.failSoftDelete = true

	merger := NewMerger(recorder, Options{Logger: lib.NewTestLogger(t, "merge")})
	results := merger.MergeAll(dutchNames(t), SweepOptions{})

	assert.True(t, Failed(results))
	byRole := make(map[mailbox.Role]Result)
	for _, result := range results {
		byRole[result.Role] = result
	}
	assert.Equal(t, StatusFailed, byRole[mailbox.RoleInbox].Status)
	assert.Equal(t, StatusFailed, byRole[mailbox.RoleDrafts].Status) // deletion also fails
	// the items still moved for both roles
	assert.Equal(t, 1, recorder.ItemCount(inbox))
	assert.Equal(t, 2, recorder.ItemCount(targetDrafts))
}
