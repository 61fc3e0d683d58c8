package merge

import (
	"testing"

	"github.com/creativeprojects/folderfix/lib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProgress struct {
	ticks int
}

func (p *countingProgress) Increment() {
	p.ticks++
}

func TestPaginationCompleteness(t *testing.T) {
	recorder := newRecorder()
	root, err := recorder.Root()
	require.NoError(t, err)
	source, err := recorder.CreateFolder(root, "Postvak IN")
	require.NoError(t, err)
	require.NoError(t, recorder.AddItems(source, 2500))
	target, err := recorder.CreateFolder(root, "Inbox")
	require.NoError(t, err)

	progress := &countingProgress{}
	merger := NewMerger(recorder, Options{Logger: lib.NewTestLogger(t, "merge"), Progress: progress})
	stats, err := merger.MergeFolder(source, target, 1)
	require.NoError(t, err)

	// 2500 items at 1000 a batch: three pages of 1000, 1000 and 500
	assert.Equal(t, 3, recorder.listPageCalls)
	assert.Equal(t, []int{1000, 1000, 500}, recorder.movedBatches)
	assert.Equal(t, 3, progress.ticks)
	assert.Equal(t, 2500, stats.ItemsMoved)
	assert.Equal(t, 2500, recorder.ItemCount(target))
	assert.Zero(t, recorder.ItemCount(source))
}

func TestBatchFailureStillDrainsRemainingPages(t *testing.T) {
	recorder := newRecorder()
	root, err := recorder.Root()
	require.NoError(t, err)
	source, err := recorder.CreateFolder(root, "Postvak IN")
	require.NoError(t, err)
	require.NoError(t, recorder.AddItems(source, 2500))
	target, err := recorder.CreateFolder(root, "Inbox")
	require.NoError(t, err)

	// the first batch fails, the rest must still be attempted
	recorder.failMoveItemsOnce = true

	merger := NewMerger(recorder, Options{Logger: lib.NewTestLogger(t, "merge")})
	stats, err := merger.MergeFolder(source, target, 1)
	require.Error(t, err)

	assert.Equal(t, []int{1000, 1000, 500}, recorder.movedBatches)
	assert.Equal(t, 1500, stats.ItemsMoved)
	assert.Equal(t, 1500, recorder.ItemCount(target))
	// the failed batch stayed at the source
	assert.Equal(t, 1000, recorder.ItemCount(source))
	// and the folder was not deleted
	assert.Empty(t, recorder.deletedNames)
}

func TestSmallBatchSize(t *testing.T) {
	recorder := newRecorder()
	root, err := recorder.Root()
	require.NoError(t, err)
	source, err := recorder.CreateFolder(root, "Taken")
	require.NoError(t, err)
	require.NoError(t, recorder.AddItems(source, 5))
	target, err := recorder.CreateFolder(root, "Tasks")
	require.NoError(t, err)

	merger := NewMerger(recorder, Options{BatchSize: 2, Logger: lib.NewTestLogger(t, "merge")})
	stats, err := merger.MergeFolder(source, target, 1)
	require.NoError(t, err)

	assert.Equal(t, []int{2, 2, 1}, recorder.movedBatches)
	assert.Equal(t, 5, stats.ItemsMoved)
}

func TestEmptyFolderMovesNothing(t *testing.T) {
	recorder := newRecorder()
	root, err := recorder.Root()
	require.NoError(t, err)
	source, err := recorder.CreateFolder(root, "Notities")
	require.NoError(t, err)
	target, err := recorder.CreateFolder(root, "Notes")
	require.NoError(t, err)

	merger := NewMerger(recorder, Options{Logger: lib.NewTestLogger(t, "merge")})
	stats, err := merger.MergeFolder(source, target, 1)
	require.NoError(t, err)

	assert.Empty(t, recorder.movedBatches)
	assert.Equal(t, Stats{FoldersDeleted: 1}, stats)
}
