package dirty

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMarkAndDrainSingleFile(t *testing.T) {
	tr := NewTracker()
	tr.MarkDirty("file:///test.rho", PriorityHigh, DidChange)

	require.Equal(t, 1, tr.Len())

	drained := tr.DrainDirty()
	require.Len(t, drained, 1)
	require.Equal(t, "file:///test.rho", drained[0].URI)
	require.Equal(t, PriorityHigh, drained[0].Metadata.Priority)
	require.Equal(t, DidChange, drained[0].Metadata.Reason)

	require.Equal(t, 0, tr.Len())
}

func TestMarkMultipleFilesPriorityOrder(t *testing.T) {
	tr := NewTracker()
	tr.MarkDirty("file:///test1.rho", PriorityHigh, DidChange)
	tr.MarkDirty("file:///test2.rho", PriorityNormal, FileWatcher)
	tr.MarkDirty("file:///test3.rho", PriorityHigh, DidSave)

	require.Equal(t, 3, tr.Len())

	drained := tr.DrainDirty()
	require.Len(t, drained, 3)
	require.Equal(t, PriorityHigh, drained[0].Metadata.Priority)
	require.Equal(t, PriorityHigh, drained[1].Metadata.Priority)
	require.Equal(t, PriorityNormal, drained[2].Metadata.Priority)
}

func TestPriorityThenTimestampOrdering(t *testing.T) {
	tr := NewTracker()
	tr.MarkDirty("file:///normal1.rho", PriorityNormal, FileWatcher)
	tr.MarkDirty("file:///high1.rho", PriorityHigh, DidChange)
	tr.MarkDirty("file:///normal2.rho", PriorityNormal, FileWatcher)
	tr.MarkDirty("file:///high2.rho", PriorityHigh, DidSave)

	drained := tr.DrainDirty()
	require.Len(t, drained, 4)
	require.Equal(t, PriorityHigh, drained[0].Metadata.Priority)
	require.Equal(t, PriorityHigh, drained[1].Metadata.Priority)
	require.Equal(t, PriorityNormal, drained[2].Metadata.Priority)
	require.Equal(t, PriorityNormal, drained[3].Metadata.Priority)
}

func TestShouldFlushRespectsDebounceWindow(t *testing.T) {
	tr := NewTrackerWithDebounce(50 * time.Millisecond)

	require.False(t, tr.ShouldFlush(), "empty tracker never flushes")

	tr.MarkDirty("file:///test.rho", PriorityHigh, DidChange)
	require.False(t, tr.ShouldFlush(), "must not flush before the debounce window elapses")

	time.Sleep(60 * time.Millisecond)
	require.True(t, tr.ShouldFlush())
}

func TestMarkDirtyPreservesHigherUrgency(t *testing.T) {
	tr := NewTracker()
	uri := "file:///test.rho"

	// Low-priority file-watcher event first.
	tr.MarkDirty(uri, PriorityNormal, FileWatcher)
	// Then a high-priority edit: reason and timestamp update, priority rises to high.
	tr.MarkDirty(uri, PriorityHigh, DidChange)
	// A later low-priority event must not demote a file once it's urgent.
	tr.MarkDirty(uri, PriorityNormal, FileWatcher)

	drained := tr.DrainDirty()
	require.Len(t, drained, 1)
	require.Equal(t, PriorityHigh, drained[0].Metadata.Priority, "priority lowered toward 0 is preserved")
	require.Equal(t, FileWatcher, drained[0].Metadata.Reason, "reason still reflects the most recent mark")
}

func TestClearDiscardsWithoutProcessing(t *testing.T) {
	tr := NewTracker()
	for i := 0; i < 10; i++ {
		tr.MarkDirty("file:///test.rho", PriorityHigh, DidChange)
	}
	require.Equal(t, 1, tr.Len(), "marking the same uri repeatedly updates one entry")

	tr.MarkDirty("file:///other.rho", PriorityHigh, DidChange)
	require.Equal(t, 2, tr.Len())

	tr.Clear()
	require.Equal(t, 0, tr.Len())
}

func TestConcurrentMarking(t *testing.T) {
	tr := NewTracker()
	var wg sync.WaitGroup

	for thread := 0; thread < 10; thread++ {
		thread := thread
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				tr.MarkDirty(uriFor(thread, i), PriorityHigh, DidChange)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 100, tr.Len())
}

func uriFor(thread, i int) string {
	const letters = "0123456789"
	return "file:///test_" + string(letters[thread]) + "_" + string(letters[i]) + ".rho"
}
