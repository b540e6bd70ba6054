package history

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapacityEvictsOldest(t *testing.T) {
	s := New("", 2)
	s.Commit("A")
	s.Commit("B")
	s.Commit("C")

	assert.Equal(t, "C", s.Present())
	assert.Equal(t, []string{"B"}, s.Past())

	assert.True(t, s.Undo())
	assert.Equal(t, "B", s.Present())
	assert.Empty(t, s.Past())
	assert.Equal(t, []string{"C"}, s.Future())

	s.Commit("D")
	assert.Equal(t, "D", s.Present())
	assert.Equal(t, []string{"B"}, s.Past())
	assert.Empty(t, s.Future())
	assert.False(t, s.CanRedo())
}

func TestCapacityOneDisablesUndo(t *testing.T) {
	s := New("A", 1)
	s.Commit("B")
	assert.Equal(t, "B", s.Present())
	assert.False(t, s.CanUndo())
	assert.False(t, s.Undo())
}

func TestUndoRedoOrder(t *testing.T) {
	s := New("0", 10)
	for _, v := range []string{"1", "2", "3"} {
		s.Commit(v)
	}

	assert.True(t, s.Undo())
	assert.True(t, s.Undo())
	assert.Equal(t, "1", s.Present())
	assert.Equal(t, []string{"2", "3"}, s.Future())

	assert.True(t, s.Redo())
	assert.Equal(t, "2", s.Present())
	assert.True(t, s.Redo())
	assert.Equal(t, "3", s.Present())
	assert.False(t, s.Redo())

	past, future := s.Depth()
	assert.Equal(t, 3, past)
	assert.Equal(t, 0, future)
}

func TestRedoReleasesSnapshot(t *testing.T) {
	s := New("a", 5)
	s.Commit("b")
	s.Commit("c")
	require.True(t, s.Undo())
	require.True(t, s.Undo())
	require.True(t, s.Redo())

	assert.Equal(t, []string{"c"}, s.Future())
	assert.Equal(t, "", s.future[:len(s.future)+1][len(s.future)], "popped redo slot must be cleared")
}

func TestUndoRedoNoop(t *testing.T) {
	s := New("init", 3)
	assert.False(t, s.CanUndo())
	assert.False(t, s.Undo())
	assert.False(t, s.Redo())
	assert.Equal(t, "init", s.Present())
}

func TestRedoRespectsCapacity(t *testing.T) {
	s := New("a", 3)
	s.Commit("b")
	s.Commit("c")
	assert.True(t, s.Undo())
	assert.True(t, s.Undo())
	assert.Equal(t, "a", s.Present())

	assert.True(t, s.Redo())
	assert.True(t, s.Redo())
	assert.Equal(t, "c", s.Present())
	assert.Equal(t, []string{"a", "b"}, s.Past())
}

func TestReset(t *testing.T) {
	s := New("", 5)
	s.Commit("x")
	s.Commit("y")
	s.Undo()

	s.Reset("loaded")
	assert.Equal(t, "loaded", s.Present())
	assert.False(t, s.CanUndo())
	assert.False(t, s.CanRedo())
}

func TestDefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultCapacity, New(0, 0).Capacity())
	assert.Equal(t, DefaultCapacity, New(0, -3).Capacity())
	assert.Equal(t, 10, New(0, 10).Capacity())
}

func TestPastNeverExceedsCapacity(t *testing.T) {
	s := New(0, 3)
	for i := 1; i <= 50; i++ {
		s.Commit(i)
		past, _ := s.Depth()
		assert.LessOrEqual(t, past, 2)
	}
	assert.Equal(t, []int{48, 49}, s.Past())
	assert.Equal(t, 50, s.Present())
}

func TestConcurrentAccess(t *testing.T) {
	s := New(0, 4)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Commit(n*100 + j)
				s.Undo()
				s.Redo()
				_ = s.CanUndo()
			}
		}(i)
	}
	wg.Wait()
	past, _ := s.Depth()
	assert.LessOrEqual(t, past, 3)
}
