// Package history provides a bounded undo/redo stack over document snapshots.
package history

import (
	"sync"

	"github.com/bethropolis/textforge/internal/logger"
)

const DefaultCapacity = 15

// Stack holds the undo timeline of values of type T.
//
// past is ordered oldest first. future is a stack: the next redo is its last
// element.
// capacity bounds the snapshots retained behind and including the present,
// so at most capacity-1 undo steps are available. Older entries are dropped
// silently.
type Stack[T any] struct {
	mutex    sync.Mutex
	past     []T
	present  T
	future   []T
	capacity int
}

// New creates a stack whose present value is initial.
func New[T any](initial T, capacity int) *Stack[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Stack[T]{
		past:     make([]T, 0, capacity),
		present:  initial,
		capacity: capacity,
	}
}

// pushPast appends v to past and drops the oldest entries so that past and
// present together never hold more than capacity snapshots.
// Caller holds the mutex.
func (s *Stack[T]) pushPast(v T) {
	s.past = append(s.past, v)
	if over := len(s.past) - (s.capacity - 1); over > 0 {
		clear(s.past[:over]) // release evicted snapshots
		s.past = append(s.past[:0], s.past[over:]...)
		logger.DebugTagf("history", "History: Evicted %d oldest entries (capacity %d)", over, s.capacity)
	}
}

// Commit records v as the new present and discards the redo path.
func (s *Stack[T]) Commit(v T) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.pushPast(s.present)
	s.present = v
	clear(s.future)
	s.future = s.future[:0]

	logger.DebugTagf("history", "History: Committed. Past: %d, Future: 0", len(s.past))
}

// Undo steps back one entry. It returns false when there is nothing to undo.
func (s *Stack[T]) Undo() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if len(s.past) == 0 {
		logger.DebugTagf("history", "History: Nothing to undo.")
		return false
	}

	s.future = append(s.future, s.present)
	last := len(s.past) - 1
	s.present = s.past[last]
	var zero T
	s.past[last] = zero
	s.past = s.past[:last]

	logger.DebugTagf("history", "History: Undo. Past: %d, Future: %d", len(s.past), len(s.future))
	return true
}

// Redo re-applies the most recently undone entry. It returns false when
// there is nothing to redo.
func (s *Stack[T]) Redo() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if len(s.future) == 0 {
		logger.DebugTagf("history", "History: Nothing to redo.")
		return false
	}

	s.pushPast(s.present)
	last := len(s.future) - 1
	s.present = s.future[last]
	var zero T
	s.future[last] = zero
	s.future = s.future[:last]

	logger.DebugTagf("history", "History: Redo. Past: %d, Future: %d", len(s.past), len(s.future))
	return true
}

// Reset replaces the present value and drops the whole timeline. Use it for
// bulk replacement such as loading a file.
func (s *Stack[T]) Reset(v T) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	clear(s.past)
	s.past = s.past[:0]
	s.present = v
	s.future = nil

	logger.DebugTagf("history", "History: Reset.")
}

// Present returns the current value.
func (s *Stack[T]) Present() T {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.present
}

// CanUndo returns true if there are entries that can be undone.
func (s *Stack[T]) CanUndo() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.past) > 0
}

// CanRedo returns true if there are entries that can be redone.
func (s *Stack[T]) CanRedo() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.future) > 0
}

// Depth returns the number of undo and redo steps available.
func (s *Stack[T]) Depth() (past, future int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.past), len(s.future)
}

func (s *Stack[T]) Capacity() int {
	return s.capacity
}

// Past returns a copy of the undo entries, oldest first.
func (s *Stack[T]) Past() []T {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	out := make([]T, len(s.past))
	copy(out, s.past)
	return out
}

// Future returns a copy of the redo entries, next redo first.
func (s *Stack[T]) Future() []T {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	out := make([]T, len(s.future))
	for i, v := range s.future {
		out[len(out)-1-i] = v
	}
	return out
}
