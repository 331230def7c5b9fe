package directive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLoop_NumIter(t *testing.T) {
	l := NewLoop("K", 0, 16)
	assert.Equal(t, 16, l.NumIter())
}

func TestLoop_NumIter_ZeroIncr(t *testing.T) {
	l := Loop{Var: "K", Base: 0, Bound: 16, Incr: 0}
	assert.Equal(t, 0, l.NumIter())
}

func TestLoop_NumIter_BoundBelowBase(t *testing.T) {
	l := NewLoop("K", 4, 2)
	assert.Equal(t, -2, l.NumIter())
}

func TestLoopTable_FindLoops_ReturnsAllMatchesInOrder(t *testing.T) {
	table := NewLoopTable(NewLoop("K", 0, 16), NewLoop("K", 0, 32))
	matches, ok := table.FindLoops("K")
	assert.True(t, ok)
	assert.Len(t, matches, 2)
	assert.Equal(t, 16, matches[0].NumIter())
}

func TestLoopTable_FindLoops_NotFound(t *testing.T) {
	table := NewLoopTable(NewLoop("K", 0, 16))
	_, ok := table.FindLoops("C")
	assert.False(t, ok)
}

func TestLoopTable_TotalIterations_UsesRawBound(t *testing.T) {
	table := NewLoopTable(
		Loop{Var: "K", Base: 2, Bound: 16, Incr: 1},
		Loop{Var: "C", Base: 0, Bound: 4, Incr: 1},
	)
	// Uses Bound directly (16*4), not (Bound-Base) (14*4) — a documented quirk.
	assert.Equal(t, int64(64), table.TotalIterations())
}

func TestLoopTable_TotalIterations_Empty(t *testing.T) {
	table := NewLoopTable()
	assert.Equal(t, int64(1), table.TotalIterations())
}
