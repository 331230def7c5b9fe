// Package directive holds the typed representation of the mapping DSL: loop
// bounds and the ordered list of mapping directives (temporal map, spatial
// map, tile/cluster, unroll, merge) that describe how a loop nest is laid
// out across a spatial array of processing elements.
package directive

import "github.com/sirupsen/logrus"

// Loop describes a single loop-nest dimension: `var` iterates from `Base` to
// `Bound` in steps of `Incr`. Constructed once from the layer file and never
// mutated afterwards.
type Loop struct {
	Var   string
	Base  int
	Bound int
	Incr  int
}

// NewLoop builds a Loop with Incr=1, matching the layer-file tokenizer which
// never supplies a base or increment of its own (both are always 0/1).
// A Bound below Base is not rejected — it is a non-fatal warning per the
// error-handling contract, and the resulting non-positive iteration count is
// left to propagate into the derived quantities that consume it.
func NewLoop(varName string, base, bound int) Loop {
	if bound < base {
		logrus.Warnf("invalid loop %q: bound %d < base %d", varName, bound, base)
	}
	return Loop{Var: varName, Base: base, Bound: bound, Incr: 1}
}

// NumIter returns the loop's iteration count, (Bound-Base)/Incr.
func (l Loop) NumIter() int {
	if l.Incr == 0 {
		return 0
	}
	return (l.Bound - l.Base) / l.Incr
}

// LoopTable is the ordered sequence of Loops parsed from a layer file.
// Insertion order is preserved; duplicate loop variables are permitted but
// only the first match is ever consulted by the core (see FindLoops).
type LoopTable struct {
	loops []Loop
}

// NewLoopTable builds a LoopTable from zero or more Loops, preserving order.
func NewLoopTable(loops ...Loop) *LoopTable {
	t := &LoopTable{loops: make([]Loop, 0, len(loops))}
	t.loops = append(t.loops, loops...)
	return t
}

// Add appends a Loop to the table.
func (t *LoopTable) Add(l Loop) {
	t.loops = append(t.loops, l)
}

// All returns the loops in insertion order. Callers must not mutate the
// returned slice's backing array via index assignment expecting it to stick;
// treat it as read-only.
func (t *LoopTable) All() []Loop {
	return t.loops
}

// FindLoops returns every Loop matching varName, in insertion order, and
// whether any match was found. The core only ever consults the first
// (front) match — a documented limitation inherited from the source model,
// which never supported per-loop-nest-level shadowing of a variable name.
func (t *LoopTable) FindLoops(varName string) ([]Loop, bool) {
	var matches []Loop
	for _, l := range t.loops {
		if l.Var == varName {
			matches = append(matches, l)
		}
	}
	return matches, len(matches) > 0
}

// TotalIterations returns the product of Bound (not Bound-Base) across every
// loop in the table. This matches the source's GetTotalIterations, which
// multiplies raw bounds rather than iteration counts; it only differs from
// the product of NumIter() when some loop has a nonzero Base, which the
// orchestrator never sets (layer-file loops always start at 0). Preserved
// rather than "fixed" per the design notes — see DESIGN.md.
func (t *LoopTable) TotalIterations() int64 {
	var total int64 = 1
	for _, l := range t.loops {
		total *= int64(l.Bound)
	}
	return total
}
