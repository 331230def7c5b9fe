// Package mapping implements the mapping analyzer: the small analytical
// compiler that turns an ordered directive list, a loop-bound table and a PE
// count into the dense set of derived per-variable and per-tensor quantities
// the buffer and performance models query (mapped/unique/reused element
// counts, spatial tile counts, temporal iteration counts, spatial foldings,
// edge tiles, and per-tensor temporal change frequency).
package mapping

import (
	"github.com/maestro-dataflow/maestro-analyzer/maestro/directive"
)

// floorDivAtLeast1 implements the model's universal arithmetic-edge-case
// rule: every divisor-producing expression that feeds an iteration count
// must be coerced to at least 1 before being multiplied in, so that a loop
// bound smaller than its offset/size never collapses a temporal-iteration
// or folding count to zero.
func floorDivAtLeast1(n, d int) int {
	if d == 0 {
		return 1
	}
	q := n / d
	if q < 1 {
		return 1
	}
	return q
}

type spatialMapPoint struct {
	Var            string
	DirectiveIndex int
}

type spatialFolding struct {
	Var      string
	Foldings int
}

// Analyzer holds the directive and loop tables plus every map derived from
// them by Preprocess. It is constructed once per analysis and is not safe
// for concurrent use — callers running many independent analyses (a
// design-space sweep) must give each its own Analyzer, per the model's
// single-threaded, non-suspending concurrency contract.
type Analyzer struct {
	directives *directive.Table
	loops      *directive.LoopTable
	numPEs     int

	preprocessed bool

	numTiles           map[string]int
	spatialMapPoints   []spatialMapPoint
	spatialFoldings    []spatialFolding
	numEdgeTiles       int
	numTemporalIter    []int
	isUnrolled         map[string]bool
	isMerged           map[string]bool
	mapped             map[string]int
	spUnique           map[string]int
	tpUnique           map[string]int
	spReused           map[string]int
	tpReused           map[string]int

	tensors map[string][]string
}

// NewAnalyzer builds an Analyzer over the given directive and loop tables.
// Preprocess must be called before any query method.
func NewAnalyzer(directives *directive.Table, loops *directive.LoopTable) *Analyzer {
	return &Analyzer{
		directives: directives,
		loops:      loops,
		tensors:    make(map[string][]string),
	}
}

// AddTensor registers a tensor and the ordered list of loop variables it
// depends on. Tensor-to-variable bindings are supplied by the caller (the
// orchestrator); the core never hard-codes a convolution-specific binding.
func (a *Analyzer) AddTensor(name string, variables []string) {
	a.tensors[name] = variables
}

// Reset clears only the spatial layer (spatial map points and spatial
// foldings), matching the source's Reset().
func (a *Analyzer) Reset() {
	a.spatialMapPoints = nil
	a.spatialFoldings = nil
}

// FullReset clears every derived map, matching the source's FullReset().
func (a *Analyzer) FullReset() {
	a.Reset()
	a.numTiles = nil
	a.numTemporalIter = nil
	a.isUnrolled = nil
	a.isMerged = nil
	a.mapped = nil
	a.spUnique = nil
	a.tpUnique = nil
	a.spReused = nil
	a.tpReused = nil
	a.preprocessed = false
}

// Preprocess runs the six analysis phases in their fixed, semantically
// required order and populates every derived map. It must be re-run after
// any call to SetMapSize.
func (a *Analyzer) Preprocess(numPEs int) error {
	a.numPEs = numPEs
	a.numTiles = make(map[string]int)
	a.isUnrolled = make(map[string]bool)
	a.isMerged = make(map[string]bool)
	a.mapped = make(map[string]int)
	a.spUnique = make(map[string]int)
	a.tpUnique = make(map[string]int)
	a.spReused = make(map[string]int)
	a.tpReused = make(map[string]int)
	a.spatialMapPoints = nil
	a.spatialFoldings = nil
	a.numTemporalIter = nil
	a.numEdgeTiles = 0

	a.analyzeSpatialMapPoints()
	a.analyzeNumTiles(numPEs)
	if err := a.analyzeTemporalIterations(); err != nil {
		return err
	}
	a.analyzeUnrollMerge()
	if err := a.analyzeMapSizes(); err != nil {
		return err
	}
	if err := a.analyzeSpatialFoldings(); err != nil {
		return err
	}

	a.preprocessed = true
	return nil
}

// SetMapSize overrides the size and offset of every TemporalMap/SpatialMap
// directive on varName in place — the override hook search-driven callers (e.g. a
// design-space sweep) use to probe nearby mapping points without
// re-tokenizing a dataflow file. It marks the analyzer stale; Preprocess
// must be called again before the next query.
func (a *Analyzer) SetMapSize(varName string, size, offset int, kind directive.Kind) {
	for pos, d := range a.directives.All() {
		if d.Var != varName {
			continue
		}
		if d.Kind != directive.KindTemporalMap && d.Kind != directive.KindSpatialMap {
			continue
		}
		switch kind {
		case directive.KindTemporalMap:
			a.directives.Set(pos, directive.NewTemporalMap(varName, size, offset))
		case directive.KindSpatialMap:
			a.directives.Set(pos, directive.NewSpatialMap1(varName, size, offset))
		}
	}
	a.preprocessed = false
}

func (a *Analyzer) firstLoop(varName string) (directive.Loop, error) {
	loops, ok := a.loops.FindLoops(varName)
	if !ok {
		return directive.Loop{}, &NoLoopError{Var: varName}
	}
	return loops[0], nil
}

// --- Phase 1 ---

func (a *Analyzer) analyzeSpatialMapPoints() {
	for idx, d := range a.directives.All() {
		if d.Kind == directive.KindSpatialMap {
			a.spatialMapPoints = append(a.spatialMapPoints, spatialMapPoint{Var: d.Var, DirectiveIndex: idx})
		}
	}
}

// --- Phase 2 ---

func (a *Analyzer) analyzeNumTiles(numPEs int) {
	curr := numPEs
	for _, d := range a.directives.All() {
		if d.Kind == directive.KindTile {
			if d.Size != 0 {
				curr = curr / d.Size
			}
		}
		a.numTiles[d.Var] = curr
	}
}

// --- Phase 3 ---

// analyzeTemporalIterations computes, for every spatial-map point, the
// product of iteration counts of the non-spatial, non-tile directives
// nested inside it. The source's window upper bound is always the total
// directive count regardless of the spatial-map point's own index (curr_bound
// is assigned from the point's index and then immediately overwritten) —
// preserved here rather than corrected; with more than one spatial-map point
// this double-counts directives, a known quirk (see DESIGN.md).
func (a *Analyzer) analyzeTemporalIterations() error {
	currBase := 0
	all := a.directives.All()

	for range a.spatialMapPoints {
		currBound := len(all)
		numTempIter := 1

		for pragID := currBase; pragID < currBound; pragID++ {
			d := all[pragID]
			if d.Kind == directive.KindTile || d.Kind == directive.KindSpatialMap {
				continue
			}
			loop, err := a.firstLoop(d.Var)
			if err != nil {
				return err
			}
			if d.Kind != directive.KindUnroll {
				numTempIter *= floorDivAtLeast1(loop.NumIter(), d.Offset)
			}
		}

		a.numTemporalIter = append(a.numTemporalIter, numTempIter)
		currBase = currBound
	}
	return nil
}

// --- Phase 4 ---

func (a *Analyzer) analyzeUnrollMerge() {
	for _, d := range a.directives.All() {
		if _, ok := a.isUnrolled[d.Var]; !ok {
			a.isUnrolled[d.Var] = false
		}
		if _, ok := a.isMerged[d.Var]; !ok {
			a.isMerged[d.Var] = false
		}
	}
	for _, d := range a.directives.All() {
		switch d.Kind {
		case directive.KindUnroll:
			a.isUnrolled[d.Var] = true
		case directive.KindMerge:
			a.isMerged[d.Var] = true
		}
	}
}

// --- Phase 5 ---

func (a *Analyzer) analyzeMapSizes() error {
	for _, d := range a.directives.All() {
		loop, err := a.firstLoop(d.Var)
		if err != nil {
			return err
		}
		loopSize := loop.NumIter()

		switch d.Kind {
		case directive.KindTemporalMap:
			if a.isUnrolled[d.Var] || a.isMerged[d.Var] {
				return &ConflictError{Var: d.Var}
			}
			a.mapped[d.Var] = d.Size
			if d.Size > d.Offset {
				a.tpUnique[d.Var] = d.Offset
				a.tpReused[d.Var] = d.Size - d.Offset
			} else {
				a.tpUnique[d.Var] = d.Size
				a.tpReused[d.Var] = 0
			}
			a.spUnique[d.Var] = d.Size
			a.spReused[d.Var] = 0
		case directive.KindSpatialMap:
			if a.isUnrolled[d.Var] || a.isMerged[d.Var] {
				return &ConflictError{Var: d.Var}
			}
			a.mapped[d.Var] = d.Size
			a.tpUnique[d.Var] = d.Size
			a.tpReused[d.Var] = 0
			if d.Size > d.Offset {
				a.spUnique[d.Var] = d.Offset
				a.spReused[d.Var] = d.Size - d.Offset
			} else {
				a.spUnique[d.Var] = d.Size
				a.spReused[d.Var] = 0
			}
		case directive.KindUnroll:
			a.isUnrolled[d.Var] = true
			a.mapped[d.Var] = loopSize
			a.tpUnique[d.Var] = loopSize
			a.spUnique[d.Var] = 1
			a.tpReused[d.Var] = loopSize
			a.spReused[d.Var] = loopSize
		case directive.KindMerge:
			a.isMerged[d.Var] = true
			// Deliberately no size contribution — deferred, matching the source's
			// unimplemented Merge size semantics.
		}
	}
	return nil
}

// --- Phase 6 ---

func (a *Analyzer) analyzeSpatialFoldings() error {
	for _, d := range a.directives.All() {
		if d.Kind != directive.KindSpatialMap {
			continue
		}
		loop, err := a.firstLoop(d.Var)
		if err != nil {
			return err
		}
		loopSz := loop.NumIter()

		numSpTiles := a.numTiles[d.Var]

		// n/ofs is used twice below, as a single raw (possibly zero)
		// quantity; only the final folding count is floored to 1, matching
		// the source's loop_sz/ofs/num_sp_tiles formula exactly.
		nOverOfs := 0
		if d.Offset != 0 {
			nOverOfs = loopSz / d.Offset
		}

		foldings := 1
		if numSpTiles != 0 {
			foldings = nOverOfs / numSpTiles
		}
		if foldings < 1 {
			foldings = 1
		}

		numEdgeTiles := numSpTiles
		if numSpTiles != 0 {
			numEdgeTiles = nOverOfs % numSpTiles
		}
		if numEdgeTiles == 0 {
			numEdgeTiles = numSpTiles
		}
		a.numEdgeTiles = numEdgeTiles

		a.spatialFoldings = append(a.spatialFoldings, spatialFolding{Var: d.Var, Foldings: foldings})
	}
	return nil
}
