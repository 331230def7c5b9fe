package mapping

import "github.com/maestro-dataflow/maestro-analyzer/maestro/directive"

// hasVariable reports whether tensorName depends on varName.
func (a *Analyzer) hasVariable(tensorName, varName string) bool {
	for _, v := range a.tensors[tensorName] {
		if v == varName {
			return true
		}
	}
	return false
}

// firstDirectiveKind returns the Kind of the first directive matching
// varName, and whether one was found. A tensor variable with no matching
// directive in the table contributes a neutral multiplier of 1 to
// MappedSize's product rather than the Go zero-value trap of an absent map
// entry — an explicit Open Question decision recorded in DESIGN.md, since
// the source's FindPragma(var)->front() is undefined behavior for this case.
func (a *Analyzer) firstDirectiveKind(varName string) (directive.Kind, bool) {
	matches := a.directives.Find(varName)
	if len(matches) == 0 {
		return directive.KindInvalid, false
	}
	return matches[0].Kind, true
}

// MappedSize computes the tensor's mapped size under the given
// temporal-reuse/spatial-reuse toggle combination, per spec.md §4.3. Each
// variable's multiplier is taken from the map populated for the FIRST
// directive matching that variable.
func (a *Analyzer) MappedSize(tensorName string, temporalReuse, spatialReuse bool) (int64, error) {
	if !a.preprocessed {
		return 0, ErrStale
	}

	var ret int64 = 1
	for _, v := range a.tensors[tensorName] {
		kind, found := a.firstDirectiveKind(v)
		if !found {
			continue // neutral multiplier of 1
		}

		mult := 1
		switch {
		case temporalReuse && spatialReuse:
			switch kind {
			case directive.KindTemporalMap, directive.KindUnroll:
				mult = a.tpUnique[v]
			case directive.KindSpatialMap:
				mult = a.spUnique[v]
			default:
				mult = a.mapped[v]
			}
		case temporalReuse && !spatialReuse:
			mult = a.tpUnique[v]
		case !temporalReuse && spatialReuse:
			mult = a.spUnique[v]
		default:
			mult = a.mapped[v]
		}

		ret *= int64(mult)
	}
	return ret, nil
}

// FullSize returns the product of first-matching loop iteration counts for
// the tensor's variables — the tensor's total, unmapped size.
func (a *Analyzer) FullSize(tensorName string) (int64, error) {
	var full int64 = 1
	for _, v := range a.tensors[tensorName] {
		loop, err := a.firstLoop(v)
		if err != nil {
			return 0, err
		}
		full *= int64(loop.NumIter())
	}
	return full, nil
}

// TemporalChangeFrequency returns how often the tensor's mapped tile changes
// across temporal iterations: 1 if the tensor references the spatial-map
// variable, otherwise the product of max(1, n/size) across the directives
// between the first directive referencing the tensor and the spatial-map
// directive (exclusive), treating Unroll as 1.
//
// The source's "saw related value" flag, once set by any directive on a
// variable the tensor references, is never cleared: every later directive in
// the window before the spatial map contributes to the product regardless of
// whether it also references the tensor. That quirk is preserved here rather
// than corrected (see DESIGN.md).
func (a *Analyzer) TemporalChangeFrequency(tensorName string) (int64, error) {
	if !a.preprocessed {
		return 0, ErrStale
	}

	var mult int64 = 1
	all := a.directives.All()

	for _, sm := range a.spatialMapPoints {
		if a.hasVariable(tensorName, sm.Var) {
			return 1, nil
		}

		sawRelatedValue := false
		for pragID, d := range all {
			if a.hasVariable(tensorName, d.Var) {
				sawRelatedValue = true
			}
			if pragID < sm.DirectiveIndex && sawRelatedValue {
				loop, err := a.firstLoop(d.Var)
				if err != nil {
					return 0, err
				}
				contribution := 1
				if d.Kind != directive.KindUnroll {
					contribution = floorDivAtLeast1(loop.NumIter(), d.Size)
				}
				mult *= int64(contribution)
			}
		}
	}
	return mult, nil
}

// SpatialTile names one (var, numTiles) pair per spatial-map point.
type SpatialTile struct {
	Var      string
	NumTiles int
}

// NumSpatialTiles returns the tile count at each spatial-map point.
func (a *Analyzer) NumSpatialTiles() []SpatialTile {
	tiles := make([]SpatialTile, 0, len(a.spatialMapPoints))
	for _, sm := range a.spatialMapPoints {
		tiles = append(tiles, SpatialTile{Var: sm.Var, NumTiles: a.numTiles[sm.Var]})
	}
	return tiles
}

// NumEdgeTiles returns the last computed edge-tile count.
func (a *Analyzer) NumEdgeTiles() int {
	return a.numEdgeTiles
}

// NumTemporalIterations returns the temporal-iteration count for the first
// spatial-map point — the source does not extend this to multi-level
// spatial mapping.
func (a *Analyzer) NumTemporalIterations() int {
	if len(a.numTemporalIter) == 0 {
		return 1
	}
	return a.numTemporalIter[0]
}

// NumSpatialFoldings returns the spatial-folding count for the first
// spatial-map point.
func (a *Analyzer) NumSpatialFoldings() int {
	if len(a.spatialFoldings) == 0 {
		return 1
	}
	return a.spatialFoldings[0].Foldings
}

// TotalIterations delegates to the loop table's TotalIterations (product of
// raw bounds — see directive.LoopTable.TotalIterations for the preserved
// base-vs-bound quirk).
func (a *Analyzer) TotalIterations() int64 {
	return a.loops.TotalIterations()
}

// NumPEs returns the PE count passed to the most recent Preprocess call.
func (a *Analyzer) NumPEs() int {
	return a.numPEs
}
