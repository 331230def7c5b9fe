// Package buffer implements the two-level (L1 per-PE, L2 shared) buffer
// sizing and read/write traffic model built on top of the mapping analyzer
// and the NoC model.
package buffer

import (
	"fmt"

	"github.com/maestro-dataflow/maestro-analyzer/maestro/mapping"
	"github.com/maestro-dataflow/maestro-analyzer/maestro/noc"
)

// Model holds the snapshot of tile/folding counts read out of the mapping
// analyzer at construction time. Callers must re-create a Model after any
// SetMapSize + Preprocess re-run, the same way the source re-derives
// BufferAnalysis's member snapshot once per MappingAnalysis lifetime.
type Model struct {
	mapping *mapping.Analyzer
	noc     *noc.Model

	numPEs         int64
	numSpTiles     int64
	numSpEdgeTiles int64
	spTileSize     int64
	numTpFoldings  int64
	numSpFoldings  int64
}

// NewModel snapshots the spatial-tile, edge-tile and folding counts off an
// already-preprocessed mapping.Analyzer.
func NewModel(m *mapping.Analyzer, n *noc.Model, numPEs int64) (*Model, error) {
	tiles := m.NumSpatialTiles()
	if len(tiles) == 0 {
		return nil, fmt.Errorf("buffer: mapping analyzer has no spatial-map point")
	}

	numSpTiles := int64(tiles[0].NumTiles)
	spTileSize := int64(0)
	if numSpTiles != 0 {
		spTileSize = numPEs / numSpTiles
	}

	return &Model{
		mapping:        m,
		noc:            n,
		numPEs:         numPEs,
		numSpTiles:     numSpTiles,
		numSpEdgeTiles: int64(m.NumEdgeTiles()),
		spTileSize:     spTileSize,
		numTpFoldings:  int64(m.NumTemporalIterations()),
		numSpFoldings:  int64(m.NumSpatialFoldings()),
	}, nil
}

// L1RequiredSize returns the per-PE L1 buffer requirement summed over
// tensors, doubled if double buffering is enabled.
func (b *Model) L1RequiredSize(tensors []string, doubleBuffering bool) (int64, error) {
	var size int64
	for _, t := range tensors {
		m, err := b.mapping.MappedSize(t, false, false)
		if err != nil {
			return 0, err
		}
		size += m
	}
	if doubleBuffering {
		size *= 2
	}
	return size, nil
}

// L2RequiredSize returns the shared L2 buffer requirement summed over
// tensors: one full per-PE working set plus a spatially-reused copy for
// every other PE sharing that tensor's tile.
func (b *Model) L2RequiredSize(tensors []string) (int64, error) {
	maxPEs := b.numSpTiles
	if b.numSpFoldings == 1 {
		maxPEs = b.numSpEdgeTiles
	}

	var size int64
	for _, t := range tensors {
		first, err := b.mapping.MappedSize(t, false, false)
		if err != nil {
			return 0, err
		}
		other, err := b.mapping.MappedSize(t, false, true)
		if err != nil {
			return 0, err
		}
		size += first + (maxPEs-1)*other
	}
	return size, nil
}

// SpatialL1ToL2Traffic returns the per-spatial-iteration L1→L2 traffic for a
// tensor under the caller's reuse toggles, using the edge-tile count when
// edge is true and the steady-state tile count otherwise.
func (b *Model) SpatialL1ToL2Traffic(tensorName string, edge bool, temporalReuse, spatialReuse bool) (int64, error) {
	unique, err := b.mapping.MappedSize(tensorName, temporalReuse, spatialReuse)
	if err != nil {
		return 0, err
	}
	if edge {
		return b.numSpEdgeTiles * unique, nil
	}
	return b.numSpTiles * unique, nil
}

// SpatialL2ToL1Traffic returns the per-spatial-iteration L2→L1 traffic for a
// tensor, selecting among the four (firstTp × edgeSp) traffic variants per
// spec.md §4.4 and accounting for multicast.
func (b *Model) SpatialL2ToL1Traffic(tensorName string, firstTp, edgeSp bool, temporalReuse, spatialReuse bool) (int64, error) {
	freq, err := b.mapping.TemporalChangeFrequency(tensorName)
	if err != nil {
		return 0, err
	}

	a, err := b.mapping.MappedSize(tensorName, false, false)
	if err != nil {
		return 0, err
	}
	bb, err := b.mapping.MappedSize(tensorName, false, spatialReuse)
	if err != nil {
		return 0, err
	}
	c, err := b.mapping.MappedSize(tensorName, temporalReuse, false)
	if err != nil {
		return 0, err
	}
	d, err := b.mapping.MappedSize(tensorName, temporalReuse, spatialReuse)
	if err != nil {
		return 0, err
	}

	k := b.numSpTiles
	if edgeSp {
		k = b.numSpEdgeTiles
	}

	if b.noc.MulticastSupported() {
		if firstTp {
			return a + (k-1)*bb, nil
		}
		if freq == 0 {
			freq = 1
		}
		return (c + (k-1)*d) / freq, nil
	}

	if freq == 0 {
		freq = 1
	}
	return k * a / freq, nil
}

// L2BufferRead returns the per-tensor L2 read volume across the whole
// analysis: a first-temporal-iteration phase plus (ntf-1) steady-temporal
// phases, each itself composed of an edge-spatial phase plus (nsf-1)
// steady-spatial phases.
func (b *Model) L2BufferRead(tensorName string, temporalReuse, spatialReuse bool) (int64, error) {
	firstTpSteadySp, err := b.SpatialL2ToL1Traffic(tensorName, true, false, temporalReuse, spatialReuse)
	if err != nil {
		return 0, err
	}
	firstTpEdgeSp, err := b.SpatialL2ToL1Traffic(tensorName, true, true, temporalReuse, spatialReuse)
	if err != nil {
		return 0, err
	}
	steadyTpSteadySp, err := b.SpatialL2ToL1Traffic(tensorName, false, false, temporalReuse, spatialReuse)
	if err != nil {
		return 0, err
	}
	steadyTpEdgeSp, err := b.SpatialL2ToL1Traffic(tensorName, false, true, temporalReuse, spatialReuse)
	if err != nil {
		return 0, err
	}

	firstTpL2Rd := firstTpEdgeSp + (b.numSpFoldings-1)*firstTpSteadySp
	steadyTpL2Rd := steadyTpEdgeSp + (b.numSpFoldings-1)*steadyTpSteadySp

	return firstTpL2Rd + (b.numTpFoldings-1)*steadyTpL2Rd, nil
}

// L2BufferWrite returns the tensor's L2 write volume, currently assuming
// full output reuse (the non-full-reuse case is left unimplemented, per the
// source's own TODO).
func (b *Model) L2BufferWrite(tensorName string) (int64, error) {
	return b.mapping.FullSize(tensorName)
}

// L1BufferRead returns the tensor's total L1 read volume across every
// spatial and temporal iteration.
func (b *Model) L1BufferRead(tensorName string) (int64, error) {
	spReadVolume, err := b.mapping.MappedSize(tensorName, false, false)
	if err != nil {
		return 0, err
	}

	steadySpIterL1Rd := b.spTileSize * b.numSpTiles * spReadVolume
	edgeSpIterL1Rd := b.spTileSize * b.numSpEdgeTiles * spReadVolume

	return b.numTpFoldings * ((b.numSpFoldings-1)*steadySpIterL1Rd + edgeSpIterL1Rd), nil
}

// L1BufferWrite returns the tensor's L1 write volume: the L2 read volume
// under the caller's temporal-reuse toggle and no spatial reuse (the
// spatialReuse argument is not used), scaled up by the
// multicast factor (full size / spatially-reused size) when the NoC
// supports multicast.
func (b *Model) L1BufferWrite(tensorName string, temporalReuse, spatialReuse bool) (int64, error) {
	l1Wr, err := b.L2BufferRead(tensorName, temporalReuse, false)
	if err != nil {
		return 0, err
	}

	if b.noc.MulticastSupported() {
		full, err := b.mapping.MappedSize(tensorName, false, false)
		if err != nil {
			return 0, err
		}
		spReused, err := b.mapping.MappedSize(tensorName, false, true)
		if err != nil {
			return 0, err
		}
		if spReused != 0 {
			l1Wr *= full / spReused
		}
	}

	return l1Wr, nil
}

// TemporalReuse returns the tensor's temporal reuse factor: L1 reads divided
// by its full (unmapped) size.
func (b *Model) TemporalReuse(tensorName string) (float64, error) {
	l1Rd, err := b.L1BufferRead(tensorName)
	if err != nil {
		return 0, err
	}
	full, err := b.mapping.FullSize(tensorName)
	if err != nil {
		return 0, err
	}
	if full == 0 {
		return 0, nil
	}
	return float64(l1Rd) / float64(full), nil
}

// SpatialReuse returns the tensor's spatial reuse (multicast) factor: L1
// writes divided by L2 reads, both under full temporal and spatial reuse.
func (b *Model) SpatialReuse(tensorName string) (float64, error) {
	l1Writes, err := b.L1BufferWrite(tensorName, true, true)
	if err != nil {
		return 0, err
	}
	l2Reads, err := b.L2BufferRead(tensorName, true, true)
	if err != nil {
		return 0, err
	}
	if l2Reads == 0 {
		return 0, nil
	}
	return float64(l1Writes) / float64(l2Reads), nil
}
