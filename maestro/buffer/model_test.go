package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maestro-dataflow/maestro-analyzer/maestro/directive"
	"github.com/maestro-dataflow/maestro-analyzer/maestro/mapping"
	"github.com/maestro-dataflow/maestro-analyzer/maestro/noc"
)

// buildSingleVarModel constructs a minimal one-tensor, one-variable analysis:
// loop K has bound 8, SpatialMap(K, size=4, offset=2) over 4 PEs. This
// produces a spatial reuse split (sp_unique=2, sp_reused=2) without any
// temporal folding, so every buffer formula resolves to small, hand-checked
// numbers.
func buildSingleVarModel(t *testing.T, multicast bool) *Model {
	t.Helper()
	loops := directive.NewLoopTable(directive.NewLoop("K", 0, 8))
	table := directive.NewTable(directive.NewSpatialMap1("K", 4, 2))
	m := mapping.NewAnalyzer(table, loops)
	m.AddTensor("t", []string{"K"})
	require.NoError(t, m.Preprocess(4))

	n := noc.NewModel(32, 1, 1, multicast)
	b, err := NewModel(m, n, 4)
	require.NoError(t, err)
	return b
}

func TestL1RequiredSize(t *testing.T) {
	b := buildSingleVarModel(t, true)

	size, err := b.L1RequiredSize([]string{"t"}, false)
	require.NoError(t, err)
	assert.Equal(t, int64(4), size)

	doubled, err := b.L1RequiredSize([]string{"t"}, true)
	require.NoError(t, err)
	assert.Equal(t, int64(8), doubled)
}

func TestL2RequiredSize(t *testing.T) {
	b := buildSingleVarModel(t, true)

	size, err := b.L2RequiredSize([]string{"t"})
	require.NoError(t, err)
	// first(4) + (maxPEs-1)*other(2) = 4 + 3*2 = 10
	assert.Equal(t, int64(10), size)
}

func TestSpatialL2ToL1Traffic_MulticastVsNoMulticast(t *testing.T) {
	mc := buildSingleVarModel(t, true)
	noMc := buildSingleVarModel(t, false)

	gotMC, err := mc.SpatialL2ToL1Traffic("t", true, false, true, true)
	require.NoError(t, err)
	assert.Equal(t, int64(10), gotMC)

	gotNoMC, err := noMc.SpatialL2ToL1Traffic("t", true, false, true, true)
	require.NoError(t, err)
	assert.Equal(t, int64(16), gotNoMC)

	// Multicast amortizes the (k-1) reused copies; no-multicast pays full
	// price per PE every time.
	assert.Less(t, gotMC, gotNoMC)
}

func TestSpatialL2ToL1Traffic_FirstTpVsSteadyTp(t *testing.T) {
	mc := buildSingleVarModel(t, true)

	first, err := mc.SpatialL2ToL1Traffic("t", true, false, true, true)
	require.NoError(t, err)
	steady, err := mc.SpatialL2ToL1Traffic("t", false, false, true, true)
	require.NoError(t, err)
	assert.Equal(t, first, steady)
}

func TestL2BufferRead(t *testing.T) {
	mc := buildSingleVarModel(t, true)
	noMc := buildSingleVarModel(t, false)

	gotMC, err := mc.L2BufferRead("t", true, true)
	require.NoError(t, err)
	assert.Equal(t, int64(10), gotMC)

	gotNoMC, err := noMc.L2BufferRead("t", true, true)
	require.NoError(t, err)
	assert.Equal(t, int64(16), gotNoMC)
}

func TestL2BufferWrite_DelegatesToFullSize(t *testing.T) {
	b := buildSingleVarModel(t, true)
	got, err := b.L2BufferWrite("t")
	require.NoError(t, err)
	assert.Equal(t, int64(8), got) // FullSize(t) = loop K's NumIter = 8
}

func TestL1BufferRead(t *testing.T) {
	b := buildSingleVarModel(t, true)
	got, err := b.L1BufferRead("t")
	require.NoError(t, err)
	assert.Equal(t, int64(16), got)
}

func TestL1BufferWrite_MulticastScalesByReuse(t *testing.T) {
	mc := buildSingleVarModel(t, true)
	noMc := buildSingleVarModel(t, false)

	gotMC, err := mc.L1BufferWrite("t", true, true)
	require.NoError(t, err)
	assert.Equal(t, int64(32), gotMC)

	gotNoMC, err := noMc.L1BufferWrite("t", true, true)
	require.NoError(t, err)
	assert.Equal(t, int64(16), gotNoMC)
}

func TestTemporalReuse(t *testing.T) {
	b := buildSingleVarModel(t, true)
	got, err := b.TemporalReuse("t")
	require.NoError(t, err)
	assert.InDelta(t, 2.0, got, 1e-9)
}

func TestSpatialReuse_MulticastVsNoMulticast(t *testing.T) {
	mc := buildSingleVarModel(t, true)
	noMc := buildSingleVarModel(t, false)

	gotMC, err := mc.SpatialReuse("t")
	require.NoError(t, err)
	assert.InDelta(t, 3.2, gotMC, 1e-9)

	gotNoMC, err := noMc.SpatialReuse("t")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, gotNoMC, 1e-9)
}

func TestNewModel_ErrorsWithoutSpatialMapPoint(t *testing.T) {
	loops := directive.NewLoopTable(directive.NewLoop("K", 0, 8))
	table := directive.NewTable(directive.NewTemporalMap("K", 8, 8))
	m := mapping.NewAnalyzer(table, loops)
	m.AddTensor("t", []string{"K"})
	require.NoError(t, m.Preprocess(4))

	n := noc.NewModel(32, 1, 1, true)
	_, err := NewModel(m, n, 4)
	assert.Error(t, err)
}
