package perf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maestro-dataflow/maestro-analyzer/maestro/buffer"
	"github.com/maestro-dataflow/maestro-analyzer/maestro/directive"
	"github.com/maestro-dataflow/maestro-analyzer/maestro/mapping"
	"github.com/maestro-dataflow/maestro-analyzer/maestro/noc"
)

// buildTwoVarFixture maps K spatially (mapped size 5) and C temporally
// (mapped size 3), giving two tensors with distinct, hand-checkable mapped
// sizes and no spatial/temporal folding to keep NumOpsPerPE arithmetic
// simple.
func buildTwoVarFixture(t *testing.T, reduction, sameCycleReduction bool, mode Mode) *Model {
	t.Helper()
	loops := directive.NewLoopTable(directive.NewLoop("K", 0, 5), directive.NewLoop("C", 0, 3))
	table := directive.NewTable(directive.NewSpatialMap1("K", 5, 5), directive.NewTemporalMap("C", 3, 3))
	m := mapping.NewAnalyzer(table, loops)
	m.AddTensor("a", []string{"K"})
	m.AddTensor("b", []string{"C"})
	require.NoError(t, m.Preprocess(5))

	n := noc.NewModel(32, 1, 1, true)
	b, err := buffer.NewModel(m, n, 5)
	require.NoError(t, err)

	return NewModel(m, b, n, 1, reduction, sameCycleReduction, false, mode)
}

func TestNumOpsPerPE_Cartesian(t *testing.T) {
	p := buildTwoVarFixture(t, false, false, ModeCompat)
	ops, err := p.NumOpsPerPE([]string{"a", "b"}, true)
	require.NoError(t, err)
	assert.Equal(t, int64(15), ops) // 5*3
}

func TestNumOpsPerPE_NonCartesianNoReduction(t *testing.T) {
	p := buildTwoVarFixture(t, false, false, ModeCompat)
	ops, err := p.NumOpsPerPE([]string{"a", "b"}, false)
	require.NoError(t, err)
	assert.Equal(t, int64(5), ops) // largest map (5) is the op count
}

func TestNumOpsPerPE_NonCartesianWithReduction(t *testing.T) {
	p := buildTwoVarFixture(t, true, false, ModeCompat)
	ops, err := p.NumOpsPerPE([]string{"a", "b"}, false)
	require.NoError(t, err)
	assert.Equal(t, int64(29), ops) // 2*5*3 - 1
}

func TestNumOpsPerPE_SameCycleReductionSkipsInflation(t *testing.T) {
	p := buildTwoVarFixture(t, true, true, ModeCompat)
	ops, err := p.NumOpsPerPE([]string{"a", "b"}, false)
	require.NoError(t, err)
	assert.Equal(t, int64(5), ops)
}

func TestRuntime_FineGrainedSyncReservedZero(t *testing.T) {
	loops := directive.NewLoopTable(directive.NewLoop("K", 0, 5), directive.NewLoop("C", 0, 3))
	table := directive.NewTable(directive.NewSpatialMap1("K", 5, 5), directive.NewTemporalMap("C", 3, 3))
	m := mapping.NewAnalyzer(table, loops)
	m.AddTensor("a", []string{"K"})
	m.AddTensor("b", []string{"C"})
	require.NoError(t, m.Preprocess(5))
	n := noc.NewModel(32, 1, 1, true)
	b, err := buffer.NewModel(m, n, 5)
	require.NoError(t, err)

	p := NewModel(m, b, n, 1, false, false, true, ModeCompat)
	runtime, err := p.Runtime([]string{"a"}, []string{"b"}, false)
	require.NoError(t, err)
	assert.Equal(t, int64(0), runtime)
}

func TestRuntime_Mode_DispatchesToMatchingHelper(t *testing.T) {
	compatP := buildTwoVarFixture(t, false, false, ModeCompat)
	strictP := buildTwoVarFixture(t, false, false, ModeStrict)

	dispatchedCompat, err := compatP.Runtime([]string{"a"}, []string{"b"}, false)
	require.NoError(t, err)
	wantCompat, err := compatP.CompatRuntime([]string{"a"}, []string{"b"}, false)
	require.NoError(t, err)
	assert.Equal(t, wantCompat, dispatchedCompat)

	dispatchedStrict, err := strictP.Runtime([]string{"a"}, []string{"b"}, false)
	require.NoError(t, err)
	wantStrict, err := strictP.StrictRuntime([]string{"a"}, []string{"b"}, false)
	require.NoError(t, err)
	assert.Equal(t, wantStrict, dispatchedStrict)
}

// buildFoldingFixture reproduces the weight-stationary convolution mapping
// with 16 PEs: num_spatial_foldings=4 (>2, so phase (a) runs) and
// num_temporal_iterations=196 (>1, so phases (c)/(d) carry real multipliers).
// This is the fixture that can actually distinguish compat from strict mode.
func buildFoldingFixture(t *testing.T, mode Mode) *Model {
	t.Helper()
	loops := directive.NewLoopTable(
		directive.NewLoop("K", 0, 64),
		directive.NewLoop("C", 0, 16),
		directive.NewLoop("R", 0, 3),
		directive.NewLoop("S", 0, 3),
		directive.NewLoop("Y", 0, 14),
		directive.NewLoop("X", 0, 14),
	)
	table := directive.NewTable(
		directive.NewSpatialMap1("K", 1, 1),
		directive.NewTemporalMap("C", 16, 16),
		directive.NewTemporalMap("R", 3, 3),
		directive.NewTemporalMap("S", 3, 3),
		directive.NewTemporalMap("Y", 1, 1),
		directive.NewTemporalMap("X", 1, 1),
	)
	m := mapping.NewAnalyzer(table, loops)
	m.AddTensor("weight", []string{"K", "C", "R", "S"})
	m.AddTensor("input", []string{"C", "Y", "X"})
	m.AddTensor("output", []string{"K", "Y", "X"})
	require.NoError(t, m.Preprocess(16))
	require.Equal(t, 4, m.NumSpatialFoldings())
	require.Equal(t, 196, m.NumTemporalIterations())

	n := noc.NewModel(32, 2, 1, true)
	b, err := buffer.NewModel(m, n, 16)
	require.NoError(t, err)

	return NewModel(m, b, n, 4, false, false, false, mode)
}

// Phase (b) always resets the accumulator in both modes. From phase (c)
// onward, strict mode resets again while compat mode carries the prior
// phase's traffic forward — so compat's accumulated volume at each later
// phase is always >= strict's, and OutstandingDelay is monotone
// non-decreasing in volume, so compat's total runtime can never fall below
// strict's.
func TestRuntime_CompatNeverUndershootsStrict(t *testing.T) {
	compatP := buildFoldingFixture(t, ModeCompat)
	strictP := buildFoldingFixture(t, ModeStrict)

	compatRuntime, err := compatP.CompatRuntime([]string{"weight", "input"}, []string{"output"}, false)
	require.NoError(t, err)
	strictRuntime, err := strictP.StrictRuntime([]string{"weight", "input"}, []string{"output"}, false)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, compatRuntime, strictRuntime)
	assert.Greater(t, strictRuntime, int64(0))
}

func TestRuntime_LatencyHidingNeverIncreasesRuntime(t *testing.T) {
	p := buildFoldingFixture(t, ModeStrict)

	hidden, err := p.Runtime([]string{"weight", "input"}, []string{"output"}, true)
	require.NoError(t, err)
	exposed, err := p.Runtime([]string{"weight", "input"}, []string{"output"}, false)
	require.NoError(t, err)

	assert.LessOrEqual(t, hidden, exposed)
}
