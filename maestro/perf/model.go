// Package perf implements the coarse-grained-sync performance model: PE
// operation counts and the closed-form runtime composed over the four
// first/steady temporal × edge/steady spatial phases.
package perf

import (
	"github.com/maestro-dataflow/maestro-analyzer/maestro/buffer"
	"github.com/maestro-dataflow/maestro-analyzer/maestro/mapping"
	"github.com/maestro-dataflow/maestro-analyzer/maestro/noc"
)

// Mode selects between reproducing the source's accumulate-without-reset
// traffic bug (ModeCompat, the default) and a corrected accumulator that
// resets before every phase (ModeStrict).
type Mode int

const (
	ModeCompat Mode = iota
	ModeStrict
)

// Model computes PE operation counts and runtime over a preprocessed
// mapping analyzer, buffer model and NoC model.
type Model struct {
	mapping *mapping.Analyzer
	buffer  *buffer.Model
	noc     *noc.Model

	numALUsPerPE       int64
	reduction          bool
	sameCycleReduction bool
	fineGrainedSync    bool
	mode               Mode
}

// NewModel builds a Model. numALUsPerPE must be at least 1 for Runtime's
// compute-delay division to be meaningful; a value of 0 is treated as 1.
func NewModel(m *mapping.Analyzer, b *buffer.Model, n *noc.Model, numALUsPerPE int64, reduction, sameCycleReduction, fineGrainedSync bool, mode Mode) *Model {
	if numALUsPerPE <= 0 {
		numALUsPerPE = 1
	}
	return &Model{
		mapping:            m,
		buffer:             b,
		noc:                n,
		numALUsPerPE:       numALUsPerPE,
		reduction:          reduction,
		sameCycleReduction: sameCycleReduction,
		fineGrainedSync:    fineGrainedSync,
		mode:               mode,
	}
}

// NumOpsPerPE returns the per-PE operation count over a set of correlated
// tensors. With cartesian, it is the product of each tensor's mapped size;
// otherwise the largest mapped size is taken as the op count and the rest
// folded in as a separate multiplier, inflated by the reduction scalar
// (2n-1 additions for n terms of a non-same-cycle reduction) when enabled.
func (p *Model) NumOpsPerPE(tensors []string, cartesian bool) (int64, error) {
	if cartesian {
		var ops int64 = 1
		for _, t := range tensors {
			m, err := p.mapping.MappedSize(t, false, false)
			if err != nil {
				return 0, err
			}
			ops *= m
		}
		return ops, nil
	}

	var numOps int64 = 1
	var mult int64 = 1
	for _, t := range tensors {
		m, err := p.mapping.MappedSize(t, false, false)
		if err != nil {
			return 0, err
		}
		if m > numOps {
			mult = numOps
			numOps = m
		} else {
			mult *= m
		}
	}

	if p.reduction && !p.sameCycleReduction {
		numOps = 2*numOps*mult - 1
	}
	return numOps, nil
}

// Runtime dispatches to CompatRuntime or StrictRuntime according to the
// Model's configured Mode. The fine-grained sync path is reserved and
// always returns 0, matching the source's unimplemented branch.
func (p *Model) Runtime(inputTensors, outputTensors []string, latencyHiding bool) (int64, error) {
	if p.fineGrainedSync {
		return 0, nil
	}
	if p.mode == ModeStrict {
		return p.runtime(inputTensors, outputTensors, latencyHiding, true)
	}
	return p.runtime(inputTensors, outputTensors, latencyHiding, false)
}

// CompatRuntime always reproduces the source's traffic-accumulation bug:
// the per-tensor L2→L1 traffic accumulator carries over from phase (b) into
// phase (c) and from (c) into (d) without being reset, regardless of the
// Model's configured Mode.
func (p *Model) CompatRuntime(inputTensors, outputTensors []string, latencyHiding bool) (int64, error) {
	return p.runtime(inputTensors, outputTensors, latencyHiding, false)
}

// StrictRuntime always resets the L2→L1 traffic accumulator before every
// phase, regardless of the Model's configured Mode — the corrected
// alternative to CompatRuntime.
func (p *Model) StrictRuntime(inputTensors, outputTensors []string, latencyHiding bool) (int64, error) {
	return p.runtime(inputTensors, outputTensors, latencyHiding, true)
}

func (p *Model) runtime(inputTensors, outputTensors []string, latencyHiding, strict bool) (int64, error) {
	numTpFoldings := int64(p.mapping.NumTemporalIterations())
	numSpFoldings := int64(p.mapping.NumSpatialFoldings())

	computeDelay, err := p.NumOpsPerPE(inputTensors, false)
	if err != nil {
		return 0, err
	}
	computeDelay /= p.numALUsPerPE
	if computeDelay < 1 {
		computeDelay = 1
	}

	var initTraffic int64
	for _, t := range inputTensors {
		v, err := p.buffer.SpatialL2ToL1Traffic(t, true, true, true, false)
		if err != nil {
			return 0, err
		}
		initTraffic += v
	}
	runtime := p.noc.OutstandingDelay(initTraffic)

	var l1ToL2Traffic int64
	for _, t := range outputTensors {
		v, err := p.buffer.SpatialL1ToL2Traffic(t, false, true, true)
		if err != nil {
			return 0, err
		}
		l1ToL2Traffic += v
	}
	l1ToL2NocDelay := p.noc.OutstandingDelay(l1ToL2Traffic)

	iterationDelay := func(l2ToL1Traffic int64) int64 {
		l2ToL1NocDelay := p.noc.OutstandingDelay(l2ToL1Traffic)
		if latencyHiding {
			if l2ToL1NocDelay > l1ToL2NocDelay+computeDelay {
				return l2ToL1NocDelay
			}
			return l1ToL2NocDelay + computeDelay
		}
		return l2ToL1NocDelay + computeDelay + l1ToL2NocDelay
	}

	var l2ToL1Traffic int64

	// Phase (a): first temporal iteration, steady-state spatial iterations.
	if numSpFoldings > 2 {
		for _, t := range inputTensors {
			freq, err := p.mapping.TemporalChangeFrequency(t)
			if err != nil {
				return 0, err
			}
			v, err := p.buffer.SpatialL2ToL1Traffic(t, true, false, false, false)
			if err != nil {
				return 0, err
			}
			if freq == 0 {
				freq = 1
			}
			l2ToL1Traffic += v / freq
		}
		runtime += (numSpFoldings - 2) * iterationDelay(l2ToL1Traffic)
	}

	// Phase (b): first temporal iteration, spatial iteration edge.
	l2ToL1Traffic = 0
	for _, t := range inputTensors {
		freq, err := p.mapping.TemporalChangeFrequency(t)
		if err != nil {
			return 0, err
		}
		v, err := p.buffer.SpatialL2ToL1Traffic(t, true, true, false, false)
		if err != nil {
			return 0, err
		}
		if freq == 0 {
			freq = 1
		}
		l2ToL1Traffic += v / freq
	}
	runtime += iterationDelay(l2ToL1Traffic)

	// Phase (c): steady-state temporal iterations, steady-state spatial
	// iterations. In compat mode the accumulator carries phase (b)'s
	// leftover traffic forward instead of starting from zero.
	if strict {
		l2ToL1Traffic = 0
	}
	for _, t := range inputTensors {
		freq, err := p.mapping.TemporalChangeFrequency(t)
		if err != nil {
			return 0, err
		}
		v, err := p.buffer.SpatialL2ToL1Traffic(t, false, false, false, false)
		if err != nil {
			return 0, err
		}
		if freq == 0 {
			freq = 1
		}
		l2ToL1Traffic += v / freq
	}
	runtime += (numTpFoldings - 1) * (numSpFoldings - 1) * iterationDelay(l2ToL1Traffic)

	// Phase (d): steady-state temporal iterations, spatial iteration edge.
	// Compat mode again carries phase (c)'s accumulator forward.
	if strict {
		l2ToL1Traffic = 0
	}
	for _, t := range inputTensors {
		freq, err := p.mapping.TemporalChangeFrequency(t)
		if err != nil {
			return 0, err
		}
		v, err := p.buffer.SpatialL2ToL1Traffic(t, false, true, false, false)
		if err != nil {
			return 0, err
		}
		if freq == 0 {
			freq = 1
		}
		l2ToL1Traffic += v / freq
	}
	runtime += (numTpFoldings - 1) * iterationDelay(l2ToL1Traffic)

	return runtime, nil
}
