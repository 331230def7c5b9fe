// Package maestro wires the directive/loop model, the NoC, mapping, buffer
// and performance models into the fixed-order analysis pipeline: parse
// (external, via dslparse) → configure → preprocess → report → buffer →
// reuse → runtime.
package maestro

import (
	"github.com/sirupsen/logrus"

	"github.com/maestro-dataflow/maestro-analyzer/maestro/buffer"
	"github.com/maestro-dataflow/maestro-analyzer/maestro/directive"
	"github.com/maestro-dataflow/maestro-analyzer/maestro/mapping"
	"github.com/maestro-dataflow/maestro-analyzer/maestro/noc"
	"github.com/maestro-dataflow/maestro-analyzer/maestro/perf"
)

// Role distinguishes a tensor bound into an analysis as something the PE
// array reads (an input to compute) or writes (an output of compute), the
// way the runtime model's NumOpsPerPE/Runtime need to separate the two.
type Role int

const (
	RoleInput Role = iota
	RoleOutput
)

// TensorBinding names a tensor and the ordered loop variables it depends on,
// plus its role in the performance model. Tensor bindings are supplied by
// the caller — the core packages never hard-code a convolution-specific
// binding; see New's tensors parameter and the cmd package's
// DefaultTensorBindings.
type TensorBinding struct {
	Name      string
	Variables []string
	Role      Role
}

// Config holds every hardware and analysis-mode parameter the CLI exposes.
type Config struct {
	NumPEs        int
	NumPEALUs     int64
	NoCBandwidth  int
	NoCHops       int
	NoCHopLatency int
	NoCMulticast  bool

	DoReductionOp     bool
	DoSameCycleReduce bool
	DoFineGrainedSync bool
	LatencyHiding     bool
	PerfMode          perf.Mode
	DoubleBufferedL1  bool
}

// TensorReport summarizes one tensor's mapped size, full size and buffer
// figures, the data cmd/report.go prints per tensor.
type TensorReport struct {
	Name          string
	MappedSize    int64
	FullSize      int64
	L2Read        int64
	L2Write       int64
	L1Read        int64
	TemporalReuse float64
	SpatialReuse  float64
}

// Result is the full output of one Analyze run.
type Result struct {
	NumSpatialTiles       []mapping.SpatialTile
	NumEdgeTiles          int
	NumTemporalIterations int
	NumSpatialFoldings    int
	TotalIterations       int64

	L1BufferSize int64
	L2BufferSize int64

	Tensors []TensorReport

	Runtime int64
}

// Orchestrator runs one analysis over a fixed directive table, loop table
// and hardware configuration. It is not safe for concurrent use; a caller
// running many independent analyses (sweep) must build one Orchestrator per
// analysis point.
type Orchestrator struct {
	directives *directive.Table
	loops      *directive.LoopTable
	cfg        Config
	tensors    []TensorBinding

	analyzer *mapping.Analyzer
	noc      *noc.Model
	buffer   *buffer.Model
}

// New builds an Orchestrator over a parsed directive table, loop table and
// tensor bindings. Preprocess has not run yet — call Analyze.
func New(directives *directive.Table, loops *directive.LoopTable, cfg Config, tensors []TensorBinding) *Orchestrator {
	analyzer := mapping.NewAnalyzer(directives, loops)
	for _, t := range tensors {
		analyzer.AddTensor(t.Name, t.Variables)
	}

	nocModel := noc.NewModel(cfg.NoCBandwidth, cfg.NoCHops, cfg.NoCHopLatency, cfg.NoCMulticast)

	return &Orchestrator{
		directives: directives,
		loops:      loops,
		cfg:        cfg,
		tensors:    tensors,
		analyzer:   analyzer,
		noc:        nocModel,
	}
}

// Analyze runs the fixed-order pipeline: preprocess the mapping analyzer,
// build the buffer model, compute per-tensor reuse and buffer figures, and
// compute runtime. It returns the first error encountered; the model never
// retries or recovers, per the error-handling contract.
func (o *Orchestrator) Analyze() (*Result, error) {
	logrus.Infof("preprocessing mapping analyzer: %d directives, %d PEs", o.directives.Len(), o.cfg.NumPEs)
	if err := o.analyzer.Preprocess(o.cfg.NumPEs); err != nil {
		return nil, err
	}

	bufModel, err := buffer.NewModel(o.analyzer, o.noc, int64(o.cfg.NumPEs))
	if err != nil {
		return nil, err
	}
	o.buffer = bufModel

	var inputNames, outputNames []string
	for _, t := range o.tensors {
		if t.Role == RoleOutput {
			outputNames = append(outputNames, t.Name)
		} else {
			inputNames = append(inputNames, t.Name)
		}
	}

	logrus.Debugf("computing buffer sizes and reuse factors for %d tensors", len(o.tensors))
	reports := make([]TensorReport, 0, len(o.tensors))
	for _, t := range o.tensors {
		mapped, err := o.analyzer.MappedSize(t.Name, false, false)
		if err != nil {
			return nil, err
		}
		full, err := o.analyzer.FullSize(t.Name)
		if err != nil {
			return nil, err
		}
		l2Read, err := bufModel.L2BufferRead(t.Name, true, true)
		if err != nil {
			return nil, err
		}
		l2Write, err := bufModel.L2BufferWrite(t.Name)
		if err != nil {
			return nil, err
		}
		l1Read, err := bufModel.L1BufferRead(t.Name)
		if err != nil {
			return nil, err
		}
		tempReuse, err := bufModel.TemporalReuse(t.Name)
		if err != nil {
			return nil, err
		}
		spReuse, err := bufModel.SpatialReuse(t.Name)
		if err != nil {
			return nil, err
		}

		reports = append(reports, TensorReport{
			Name:          t.Name,
			MappedSize:    mapped,
			FullSize:      full,
			L2Read:        l2Read,
			L2Write:       l2Write,
			L1Read:        l1Read,
			TemporalReuse: tempReuse,
			SpatialReuse:  spReuse,
		})
	}

	allNames := make([]string, 0, len(o.tensors))
	for _, t := range o.tensors {
		allNames = append(allNames, t.Name)
	}
	l1Size, err := bufModel.L1RequiredSize(allNames, o.cfg.DoubleBufferedL1)
	if err != nil {
		return nil, err
	}
	l2Size, err := bufModel.L2RequiredSize(allNames)
	if err != nil {
		return nil, err
	}

	perfModel := perf.NewModel(o.analyzer, bufModel, o.noc, o.cfg.NumPEALUs, o.cfg.DoReductionOp, o.cfg.DoSameCycleReduce, o.cfg.DoFineGrainedSync, o.cfg.PerfMode)
	runtime, err := perfModel.Runtime(inputNames, outputNames, o.cfg.LatencyHiding)
	if err != nil {
		return nil, err
	}

	return &Result{
		NumSpatialTiles:       o.analyzer.NumSpatialTiles(),
		NumEdgeTiles:          o.analyzer.NumEdgeTiles(),
		NumTemporalIterations: o.analyzer.NumTemporalIterations(),
		NumSpatialFoldings:    o.analyzer.NumSpatialFoldings(),
		TotalIterations:       o.analyzer.TotalIterations(),
		L1BufferSize:          l1Size,
		L2BufferSize:          l2Size,
		Tensors:               reports,
		Runtime:               runtime,
	}, nil
}

// BufferModel returns the buffer model built by the most recent Analyze
// call, or nil if Analyze has not run. cmd uses this to compute the energy
// estimate without duplicating buffer construction.
func (o *Orchestrator) BufferModel() *buffer.Model {
	return o.buffer
}

// TensorNames returns the configured tensor bindings' names in order.
func (o *Orchestrator) TensorNames() []string {
	names := make([]string, 0, len(o.tensors))
	for _, t := range o.tensors {
		names = append(names, t.Name)
	}
	return names
}
