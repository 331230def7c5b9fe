// Package sweep runs many independent analyses over a parameter grid
// concurrently — the "higher-level driver" the model's concurrency contract
// anticipates running many analyses in parallel, each owning its own
// mapping analyzer, buffer model and performance model.
package sweep

import (
	"runtime"
	"sync"

	"github.com/maestro-dataflow/maestro-analyzer/maestro"
	"github.com/maestro-dataflow/maestro-analyzer/maestro/directive"
)

// Point is one grid point: a label for reporting and the hardware
// configuration to analyze under the shared directive/loop tables.
type Point struct {
	Label string
	Cfg   maestro.Config
}

// Result pairs a grid point's label with its analysis outcome. Err is
// non-nil if Analyze failed for that point (e.g. a configuration conflict);
// Analysis is nil in that case.
type Result struct {
	Label    string
	Analysis *maestro.Result
	Err      error
}

// Run analyzes every point against the same directive table, loop table and
// tensor bindings, fanning work out across a bounded goroutine pool. The
// directive and loop tables are read-only for the duration of Run — callers
// must not invoke mapping.Analyzer.SetMapSize concurrently with Run, since
// that mutates the shared directive table in place. Results are returned in
// the same order as points, regardless of completion order.
//
// workers <= 0 defaults to runtime.GOMAXPROCS(0). This pool is a plain
// channel-and-WaitGroup fan-out rather than a generic scheduling library.
func Run(points []Point, directives *directive.Table, loops *directive.LoopTable, tensors []maestro.TensorBinding, workers int) []Result {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(points) {
		workers = len(points)
	}
	if workers < 1 {
		workers = 1
	}

	results := make([]Result, len(points))
	indices := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indices {
				p := points[idx]
				orch := maestro.New(directives, loops, p.Cfg, tensors)
				analysis, err := orch.Analyze()
				results[idx] = Result{Label: p.Label, Analysis: analysis, Err: err}
			}
		}()
	}

	for idx := range points {
		indices <- idx
	}
	close(indices)
	wg.Wait()

	return results
}
