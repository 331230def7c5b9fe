package mapping

import "fmt"

// ConflictError reports a loop variable that is simultaneously
// Unroll/Merge and TemporalMap/SpatialMap — a fatal configuration conflict
// per the model's error-handling contract. The orchestrator returns it and
// the cmd package turns it into a process exit; the mapping package itself
// never calls os.Exit.
type ConflictError struct {
	Var string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("[maestro] a loop cannot be unrolled or merged and temporally or spatially mapped at the same time: %q", e.Var)
}

// NoLoopError reports a directive or tensor variable with no matching entry
// in the loop table.
type NoLoopError struct {
	Var string
}

func (e *NoLoopError) Error() string {
	return fmt.Sprintf("no loop matches directive variable %q", e.Var)
}

// ErrStale is returned by query methods when SetMapSize has invalidated the
// derived maps and Preprocess has not yet been re-run.
var ErrStale = staleError{}

type staleError struct{}

func (staleError) Error() string {
	return "mapping: Preprocess has not run, or is stale after SetMapSize"
}
