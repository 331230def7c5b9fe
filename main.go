// Idiomatic entrypoint for the Cobra CLI, which defers to the root command in cmd/root.go.

package main

import (
	"github.com/maestro-dataflow/maestro-analyzer/cmd"
)

func main() {
	cmd.Execute()
}
