package cmd

import "github.com/maestro-dataflow/maestro-analyzer/maestro"

// DefaultTensorBindings returns the convolution-layer tensor-to-variable
// bindings the CLI binds at invocation time: weight depends on {K,C,R,S},
// input on {C,Y,X}, output on {K,Y,X}. The core packages accept bindings as
// a parameter and never hard-code this; it lives here, the external
// collaborator.
func DefaultTensorBindings() []maestro.TensorBinding {
	return []maestro.TensorBinding{
		{Name: "weight", Variables: []string{"K", "C", "R", "S"}, Role: maestro.RoleInput},
		{Name: "input", Variables: []string{"C", "Y", "X"}, Role: maestro.RoleInput},
		{Name: "output", Variables: []string{"K", "Y", "X"}, Role: maestro.RoleOutput},
	}
}
