package dslparse

import (
	"bufio"
	"io"

	"github.com/maestro-dataflow/maestro-analyzer/maestro/directive"
)

// ParseLayer tokenizes a layer description (one loop variable and bound per
// line) into a directive.LoopTable. Every loop is built with base 0 and
// increment 1. Tokens beyond the variable and bound are reported as a
// ParseWarning and ignored, matching the source's "extra arguments" warning.
func ParseLayer(r io.Reader) (*directive.LoopTable, []ParseWarning, error) {
	table := directive.NewLoopTable()
	var warnings []ParseWarning

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		tokens := tokenize(scanner.Text())
		if len(tokens) == 0 {
			continue
		}
		if len(tokens) < 2 {
			warnings = append(warnings, ParseWarning{Line: lineNum, Message: "missing loop bound"})
			continue
		}

		varName := tokens[0]
		bound := atoiLenient(tokens[1])
		if len(tokens) > 2 {
			warnings = append(warnings, ParseWarning{Line: lineNum, Message: "extra arguments in loop dimension description, ignoring"})
		}

		table.Add(directive.NewLoop(varName, 0, bound))
	}
	if err := scanner.Err(); err != nil {
		return nil, warnings, err
	}
	return table, warnings, nil
}
