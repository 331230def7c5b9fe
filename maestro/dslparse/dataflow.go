package dslparse

import (
	"bufio"
	"io"
	"strconv"

	"github.com/maestro-dataflow/maestro-analyzer/maestro/directive"
)

const (
	tokenTemporalMap = "Temporal_Map"
	tokenSpatialMap  = "Spatial_Map"
	tokenTile        = "Cluster"
	tokenUnroll      = "unroll"
	tokenMerge       = "merge"
)

// atoiLenient mirrors C's atoi: a token that isn't a valid integer parses as
// 0 rather than failing the whole line, matching the source parser's use of
// std::atoi.
func atoiLenient(tok string) int {
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0
	}
	return n
}

// ParseDataflow tokenizes a dataflow description (one directive per line,
// order significant) into a directive.Table. Lines whose head token is not
// one of Temporal_Map/Spatial_Map/Cluster/unroll/merge are skipped and
// reported as a ParseWarning rather than failing the parse.
func ParseDataflow(r io.Reader) (*directive.Table, []ParseWarning, error) {
	table := directive.NewTable()
	var warnings []ParseWarning

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		tokens := tokenize(scanner.Text())
		if len(tokens) == 0 {
			continue
		}

		head := tokens[0]
		args := tokens[1:]

		switch head {
		case tokenTemporalMap:
			size, offset, varName, ok := mapArgs(args)
			if !ok {
				warnings = append(warnings, ParseWarning{Line: lineNum, Message: "malformed Temporal_Map directive"})
				continue
			}
			table.Add(directive.NewTemporalMap(varName, size, offset))
		case tokenSpatialMap:
			size, offset, varName, ok := mapArgs(args)
			if !ok {
				warnings = append(warnings, ParseWarning{Line: lineNum, Message: "malformed Spatial_Map directive"})
				continue
			}
			table.Add(directive.NewSpatialMap1(varName, size, offset))
		case tokenTile:
			if len(args) < 2 {
				warnings = append(warnings, ParseWarning{Line: lineNum, Message: "malformed Cluster directive"})
				continue
			}
			table.Add(directive.NewTile(args[1], atoiLenient(args[0])))
		case tokenUnroll:
			if len(args) < 1 {
				warnings = append(warnings, ParseWarning{Line: lineNum, Message: "malformed unroll directive"})
				continue
			}
			table.Add(directive.NewUnroll(args[0]))
		case tokenMerge:
			if len(args) < 1 {
				warnings = append(warnings, ParseWarning{Line: lineNum, Message: "malformed merge directive"})
				continue
			}
			table.Add(directive.NewMerge(args[0]))
		default:
			warnings = append(warnings, ParseWarning{Line: lineNum, Message: "unrecognized directive head " + strconv.Quote(head)})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, warnings, err
	}
	return table, warnings, nil
}

// mapArgs extracts (size, offset, var) from a Temporal_Map/Spatial_Map
// directive's argument tokens, in that order.
func mapArgs(args []string) (size, offset int, varName string, ok bool) {
	if len(args) < 3 {
		return 0, 0, "", false
	}
	return atoiLenient(args[0]), atoiLenient(args[1]), args[2], true
}
