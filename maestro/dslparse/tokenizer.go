// Package dslparse tokenizes dataflow and layer description files into
// directive and loop tables.
package dslparse

import "strings"

// tokenize splits a line on any of space, comma, '-', '>', '(', ')' and
// drops empty tokens, matching the source's boost::char_separator(" ,->()").
func tokenize(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		switch r {
		case ' ', ',', '-', '>', '(', ')':
			return true
		}
		return false
	})
}

// ParseWarning names a recoverable problem encountered while parsing a
// dataflow or layer file: an unrecognized directive head, a malformed
// directive, or extra tokens on a layer line. Parsing continues past a
// warning; only I/O failures are returned as errors.
type ParseWarning struct {
	Line    int
	Message string
}
