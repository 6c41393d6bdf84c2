// Package parser reads the batch input format (spec §6): one graph per
// line, each line a comma-separated list of `u--v` edges over
// non-negative integer vertex ids, duplicate edges accumulating
// multiplicity. Grounded on the teacher's participle grammar in
// lib2x3/graph-grammar.go (GraphExpr/Part/EdgeRun), simplified from that
// grammar's rich edge-kind alphabet (`--`, `~`, `=`, loop markers) down to
// this format's single plain edge token.
package parser

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"

	"github.com/fine-structures/tuttex/internal/graph"
)

// Line is one input graph: a comma-separated run of edges.
type Line struct {
	Edges []*Edge `@@ ("," @@)*`
}

// Edge is a single `u--v` token pair.
type Edge struct {
	U int64 `@Int "--"`
	V int64 `@Int`
}

var lineLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Dashes", Pattern: `--`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var parseLine = participle.MustBuild[Line](
	participle.Lexer(lineLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// ErrBadInput wraps every malformed line (spec §7, BadInput class: "report
// to stderr, skip graph").
var ErrBadInput = errors.New("parser: malformed graph line")

// ParseLine parses a single input line into a MultiGraph. Vertex
// ids need not be contiguous or start at zero; the returned graph's vertex
// domain is [0, maxID] with any unreferenced ids left as isolated vertices,
// matching read_graph<G>'s "size the graph from the highest vertex id
// seen" convention (original_source/tutte/tutte.cpp).
func ParseLine(text string) (*graph.MultiGraph, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.Wrap(ErrBadInput, "empty line")
	}
	parsed, err := parseLine.ParseString("", text)
	if err != nil {
		return nil, errors.Wrap(ErrBadInput, err.Error())
	}

	var maxID int64
	for _, e := range parsed.Edges {
		if e.U > maxID {
			maxID = e.U
		}
		if e.V > maxID {
			maxID = e.V
		}
	}

	g := graph.New(int(maxID) + 1)
	for _, e := range parsed.Edges {
		g.AddEdge(graph.VtxID(e.U), graph.VtxID(e.V), 1)
	}
	return g, nil
}

// ReadBatch reads every line of r as a separate graph, per spec §6, "one
// graph per line". A malformed line is reported through onError rather
// than aborting the batch (spec §7, BadInput: "report to stderr, skip
// graph"); onError may be nil to discard the message.
func ReadBatch(r io.Reader, onError func(lineNo int, err error)) []*graph.MultiGraph {
	var out []*graph.MultiGraph
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		g, err := ParseLine(text)
		if err != nil {
			if onError != nil {
				onError(lineNo, fmt.Errorf("line %d: %w", lineNo, err))
			}
			continue
		}
		out = append(out, g)
	}
	return out
}
