package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLineBuildsTriangle(t *testing.T) {
	g, err := ParseLine("0--1,1--2,0--2")
	require.NoError(t, err)
	require.Equal(t, 3, g.NumVertices())
	require.True(t, g.IsMulticycle())
}

func TestParseLineAccumulatesDuplicateEdgeMultiplicity(t *testing.T) {
	g, err := ParseLine("0--1,0--1,0--1")
	require.NoError(t, err)
	require.EqualValues(t, 3, g.Multiplicity(0, 1))
}

func TestParseLineSizesGraphFromHighestVertexID(t *testing.T) {
	g, err := ParseLine("0--3")
	require.NoError(t, err)
	require.Equal(t, 4, g.NumVertices())
}

func TestParseLineRejectsEmptyInput(t *testing.T) {
	_, err := ParseLine("   ")
	require.Error(t, err)
}

func TestParseLineRejectsMalformedEdge(t *testing.T) {
	_, err := ParseLine("0-1")
	require.Error(t, err)
}

func TestReadBatchSkipsBadLinesAndReportsThem(t *testing.T) {
	input := "0--1,1--2,0--2\nnot an edge\n0--1\n"
	var reported []int
	graphs := ReadBatch(strings.NewReader(input), func(lineNo int, err error) {
		reported = append(reported, lineNo)
	})
	require.Len(t, graphs, 2)
	require.Equal(t, []int{2}, reported)
}

func TestReadBatchSkipsBlankLines(t *testing.T) {
	input := "0--1\n\n1--2\n"
	graphs := ReadBatch(strings.NewReader(input), nil)
	require.Len(t, graphs, 2)
}
