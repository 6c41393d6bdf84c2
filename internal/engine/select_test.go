package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fine-structures/tuttex/internal/cache"
	"github.com/fine-structures/tuttex/internal/graph"
)

// a star (hub 0, leaves 1..3) plus a heavy multi-edge 0--4, so the degree
// heuristics have a clear, unambiguous winner to check against.
func starWithHeavyEdge() *graph.MultiGraph {
	g := graph.New(5)
	g.AddEdge(0, 1, 1)
	g.AddEdge(0, 2, 1)
	g.AddEdge(0, 3, 1)
	g.AddEdge(0, 4, 5)
	g.AddEdge(1, 2, 1) // closes a triangle so the graph isn't a tree
	return g
}

func TestSelectEdgeVertexOrderPicksFirstAscendingPair(t *testing.T) {
	ctx := NewContext(cache.New(1<<12, 8))
	ctx.EdgeHeuristic = VertexOrder
	e, err := selectEdge(ctx, starWithHeavyEdge())
	require.NoError(t, err)
	require.EqualValues(t, 0, e.U)
	require.EqualValues(t, 1, e.V)
}

func TestSelectEdgeMaximiseMDegreePicksHeaviestPair(t *testing.T) {
	ctx := NewContext(cache.New(1<<12, 8))
	ctx.EdgeHeuristic = MaximiseMDegree
	e, err := selectEdge(ctx, starWithHeavyEdge())
	require.NoError(t, err)
	require.EqualValues(t, 0, e.U)
	require.EqualValues(t, 4, e.V)
	require.EqualValues(t, 5, e.Mult)
}

func TestSelectEdgeReportsMultiplicityOneWhenShortcutDisabled(t *testing.T) {
	ctx := NewContext(cache.New(1<<12, 8))
	ctx.EdgeHeuristic = MaximiseMDegree
	ctx.ReduceMultiedges = false
	e, err := selectEdge(ctx, starWithHeavyEdge())
	require.NoError(t, err)
	require.EqualValues(t, 1, e.Mult)
}

func TestSelectEdgeRandomStaysWithinTotalMultiplicity(t *testing.T) {
	ctx := NewContext(cache.New(1<<12, 8))
	ctx.EdgeHeuristic = Random
	g := starWithHeavyEdge()
	for i := 0; i < 20; i++ {
		e, err := selectEdge(ctx, g)
		require.NoError(t, err)
		require.NotEqual(t, e.U, e.V)
		require.Positive(t, g.Multiplicity(e.U, e.V))
	}
}

func TestSelectEdgeErrorsOnEdgelessGraph(t *testing.T) {
	ctx := NewContext(cache.New(1<<12, 8))
	_, err := selectEdge(ctx, graph.New(3))
	require.Error(t, err)
}
