package graph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func triangle() *MultiGraph {
	g := New(3)
	g.AddEdge(0, 1, 1)
	g.AddEdge(1, 2, 1)
	g.AddEdge(0, 2, 1)
	return g
}

func TestAddEdgeAndLoop(t *testing.T) {
	g := New(2)
	g.AddEdge(0, 1, 3)
	g.AddEdge(0, 0, 2)
	require.EqualValues(t, 3, g.Multiplicity(0, 1))
	require.EqualValues(t, 2, g.LoopCount(0))
	require.EqualValues(t, 5, g.NumEdges())
}

func TestReduceLoops(t *testing.T) {
	g := New(1)
	g.AddEdge(0, 0, 4)
	total := g.ReduceLoops()
	require.EqualValues(t, 4, total)
	require.EqualValues(t, 0, g.LoopCount(0))
}

func TestRemoveEdgeDeletesWholeMultiplicity(t *testing.T) {
	g := New(2)
	g.AddEdge(0, 1, 5)
	g.RemoveEdge(0, 1)
	require.EqualValues(t, 0, g.Multiplicity(0, 1))
}

func TestContractEdgeSumsParallelsAndPreservesLoops(t *testing.T) {
	g := New(3)
	g.AddEdge(0, 1, 1)
	g.AddEdge(0, 2, 2)
	g.AddEdge(1, 2, 3)
	g.AddEdge(1, 1, 1) // pre-existing loop at v, must transfer to u
	g.ContractEdge(0, 1)
	require.EqualValues(t, 5, g.Multiplicity(0, 2)) // 2 (u-2) + 3 (v-2) summed
	require.EqualValues(t, 1, g.LoopCount(0))        // v's pre-existing loop preserved
	require.False(t, g.alive[1])
}

func TestIsTree(t *testing.T) {
	g := New(4)
	g.AddEdge(0, 1, 1)
	g.AddEdge(1, 2, 1)
	g.AddEdge(1, 3, 1)
	require.True(t, g.IsTree())
	require.True(t, g.IsMultitree())
	require.False(t, g.IsMulticycle())
}

func TestIsMulticycleTriangle(t *testing.T) {
	g := triangle()
	require.True(t, g.IsMulticycle())
	require.False(t, g.IsTree())
}

func TestIsMulticycleBigon(t *testing.T) {
	g := New(2)
	g.AddEdge(0, 1, 2)
	require.True(t, g.IsMulticycle())
	require.True(t, g.IsBiconnected())
}

func TestSingleBridgeIsNotBiconnected(t *testing.T) {
	g := New(2)
	g.AddEdge(0, 1, 1)
	require.False(t, g.IsBiconnected())
}

func TestExtractBiconnectedComponentsOnPathLeavesBridgesInRemainder(t *testing.T) {
	g := New(3)
	g.AddEdge(0, 1, 1)
	g.AddEdge(1, 2, 1)
	components := g.ExtractBiconnectedComponents()
	require.Empty(t, components)
	require.EqualValues(t, 2, g.NumEdges())
}

func TestExtractBiconnectedComponentsSplitsTriangleFromPendantEdge(t *testing.T) {
	g := New(4)
	g.AddEdge(0, 1, 1)
	g.AddEdge(1, 2, 1)
	g.AddEdge(0, 2, 1)
	g.AddEdge(2, 3, 1) // pendant bridge hanging off the triangle
	components := g.ExtractBiconnectedComponents()
	require.Len(t, components, 1)
	require.EqualValues(t, 3, components[0].NumEdges())
	require.EqualValues(t, 1, g.NumEdges()) // only the bridge remains
}

func TestCompactDropsDeadVerticesAndRenumbers(t *testing.T) {
	g := New(3)
	g.AddEdge(0, 1, 2)
	g.AddEdge(1, 2, 1)
	g.ContractEdge(0, 1)
	c := g.Compact()
	require.Equal(t, 2, c.NumVertices())
	require.EqualValues(t, 1, c.NumEdges())
}

func TestCloneIsIndependent(t *testing.T) {
	g := New(2)
	g.AddEdge(0, 1, 1)
	c := g.Clone()
	c.AddEdge(0, 1, 1)
	require.EqualValues(t, 1, g.Multiplicity(0, 1))
	require.EqualValues(t, 2, c.Multiplicity(0, 1))
}

func TestDisjointTrianglesNotConnected(t *testing.T) {
	g := New(6)
	g.AddEdge(0, 1, 1)
	g.AddEdge(1, 2, 1)
	g.AddEdge(0, 2, 1)
	g.AddEdge(3, 4, 1)
	g.AddEdge(4, 5, 1)
	g.AddEdge(3, 5, 1)
	require.False(t, g.connected(g.Vertices()))
	require.False(t, g.IsBiconnected())
}
