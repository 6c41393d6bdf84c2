package canon

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fine-structures/tuttex/internal/graph"
)

func triangle() *graph.MultiGraph {
	g := graph.New(3)
	g.AddEdge(0, 1, 1)
	g.AddEdge(1, 2, 1)
	g.AddEdge(0, 2, 1)
	return g
}

func TestIsomorphicRelabellingsShareAKey(t *testing.T) {
	a := triangle()
	b := graph.New(3)
	// Same triangle, vertices permuted.
	b.AddEdge(2, 0, 1)
	b.AddEdge(0, 1, 1)
	b.AddEdge(2, 1, 1)

	ra := Canonicalize(a)
	rb := Canonicalize(b)
	require.Equal(t, ra.Key, rb.Key)
}

func TestNonIsomorphicGraphsDiffer(t *testing.T) {
	tri := Canonicalize(triangle())

	path := graph.New(3)
	path.AddEdge(0, 1, 1)
	path.AddEdge(1, 2, 1)
	p := Canonicalize(path)

	require.NotEqual(t, tri.Key, p.Key)
}

func TestMultiplicityAffectsKeyEvenWithSameUnderlyingShape(t *testing.T) {
	// A single multiplicity-2 edge between 2 real vertices (1 aux vertex,
	// N_real=2) must differ from a 3-real-vertex simple path (N_real=3),
	// even though both expand to the same 3-vertex path shape.
	bigon := graph.New(2)
	bigon.AddEdge(0, 1, 2)

	path := graph.New(3)
	path.AddEdge(0, 1, 1)
	path.AddEdge(1, 2, 1)

	require.NotEqual(t, Canonicalize(bigon).Key, Canonicalize(path).Key)
}

func TestDisjointComponentsCanonicalizeConsistently(t *testing.T) {
	a := graph.New(6)
	a.AddEdge(0, 1, 1)
	a.AddEdge(1, 2, 1)
	a.AddEdge(0, 2, 1)
	a.AddEdge(3, 4, 1)
	a.AddEdge(4, 5, 1)
	a.AddEdge(3, 5, 1)

	b := graph.New(6)
	// Same two triangles, components swapped and relabelled.
	b.AddEdge(3, 4, 1)
	b.AddEdge(4, 5, 1)
	b.AddEdge(3, 5, 1)
	b.AddEdge(0, 1, 1)
	b.AddEdge(1, 2, 1)
	b.AddEdge(0, 2, 1)

	require.Equal(t, Canonicalize(a).Key, Canonicalize(b).Key)
}
