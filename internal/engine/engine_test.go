package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fine-structures/tuttex/internal/cache"
	"github.com/fine-structures/tuttex/internal/graph"
	"github.com/fine-structures/tuttex/internal/poly"
)

func newContext() *Context {
	return NewContext(cache.New(1<<16, 64))
}

func triangle() *graph.MultiGraph {
	g := graph.New(3)
	g.AddEdge(0, 1, 1)
	g.AddEdge(1, 2, 1)
	g.AddEdge(0, 2, 1)
	return g
}

func cycle(n int) *graph.MultiGraph {
	g := graph.New(n)
	for i := 0; i < n; i++ {
		g.AddEdge(graph.VtxID(i), graph.VtxID((i+1)%n), 1)
	}
	return g
}

func completeGraph(n int) *graph.MultiGraph {
	g := graph.New(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			g.AddEdge(graph.VtxID(i), graph.VtxID(j), 1)
		}
	}
	return g
}

func path(n int) *graph.MultiGraph {
	g := graph.New(n)
	for i := 0; i < n-1; i++ {
		g.AddEdge(graph.VtxID(i), graph.VtxID(i+1), 1)
	}
	return g
}

// spec §8 property 2: T(K_3) = y + x + x^2.
func TestTriangleMatchesClosedForm(t *testing.T) {
	ctx := newContext()
	p := Reduce(ctx, triangle(), ctx.freshID())
	require.Equal(t, "y + x + x^2", p.String())
}

// spec §8, worked example: T(C_5) = y + x + x^2 + x^3 + x^4.
func TestFiveCycleMatchesClosedForm(t *testing.T) {
	ctx := newContext()
	p := Reduce(ctx, cycle(5), ctx.freshID())
	require.Equal(t, "y + x + x^2 + x^3 + x^4", p.String())
}

// spec §8 property 3: T(tree with e edges) = x^e; P_4 has 3 edges.
func TestPathIsPureXPower(t *testing.T) {
	ctx := newContext()
	p := Reduce(ctx, path(4), ctx.freshID())
	require.Equal(t, "x^3", p.String())
}

// spec §8, worked example: T(two disjoint triangles) = (y+x+x^2)^2.
func TestDisjointTrianglesMultiplyClosedForms(t *testing.T) {
	g := graph.New(6)
	g.AddEdge(0, 1, 1)
	g.AddEdge(1, 2, 1)
	g.AddEdge(0, 2, 1)
	g.AddEdge(3, 4, 1)
	g.AddEdge(4, 5, 1)
	g.AddEdge(3, 5, 1)

	ctx := newContext()
	p := Reduce(ctx, g, ctx.freshID())

	single := reduceCycle(3)
	want := single.Mul(single)
	require.Equal(t, want.String(), p.String())
}

// spec §8, worked example: T(two parallel edges, a bigon) = y + x.
func TestBigonMatchesClosedForm(t *testing.T) {
	g := graph.New(2)
	g.AddEdge(0, 1, 2)
	ctx := newContext()
	p := Reduce(ctx, g, ctx.freshID())
	require.Equal(t, "y + x", p.String())
}

// spec §8 property 1: T(G) = T(π(G)) for any vertex permutation π.
func TestPermuteIsIsomorphismInvariant(t *testing.T) {
	base := completeGraph(4)

	ctxA := newContext()
	want := Reduce(ctxA, base.Clone(), ctxA.freshID())

	for _, ordering := range []VertexOrdering{
		VOrderNone, VOrderMinUnderlyingDegree, VOrderMaxUnderlyingDegree,
		VOrderMinDegree, VOrderMaxDegree,
	} {
		ctx := newContext()
		permuted := Permute(ctx, base.Clone(), ordering)
		got := Reduce(ctx, permuted, ctx.freshID())
		require.Equal(t, want.String(), got.String(), "ordering %v", ordering)
	}
}

func TestPermuteRandomIsAlsoIsomorphismInvariant(t *testing.T) {
	base := completeGraph(4)
	ctxA := newContext()
	want := Reduce(ctxA, base.Clone(), ctxA.freshID())

	ctx := newContext()
	permuted := Permute(ctx, base.Clone(), VOrderRandom)
	got := Reduce(ctx, permuted, ctx.freshID())
	require.Equal(t, want.String(), got.String())
}

// K_4's closed form, spec §8 property 2.
func TestCompleteGraphFourMatchesClosedForm(t *testing.T) {
	ctx := newContext()
	p := Reduce(ctx, completeGraph(4), ctx.freshID())
	require.Equal(t, "2y + 3y^2 + y^3 + 2x + 4xy + 3x^2 + x^3", p.String())
}

func TestCacheIsPopulatedForEligibleGraphs(t *testing.T) {
	ctx := newContext()
	ctx.SmallThreshold = 4
	Reduce(ctx, completeGraph(5), ctx.freshID())
	require.Positive(t, ctx.Cache.NumEntries())
}

func TestRepeatedReduceOnSameStructureHitsCache(t *testing.T) {
	ctx := newContext()
	ctx.SmallThreshold = 4
	Reduce(ctx, completeGraph(5), ctx.freshID())
	before := ctx.Cache.NumHits()
	Reduce(ctx, completeGraph(5), ctx.freshID())
	require.Greater(t, ctx.Cache.NumHits(), before)
}

// A triangle with a pendant bridge: T(G) = x * T(triangle) (spec §8
// property 6, a bridge contributes an exact factor of x).
func TestTriangleWithPendantBridgeFactorsOutX(t *testing.T) {
	g := graph.New(4)
	g.AddEdge(0, 1, 1)
	g.AddEdge(1, 2, 1)
	g.AddEdge(0, 2, 1)
	g.AddEdge(2, 3, 1)

	ctx := newContext()
	p := Reduce(ctx, g, ctx.freshID())
	want := poly.X(1).Mul(reduceCycle(3))
	require.Equal(t, want.String(), p.String())
}
