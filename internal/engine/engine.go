// Package engine implements REDUCE: the delete-contract recursion that
// computes the Tutte polynomial of a MultiGraph (spec §4.F). Chromatic and
// flow polynomials are not computed by a second recursion -- they are
// derived from the single Tutte result by the bivariate specializations in
// internal/poly (ChromaticFrom, FlowFrom), a deliberate simplification
// recorded in DESIGN.md.
//
// Grounded on original_source/tutte/tutte.cpp's tutte<G,P> and
// select_edge<G>: the global mutable cache/counters/heuristic-selector the
// source keeps are re-architected here as an explicit Context value
// threaded through every call, per spec §9's "global mutable state"
// redesign note.
package engine

import (
	"context"
	"math/rand"

	"github.com/fine-structures/tuttex/internal/cache"
	"github.com/fine-structures/tuttex/internal/graph"
	"github.com/fine-structures/tuttex/internal/poly"
)

// EdgeHeuristic selects how select_edge picks the next edge to
// delete-contract (spec §4.F, "Edge selection").
type EdgeHeuristic int

const (
	VertexOrder EdgeHeuristic = iota // default: first edge in ascending vertex-id order
	Random
	MaximiseDegree
	MaximiseMDegree
	MinimiseDegree
	MinimiseSDegree
	MinimiseMDegree
)

// VertexOrdering selects how Permute relabels a graph's vertices before the
// first call to Reduce (spec §4.F, "Vertex ordering on ingestion").
type VertexOrdering int

const (
	VOrderNone VertexOrdering = iota
	VOrderRandom
	VOrderMinUnderlyingDegree
	VOrderMaxUnderlyingDegree
	VOrderMinDegree
	VOrderMaxDegree
)

// Counters mirrors the source's process-global statistics
// (num_steps, num_bicomps, num_disbicomps, num_trees, num_cycles,
// cache_hit_sizes), now fields on an explicit value instead of globals.
type Counters struct {
	Steps         uint64
	BiComps       uint64
	DisBiComps    uint64
	Trees         uint64
	Cycles        uint64
	CacheHitSizes map[int]uint64
}

func (c *Counters) hitAt(n int) {
	if c.CacheHitSizes == nil {
		c.CacheHitSizes = make(map[int]uint64)
	}
	c.CacheHitSizes[n]++
}

// Context is the engine's explicit replacement for the source's process
// globals: the cache, the running counters, the cooperative timeout
// deadline, and the fixed-per-run heuristic selections (spec §5: "the
// cache, counters, timeout, and heuristic selector are process globals...
// re-architect as an explicit engine context value threaded through
// recursion").
//
// The cooperative timeout itself is a context.Context (spec §5's
// "idiomatic substitute" for the source's SIGALRM handler): the driver
// derives one with context.WithTimeout and Reduce polls its Err() at
// every recursion step rather than being preempted.
type Context struct {
	Cache *cache.Cache

	SmallThreshold    int
	EdgeHeuristic     EdgeHeuristic
	ReduceMulticycles bool
	ReduceMultiedges  bool

	Ctx  context.Context
	Rand *rand.Rand
	Sink TreeSink

	Counters *Counters

	nextID   uint32
	timedOut bool
}

// NewContext returns a Context with the source's defaults: small_threshold
// 5, vertex-order edge selection, both structural shortcuts enabled, no
// timeout (context.Background), and a fresh counters block.
func NewContext(c *cache.Cache) *Context {
	return &Context{
		Cache:             c,
		SmallThreshold:    5,
		EdgeHeuristic:     VertexOrder,
		ReduceMulticycles: true,
		ReduceMultiedges:  true,
		Ctx:               context.Background(),
		Rand:              rand.New(rand.NewSource(1)),
		Sink:              noopSink{},
		Counters:          &Counters{},
	}
}

func (ctx *Context) freshID() uint32 {
	ctx.nextID++
	return ctx.nextID
}

// NewID hands the driver a fresh frame id for the top-level Reduce call on
// each graph in a batch, the same counter Reduce itself uses internally for
// every recursive call.
func (ctx *Context) NewID() uint32 {
	return ctx.freshID()
}

// visit reports one recursion frame's branch decision to ctx.Sink, if any
// (a zero-value Context built by hand, as in tests, has no sink installed).
func (ctx *Context) visit(nodeID uint32, kind NodeKind, g *graph.MultiGraph, matchID uint32) {
	if ctx.Sink != nil {
		ctx.Sink.Visit(nodeID, kind, g, matchID)
	}
}

// deadlineExceeded reports whether ctx's cooperative timeout has fired
// (spec §5, cooperative timeout via a status flag checked at each
// recursion step, not a preemptive signal).
func (ctx *Context) deadlineExceeded() bool {
	return ctx.Ctx != nil && ctx.Ctx.Err() != nil
}

// HitTimeout reports whether any Reduce call on ctx returned early because
// the deadline had passed. The driver uses this to mark a result invalid
// rather than reporting a wrong answer as a real one (spec §7, Timeout:
// "return sentinel polynomial; driver marks result invalid").
func (ctx *Context) HitTimeout() bool {
	return ctx.timedOut
}

// Permute relabels g's vertices according to heuristic, returning a fresh
// graph (spec §4.F, "Vertex ordering on ingestion"). The Tutte polynomial
// is invariant under this relabelling (spec §8 property 1); it only
// changes the shape of the recursion tree select_edge later walks.
//
// Grounded on tutte.cpp's permute_graph: each heuristic sorts vertex ids by
// one of their degree statistics, then rebuilds the graph under the sorted
// order. V_RANDOM there is Fisher-Yates via random_shuffle; here it uses
// ctx.Rand so the permutation is reproducible given the Context's seed.
func Permute(ctx *Context, g *graph.MultiGraph, heuristic VertexOrdering) *graph.MultiGraph {
	verts := g.Vertices()
	order := append([]graph.VtxID(nil), verts...)

	switch heuristic {
	case VOrderNone:
		return g.Clone()
	case VOrderRandom:
		ctx.Rand.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	case VOrderMinUnderlyingDegree:
		sortByKey(order, func(v graph.VtxID) int32 { return g.UnderlyingDegree(v) }, true)
	case VOrderMaxUnderlyingDegree:
		sortByKey(order, func(v graph.VtxID) int32 { return g.UnderlyingDegree(v) }, false)
	case VOrderMinDegree:
		sortByKey(order, func(v graph.VtxID) int32 { return g.Degree(v) }, true)
	case VOrderMaxDegree:
		sortByKey(order, func(v graph.VtxID) int32 { return g.Degree(v) }, false)
	}

	rank := make(map[graph.VtxID]graph.VtxID, len(order))
	for i, v := range order {
		rank[v] = graph.VtxID(i)
	}

	out := graph.New(len(verts))
	seen := make(map[[2]graph.VtxID]bool)
	for _, u := range verts {
		out.AddEdge(rank[u], rank[u], g.LoopCount(u))
		for _, w := range g.Neighbors(u) {
			key := [2]graph.VtxID{u, w}
			rkey := [2]graph.VtxID{w, u}
			if seen[key] || seen[rkey] {
				continue
			}
			seen[key] = true
			out.AddEdge(rank[u], rank[w], g.Multiplicity(u, w))
		}
	}
	return out
}

func sortByKey(order []graph.VtxID, key func(graph.VtxID) int32, ascending bool) {
	for i := 1; i < len(order); i++ {
		for j := i; j > 0; j-- {
			a, b := key(order[j-1]), key(order[j])
			swap := a > b
			if !ascending {
				swap = a < b
			}
			if !swap {
				break
			}
			order[j-1], order[j] = order[j], order[j-1]
		}
	}
}

// reduceCycle is the closed-form Tutte polynomial of an n-vertex simple
// cycle, every multiplicity 1 (spec §8 property 4): x^(n-1) + x^(n-2) +
// ... + x + y. It does not account for parallel edges; Reduce handles
// bigons with their own closed form.
func reduceCycle(n int) poly.Poly {
	p := poly.Y(1)
	for i := int32(1); i < int32(n); i++ {
		p = p.Add(poly.X(i))
	}
	return p
}

// reduceTree is the closed-form Tutte polynomial of a tree (spec §8
// property 3): x^e, where e is the remainder's edge count.
func reduceTree(remainder *graph.MultiGraph) poly.Poly {
	return poly.X(remainder.NumEdges())
}

// canonicalKeyEligible reports whether g is large enough, and structurally
// interesting enough, to bother probing the cache (spec §4.F step 2: "if
// |V(G)| >= small_threshold and G is not a multitree").
func canonicalKeyEligible(ctx *Context, g *graph.MultiGraph) bool {
	if ctx.SmallThreshold <= 0 {
		return false
	}
	return g.NumVertices() >= ctx.SmallThreshold && !g.IsMultitree()
}
