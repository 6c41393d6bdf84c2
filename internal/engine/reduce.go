package engine

import (
	"github.com/pkg/errors"

	"github.com/fine-structures/tuttex/internal/canon"
	"github.com/fine-structures/tuttex/internal/graph"
	"github.com/fine-structures/tuttex/internal/poly"
)

// Reduce computes the Tutte polynomial of g by delete-contract recursion,
// following spec §4.F's REDUCE state machine. The multicycle closed form
// is taken for simple cycles (when ctx.ReduceMulticycles is set) and for
// bigons (always); a multicycle with a parallel class on three or more
// vertices goes through delete-contract. mid is this frame's id, reported
// to ctx.Sink and used as the cache's stored graph_id (spec §9 flags
// that the source stores under the entry frame's id rather than the
// canonical-key origin's id; that behavior is kept here unchanged).
func Reduce(ctx *Context, g *graph.MultiGraph, mid uint32) poly.Poly {
	if ctx.deadlineExceeded() {
		ctx.timedOut = true
		return poly.Zero()
	}
	if ctx.Counters == nil {
		ctx.Counters = &Counters{}
	}
	ctx.Counters.Steps++

	loops := g.ReduceLoops()
	rf := poly.Y(loops)

	var key canon.Key
	haveKey := false
	if canonicalKeyEligible(ctx, g) {
		haveKey = true
		key = canon.Canonicalize(g).Key
		if p, matchID, ok := ctx.Cache.Lookup(key); ok {
			ctx.Counters.hitAt(g.NumVertices())
			ctx.visit(mid, NodeCacheHit, g, matchID)
			return p.Mul(rf)
		}
	}

	var p poly.Poly
	switch {
	case g.IsMulticycle() && (g.NumVertices() == 2 ||
		(ctx.ReduceMulticycles && g.NumEdges() == int32(g.NumVertices()))):
		ctx.Counters.Cycles++
		ctx.visit(mid, NodeMulticycle, g, 0)
		if g.NumVertices() == 2 {
			// bigon of k parallel edges: x + y + ... + y^(k-1)
			p = poly.X(1).Add(poly.YRange(1, g.NumEdges()-1))
		} else {
			p = reduceCycle(g.NumVertices())
		}

	case !g.IsBiconnected():
		components := g.ExtractBiconnectedComponents()
		if g.IsMultitree() {
			ctx.Counters.Trees++
		}
		if len(components) > 1 {
			ctx.Counters.DisBiComps++
		}
		ctx.visit(mid, NodeTreeSplit, g, 0)
		p = reduceTree(g)
		for _, b := range components {
			ctx.Counters.BiComps++
			p = p.Mul(Reduce(ctx, b, ctx.freshID()))
		}

	default:
		ctx.visit(mid, NodeDeleteContract, g, 0)
		edge, err := selectEdge(ctx, g)
		if err != nil {
			// spec §7: Internal error class, must never occur under correct
			// input. select_edge failing on a graph the biconnected/
			// multicycle checks already routed past has one is an invariant
			// violation, not a recoverable condition, so this unwinds as a
			// panic the driver recovers once per top-level graph.
			panic(errors.Wrap(ErrInternal, err.Error()))
		}
		full := g.Multiplicity(edge.U, edge.V)
		g2 := g.Clone()
		g.RemoveEdge(edge.U, edge.V)
		g2.ContractEdge(edge.U, edge.V)
		if rest := full - edge.Mult; rest > 0 {
			// only edge.Mult copies are reduced: the rest stay parallel in
			// the delete branch and become loops in the contract branch
			g.AddEdge(edge.U, edge.V, rest)
			g2.AddEdge(edge.U, edge.U, rest)
		}

		ldid, rdid := ctx.freshID(), ctx.freshID()
		del := Reduce(ctx, g, ldid)
		con := Reduce(ctx, g2, rdid)
		if edge.Mult > 1 {
			con = con.Mul(poly.YRange(0, edge.Mult-1))
		}
		p = del.Add(con)
	}

	if haveKey {
		if err := ctx.Cache.Store(key, p, mid); err != nil {
			panic(errors.Wrap(ErrCacheExhaustedDuringStore, err.Error()))
		}
	}
	return p.Mul(rf)
}
