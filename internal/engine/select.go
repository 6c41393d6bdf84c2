package engine

import (
	"fmt"

	"github.com/fine-structures/tuttex/internal/graph"
)

// SelectedEdge is the (u, v, multiplicity) triple select_edge hands back to
// REDUCE's delete-contract step.
type SelectedEdge struct {
	U, V graph.VtxID
	Mult int32
}

// selectEdge picks the next edge to delete-contract, per spec §4.F's cost
// table. Grounded directly on tutte.cpp's select_edge<G>: iterate vertices
// in ascending id order, then each vertex's neighbours in ascending id
// order (skipping the (tail,head) duplicate of a pair already seen from the
// other end), scoring every candidate under the active heuristic and
// keeping the strict maximiser -- so ties go to whichever pair the scan
// reaches first, i.e. the earliest in ascending vertex order, matching
// spec's "ties broken by canonical index".
//
// g must not be a tree, a bigon, or empty of edges: those cases are
// all intercepted earlier in REDUCE (spec §4.F steps 3), and reaching this
// function without a qualifying edge is exactly the Internal error class
// spec §7 says must never occur under correct input.
func selectEdge(ctx *Context, g *graph.MultiGraph) (SelectedEdge, error) {
	verts := g.Vertices()
	v := int32(len(verts))

	if ctx.EdgeHeuristic == Random {
		total := g.NumEdges()
		if total == 0 {
			return SelectedEdge{}, fmt.Errorf("engine: select_edge found no edge in a %d-vertex graph", len(verts))
		}
		target := int32(ctx.Rand.Int63n(int64(total)))
		var running int32
		for _, head := range verts {
			for _, tail := range g.Neighbors(head) {
				if head >= tail {
					continue
				}
				count := g.Multiplicity(head, tail)
				if running+count > target {
					return edgeOf(g, ctx, head, tail), nil
				}
				running += count
			}
		}
		return SelectedEdge{}, fmt.Errorf("engine: random edge selection overran the edge count")
	}

	var best SelectedEdge
	bestCost := int64(-1)
	for _, head := range verts {
		headc := g.UnderlyingDegree(head)
		for _, tail := range g.Neighbors(head) {
			if head >= tail {
				continue
			}
			tailc := g.UnderlyingDegree(tail)

			if ctx.EdgeHeuristic == VertexOrder {
				return edgeOf(g, ctx, head, tail), nil
			}

			cost := edgeCost(ctx.EdgeHeuristic, v, headc, tailc, g.Degree(head), g.Degree(tail))
			if cost > bestCost {
				bestCost = cost
				best = edgeOf(g, ctx, head, tail)
			}
		}
	}

	if bestCost < 0 {
		return SelectedEdge{}, fmt.Errorf("engine: select_edge found no edge in a %d-vertex graph", len(verts))
	}
	return best, nil
}

func edgeOf(g *graph.MultiGraph, ctx *Context, u, v graph.VtxID) SelectedEdge {
	mult := g.Multiplicity(u, v)
	if !ctx.ReduceMultiedges {
		mult = 1
	}
	return SelectedEdge{U: u, V: v, Mult: mult}
}

// edgeCost implements the table in spec §4.F: deg* ignores multiplicity
// (headc/tailc), deg counts it (headd/taild).
func edgeCost(h EdgeHeuristic, v, headc, tailc, headd, taild int32) int64 {
	switch h {
	case MaximiseDegree:
		return int64(headc + tailc)
	case MaximiseMDegree:
		return int64(headd) * int64(taild)
	case MinimiseDegree:
		return int64(2*v) - int64(headc+tailc)
	case MinimiseSDegree:
		m := headc
		if tailc < m {
			m = tailc
		}
		return int64(v) - int64(m)
	case MinimiseMDegree:
		return int64(v)*int64(v) - int64(headd)*int64(taild)
	default:
		return 0
	}
}
