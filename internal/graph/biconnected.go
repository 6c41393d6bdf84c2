package graph

import "sort"

// bcEdge is one entry on the edge stack ExtractBiconnectedComponents walks:
// a tree or back edge carrying its full multiplicity as it existed at the
// moment it was pushed.
type bcEdge struct {
	u, v VtxID
	mult int32
}

// IsBiconnected reports whether g, assumed to have at least one edge, is
// connected with no cut vertex. A two-vertex graph is biconnected only if
// it is a bigon (multiplicity >= 2): a single edge between two vertices is
// a bridge, the degenerate case of a cut vertex, not a 2-connected block.
// An isolated vertex is never biconnected.
func (g *MultiGraph) IsBiconnected() bool {
	verts := g.Vertices()
	switch {
	case len(verts) == 0:
		return false
	case len(verts) == 1:
		return false
	case len(verts) == 2:
		return g.Multiplicity(verts[0], verts[1]) >= 2
	}

	disc := make(map[VtxID]int, len(verts))
	low := make(map[VtxID]int, len(verts))
	timer := 0
	root := verts[0]
	rootChildren := 0
	isArt := false

	var dfs func(u, parent VtxID)
	dfs = func(u, parent VtxID) {
		timer++
		disc[u], low[u] = timer, timer
		for _, w := range g.Neighbors(u) {
			if _, seen := disc[w]; !seen {
				if u == root {
					rootChildren++
				}
				dfs(w, u)
				if low[w] < low[u] {
					low[u] = low[w]
				}
				if u != root && low[w] >= disc[u] {
					isArt = true
				}
			} else if w != parent && disc[w] < disc[u] && disc[w] < low[u] {
				low[u] = disc[w]
			}
		}
	}
	dfs(root, root)
	if rootChildren > 1 {
		isArt = true
	}
	if len(disc) != len(verts) {
		return false
	}
	return !isArt
}

// ExtractBiconnectedComponents removes every maximal 2-connected block
// spanning more than a single bridge edge out of g, returning each as its
// own subgraph on a freshly compacted vertex domain, and leaves g holding
// exactly the bridges that held those blocks together -- the tree skeleton
// reduceTree expects as its remainder (spec §4.F, "if G is not
// biconnected...").
//
// Grounded on main.cpp's cc_visit/cc_extract low-link DFS, generalized from
// its vertex stack -- sound only for simple graphs, where one edge is
// exactly one stack entry -- to an edge stack: a tree edge's full
// multiplicity is captured in the single stack entry pushed when it is
// first traversed, so a 2-vertex bigon comes out of the flush as one
// non-trivial component instead of being misread as a pair of bridges.
func (g *MultiGraph) ExtractBiconnectedComponents() []*MultiGraph {
	verts := g.Vertices()
	if len(verts) == 0 {
		return nil
	}

	disc := make(map[VtxID]int, len(verts))
	low := make(map[VtxID]int, len(verts))
	timer := 0
	var stack []bcEdge
	var blocks [][]bcEdge

	var dfs func(u, parent VtxID)
	dfs = func(u, parent VtxID) {
		timer++
		disc[u], low[u] = timer, timer
		for _, w := range g.Neighbors(u) {
			if _, seen := disc[w]; !seen {
				mark := len(stack)
				stack = append(stack, bcEdge{u, w, g.Multiplicity(u, w)})
				dfs(w, u)
				if low[w] < low[u] {
					low[u] = low[w]
				}
				if low[w] >= disc[u] {
					block := append([]bcEdge(nil), stack[mark:]...)
					stack = stack[:mark]
					blocks = append(blocks, block)
				}
			} else if w != parent && disc[w] < disc[u] {
				if disc[w] < low[u] {
					low[u] = disc[w]
				}
				stack = append(stack, bcEdge{u, w, g.Multiplicity(u, w)})
			}
		}
	}
	for _, v := range verts {
		if _, seen := disc[v]; !seen {
			dfs(v, v)
		}
	}

	var comps []*MultiGraph
	var bridges []bcEdge
	for _, block := range blocks {
		if len(block) == 1 && block[0].mult == 1 {
			bridges = append(bridges, block[0])
			continue
		}
		comps = append(comps, buildBlockSubgraph(block))
	}

	for _, v := range verts {
		for _, w := range g.Neighbors(v) {
			if w > v {
				g.RemoveEdge(v, w)
			}
		}
	}
	for _, b := range bridges {
		g.AddEdge(b.u, b.v, b.mult)
	}
	return comps
}

// buildBlockSubgraph materializes one flushed block of edges as its own
// MultiGraph, renumbered onto a dense [0,N) domain the same way Compact
// does, so the recursive Reduce call on it can canonicalize and cache it
// independently of the ids it held in the parent graph.
func buildBlockSubgraph(edges []bcEdge) *MultiGraph {
	vset := make(map[VtxID]bool, len(edges)*2)
	for _, e := range edges {
		vset[e.u] = true
		vset[e.v] = true
	}
	ids := make([]VtxID, 0, len(vset))
	for v := range vset {
		ids = append(ids, v)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	idx := make(map[VtxID]VtxID, len(ids))
	for i, v := range ids {
		idx[v] = VtxID(i)
	}
	sub := New(len(ids))
	for _, e := range edges {
		sub.AddEdge(idx[e.u], idx[e.v], e.mult)
	}
	return sub
}
