// Package graph implements MultiGraph: an undirected multigraph with
// per-vertex adjacency maps carrying edge multiplicities, generalizing the
// teacher's fixed-arity triVtx/graphEdge representation (lib2x3/graph-state.go)
// to arbitrary-multiplicity graphs of arbitrary size.
package graph

import "sort"

// VtxID names a vertex within a single MultiGraph. Vertex domains are
// compacted to [0, N) by Compact; ids are never reused across that pass.
type VtxID int32

// MultiGraph is an undirected multigraph. Self-loops are tracked separately
// from ordinary adjacency so reduce_loops can strip them in one pass without
// walking every vertex's neighbour map.
type MultiGraph struct {
	adj   []map[VtxID]int32
	loops []int32
	alive []bool
}

// New returns a graph with n vertices (ids 0..n-1) and no edges.
func New(n int) *MultiGraph {
	g := &MultiGraph{
		adj:   make([]map[VtxID]int32, n),
		loops: make([]int32, n),
		alive: make([]bool, n),
	}
	for v := range g.adj {
		g.adj[v] = make(map[VtxID]int32)
		g.alive[v] = true
	}
	return g
}

// AddEdge adds mult parallel copies of the edge (u,v). u == v records a
// self-loop.
func (g *MultiGraph) AddEdge(u, v VtxID, mult int32) {
	if mult <= 0 {
		return
	}
	if u == v {
		g.loops[u] += mult
		return
	}
	g.adj[u][v] += mult
	g.adj[v][u] += mult
}

// RemoveEdge deletes every parallel copy of the edge between u and v (the
// delete branch of a delete-contract step, spec §4.F). A no-op if u == v;
// loops are removed via ReduceLoops instead.
func (g *MultiGraph) RemoveEdge(u, v VtxID) {
	if u == v {
		return
	}
	delete(g.adj[u], v)
	delete(g.adj[v], u)
}

// ContractEdge merges v into u: every other neighbour of v has its
// multiplicity to u summed with any existing u-neighbour multiplicity, and
// any self-loop already at v carries over onto u. The edge directly joining
// u and v is consumed by the contraction itself and produces no new
// self-loop -- for a multiplicity-k edge, the contribution of the other k-1
// parallel copies is supplied by the engine's explicit Y(0,k-1) factor
// (spec §4.F step 4), not manufactured here. v is left dead in the graph;
// Compact drops it.
func (g *MultiGraph) ContractEdge(u, v VtxID) {
	if u == v {
		return
	}
	delete(g.adj[u], v)
	for w, m := range g.adj[v] {
		if w == u {
			continue
		}
		g.adj[u][w] += m
		g.adj[w][u] += m
		delete(g.adj[w], v)
	}
	g.loops[u] += g.loops[v]
	g.loops[v] = 0
	g.adj[v] = map[VtxID]int32{}
	g.alive[v] = false
}

// ReduceLoops strips every self-loop from g and returns the total loop
// multiplicity removed (the y-exponent contributed by RF = Y(loops) in
// spec §4.F step 1).
func (g *MultiGraph) ReduceLoops() int32 {
	var total int32
	for v := range g.loops {
		total += g.loops[v]
		g.loops[v] = 0
	}
	return total
}

// Vertices returns the ids of all live vertices in ascending order.
func (g *MultiGraph) Vertices() []VtxID {
	out := make([]VtxID, 0, len(g.alive))
	for v, ok := range g.alive {
		if ok {
			out = append(out, VtxID(v))
		}
	}
	return out
}

// NumVertices returns the count of live vertices.
func (g *MultiGraph) NumVertices() int {
	n := 0
	for _, ok := range g.alive {
		if ok {
			n++
		}
	}
	return n
}

// Degree returns the multiplicity-weighted degree of v, excluding loops.
func (g *MultiGraph) Degree(v VtxID) int32 {
	var d int32
	for _, m := range g.adj[v] {
		d += m
	}
	return d
}

// UnderlyingDegree returns the number of distinct neighbours of v, ignoring
// multiplicity (deg* in spec §4.F's edge-selection cost table).
func (g *MultiGraph) UnderlyingDegree(v VtxID) int32 {
	return int32(len(g.adj[v]))
}

// LoopCount returns the current self-loop multiplicity at v.
func (g *MultiGraph) LoopCount(v VtxID) int32 {
	return g.loops[v]
}

// Multiplicity returns the number of parallel edges directly joining u and
// v (0 if none, and always 0 for u == v -- use LoopCount for that case).
func (g *MultiGraph) Multiplicity(u, v VtxID) int32 {
	if u == v {
		return 0
	}
	return g.adj[u][v]
}

// Neighbors returns the distinct neighbours of v in ascending order.
func (g *MultiGraph) Neighbors(v VtxID) []VtxID {
	out := make([]VtxID, 0, len(g.adj[v]))
	for w := range g.adj[v] {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// NumEdges returns the total edge multiplicity: distinct-pair multiplicities
// counted once each, plus every self-loop's multiplicity. The engine uses
// it as a tree remainder's x exponent, and the driver passes it as the
// edge count to the flow specialization.
func (g *MultiGraph) NumEdges() int32 {
	var total int32
	for v := range g.adj {
		if !g.alive[v] {
			continue
		}
		for w, m := range g.adj[v] {
			if w > VtxID(v) {
				total += m
			}
		}
		total += g.loops[v]
	}
	return total
}

// NumUnderlyingEdges returns the number of distinct vertex pairs with at
// least one edge between them, ignoring multiplicity and loops.
func (g *MultiGraph) NumUnderlyingEdges() int32 {
	var total int32
	for v := range g.adj {
		if !g.alive[v] {
			continue
		}
		for w := range g.adj[v] {
			if w > VtxID(v) {
				total++
			}
		}
	}
	return total
}

// Clone returns a deep copy, used by the engine before the contract branch
// mutates its own copy of the graph (spec §3 ownership rules: the delete
// branch mutates G in place, the contract branch operates on a clone).
func (g *MultiGraph) Clone() *MultiGraph {
	out := &MultiGraph{
		adj:   make([]map[VtxID]int32, len(g.adj)),
		loops: append([]int32(nil), g.loops...),
		alive: append([]bool(nil), g.alive...),
	}
	for v, m := range g.adj {
		cp := make(map[VtxID]int32, len(m))
		for w, mult := range m {
			cp[w] = mult
		}
		out.adj[v] = cp
	}
	return out
}

// Compact renumbers live vertices to a dense [0,N) domain, dropping dead
// ones left behind by contraction. Live isolated vertices are kept. The
// engine and the driver do not call it: Reduce works on graphs with dead
// vertices in place, and the driver hands the parsed graph to Reduce as is.
func (g *MultiGraph) Compact() *MultiGraph {
	oldToNew := make(map[VtxID]VtxID)
	var n int32
	for v, ok := range g.alive {
		if ok {
			oldToNew[VtxID(v)] = VtxID(n)
			n++
		}
	}
	out := New(int(n))
	for v, ok := range g.alive {
		if !ok {
			continue
		}
		nv := oldToNew[VtxID(v)]
		out.loops[nv] = g.loops[v]
		for w, m := range g.adj[v] {
			if w <= VtxID(v) {
				continue
			}
			nw, ok := oldToNew[w]
			if !ok {
				continue
			}
			out.AddEdge(nv, nw, m)
		}
	}
	return out
}

// IsTree reports whether g is a simple tree: connected, every edge has
// multiplicity 1, and no self-loops (spec §8 property 3: T(tree) = x^e).
func (g *MultiGraph) IsTree() bool {
	verts := g.Vertices()
	if len(verts) == 0 {
		return false
	}
	for _, v := range verts {
		if g.loops[v] != 0 {
			return false
		}
		for _, m := range g.adj[v] {
			if m != 1 {
				return false
			}
		}
	}
	return g.NumUnderlyingEdges() == int32(len(verts)-1) && g.connected(verts)
}

// IsMultitree reports whether g's underlying simple graph (multiplicities
// and loops ignored) is a tree: connected, with exactly N-1 distinct
// incident vertex pairs. Multiplicities on those pairs may be arbitrary.
func (g *MultiGraph) IsMultitree() bool {
	verts := g.Vertices()
	if len(verts) == 0 {
		return false
	}
	for _, v := range verts {
		if g.loops[v] != 0 {
			return false
		}
	}
	return g.NumUnderlyingEdges() == int32(len(verts)-1) && g.connected(verts)
}

// IsMulticycle reports whether g's underlying simple graph forms a single
// cycle: every vertex has underlying degree 2 and the graph is connected,
// with the n=2 special case that a multiplicity >= 2 edge between the only
// two vertices is itself a 2-cycle (a "bigon"), per the standard multigraph
// convention that a pair of parallel edges forms a closed walk.
func (g *MultiGraph) IsMulticycle() bool {
	verts := g.Vertices()
	n := len(verts)
	if n < 2 {
		return false
	}
	for _, v := range verts {
		if g.loops[v] != 0 {
			return false
		}
	}
	if n == 2 {
		return g.Multiplicity(verts[0], verts[1]) >= 2
	}
	for _, v := range verts {
		if g.UnderlyingDegree(v) != 2 {
			return false
		}
	}
	return g.connected(verts)
}

func (g *MultiGraph) connected(verts []VtxID) bool {
	if len(verts) == 0 {
		return false
	}
	seen := make(map[VtxID]bool, len(verts))
	stack := []VtxID{verts[0]}
	seen[verts[0]] = true
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for w := range g.adj[v] {
			if !seen[w] {
				seen[w] = true
				stack = append(stack, w)
			}
		}
	}
	return len(seen) == len(verts)
}

// NumComponents counts g's connected components, generalizing connected's
// single-component reachability walk to cover every vertex. The chromatic
// and flow specializations (spec §6's CP[n]/FP[n] formulas) need this
// count directly; the engine itself never calls it, since REDUCE only ever
// asks "is this one subgraph connected", not "how many pieces".
func (g *MultiGraph) NumComponents() int {
	verts := g.Vertices()
	seen := make(map[VtxID]bool, len(verts))
	n := 0
	for _, root := range verts {
		if seen[root] {
			continue
		}
		n++
		stack := []VtxID{root}
		seen[root] = true
		for len(stack) > 0 {
			v := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for w := range g.adj[v] {
				if !seen[w] {
					seen[w] = true
					stack = append(stack, w)
				}
			}
		}
	}
	return n
}
