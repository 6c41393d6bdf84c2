// Package canon computes CanonicalKey: a byte string that determines graph
// isomorphism for the multigraphs internal/graph produces, suitable for use
// as a cache lookup key (spec §4.D).
//
// The algorithm expands multi-edges into simple paths through auxiliary
// vertices, then runs an individualization-refinement canonical labelling
// (a simplified McKay-style search) over the expanded simple graph. This
// generalizes the teacher's fixed-alphabet canonicalisation in
// lib2x3/graph-state.go (`canonizeVtx`, a `sort.Slice` over a handful of
// vertex invariants because 2x3 graphs have only 10 possible vertex types)
// to arbitrary simple graphs, where the invariants themselves must be
// discovered by color refinement rather than looked up in a fixed table.
package canon

import (
	"encoding/binary"

	"github.com/fine-structures/tuttex/internal/graph"
)

// Key is an opaque, comparable byte string: Key(G1) == Key(G2) iff G1 and G2
// are isomorphic multigraphs (spec §4.D property (i)).
type Key string

// Result carries the canonical key computed for a graph.
type Result struct {
	Key Key
}

// expanded is the simple graph fed to the labelling search: g's multi-edges
// have been replaced by paths through fresh auxiliary vertices, so every
// edge here has multiplicity exactly 1 and there are no self-loops.
type expanded struct {
	n     int // total vertex count, real + auxiliary
	nReal int
	adj   [][]bool
}

// Canonicalize computes the canonical key for g. g must have had its
// self-loops already removed by the caller (REDUCE strips loops via
// reduce_loops before ever probing the cache).
func Canonicalize(g *graph.MultiGraph) Result {
	e := expand(g)
	order := canonicalOrder(e)
	key := encodeKey(e, order)
	return Result{Key: Key(key)}
}

// expand builds the simple auxiliary-vertex expansion of g: an edge of
// multiplicity k > 1 becomes a path of k edges through k-1 fresh degree-2
// vertices, so the labelling search below only ever has to deal with simple
// graphs (spec §4.D).
func expand(g *graph.MultiGraph) *expanded {
	verts := g.Vertices()
	nReal := len(verts)
	idx := make(map[graph.VtxID]int, nReal)
	for i, v := range verts {
		idx[v] = i
	}

	adjSet := make(map[[2]int]bool)
	n := nReal
	addSimpleEdge := func(a, b int) {
		if a == b {
			return
		}
		adjSet[[2]int{a, b}] = true
		adjSet[[2]int{b, a}] = true
	}

	seen := make(map[[2]graph.VtxID]bool)
	for _, u := range verts {
		for _, w := range g.Neighbors(u) {
			if u > w {
				continue
			}
			key := [2]graph.VtxID{u, w}
			if seen[key] {
				continue
			}
			seen[key] = true
			mult := g.Multiplicity(u, w)
			a, b := idx[u], idx[w]
			if mult == 1 {
				addSimpleEdge(a, b)
				continue
			}
			prev := a
			for i := int32(0); i < mult-1; i++ {
				aux := n
				n++
				addSimpleEdge(prev, aux)
				prev = aux
			}
			addSimpleEdge(prev, b)
		}
	}

	adj := make([][]bool, n)
	for i := range adj {
		adj[i] = make([]bool, n)
	}
	for pair := range adjSet {
		adj[pair[0]][pair[1]] = true
	}

	return &expanded{n: n, nReal: nReal, adj: adj}
}

// canonicalOrder returns a permutation of [0,n) -- the canonical rank of
// each vertex, real vertices always ranked before auxiliary ones -- chosen
// so that isomorphic expanded graphs always produce the same encoded key
// (encodeKey is a deterministic function of this order and e.adj).
func canonicalOrder(e *expanded) []int {
	initial := initialPartition(e)
	cells := refine(e, initial)
	best := search(e, cells, nil)
	return best
}

// initialPartition seeds color refinement with two cells -- real vertices,
// then auxiliary vertices -- so the two kinds can never mix in the final
// discrete order (needed so N_real vertices always occupy canonical
// positions [0, N_real), letting the header alone say which is which).
func initialPartition(e *expanded) [][]int {
	real := make([]int, 0, e.nReal)
	aux := make([]int, 0, e.n-e.nReal)
	for v := 0; v < e.n; v++ {
		if v < e.nReal {
			real = append(real, v)
		} else {
			aux = append(aux, v)
		}
	}
	cells := [][]int{real}
	if len(aux) > 0 {
		cells = append(cells, aux)
	}
	return cells
}

// refine repeatedly splits cells by each vertex's multiset of neighbour
// cell-indices until the partition is stable (1-dimensional
// Weisfeiler-Leman color refinement).
func refine(e *expanded, cells [][]int) [][]int {
	for {
		colorOf := make([]int, e.n)
		for c, cell := range cells {
			for _, v := range cell {
				colorOf[v] = c
			}
		}
		type sig struct {
			cell int
			key  string
		}
		next := make(map[int][]sig)
		changed := false
		newCells := make([][]int, 0, len(cells))
		for c, cell := range cells {
			if len(cell) == 1 {
				newCells = append(newCells, cell)
				continue
			}
			buckets := make(map[string][]int)
			var order []string
			for _, v := range cell {
				counts := make(map[int]int)
				for w := 0; w < e.n; w++ {
					if e.adj[v][w] {
						counts[colorOf[w]]++
					}
				}
				sigKey := neighborSignature(counts)
				if _, ok := buckets[sigKey]; !ok {
					order = append(order, sigKey)
				}
				buckets[sigKey] = append(buckets[sigKey], v)
			}
			if len(buckets) > 1 {
				changed = true
			}
			sortStrings(order)
			for _, k := range order {
				newCells = append(newCells, buckets[k])
			}
			_ = next[c]
		}
		cells = newCells
		if !changed {
			return cells
		}
	}
}

func neighborSignature(counts map[int]int) string {
	keys := make([]int, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sortInts(keys)
	buf := make([]byte, 0, len(keys)*8)
	var tmp [binary.MaxVarintLen64]byte
	for _, k := range keys {
		n := binary.PutVarint(tmp[:], int64(k))
		buf = append(buf, tmp[:n]...)
		n = binary.PutVarint(tmp[:], int64(counts[k]))
		buf = append(buf, tmp[:n]...)
	}
	return string(buf)
}

// search performs individualization-refinement: it individualizes each
// vertex of the first non-singleton cell in turn, refines, and recurses,
// keeping the discrete order whose encoded adjacency matrix is
// lexicographically smallest across every branch explored. best starts nil
// and accumulates the winning order across the whole search.
func search(e *expanded, cells [][]int, best []int) []int {
	target := -1
	for i, cell := range cells {
		if len(cell) > 1 {
			target = i
			break
		}
	}
	if target == -1 {
		order := make([]int, 0, e.n)
		for _, cell := range cells {
			order = append(order, cell[0])
		}
		if best == nil || lessMatrix(e, order, best) {
			return order
		}
		return best
	}
	for _, v := range cells[target] {
		individualized := individualize(cells, target, v)
		refined := refine(e, individualized)
		best = search(e, refined, best)
	}
	return best
}

// individualize splits cells[target] into {v} followed by the rest,
// forcing v into its own singleton cell ahead of its former cell-mates.
func individualize(cells [][]int, target, v int) [][]int {
	out := make([][]int, 0, len(cells)+1)
	for i, cell := range cells {
		if i != target {
			out = append(out, cell)
			continue
		}
		rest := make([]int, 0, len(cell)-1)
		for _, w := range cell {
			if w != v {
				rest = append(rest, w)
			}
		}
		out = append(out, []int{v})
		if len(rest) > 0 {
			out = append(out, rest)
		}
	}
	return out
}

// lessMatrix reports whether the adjacency matrix induced by order a
// (row-major, one bit per entry) sorts strictly before that induced by b.
func lessMatrix(e *expanded, a, b []int) bool {
	n := e.n
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			ai, aj := a[i], a[j]
			bi, bj := b[i], b[j]
			av, bv := e.adj[ai][aj], e.adj[bi][bj]
			if av != bv {
				return !av // false (0) sorts before true (1)
			}
		}
	}
	return false
}

// encodeKey renders the canonical byte key: header [N_real, N_total,
// num_edges] as varints, then the row-major bit-packed adjacency matrix
// under order. The permutation itself is not emitted: it depends on the
// input labelling, and the key must be the same for isomorphic graphs.
func encodeKey(e *expanded, order []int) []byte {
	numEdges := 0
	for i := 0; i < e.n; i++ {
		for j := i + 1; j < e.n; j++ {
			if e.adj[i][j] {
				numEdges++
			}
		}
	}

	var buf []byte
	buf = appendUvarint(buf, uint64(e.nReal))
	buf = appendUvarint(buf, uint64(e.n))
	buf = appendUvarint(buf, uint64(numEdges))

	var bit byte
	var bitCount int
	flush := func() {
		if bitCount > 0 {
			buf = append(buf, bit)
			bit, bitCount = 0, 0
		}
	}
	for i := 0; i < e.n; i++ {
		for j := 0; j < e.n; j++ {
			bit <<= 1
			if e.adj[order[i]][order[j]] {
				bit |= 1
			}
			bitCount++
			if bitCount == 8 {
				buf = append(buf, bit)
				bit, bitCount = 0, 0
			}
		}
	}
	if bitCount > 0 {
		bit <<= uint(8 - bitCount)
	}
	flush()
	return buf
}

// GraphSize decodes and returns N_real, the leading field of an encoded
// key, without touching the rest of it. The cache's eviction policy pins
// entries by real vertex count (spec §4.E, "entries representing graphs
// with N >= min_replace_size are pinned"), and this lets it read that count
// straight out of the key bytes it already stores, the same way the
// teacher's cache reads graph size directly out of a stored key rather than
// threading it through as a separate argument.
func GraphSize(k Key) int {
	n, _ := binary.Uvarint([]byte(k))
	return int(n)
}

func appendUvarint(buf []byte, v uint64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	return append(buf, tmp[:n]...)
}

func sortInts(s []int) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
