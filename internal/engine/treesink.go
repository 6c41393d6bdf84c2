package engine

import "github.com/fine-structures/tuttex/internal/graph"

// NodeKind classifies the branch REDUCE took for one recursion frame, for
// consumption by a TreeSink (spec §6, "--tree"/"--full-tree"/"--xml-tree").
type NodeKind int

const (
	NodeCacheHit NodeKind = iota
	NodeMulticycle
	NodeTreeSplit
	NodeDeleteContract
)

func (k NodeKind) String() string {
	switch k {
	case NodeCacheHit:
		return "cache-hit"
	case NodeMulticycle:
		return "multicycle"
	case NodeTreeSplit:
		return "tree-split"
	case NodeDeleteContract:
		return "delete-contract"
	default:
		return "unknown"
	}
}

// TreeSink receives one event per Reduce recursion frame. The engine only
// ever calls into a sink, never the reverse (spec §6's "[EXPANSION] Tree
// dump" note): --tree/--full-tree/--xml-tree are driver-side concerns, kept
// out of the engine's own control flow.
//
// matchID is the id of the frame whose cached result this one reused, or 0
// on any branch that isn't a cache hit. Per spec §9's flagged source note,
// this is the frame id the entry was *stored* under, not necessarily the
// canonical-key origin -- the mislabelling is preserved, not fixed.
type TreeSink interface {
	Visit(nodeID uint32, kind NodeKind, g *graph.MultiGraph, matchID uint32)
}

// noopSink discards every event; it is Context's default so instrumenting
// a run is opt-in.
type noopSink struct{}

func (noopSink) Visit(uint32, NodeKind, *graph.MultiGraph, uint32) {}
