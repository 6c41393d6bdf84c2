package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fine-structures/tuttex/internal/cache"
	"github.com/fine-structures/tuttex/internal/graph"
)

type recordingSink struct {
	kinds []NodeKind
}

func (r *recordingSink) Visit(nodeID uint32, kind NodeKind, g *graph.MultiGraph, matchID uint32) {
	r.kinds = append(r.kinds, kind)
}

func TestReduceReportsBranchKindsToSink(t *testing.T) {
	ctx := newContext()
	sink := &recordingSink{}
	ctx.Sink = sink
	Reduce(ctx, triangle(), ctx.freshID())
	require.Contains(t, sink.kinds, NodeMulticycle)
}

func TestReduceReportsCacheHitToSink(t *testing.T) {
	ctx := newContext()
	ctx.SmallThreshold = 4
	Reduce(ctx, completeGraph(5), ctx.freshID())

	sink := &recordingSink{}
	ctx.Sink = sink
	Reduce(ctx, completeGraph(5), ctx.freshID())
	require.Contains(t, sink.kinds, NodeCacheHit)
}

func TestNilContextSinkFieldDoesNotPanic(t *testing.T) {
	ctx := &Context{
		Cache:             cache.New(1<<12, 8),
		SmallThreshold:    5,
		ReduceMulticycles: true,
		ReduceMultiedges:  true,
	}
	require.NotPanics(t, func() {
		Reduce(ctx, triangle(), ctx.freshID())
	})
}
