package engine

import "github.com/pkg/errors"

// ErrInternal marks an invariant violation inside REDUCE: select_edge
// finding no edge on a graph the biconnected/multicycle checks already
// said has one, or any other state the state machine should never reach
// under correct input (spec §7, Internal class). Reduce panics with a
// value wrapping this sentinel rather than threading an error return
// through every recursive call; the driver recovers once per top-level
// graph and inspects errors.Cause to decide whether the panic was one of
// these or a genuine programming bug it should re-panic on.
var ErrInternal = errors.New("engine: invariant violation")

// ErrCacheExhaustedDuringStore is what Reduce panics with when the cache
// refuses a Store call (spec §7, CacheExhausted class: "propagate; driver
// reports fatal"). Store's own error already wraps cache.ErrCacheExhausted;
// this sentinel is the engine-layer handle the driver's recover matches on.
var ErrCacheExhaustedDuringStore = errors.New("engine: cache store failed")
