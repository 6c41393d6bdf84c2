package main

import (
	"time"

	"github.com/plan-systems/klog"

	"github.com/fine-structures/tuttex/internal/engine"
)

// statusInterval mirrors tutte.cpp's static status_interval of 5 seconds.
const statusInterval = 5 * time.Second

// startProgressCollaborator is the idiomatic substitute for the source's
// SIGALRM handler/print_status pair: a ticker-driven goroutine external to
// the engine, reading ctx.Counters to log a rate snapshot every
// statusInterval while a single Reduce call runs. The engine itself never
// starts a goroutine; this is purely a --verbose diagnostic, so the benign
// race on the counters it reads (the same ones print_status read from an
// unsynchronized global) costs nothing but an occasionally stale number.
// The returned stop func must be called once Reduce returns.
func startProgressCollaborator(o *opts, ctx *engine.Context) func() {
	if !o.verbose {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(statusInterval)
		defer ticker.Stop()
		var lastSteps uint64
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				steps := ctx.Counters.Steps
				rate := float64(steps-lastSteps) / statusInterval.Seconds()
				klog.Infof("completed %d reduction steps at %.0f/s, cache has %d entries", steps, rate, ctx.Cache.NumEntries())
				lastSteps = steps
			}
		}
	}()
	return func() { close(done) }
}
