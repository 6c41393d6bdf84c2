// Command tuttex reads one multigraph per line from stdin and prints its
// Tutte polynomial (or, with --chromatic/--flow, a specialization of it),
// reproducing the driver's command-line surface (spec §6) over the engine
// built in internal/engine.
//
// Grounded on cmd/go2x3/main.go's klog setup for logging; the flag surface
// itself is cobra/pflag rather than the teacher's stdlib flag.FlagSet, per
// this project's own external-interface design.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"github.com/spf13/cobra"

	"github.com/fine-structures/tuttex/internal/bigint"
	"github.com/fine-structures/tuttex/internal/cache"
	"github.com/fine-structures/tuttex/internal/engine"
	"github.com/fine-structures/tuttex/internal/graph"
	"github.com/fine-structures/tuttex/internal/parser"
	"github.com/fine-structures/tuttex/internal/poly"
)

// opts collects every flag in spec §6's table. Plain fields rather than a
// cobra-generated struct, matching how small the surface actually is.
type opts struct {
	quiet, verbose bool
	info           bool

	timeoutSeconds int
	evalPoints     []string
	chromatic      bool
	flow           bool

	smallGraphs int
	ngraphs     int

	cacheSize        amountFlag
	cacheBuckets     int
	cacheReplacement float64
	cacheRandom      bool
	cacheStats       string
	cacheStatsGiven  bool
	noCaching        bool
	noReset          bool

	minimiseDegree  bool
	maximiseDegree  bool
	minimiseSDegree bool
	minimiseMDegree bool
	maximiseMDegree bool
	vertexOrder     bool
	randomEdge      bool

	randomOrdering  bool
	mindegOrdering  bool
	maxdegOrdering  bool
	minudegOrdering bool
	maxudegOrdering bool

	tree     bool
	fullTree bool
	xmlTree  bool
	withLines bool

	noMulticycles bool
	noMultiedges  bool
}

func main() {
	o := &opts{cacheSize: amountFlag{value: 256 * 1024 * 1024}}

	root := &cobra.Command{
		Use:     "tuttex",
		Short:   "Compute the Tutte, chromatic, or flow polynomial of a multigraph",
		Version: "1.0.0",
		RunE: func(cmd *cobra.Command, args []string) error {
			o.cacheStatsGiven = cmd.Flags().Changed("cache-stats")
			return run(o)
		},
		SilenceUsage: true,
	}
	bindFlags(root, o)

	if err := root.Execute(); err != nil {
		klog.Errorf("tuttex: %v", err)
		os.Exit(1)
	}
	klog.Flush()
}

func bindFlags(cmd *cobra.Command, o *opts) {
	f := cmd.Flags()
	f.BoolVar(&o.quiet, "quiet", false, "suppress diagnostics for malformed input lines")
	f.BoolVar(&o.verbose, "verbose", false, "enable verbose logging")
	f.BoolVar(&o.info, "info", false, "print a one-line program description and exit")

	f.IntVar(&o.timeoutSeconds, "timeout", 0, "cooperative timeout per graph, in seconds (0 = none)")
	f.StringArrayVar(&o.evalPoints, "eval", nil, "evaluate result at integer point x,y (repeatable)")
	f.BoolVar(&o.chromatic, "chromatic", false, "compute the chromatic polynomial")
	f.BoolVar(&o.flow, "flow", false, "compute the flow polynomial")

	f.IntVar(&o.smallGraphs, "small-graphs", 5, "cache-probe threshold")
	f.IntVar(&o.ngraphs, "ngraphs", 0, "truncate batch to at most n graphs (0 = no limit)")

	f.Var(&o.cacheSize, "cache-size", "arena capacity, bytes[K|M|G]")
	f.IntVar(&o.cacheBuckets, "cache-buckets", 1000000, "bucket table size")
	f.Float64Var(&o.cacheReplacement, "cache-replacement", 0.3, "eviction target fraction")
	f.BoolVar(&o.cacheRandom, "cache-random", false, "switch to random eviction")
	f.StringVar(&o.cacheStats, "cache-stats", "", "dump cache stats to file (or stderr if no file given)")
	f.Lookup("cache-stats").NoOptDefVal = "-"
	f.BoolVar(&o.noCaching, "no-caching", false, "disable caching (small-graphs threshold set to infinity)")
	f.BoolVar(&o.noReset, "no-reset", false, "retain cache across graphs in the batch")

	f.BoolVar(&o.minimiseDegree, "minimise-degree", false, "edge heuristic: minimise-degree")
	f.BoolVar(&o.maximiseDegree, "maximise-degree", false, "edge heuristic: maximise-degree")
	f.BoolVar(&o.minimiseSDegree, "minimise-sdegree", false, "edge heuristic: minimise-sdegree")
	f.BoolVar(&o.minimiseMDegree, "minimise-mdegree", false, "edge heuristic: minimise-mdegree")
	f.BoolVar(&o.maximiseMDegree, "maximise-mdegree", false, "edge heuristic: maximise-mdegree")
	f.BoolVar(&o.vertexOrder, "vertex-order", false, "edge heuristic: first edge in ascending vertex-id order (default)")
	f.BoolVar(&o.randomEdge, "random", false, "edge heuristic: random")

	f.BoolVar(&o.randomOrdering, "random-ordering", false, "vertex ordering: random")
	f.BoolVar(&o.mindegOrdering, "mindeg-ordering", false, "vertex ordering: ascending degree")
	f.BoolVar(&o.maxdegOrdering, "maxdeg-ordering", false, "vertex ordering: descending degree")
	f.BoolVar(&o.minudegOrdering, "minudeg-ordering", false, "vertex ordering: ascending underlying degree")
	f.BoolVar(&o.maxudegOrdering, "maxudeg-ordering", false, "vertex ordering: descending underlying degree")

	f.BoolVar(&o.tree, "tree", false, "dump the computation tree as text")
	f.BoolVar(&o.fullTree, "full-tree", false, "dump the computation tree, including cache hits, as text")
	f.BoolVar(&o.xmlTree, "xml-tree", false, "dump the computation tree as XML")
	f.BoolVar(&o.withLines, "with-lines", false, "delete-contract along degree-2 paths rather than single edges (accepted, currently a no-op)")

	f.BoolVar(&o.noMulticycles, "no-multicycles", false, "disable the multicycle closed-form shortcut")
	f.BoolVar(&o.noMultiedges, "no-multiedges", false, "disable the multi-edge reduction shortcut")
}

func run(o *opts) error {
	if o.verbose {
		setKlogVerbosity(2)
	}
	if o.info {
		fmt.Println("tuttex: Tutte/chromatic/flow polynomial calculator")
		return nil
	}

	edgeHeuristic, err := edgeHeuristicFrom(o)
	if err != nil {
		return err
	}
	vertexOrdering := vertexOrderingFrom(o)

	smallGraphs := o.smallGraphs
	if o.noCaching {
		smallGraphs = 0
	}

	c := cache.New(o.cacheSize.value, o.cacheBuckets)
	c.SetReplacement(o.cacheReplacement)
	if o.cacheRandom {
		c.SetRandomReplacement()
	}

	var sink engine.TreeSink
	switch {
	case o.xmlTree:
		sink = newXMLTreeSink(os.Stdout)
	case o.fullTree:
		sink = newTextTreeSink(os.Stdout, true)
	case o.tree:
		sink = newTextTreeSink(os.Stdout, false)
	}

	n := 0
	onBadInput := func(lineNo int, err error) {
		if !o.quiet {
			fmt.Fprintf(os.Stderr, "tuttex: line %d: %v\n", lineNo, err)
		}
	}

	lineNo := 0
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if o.ngraphs > 0 && n >= o.ngraphs {
			break
		}
		g, perr := parser.ParseLine(line)
		if perr != nil {
			onBadInput(lineNo, perr)
			continue
		}

		if !o.noReset {
			c = cache.New(o.cacheSize.value, o.cacheBuckets)
			c.SetReplacement(o.cacheReplacement)
			if o.cacheRandom {
				c.SetRandomReplacement()
			}
		}

		result, terr := computeOne(o, c, sink, g, smallGraphs, edgeHeuristic, vertexOrdering)
		if terr != nil {
			return terr
		}
		fmt.Println(result)
		n++
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "tuttex: reading input")
	}

	if flusher, ok := sink.(interface{ Flush() error }); ok {
		if err := flusher.Flush(); err != nil {
			return errors.Wrap(err, "tuttex: writing tree dump")
		}
	}

	if o.cacheStatsGiven {
		dumpCacheStats(o, c)
	}
	return nil
}

// computeOne runs a single graph through the engine, recovering from the
// panics Reduce raises for its Internal/CacheExhausted error classes (spec
// §7) so one bad graph aborts the batch with a diagnostic rather than
// taking the whole process down uncontrolled.
func computeOne(o *opts, c *cache.Cache, sink engine.TreeSink, g *graph.MultiGraph, smallGraphs int, edgeHeuristic engine.EdgeHeuristic, vertexOrdering engine.VertexOrdering) (result string, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		e, ok := r.(error)
		if !ok {
			panic(r) // not one of Reduce's own sentinel-wrapped panics; a real bug
		}
		switch errors.Cause(e) {
		case engine.ErrInternal:
			err = errors.Wrap(e, "tuttex: internal invariant violation, aborting batch")
		case engine.ErrCacheExhaustedDuringStore:
			err = errors.Wrap(e, "tuttex: cache exhausted, aborting batch")
		default:
			panic(r)
		}
	}()

	ctx := engine.NewContext(c)
	ctx.SmallThreshold = smallGraphs
	ctx.EdgeHeuristic = edgeHeuristic
	ctx.ReduceMulticycles = !o.noMulticycles
	ctx.ReduceMultiedges = !o.noMultiedges
	if sink != nil {
		ctx.Sink = sink
	}
	if o.timeoutSeconds > 0 {
		deadlineCtx, cancel := context.WithTimeout(context.Background(), time.Duration(o.timeoutSeconds)*time.Second)
		defer cancel()
		ctx.Ctx = deadlineCtx
	}

	vertices := g.NumVertices()
	edges := int(g.NumEdges())
	components := g.NumComponents()

	stopProgress := startProgressCollaborator(o, ctx)
	defer stopProgress()

	permuted := engine.Permute(ctx, g, vertexOrdering)
	tutte := engine.Reduce(ctx, permuted, ctx.NewID())
	if ctx.HitTimeout() {
		return fmt.Sprintf("timeout: graph not reduced within %ds", o.timeoutSeconds), nil
	}

	label, body := formatResult(o, tutte, vertices, edges, components)
	out := fmt.Sprintf("%s := %s :", label, body)
	if len(o.evalPoints) > 0 {
		evals, everr := evaluations(tutte, o.evalPoints)
		if everr != nil {
			return "", everr
		}
		out = out + " " + evals
	}
	return out, nil
}

func formatResult(o *opts, t poly.Poly, vertices, edges, components int) (label, body string) {
	switch {
	case o.chromatic:
		cp := poly.ChromaticFrom(t, vertices, components)
		return "CP[n]", cp.String()
	case o.flow:
		fp := poly.FlowFrom(t, edges, vertices, components)
		return "FP[n]", fp.String()
	default:
		return "TP[n]", t.String()
	}
}

func evaluations(t poly.Poly, points []string) (string, error) {
	var parts []string
	for _, raw := range points {
		xy := strings.SplitN(raw, ",", 2)
		if len(xy) != 2 {
			return "", errors.Errorf("tuttex: --eval=%q: expected x,y", raw)
		}
		x, err := parseNonNegative(xy[0])
		if err != nil {
			return "", err
		}
		y, err := parseNonNegative(xy[1])
		if err != nil {
			return "", err
		}
		v := t.Substitute(x, y)
		parts = append(parts, fmt.Sprintf("T(%s,%s)=%s", xy[0], xy[1], v.String()))
	}
	return strings.Join(parts, " "), nil
}

func parseNonNegative(s string) (bigint.Uint, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return bigint.Zero, errors.Wrapf(err, "tuttex: --eval point %q must be a non-negative integer", s)
	}
	return bigint.FromUint64(n), nil
}

func edgeHeuristicFrom(o *opts) (engine.EdgeHeuristic, error) {
	chosen := 0
	h := engine.VertexOrder
	set := func(v engine.EdgeHeuristic) {
		h = v
		chosen++
	}
	if o.minimiseDegree {
		set(engine.MinimiseDegree)
	}
	if o.maximiseDegree {
		set(engine.MaximiseDegree)
	}
	if o.minimiseSDegree {
		set(engine.MinimiseSDegree)
	}
	if o.minimiseMDegree {
		set(engine.MinimiseMDegree)
	}
	if o.maximiseMDegree {
		set(engine.MaximiseMDegree)
	}
	if o.vertexOrder {
		set(engine.VertexOrder)
	}
	if o.randomEdge {
		set(engine.Random)
	}
	if chosen > 1 {
		return h, errors.New("tuttex: at most one edge-selection heuristic flag may be given")
	}
	return h, nil
}

func vertexOrderingFrom(o *opts) engine.VertexOrdering {
	switch {
	case o.randomOrdering:
		return engine.VOrderRandom
	case o.mindegOrdering:
		return engine.VOrderMinDegree
	case o.maxdegOrdering:
		return engine.VOrderMaxDegree
	case o.minudegOrdering:
		return engine.VOrderMinUnderlyingDegree
	case o.maxudegOrdering:
		return engine.VOrderMaxUnderlyingDegree
	default:
		return engine.VOrderNone
	}
}

func dumpCacheStats(o *opts, c *cache.Cache) {
	out := os.Stderr
	if o.cacheStats != "" && o.cacheStats != "-" {
		f, err := os.Create(o.cacheStats)
		if err != nil {
			klog.Errorf("tuttex: cache-stats: %v", err)
			return
		}
		defer f.Close()
		out = f
	}
	fmt.Fprintf(out, "cache entries=%d hits=%d misses=%d collisions=%d size=%d/%d buckets=%d\n",
		c.NumEntries(), c.NumHits(), c.NumMisses(), c.NumCollisions(), c.Size(), c.Capacity(), c.NumBuckets())
}

// setKlogVerbosity mirrors cmd/go2x3/main.go's klog setup: a throwaway
// stdlib FlagSet just to give klog somewhere to register its own flags,
// then set directly rather than parsed from argv.
func setKlogVerbosity(v int) {
	fs := flag.NewFlagSet("", flag.ContinueOnError)
	klog.InitFlags(fs)
	fs.Set("logtostderr", "true")
	fs.Set("v", strconv.Itoa(v))
	klog.SetFormatter(&klog.FmtConstWidth{
		FileNameCharWidth: 16,
		UseColor:          true,
	})
}
