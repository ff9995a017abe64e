// SPDX-License-Identifier: Apache-2.0

package flowgraph

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	flow "github.com/pm4rs/xesflow"
)

// NamedGraph pairs a Graph with the name it runs under for logging, tracing,
// and error attribution, and the Executor that should drive it.
type NamedGraph struct {
	Name     string
	Graph    *Graph
	Executor Executor
}

// unexecuted is a flow.Predicate that skips a graph whose generation counter
// shows it has already run, so a retried or re-submitted batch of graphs
// never re-executes one that already completed.
func unexecuted(_ context.Context, ng NamedGraph) (bool, error) {
	return ng.Graph.Generation() == 0, nil
}

// executeStep adapts a single NamedGraph's execution into a flow.Step, named
// and structured-logged the way every long-running xesflow job is run.
func executeStep(ng NamedGraph) flow.Step[NamedGraph] {
	run := func(ctx context.Context, ng NamedGraph) error {
		return flow.When(unexecuted, func(ctx context.Context, ng NamedGraph) error {
			return ng.Graph.Execute(ctx, ng.Executor)
		})(ctx, ng)
	}
	return flow.Named(ng.Name, flow.WithSlogging(slog.LevelInfo, run))
}

// sameBatch is the identity Extract used to turn a []NamedGraph state into
// the []NamedGraph slice flow.ForEach maps over.
func sameBatch(_ context.Context, graphs []NamedGraph) ([]NamedGraph, error) {
	return graphs, nil
}

// perGraphStep lifts a single named graph's flow.Step[NamedGraph] into a
// flow.Step[[]NamedGraph] that ignores the batch and runs just that graph.
func perGraphStep(ng NamedGraph) flow.Step[[]NamedGraph] {
	step := executeStep(ng)
	return func(ctx context.Context, _ []NamedGraph) error {
		return step(ctx, ng)
	}
}

// toSteps renders a batch of named graphs into a flow.StepsProvider, one
// step per graph, each keeping its own name and executor.
var toSteps = flow.ForEach(sameBatch, perGraphStep)

// RunGraphs executes a batch of named graphs one after another, stopping at
// the first failure. A graph that has already produced a generation (e.g.
// because it was included in a previous, partially-failed batch) is skipped.
func RunGraphs(ctx context.Context, graphs []NamedGraph) error {
	run := flow.InSerial(toSteps)
	return run(ctx, graphs)
}

// RunGraphsConcurrently runs every named graph's execution in its own
// goroutine, at most limit at a time (0 means unlimited), and joins every
// error rather than stopping at the first one.
func RunGraphsConcurrently(ctx context.Context, graphs []NamedGraph, limit int) error {
	run := flow.InParallelWith(flow.ParallelOptions{Limit: limit, JoinErrors: true}, toSteps)
	return run(ctx, graphs)
}

// RunGraphWithRetry executes a single graph, retrying on transient failure
// according to predicates (defaulting, per [flow.Retry], to three attempts
// of exponential backoff with full jitter). Each attempt is bounded by
// perAttempt; a zero perAttempt leaves attempts unbounded.
//
// Retrying is only safe for graphs whose sources are themselves idempotent:
// Graph.Execute deletes consumed entries from Graph.Artifacts as it sends
// them, so a graph that fails after partially draining its artifact map
// must not be retried as-is.
func RunGraphWithRetry(ctx context.Context, ng NamedGraph, perAttempt time.Duration, predicates ...flow.RetryPredicate) error {
	step := executeStep(ng)
	if perAttempt > 0 {
		step = flow.WithTimeout(perAttempt, step)
	}
	return flow.Retry(step, predicates...)(ctx, ng)
}

// TracedExecute runs a single graph under flow.Traced, streaming every
// recorded event as JSON lines to w as it happens, then logging a warning
// for each step that failed or ran longer than slow.
func TracedExecute(ctx context.Context, ng NamedGraph, w io.Writer, slow time.Duration) error {
	traced := flow.Traced(executeStep(ng), flow.WithStreamTo(w))
	tr, err := traced(ctx, ng)

	notable := tr.Filter(func(e flow.TraceEvent) bool {
		return e.Error != "" || e.Duration >= slow
	})
	for _, event := range notable.Events {
		if event.Error != "" {
			slog.Warn("graph step failed", "graph", ng.Name, "step", event.Names, "error", event.Error)
			continue
		}
		slog.Warn("graph step slow", "graph", ng.Name, "step", event.Names, "duration", event.Duration)
	}

	return err
}

// SummarizeTrace renders a trace produced by [TracedExecute] as flat,
// chronologically-ordered text suitable for attaching to a failure report.
func SummarizeTrace(ctx context.Context, tr *flow.Trace, w io.Writer) error {
	if tr == nil {
		_, err := fmt.Fprintln(w, "no trace recorded")
		return err
	}
	return flow.WriteFlatTextTo(w)(ctx, tr)
}
