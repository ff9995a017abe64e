// SPDX-License-Identifier: Apache-2.0

package flowgraph

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	flow "github.com/pm4rs/xesflow"
	"github.com/pm4rs/xesflow/xstream"
	"github.com/pm4rs/xesflow/xstream/plugin"
)

// newFailingRegistry returns a registry whose "FlakyStream" stage always
// fails to build, alongside a "VoidSink" stage so a pipe using it can still
// be staged and acquired.
func newFailingRegistry() *plugin.Registry {
	reg := plugin.NewRegistry()
	reg.Register("FlakyStream", "always fails to build", plugin.NewStreamFactory(
		plugin.Declaration{},
		func(*plugin.Parameters) (xstream.Stream, error) {
			return nil, xstream.FlowErrorf("synthetic failure")
		},
	))
	reg.Register("VoidSink", "discards everything", plugin.NewSinkFactory(
		plugin.Declaration{}, func(*plugin.Parameters) (xstream.Sink, error) { return xstream.Void{}, nil },
	))
	return reg
}

func selfContainedGraph(t *testing.T) *Graph {
	t.Helper()
	g := NewGraph(nil)
	g.Source("log-stats", NewSegment("VoidStream"))
	_, err := g.Stream(NewSegment("Statistics"))
	require.NoError(t, err)
	_, err = g.Sink(NewSegment("VoidSink"))
	require.NoError(t, err)
	return g
}

func TestRunGraphsExecutesEachOnce(t *testing.T) {
	t.Parallel()

	a := selfContainedGraph(t)
	b := selfContainedGraph(t)

	err := RunGraphs(context.Background(), []NamedGraph{
		{Name: "a", Graph: a, Executor: SequentialExecutor{}},
		{Name: "b", Graph: b, Executor: SequentialExecutor{}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, a.Generation())
	require.Equal(t, 1, b.Generation())
}

func TestRunGraphsSkipsAlreadyExecuted(t *testing.T) {
	t.Parallel()

	g := selfContainedGraph(t)
	require.NoError(t, g.Execute(context.Background(), SequentialExecutor{}))
	require.Equal(t, 1, g.Generation())

	err := RunGraphs(context.Background(), []NamedGraph{{Name: "already-ran", Graph: g, Executor: SequentialExecutor{}}})
	require.NoError(t, err)
	require.Equal(t, 1, g.Generation(), "a graph that already produced a generation must not run again")
}

func newFailingGraph(t *testing.T) *Graph {
	t.Helper()
	g := NewGraph(newFailingRegistry())
	g.Source("always-fails", NewSegment("FlakyStream"))
	_, err := g.Sink(NewSegment("VoidSink"))
	require.NoError(t, err)
	return g
}

func TestRunGraphsConcurrentlyJoinsErrors(t *testing.T) {
	t.Parallel()

	ok := selfContainedGraph(t)
	broken := newFailingGraph(t)

	err := RunGraphsConcurrently(context.Background(), []NamedGraph{
		{Name: "ok", Graph: ok, Executor: SequentialExecutor{}},
		{Name: "broken", Graph: broken, Executor: SequentialExecutor{}},
	}, 0)
	require.Error(t, err)
	require.Equal(t, 1, ok.Generation(), "a sibling failure must not stop the other graph from completing")
}

func TestRunGraphWithRetryFailsOnFirstAttempt(t *testing.T) {
	t.Parallel()

	g := newFailingGraph(t)

	attempts := 0
	never := func(_ context.Context, n int, _ error) bool {
		attempts = n
		return false
	}

	err := RunGraphWithRetry(context.Background(), NamedGraph{
		Name: "flaky", Graph: g, Executor: SequentialExecutor{},
	}, 0, never)
	require.Error(t, err)
	require.Equal(t, 1, attempts)
}

func TestRunGraphWithRetrySecondAttemptFindsNothingLeftToRun(t *testing.T) {
	t.Parallel()

	// A failed Execute still drains g.Pipes, so a second attempt on the same
	// Graph has nothing left to schedule and succeeds trivially. This is the
	// non-idempotency hazard RunGraphWithRetry's doc comment warns about.
	g := newFailingGraph(t)

	err := RunGraphWithRetry(context.Background(), NamedGraph{
		Name: "flaky", Graph: g, Executor: SequentialExecutor{},
	}, 0, flow.UpTo(2))
	require.NoError(t, err)
}

func TestTracedExecuteRecordsGraphStep(t *testing.T) {
	t.Parallel()

	g := selfContainedGraph(t)
	var stream bytes.Buffer

	err := TracedExecute(context.Background(), NamedGraph{
		Name: "traced", Graph: g, Executor: SequentialExecutor{},
	}, &stream, time.Hour)
	require.NoError(t, err)
	require.Equal(t, 1, g.Generation())
	require.NotEmpty(t, stream.Bytes(), "flow.Traced streams at least one recorded event as it runs")
}

func TestSummarizeTraceHandlesNil(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, SummarizeTrace(context.Background(), nil, &buf))
	require.Contains(t, buf.String(), "no trace")
}

func TestSummarizeTraceWritesFlatText(t *testing.T) {
	t.Parallel()

	g := selfContainedGraph(t)
	ng := NamedGraph{Name: "x", Graph: g, Executor: SequentialExecutor{}}
	traced := flow.Traced(executeStep(ng))
	tr, err := traced(context.Background(), ng)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, SummarizeTrace(context.Background(), tr, &buf))
	require.NotEmpty(t, buf.String())
}
