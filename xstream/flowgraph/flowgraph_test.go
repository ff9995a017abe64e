// SPDX-License-Identifier: Apache-2.0

package flowgraph

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/pm4rs/xesflow/xstream"
	"github.com/pm4rs/xesflow/xstream/plugin"
)

func TestSegmentBuilderIsImmutable(t *testing.T) {
	t.Parallel()

	base := NewSegment("Statistics")
	withAttr := base.Attribute("ratio", xstream.FloatValue(0.5))
	withStream := withAttr.AcquireStream("in").EmitStream("out")

	require.Empty(t, base.Attributes)
	require.Empty(t, base.StreamReceiver)
	require.Len(t, withAttr.Attributes, 1)
	require.Empty(t, withAttr.StreamReceiver, "mutating withStream must not affect its parent withAttr")
	require.Equal(t, []string{"in"}, withStream.StreamReceiver)
	require.Equal(t, []string{"out"}, withStream.StreamSender)
}

func TestSegmentAcquireDanglingEndpointFailsDependencies(t *testing.T) {
	t.Parallel()

	scns := newStreamNamespace()
	acns := newArtifactNamespace()
	scns.SetGeneration(1)
	acns.SetGeneration(1)

	s := NewSegment("Receiver").AcquireStream("never-sent")
	_, err := s.acquire(scns, acns)
	require.NoError(t, err, "acquiring a receiver end never fails by itself")

	// The sender end for "never-sent" is never acquired by anyone, so the
	// namespace must refuse to compute a dependency graph rather than
	// silently schedule a pipe that can only deadlock.
	_, err = scns.Dependencies()
	require.Error(t, err)
}

func TestGraphExecuteSingleSelfContainedPipe(t *testing.T) {
	t.Parallel()

	g := NewGraph(nil)
	_, err := g.Sink(NewSegment("VoidSink"))
	require.Error(t, err, "Sink before Source must fail")

	g = NewGraph(nil)
	g.Source("log-stats", NewSegment("VoidStream"))
	_, err = g.Stream(NewSegment("Statistics"))
	require.NoError(t, err)
	_, err = g.Sink(NewSegment("VoidSink"))
	require.NoError(t, err)

	require.NoError(t, g.Execute(context.Background(), SequentialExecutor{}))
	require.Equal(t, 1, g.Generation())
}

func TestGraphExecuteCrossPipeChannel(t *testing.T) {
	t.Parallel()

	g := NewGraph(nil)
	g.Source("producer", NewSegment("VoidStream"))
	_, err := g.Sink(NewSegment("Sender").EmitStream("relay"))
	require.NoError(t, err)

	g.Source("consumer", NewSegment("Receiver").AcquireStream("relay"))
	_, err = g.Sink(NewSegment("VoidSink"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, g.Execute(ctx, NewThreadExecutor(ctx)))
}

func TestGraphExecuteArtifactConsumedByDeclaration(t *testing.T) {
	t.Parallel()

	reg := plugin.NewRegistry()
	reg.Register("SeedSource", "consumes a seed artifact and streams nothing", plugin.NewStreamFactory(
		plugin.Declaration{}.Artifact("seed", "seed value"),
		func(p *plugin.Parameters) (xstream.Stream, error) {
			if _, err := p.AcquireArtifact("seed"); err != nil {
				return nil, err
			}
			return xstream.Void{}, nil
		},
	))
	reg.Register("VoidSink", "discards everything", plugin.NewSinkFactory(
		plugin.Declaration{}, func(*plugin.Parameters) (xstream.Sink, error) { return xstream.Void{}, nil },
	))

	g := NewGraph(reg)
	g.Artifacts["seed"] = xstream.NewArtifact("seed", 42)

	g.Source("consume-seed", NewSegment("SeedSource").AcquireArtifact("seed"))
	_, err := g.Sink(NewSegment("VoidSink"))
	require.NoError(t, err)

	require.NoError(t, g.Execute(context.Background(), SequentialExecutor{}))
	_, stillThere := g.Artifacts["seed"]
	require.False(t, stillThere, "an artifact a segment's declaration actually consumes should not remain in Artifacts")
}

func TestGraphExecutePassesThroughUndeclaredArtifact(t *testing.T) {
	t.Parallel()

	g := NewGraph(nil)
	g.Artifacts["tag"] = xstream.NewArtifact("tag", "unconsumed")

	g.Source("tap", NewSegment("VoidStream").AcquireArtifact("tag"))
	_, err := g.Sink(NewSegment("VoidSink"))
	require.NoError(t, err)

	require.NoError(t, g.Execute(context.Background(), SequentialExecutor{}))
	v, stillThere := g.Artifacts["tag"]
	require.True(t, stillThere, "an artifact no segment declaration consumes should pass back through")
	require.Equal(t, "tag", v.Kind)
}

func TestGraphExecuteDetectsCycle(t *testing.T) {
	t.Parallel()

	g := NewGraph(nil)
	g.Source("a", NewSegment("Receiver").AcquireStream("from-b"))
	_, err := g.Sink(NewSegment("Sender").EmitStream("from-a"))
	require.NoError(t, err)

	g.Source("b", NewSegment("Receiver").AcquireStream("from-a"))
	_, err = g.Sink(NewSegment("Sender").EmitStream("from-b"))
	require.NoError(t, err)

	err = g.Execute(context.Background(), NewThreadExecutor(context.Background()))
	require.Error(t, err)
}

func TestGraphYAMLRoundTrip(t *testing.T) {
	t.Parallel()

	g := NewGraph(nil)
	g.Source("main", NewSegment("Split").
		Attribute("ratio", xstream.FloatValue(0.25)).
		Attribute("tags", xstream.ListValue{
			{Key: "a", Value: xstream.StringValue("x")},
			{Key: "b", Value: xstream.IntValue(7)},
		}).
		EmitStream("side-out"))
	_, err := g.Sink(NewSegment("VoidSink"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, g.Save(&buf))

	loaded, err := LoadGraph(&buf, plugin.Default())
	require.NoError(t, err)
	require.Len(t, loaded.Pipes, 1)
	require.Equal(t, "main", loaded.Pipes[0].Name)
	require.Equal(t, "Split", loaded.Pipes[0].Source.Name)

	ratio := loaded.Pipes[0].Source.Attributes["ratio"]
	f, err := xstream.AsFloat(ratio)
	require.NoError(t, err)
	require.Equal(t, 0.25, f)

	tags := loaded.Pipes[0].Source.Attributes["tags"]
	list, err := xstream.AsList(tags)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "a", list[0].Key)

	require.Equal(t, []string{"side-out"}, loaded.Pipes[0].Source.StreamSender)
}

func TestSegmentYAMLMarshalsDateAttribute(t *testing.T) {
	t.Parallel()

	ts := time.Date(2023, 5, 4, 12, 0, 0, 0, time.UTC)
	s := NewSegment("VoidStream").Attribute("as-of", xstream.DateValue(ts))

	data, err := yaml.Marshal(s)
	require.NoError(t, err)

	var roundTripped Segment
	require.NoError(t, yaml.Unmarshal(data, &roundTripped))

	v := roundTripped.Attributes["as-of"]
	got, err := xstream.AsDate(v)
	require.NoError(t, err)
	require.True(t, ts.Equal(got))
}
