// SPDX-License-Identifier: Apache-2.0

// Package flowgraph assembles Segments into Pipes into a Graph: a
// declarative description of a (potentially branching, potentially
// parallel) event-log pipeline, resolved against a plugin.Registry and
// executed by an Executor. See SPEC_FULL.md §4.10 for the execution
// protocol this package implements.
package flowgraph

import (
	"github.com/pm4rs/xesflow/xstream"
	"github.com/pm4rs/xesflow/xstream/plugin"
)

// Segment is the configuration of a single stage: which plugin builds it,
// the attributes it's parameterized with, and the named channel endpoints
// it acquires or emits. The four endpoint lists hold channel-namespace key
// names, resolved to real Sender/Receiver values only when the owning
// Graph is executed.
type Segment struct {
	Name             string
	Attributes       map[string]xstream.AttributeValue
	StreamSender     []string
	StreamReceiver   []string
	ArtifactSender   []string
	ArtifactReceiver []string
}

// NewSegment names the plugin this segment instantiates.
func NewSegment(name string) Segment { return Segment{Name: name} }

// Attribute sets a single named attribute, overwriting any prior value.
func (s Segment) Attribute(key string, value xstream.AttributeValue) Segment {
	out := s.clone()
	if out.Attributes == nil {
		out.Attributes = map[string]xstream.AttributeValue{}
	}
	out.Attributes[key] = value
	return out
}

// EmitStream declares a sending stream channel endpoint named by key,
// wired to the "Sender" plugin's acquired sink, or spliced in as an extra
// positional sink for any plugin with unfilled sink slots.
func (s Segment) EmitStream(key string) Segment {
	out := s.clone()
	out.StreamSender = append(out.StreamSender, key)
	return out
}

// AcquireStream declares a receiving stream channel endpoint.
func (s Segment) AcquireStream(key string) Segment {
	out := s.clone()
	out.StreamReceiver = append(out.StreamReceiver, key)
	return out
}

// EmitArtifact declares a sending artifact channel endpoint: the named
// artifact this stage emits is made available to the graph (generation 0)
// or to another pipe that acquires it.
func (s Segment) EmitArtifact(key string) Segment {
	out := s.clone()
	out.ArtifactSender = append(out.ArtifactSender, key)
	return out
}

// AcquireArtifact declares a receiving artifact channel endpoint.
func (s Segment) AcquireArtifact(key string) Segment {
	out := s.clone()
	out.ArtifactReceiver = append(out.ArtifactReceiver, key)
	return out
}

func (s Segment) clone() Segment {
	out := s
	out.Attributes = make(map[string]xstream.AttributeValue, len(s.Attributes))
	for k, v := range s.Attributes {
		out.Attributes[k] = v
	}
	out.StreamSender = append([]string(nil), s.StreamSender...)
	out.StreamReceiver = append([]string(nil), s.StreamReceiver...)
	out.ArtifactSender = append([]string(nil), s.ArtifactSender...)
	out.ArtifactReceiver = append([]string(nil), s.ArtifactReceiver...)
	return out
}

// preparedSegment is a Segment whose channel endpoints have been resolved
// against the running scns/acns namespaces.
type preparedSegment struct {
	name                 string
	attributes           map[string]xstream.AttributeValue
	streamSender         []xstream.Sender[xstream.Result]
	streamReceiver       []xstream.Receiver[xstream.Result]
	artifactSender       []xstream.Sender[xstream.AnyArtifact]
	artifactReceiver     []xstream.Receiver[xstream.AnyArtifact]
	artifactReceiverKeys []string
}

func (s Segment) acquire(scns *streamNamespace, acns *artifactNamespace) (preparedSegment, error) {
	p := preparedSegment{name: s.Name, attributes: s.Attributes}

	for _, k := range s.StreamSender {
		snd, err := scns.AcquireSender(k)
		if err != nil {
			return preparedSegment{}, err
		}
		p.streamSender = append(p.streamSender, snd)
	}
	for _, k := range s.StreamReceiver {
		rcv, err := scns.AcquireReceiver(k)
		if err != nil {
			return preparedSegment{}, err
		}
		p.streamReceiver = append(p.streamReceiver, rcv)
	}
	for _, k := range s.ArtifactSender {
		snd, err := acns.AcquireSender(k)
		if err != nil {
			return preparedSegment{}, err
		}
		p.artifactSender = append(p.artifactSender, snd)
	}
	for _, k := range s.ArtifactReceiver {
		rcv, err := acns.AcquireReceiver(k)
		if err != nil {
			return preparedSegment{}, err
		}
		p.artifactReceiver = append(p.artifactReceiver, rcv)
		p.artifactReceiverKeys = append(p.artifactReceiverKeys, k)
	}

	return p, nil
}

// receiveArtifacts blocks on every acquired artifact receiver, in
// declaration order, and drains them.
func (p *preparedSegment) receiveArtifacts() ([]xstream.AnyArtifact, error) {
	out := make([]xstream.AnyArtifact, 0, len(p.artifactReceiver))
	for _, r := range p.artifactReceiver {
		v, ok := r.Recv()
		if !ok {
			return nil, xstream.FlowErrorf("unable to acquire artifact for segment %q", p.name)
		}
		out = append(out, v)
	}
	p.artifactReceiver = nil
	return out, nil
}

// intoStream resolves this segment's registry entry into a Stream, feeding
// it inner (if non-nil) followed by every acquired stream receiver as
// positional stream parameters, and every acquired stream sender as
// positional sink parameters.
func (p preparedSegment) intoStream(reg *plugin.Registry, inner xstream.Stream, artifacts []*xstream.AnyArtifact) (xstream.Stream, error) {
	entry, ok := reg.Get(p.name)
	if !ok {
		return nil, xstream.FlowErrorf("no such stream plugin: %q", p.name)
	}

	var streams []xstream.Stream
	if inner != nil {
		streams = append(streams, inner)
	}
	for _, r := range p.streamReceiver {
		streams = append(streams, xstream.StreamReceiver{Receiver: r})
	}

	var sinks []xstream.Sink
	for _, s := range p.streamSender {
		sinks = append(sinks, xstream.StreamSender{Sender: s})
	}

	return entry.Factory.BuildStream(p.attributes, artifacts, streams, sinks)
}

// intoSink mirrors intoStream for the terminal segment of a pipe.
func (p preparedSegment) intoSink(reg *plugin.Registry, artifacts []*xstream.AnyArtifact) (xstream.Sink, error) {
	entry, ok := reg.Get(p.name)
	if !ok {
		return nil, xstream.FlowErrorf("no such sink plugin: %q", p.name)
	}

	var streams []xstream.Stream
	for _, r := range p.streamReceiver {
		streams = append(streams, xstream.StreamReceiver{Receiver: r})
	}
	var sinks []xstream.Sink
	for _, s := range p.streamSender {
		sinks = append(sinks, xstream.StreamSender{Sender: s})
	}

	return entry.Factory.BuildSink(p.attributes, artifacts, streams, sinks)
}
