// SPDX-License-Identifier: Apache-2.0

package flowgraph

import (
	"context"
	"log/slog"

	"github.com/pm4rs/xesflow/xstream"
	"github.com/pm4rs/xesflow/xstream/plugin"
)

// namedArtifact pairs a channel-namespace key with the artifact value
// carried under it.
type namedArtifact struct {
	Name     string
	Artifact xstream.AnyArtifact
}

// Pipe is a single linear chain: one source segment, zero or more
// intermediate stream segments, and a terminal sink segment. Graph.Sink
// defaults Sink to a VoidSink segment when nil.
type Pipe struct {
	Name    string    `yaml:"name" json:"name"`
	Source  Segment   `yaml:"source" json:"source"`
	Streams []Segment `yaml:"streams,omitempty" json:"streams,omitempty"`
	Sink    *Segment  `yaml:"sink,omitempty" json:"sink,omitempty"`
}

// NewPipe starts a pipe rooted at source.
func NewPipe(name string, source Segment) *Pipe {
	return &Pipe{Name: name, Source: source}
}

// Stream appends an intermediate segment.
func (p *Pipe) Stream(s Segment) *Pipe {
	p.Streams = append(p.Streams, s)
	return p
}

// WithSink sets the terminal segment.
func (p *Pipe) WithSink(s Segment) *Pipe {
	p.Sink = &s
	return p
}

// preparedPipe is a Pipe whose segments have all resolved their channel
// endpoints, ready to be built into a live stream/sink chain and run.
type preparedPipe struct {
	name     string
	registry *plugin.Registry
	segments []preparedSegment // source, streams..., sink, in that order
}

func (p Pipe) acquire(scns *streamNamespace, acns *artifactNamespace, reg *plugin.Registry) (preparedPipe, error) {
	sink := p.Sink
	if sink == nil {
		s := NewSegment("VoidSink")
		sink = &s
	}

	segments := make([]preparedSegment, 0, len(p.Streams)+2)

	src, err := p.Source.acquire(scns, acns)
	if err != nil {
		return preparedPipe{}, err
	}
	segments = append(segments, src)

	for _, s := range p.Streams {
		ps, err := s.acquire(scns, acns)
		if err != nil {
			return preparedPipe{}, err
		}
		segments = append(segments, ps)
	}

	ps, err := sink.acquire(scns, acns)
	if err != nil {
		return preparedPipe{}, err
	}
	segments = append(segments, ps)

	return preparedPipe{name: p.Name, registry: reg, segments: segments}, nil
}

// execute acquires every segment's input artifacts, builds the live
// stream/sink chain, drives it to completion, forwards each stage's
// emitted artifacts to its declared senders, and returns whichever
// received artifacts no segment's declaration actually consumed — a
// pass-through channel for artifacts a pipe merely relays.
func (pp preparedPipe) execute(ctx context.Context) ([]namedArtifact, error) {
	type received struct {
		keys   []string
		values []xstream.AnyArtifact
	}

	recvd := make([]received, len(pp.segments))
	acquireErr, acquireDur := timeit(func() error {
		for i := range pp.segments {
			keys := pp.segments[i].artifactReceiverKeys
			values, err := pp.segments[i].receiveArtifacts()
			if err != nil {
				return err
			}
			recvd[i] = received{keys: keys, values: values}
		}
		return nil
	})
	if acquireErr != nil {
		return nil, acquireErr
	}

	artifactPtrs := make([][]*xstream.AnyArtifact, len(pp.segments))
	declCounts := make([]int, len(pp.segments))
	for i, seg := range pp.segments {
		ptrs := make([]*xstream.AnyArtifact, len(recvd[i].values))
		for j := range recvd[i].values {
			ptrs[j] = &recvd[i].values[j]
		}
		artifactPtrs[i] = ptrs

		if entry, ok := pp.registry.Get(seg.name); ok {
			declCounts[i] = entry.Factory.Declaration.ArtifactCount()
		}
	}

	var stream xstream.Stream
	var sink xstream.Sink
	var leftovers []namedArtifact

	last := len(pp.segments) - 1
	for i, seg := range pp.segments {
		if i < last {
			s, err := seg.intoStream(pp.registry, stream, artifactPtrs[i])
			if err != nil {
				return nil, err
			}
			stream = s
		} else {
			s, err := seg.intoSink(pp.registry, artifactPtrs[i])
			if err != nil {
				return nil, err
			}
			sink = s
		}

		n := declCounts[i]
		if n > len(recvd[i].values) {
			n = len(recvd[i].values)
		}
		for j := n; j < len(recvd[i].values); j++ {
			leftovers = append(leftovers, namedArtifact{Name: recvd[i].keys[j], Artifact: recvd[i].values[j]})
		}
	}

	consumeErr, execDur := timeit(func() error {
		return xstream.Consume(ctx, sink, stream)
	})
	if consumeErr != nil {
		return nil, consumeErr
	}

	_, forwardDur := timeit(func() error {
		emissions := xstream.CollectArtifacts(stream, sink)
		for i, seg := range pp.segments {
			if i >= len(emissions) {
				break
			}
			batch := emissions[i]
			for j, snd := range seg.artifactSender {
				if j >= len(batch) {
					break
				}
				snd.Send(batch[j])
			}
		}
		return nil
	})

	slog.Debug("pipe executed", "name", pp.name,
		"acquire_artifacts", acquireDur, "consume", execDur, "forward_artifacts", forwardDur)

	return leftovers, nil
}
