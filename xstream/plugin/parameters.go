// SPDX-License-Identifier: Apache-2.0

package plugin

import (
	"log/slog"

	"github.com/pm4rs/xesflow/xstream"
)

// Parameters is the consumable view of a stage's inputs a Factory closure
// receives. Every Acquire* removes the value from the set so a stage that
// forgets to use something it declared shows up in WarnNonEmpty, and a
// stage that tries to acquire the same name twice gets a StreamError
// rather than a stale value.
type Parameters struct {
	attributes map[string]xstream.AttributeValue
	artifacts  map[string]*xstream.AnyArtifact
	streams    map[string]xstream.Stream
	sinks      map[string]xstream.Sink

	artifactsExtra []*xstream.AnyArtifact
	streamsExtra   []xstream.Stream
	sinksExtra     []xstream.Sink
}

func (p *Parameters) AcquireAttribute(key string) (xstream.AttributeValue, error) {
	v, ok := p.attributes[key]
	if !ok {
		return nil, xstream.StreamErrorf("no attribute %q", key)
	}
	delete(p.attributes, key)
	return v, nil
}

func (p *Parameters) AcquireArtifact(key string) (*xstream.AnyArtifact, error) {
	v, ok := p.artifacts[key]
	if !ok {
		return nil, xstream.StreamErrorf("no artifact %q", key)
	}
	delete(p.artifacts, key)
	return v, nil
}

// AcquireArtifactExtra drains every undeclared artifact slot.
func (p *Parameters) AcquireArtifactExtra() []*xstream.AnyArtifact {
	out := p.artifactsExtra
	p.artifactsExtra = nil
	return out
}

func (p *Parameters) AcquireStream(key string) (xstream.Stream, error) {
	v, ok := p.streams[key]
	if !ok {
		return nil, xstream.StreamErrorf("no stream %q", key)
	}
	delete(p.streams, key)
	return v, nil
}

// AcquireStreamExtra drains every undeclared stream slot.
func (p *Parameters) AcquireStreamExtra() []xstream.Stream {
	out := p.streamsExtra
	p.streamsExtra = nil
	return out
}

func (p *Parameters) AcquireSink(key string) (xstream.Sink, error) {
	v, ok := p.sinks[key]
	if !ok {
		return nil, xstream.StreamErrorf("no sink %q", key)
	}
	delete(p.sinks, key)
	return v, nil
}

// AcquireSinkExtra drains every undeclared sink slot.
func (p *Parameters) AcquireSinkExtra() []xstream.Sink {
	out := p.sinksExtra
	p.sinksExtra = nil
	return out
}

// WarnNonEmpty logs, at warn level, a count of every slot a Factory left
// unconsumed. It never fails the build — leftover parameters are a
// configuration smell, not a hard error.
func (p *Parameters) WarnNonEmpty() {
	if n := len(p.attributes); n > 0 {
		slog.Warn("plugin parameters: attributes remain unused", "count", n)
	}
	if n := len(p.artifacts) + len(p.artifactsExtra); n > 0 {
		slog.Warn("plugin parameters: artifacts remain unused", "count", n)
	}
	if n := len(p.streams) + len(p.streamsExtra); n > 0 {
		slog.Warn("plugin parameters: streams remain unused", "count", n)
	}
	if n := len(p.sinks) + len(p.sinksExtra); n > 0 {
		slog.Warn("plugin parameters: sinks remain unused", "count", n)
	}
}
