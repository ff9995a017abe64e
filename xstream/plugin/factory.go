// SPDX-License-Identifier: Apache-2.0

package plugin

import "github.com/pm4rs/xesflow/xstream"

// StreamFactory builds a Stream from its acquired Parameters.
type StreamFactory func(*Parameters) (xstream.Stream, error)

// SinkFactory builds a Sink from its acquired Parameters.
type SinkFactory func(*Parameters) (xstream.Sink, error)

// FactoryType discriminates which of StreamFactory/SinkFactory a Factory
// wraps — a stage builds exactly one kind, never both.
type FactoryType int

const (
	FactoryStream FactoryType = iota
	FactorySink
)

// Factory pairs a Declaration with the closure that turns acquired
// Parameters into a concrete Stream or Sink.
type Factory struct {
	Declaration Declaration
	Type        FactoryType
	StreamFn    StreamFactory
	SinkFn      SinkFactory
}

// NewStreamFactory builds a Factory for a stage that produces a Stream.
func NewStreamFactory(decl Declaration, fn StreamFactory) Factory {
	return Factory{Declaration: decl, Type: FactoryStream, StreamFn: fn}
}

// NewSinkFactory builds a Factory for a stage that produces a Sink.
func NewSinkFactory(decl Declaration, fn SinkFactory) Factory {
	return Factory{Declaration: decl, Type: FactorySink, SinkFn: fn}
}

// BuildStream acquires Parameters per f.Declaration and invokes f.StreamFn.
// It fails with a StreamError if f does not build a Stream.
func (f Factory) BuildStream(
	attributes map[string]xstream.AttributeValue,
	artifacts []*xstream.AnyArtifact,
	streams []xstream.Stream,
	sinks []xstream.Sink,
) (xstream.Stream, error) {
	if f.Type != FactoryStream {
		return nil, xstream.StreamErrorf("factory does not build a stream")
	}
	params, err := f.Declaration.make(attributes, artifacts, streams, sinks)
	if err != nil {
		return nil, err
	}
	out, err := f.StreamFn(params)
	params.WarnNonEmpty()
	return out, err
}

// BuildSink acquires Parameters per f.Declaration and invokes f.SinkFn. It
// fails with a StreamError if f does not build a Sink.
func (f Factory) BuildSink(
	attributes map[string]xstream.AttributeValue,
	artifacts []*xstream.AnyArtifact,
	streams []xstream.Stream,
	sinks []xstream.Sink,
) (xstream.Sink, error) {
	if f.Type != FactorySink {
		return nil, xstream.StreamErrorf("factory does not build a sink")
	}
	params, err := f.Declaration.make(attributes, artifacts, streams, sinks)
	if err != nil {
		return nil, err
	}
	out, err := f.SinkFn(params)
	params.WarnNonEmpty()
	return out, err
}
