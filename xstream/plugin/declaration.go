// SPDX-License-Identifier: Apache-2.0

// Package plugin implements a declarative registry of stream/sink stages:
// each stage declares the attributes, artifacts, streams, and sinks it
// needs, and a Factory builds the concrete xstream.Stream or xstream.Sink
// from a set of supplied Parameters, decoupling graph configuration from
// the Go types that implement each stage.
package plugin

import "github.com/pm4rs/xesflow/xstream"

type paramDecl struct {
	name        string
	description string
}

type attrDecl struct {
	name        string
	description string
	def         xstream.AttributeValue // nil means required
}

// Declaration describes the named attributes, artifacts, streams, and
// sinks a stage's Factory expects. Unnamed extras (named parameters beyond
// those declared) are still collected and reachable via the *Extra
// accessors on Parameters, matching stages that accept a variable number
// of upstream inputs (Duplicator's side sink, a merging sink's fan-in).
type Declaration struct {
	attributes []attrDecl
	artifacts  []paramDecl
	streams    []paramDecl
	sinks      []paramDecl
}

// Attribute declares a required named attribute.
func (d Declaration) Attribute(name, description string) Declaration {
	d.attributes = append(d.attributes, attrDecl{name: name, description: description})
	return d
}

// DefaultAttr declares an optional named attribute with a fallback value
// used when the caller doesn't supply one.
func (d Declaration) DefaultAttr(name, description string, def xstream.AttributeValue) Declaration {
	d.attributes = append(d.attributes, attrDecl{name: name, description: description, def: def})
	return d
}

// Artifact declares a named artifact slot.
func (d Declaration) Artifact(name, description string) Declaration {
	d.artifacts = append(d.artifacts, paramDecl{name: name, description: description})
	return d
}

// StreamParam declares a named upstream Stream slot.
func (d Declaration) StreamParam(name, description string) Declaration {
	d.streams = append(d.streams, paramDecl{name: name, description: description})
	return d
}

// SinkParam declares a named Sink slot.
func (d Declaration) SinkParam(name, description string) Declaration {
	d.sinks = append(d.sinks, paramDecl{name: name, description: description})
	return d
}

// ArtifactCount reports how many artifact slots d declares. A flow graph
// segment acquiring more artifact receivers than this feeds the surplus
// through unconsumed, for the pipe to hand back to its caller.
func (d Declaration) ArtifactCount() int { return len(d.artifacts) }

// make consumes the supplied values against d's declared slots, returning
// a Parameters with named slots populated and everything left over parked
// in the Extra buckets.
func (d Declaration) make(
	attributes map[string]xstream.AttributeValue,
	artifacts []*xstream.AnyArtifact,
	streams []xstream.Stream,
	sinks []xstream.Sink,
) (*Parameters, error) {
	attrs := make(map[string]xstream.AttributeValue, len(attributes))
	for k, v := range attributes {
		attrs[k] = v
	}

	p := &Parameters{
		attributes: map[string]xstream.AttributeValue{},
		artifacts:  map[string]*xstream.AnyArtifact{},
		streams:    map[string]xstream.Stream{},
		sinks:      map[string]xstream.Sink{},
	}

	for _, decl := range d.attributes {
		if v, ok := attrs[decl.name]; ok {
			p.attributes[decl.name] = v
			delete(attrs, decl.name)
			continue
		}
		if decl.def != nil {
			p.attributes[decl.name] = decl.def
			continue
		}
		return nil, xstream.StreamErrorf("attribute %q is missing", decl.name)
	}
	for k, v := range attrs {
		p.attributes[k] = v
	}

	i := 0
	for _, decl := range d.artifacts {
		if i >= len(artifacts) {
			return nil, xstream.StreamErrorf("%d. artifact %q is missing", i, decl.name)
		}
		p.artifacts[decl.name] = artifacts[i]
		i++
	}
	p.artifactsExtra = append(p.artifactsExtra, artifacts[i:]...)

	j := 0
	for _, decl := range d.streams {
		if j >= len(streams) {
			return nil, xstream.StreamErrorf("%d. stream %q is missing", j, decl.name)
		}
		p.streams[decl.name] = streams[j]
		j++
	}
	p.streamsExtra = append(p.streamsExtra, streams[j:]...)

	k := 0
	for _, decl := range d.sinks {
		if k >= len(sinks) {
			return nil, xstream.StreamErrorf("%d. sink %q is missing", k, decl.name)
		}
		p.sinks[decl.name] = sinks[k]
		k++
	}
	p.sinksExtra = append(p.sinksExtra, sinks[k:]...)

	return p, nil
}
