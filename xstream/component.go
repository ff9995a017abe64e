// SPDX-License-Identifier: Apache-2.0

package xstream

// Scope names the target of a Global or ClassifierDecl: either the trace
// level or the event level of a log.
type Scope int

const (
	ScopeEvent Scope = iota
	ScopeTrace
)

func (s Scope) String() string {
	if s == ScopeTrace {
		return "trace"
	}
	return "event"
}

// ParseScope accepts exactly "trace" or "event" (missing defaults to
// ScopeEvent at the call site, not here — callers decide the default).
func ParseScope(s string) (Scope, error) {
	switch s {
	case "trace":
		return ScopeTrace, nil
	case "event":
		return ScopeEvent, nil
	default:
		return 0, XesErrorf("invalid scope %q, expected \"trace\" or \"event\"", s)
	}
}

// ExtensionDecl records one <extension> declaration from a log's Meta.
type ExtensionDecl struct {
	Name   string
	Prefix string
	URI    string
}

// Global records one <global> declaration: default attributes contributed
// for every component of the given Scope.
type Global struct {
	Scope      Scope
	Attributes Attributes
}

// Validate checks that c carries, for every attribute in g, an attribute of
// the same key and matching type, returning a KeyError or AttributeError on
// the first mismatch. Global declarations describe minimum shape, not full
// value equality.
func (g Global) Validate(c Component) error {
	attrs := c.AttributesOf()
	for _, want := range g.Attributes {
		got, err := attrs.GetOr(want.Key)
		if err != nil {
			return err
		}
		if got.Tag() != want.Value.Tag() {
			return ValidationErrorf("expected %q to be of type %s but got %s instead", want.Key, want.Value.Tag(), got.Tag())
		}
	}
	return nil
}

// ClassifierDecl records one <classifier> declaration: a name, the scope it
// applies to, and the space-separated token list of attribute keys that
// make up the classifier's identity.
type ClassifierDecl struct {
	Name  string
	Scope Scope
	Keys  string
}

// Meta is the header of a stream.
type Meta struct {
	Extensions  []ExtensionDecl
	Globals     []Global
	Classifiers []ClassifierDecl
	Attributes  Attributes
}

// Trace is an attribute mapping plus an ordered sequence of Events. Event
// order is semantically meaningful and preserved end-to-end by every
// non-filtering stage.
type Trace struct {
	Attributes Attributes
	Events     []Event
}

// Event is an attribute mapping.
type Event struct {
	Attributes Attributes
}

// ComponentKind discriminates the three variants a Component may hold.
type ComponentKind int

const (
	KindMeta ComponentKind = iota
	KindTrace
	KindEvent
)

func (k ComponentKind) String() string {
	switch k {
	case KindMeta:
		return "Meta"
	case KindTrace:
		return "Trace"
	case KindEvent:
		return "Event"
	default:
		return "Unknown"
	}
}

// Component is the tagged unit flowing through a pipeline: exactly one of
// Meta, Trace, or Event is populated, selected by Kind.
type Component struct {
	Kind  ComponentKind
	Meta  *Meta
	Trace *Trace
	Event *Event
}

func MetaComponent(m Meta) Component  { return Component{Kind: KindMeta, Meta: &m} }
func TraceComponent(t Trace) Component { return Component{Kind: KindTrace, Trace: &t} }
func EventComponent(e Event) Component { return Component{Kind: KindEvent, Event: &e} }

// AttributesOf returns the attribute mapping of whichever variant is
// populated.
func (c Component) AttributesOf() Attributes {
	switch c.Kind {
	case KindMeta:
		return c.Meta.Attributes
	case KindTrace:
		return c.Trace.Attributes
	case KindEvent:
		return c.Event.Attributes
	default:
		return nil
	}
}

// Children returns the attribute mappings of c's child components: a Trace's
// Events, or an empty slice for Meta/Event. Used by extension validators
// (e.g. the time extension's chronological-order check) that reason about a
// parent's ordered children regardless of concrete type.
func (c Component) Children() []Attributes {
	if c.Kind != KindTrace {
		return nil
	}
	out := make([]Attributes, len(c.Trace.Events))
	for i, e := range c.Trace.Events {
		out[i] = e.Attributes
	}
	return out
}
