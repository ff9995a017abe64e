// SPDX-License-Identifier: Apache-2.0

package xstream

// Log is a static, fully materialized event log: the Meta header plus every
// Trace and top-level Event observed. A log that contains only events and
// no traces is, per IEEE 1849-2016, also called a stream.
type Log struct {
	Meta   Meta
	Traces []Trace
	Events []Event
}

// NewLog returns an empty Log.
func NewLog() *Log { return &Log{} }

// AttributesOf exposes the log's own attributes (those of its Meta) and the
// log's children for the same attribute-tree walk Component supports.
func (l *Log) AttributesOf() Attributes { return l.Meta.Attributes }

func (l *Log) Children() []Component {
	children := make([]Component, 0, len(l.Traces)+len(l.Events))
	for _, t := range l.Traces {
		children = append(children, TraceComponent(t))
	}
	for _, e := range l.Events {
		children = append(children, EventComponent(e))
	}
	return children
}

func (l *Log) OnOpen() error { return nil }

func (l *Log) OnComponent(c Component) error {
	switch c.Kind {
	case KindMeta:
		l.Meta = *c.Meta
	case KindTrace:
		l.Traces = append(l.Traces, *c.Trace)
	case KindEvent:
		l.Events = append(l.Events, *c.Event)
	default:
		return StateErrorf("log sink received a component of unknown kind %v", c.Kind)
	}
	return nil
}

func (l *Log) OnClose() error { return nil }

func (l *Log) OnError(error) {}

func (l *Log) OnEmitArtifacts() []AnyArtifact { return nil }

var _ Sink = (*Log)(nil)
