// SPDX-License-Identifier: Apache-2.0

package xstream

// Phase is the Observer's forward-only state: it starts at PhaseMeta and
// moves to PhaseBody on the first Trace, Event, or Meta it accepts, never
// back.
type Phase int

const (
	PhaseMeta Phase = iota
	PhaseBody
)

// Observer wraps an upstream Stream and threads every component through an
// ordered list of Handlers, enforcing that Meta (if present at all) is
// emitted exactly once and strictly before any Trace or Event.
type Observer struct {
	inner    Stream
	handlers []Handler
	phase    Phase
}

// NewObserver wraps inner with the given handlers, applied in the order
// given.
func NewObserver(inner Stream, handlers ...Handler) *Observer {
	return &Observer{inner: inner, handlers: handlers}
}

// Register appends a handler, to be applied after all previously
// registered handlers.
func (o *Observer) Register(h Handler) *Observer {
	o.handlers = append(o.handlers, h)
	return o
}

func (o *Observer) Stream() Stream { return o.inner }

// Next pulls from upstream until it produces a surviving component, an
// error, or end-of-stream; Traces/Events vetoed by every handler are
// skipped transparently rather than surfaced as empty results.
func (o *Observer) Next() Result {
	for {
		r := o.inner.Next()
		if r.EOF || r.Err != nil {
			return r
		}

		out, skip, err := o.onComponent(r.Component)
		if err != nil {
			return ErrResult(err)
		}
		if skip {
			continue
		}
		return ComponentResult(out)
	}
}

func (o *Observer) onComponent(c Component) (Component, bool, error) {
	switch c.Kind {
	case KindMeta:
		if o.phase != PhaseMeta {
			return Component{}, false, StateErrorf("meta component observed after phase has advanced to body")
		}
		meta := *c.Meta
		for _, h := range o.handlers {
			var err error
			meta, err = h.OnMeta(meta)
			if err != nil {
				return Component{}, false, err
			}
		}
		o.phase = PhaseBody
		return MetaComponent(meta), false, nil

	case KindTrace:
		o.phase = PhaseBody
		tracePtr := c.Trace
		for _, h := range o.handlers {
			t, err := h.OnTrace(*tracePtr)
			if err != nil {
				return Component{}, false, err
			}
			if t == nil {
				return Component{}, true, nil
			}
			tracePtr = t
		}

		events := make([]Event, 0, len(tracePtr.Events))
		for _, e := range tracePtr.Events {
			ev, drop, err := o.onEvent(e, true)
			if err != nil {
				return Component{}, false, err
			}
			if drop {
				continue
			}
			events = append(events, *ev)
		}
		result := *tracePtr
		result.Events = events
		return TraceComponent(result), false, nil

	case KindEvent:
		o.phase = PhaseBody
		ev, drop, err := o.onEvent(*c.Event, false)
		if err != nil {
			return Component{}, false, err
		}
		if drop {
			return Component{}, true, nil
		}
		return EventComponent(*ev), false, nil

	default:
		return Component{}, false, StateErrorf("unknown component kind")
	}
}

func (o *Observer) onEvent(e Event, inTrace bool) (*Event, bool, error) {
	ptr := &e
	for _, h := range o.handlers {
		out, err := h.OnEvent(*ptr, inTrace)
		if err != nil {
			return nil, false, err
		}
		if out == nil {
			return nil, true, nil
		}
		ptr = out
	}
	return ptr, false, nil
}

func (o *Observer) EmitArtifacts() [][]AnyArtifact {
	var own []AnyArtifact
	for _, h := range o.handlers {
		if a, ok := h.(interface{ OnEmitArtifacts() []AnyArtifact }); ok {
			own = append(own, a.OnEmitArtifacts()...)
		}
	}
	return emitArtifactsChain(o.inner, own)
}

var (
	_ Stream = (*Observer)(nil)
	_ Inner  = (*Observer)(nil)
)
