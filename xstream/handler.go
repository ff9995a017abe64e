// SPDX-License-Identifier: Apache-2.0

package xstream

// Handler is a callback bundle plugged into an Observer. Each method may
// mutate, veto (for traces/events, by returning nil), or fail a component.
// Handlers never observe a component an earlier-registered handler already
// vetoed.
type Handler interface {
	OnMeta(Meta) (Meta, error)
	OnTrace(Trace) (*Trace, error)
	OnEvent(event Event, inTrace bool) (*Event, error)
}

// BaseHandler is a zero-value-usable passthrough implementation of Handler,
// meant to be embedded by concrete handlers that only care about one
// callback (mirroring the default trait methods of the handler this was
// ported from).
type BaseHandler struct{}

func (BaseHandler) OnMeta(m Meta) (Meta, error) { return m, nil }

func (BaseHandler) OnTrace(t Trace) (*Trace, error) { return &t, nil }

func (BaseHandler) OnEvent(e Event, _ bool) (*Event, error) { return &e, nil }

var _ Handler = BaseHandler{}
