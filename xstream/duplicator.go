// SPDX-License-Identifier: Apache-2.0

package xstream

// Duplicator forwards its upstream while replaying every component, error,
// and lifecycle event to a side sink. The side sink is opened lazily on the
// first Next call, not eagerly in the constructor, so a Duplicator that is
// never pulled never opens its side. Propagation order is side-sink-first,
// then downstream — matching the original tee semantics.
type Duplicator struct {
	inner Stream
	side  Sink
	open  bool
}

func NewDuplicator(inner Stream, side Sink) *Duplicator {
	return &Duplicator{inner: inner, side: side}
}

func (d *Duplicator) Stream() Stream { return d.inner }

func (d *Duplicator) Next() Result {
	if !d.open {
		d.open = true
		if err := d.side.OnOpen(); err != nil {
			return ErrResult(err)
		}
	}

	r := d.inner.Next()
	switch {
	case r.EOF:
		if err := d.side.OnClose(); err != nil {
			return ErrResult(err)
		}
	case r.Err != nil:
		d.side.OnError(r.Err)
	default:
		if err := d.side.OnComponent(r.Component); err != nil {
			return ErrResult(err)
		}
	}
	return r
}

func (d *Duplicator) EmitArtifacts() [][]AnyArtifact {
	return emitArtifactsChain(d.inner, d.side.OnEmitArtifacts())
}

// IntoSink releases the side sink, e.g. after the duplicator has been fully
// consumed, so callers can inspect or further drive it directly.
func (d *Duplicator) IntoSink() Sink { return d.side }

var (
	_ Stream = (*Duplicator)(nil)
	_ Inner  = (*Duplicator)(nil)
)
