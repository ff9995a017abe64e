// SPDX-License-Identifier: Apache-2.0

package xstream

import "context"

// Sink is the consumer side of the protocol.
type Sink interface {
	OnOpen() error
	OnComponent(Component) error
	OnClose() error
	OnError(error)
	OnEmitArtifacts() []AnyArtifact
}

// Consume drives stream to exhaustion against sink: it opens the sink,
// pulls components in a loop, and closes the sink only if the stream ended
// without error. It is a free function rather than a method — matching the
// ambient flow package's preference for free-function drivers (Do,
// InSerial) over a method on an interface — so the consume loop itself can
// be wrapped in flow.WithLogging, flow.Retry, or flow.Traced decorators at
// the call site without an adapter type.
func Consume(ctx context.Context, sink Sink, stream Stream) error {
	if err := sink.OnOpen(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			err := ctx.Err()
			sink.OnError(err)
			return err
		default:
		}

		r := stream.Next()
		if r.EOF {
			break
		}
		if r.Err != nil {
			sink.OnError(r.Err)
			return r.Err
		}
		if err := sink.OnComponent(r.Component); err != nil {
			sink.OnError(err)
			return err
		}
	}

	return sink.OnClose()
}

// CollectArtifacts walks stream's chain (innermost-first) followed by
// sink's own artifacts, preserving stage order. It is deliberately separate
// from Consume so callers that only care about completion — most tests —
// can skip the walk.
func CollectArtifacts(stream Stream, sink Sink) [][]AnyArtifact {
	batches := stream.EmitArtifacts()
	return append(batches, sink.OnEmitArtifacts())
}
