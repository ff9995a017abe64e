// SPDX-License-Identifier: Apache-2.0

package xstream

import "context"

// Void is a no-op Stream and Sink: Next always reports end-of-stream, and
// every Sink callback is a no-op. It is the default side sink for Sample
// (Split with a discarded side) and the default VoidStream/VoidSink plugin
// stages.
type Void struct{}

func (Void) Next() Result                { return EOFResult() }
func (Void) EmitArtifacts() [][]AnyArtifact { return nil }

func (Void) OnOpen() error                 { return nil }
func (Void) OnComponent(Component) error   { return nil }
func (Void) OnClose() error                { return nil }
func (Void) OnError(error)                 {}
func (Void) OnEmitArtifacts() []AnyArtifact { return nil }

var (
	_ Stream = Void{}
	_ Sink   = Void{}
)

// ConsumeVoid drains stream against a Void sink and returns its collected
// artifacts, discarding the stream's components. Useful for smoke-testing
// a producer chain in isolation.
func ConsumeVoid(ctx context.Context, stream Stream) ([][]AnyArtifact, error) {
	sink := Void{}
	if err := Consume(ctx, sink, stream); err != nil {
		return nil, err
	}
	return CollectArtifacts(stream, sink), nil
}
