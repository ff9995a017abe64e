// SPDX-License-Identifier: Apache-2.0

package xstream

// Sender and Receiver together give a single abstraction for both bounded
// (synchronous) and unbounded (asynchronous) single-producer/
// single-consumer channels: a bound of 0 yields an unbuffered (synchronous)
// channel, any bound > 0 yields a buffered (asynchronous up to capacity)
// one. Storing both ends as the same generic pair lets callers keep
// senders and receivers of different element types in homogeneous
// containers (see ChannelNameSpace).
type Sender[T any] struct {
	ch chan T
}

type Receiver[T any] struct {
	ch chan T
}

// NewChannel creates a connected Sender/Receiver pair with the given
// buffer bound (0 = unbuffered).
func NewChannel[T any](bound int) (Sender[T], Receiver[T]) {
	ch := make(chan T, bound)
	return Sender[T]{ch: ch}, Receiver[T]{ch: ch}
}

// Send pushes v to the channel, blocking if it is full (or unbuffered and
// no receiver is ready).
func (s Sender[T]) Send(v T) { s.ch <- v }

// Close closes the underlying channel. Closing without having sent a
// terminal sentinel value first signals an abnormal drop to the receiver:
// its next Recv reports ok=false.
func (s Sender[T]) Close() { close(s.ch) }

// Recv pops the next value; ok is false once the channel is closed and
// drained.
func (r Receiver[T]) Recv() (T, bool) {
	v, ok := <-r.ch
	return v, ok
}

// StreamSender adapts a Sender[Result] to the Sink interface: OnComponent
// sends a component result, OnClose sends the end-of-stream sentinel and
// closes the channel, OnError sends the error and closes the channel.
type StreamSender struct {
	Sender[Result]
}

func (s StreamSender) OnOpen() error               { return nil }
func (s StreamSender) OnComponent(c Component) error { s.Send(ComponentResult(c)); return nil }
func (s StreamSender) OnClose() error              { s.Send(EOFResult()); s.Close(); return nil }
func (s StreamSender) OnError(err error)           { s.Send(ErrResult(err)); s.Close() }
func (s StreamSender) OnEmitArtifacts() []AnyArtifact { return nil }

// StreamReceiver adapts a Receiver[Result] to the Stream interface: a
// channel closed without ever delivering the end-of-stream sentinel surfaces
// as a ChannelError, distinguishing an orderly close from a dropped peer.
type StreamReceiver struct {
	Receiver[Result]
}

func (r StreamReceiver) Next() Result {
	v, ok := r.Recv()
	if !ok {
		return ErrResult(ChannelErrorf("receive from a sender that was dropped without sending end-of-stream"))
	}
	return v
}

func (r StreamReceiver) EmitArtifacts() [][]AnyArtifact { return nil }

var (
	_ Sink   = StreamSender{}
	_ Stream = StreamReceiver{}
)

// ArtifactSender/ArtifactReceiver carry named artifacts between pipes at
// graph boundaries.
type ArtifactSender = Sender[AnyArtifact]
type ArtifactReceiver = Receiver[AnyArtifact]
