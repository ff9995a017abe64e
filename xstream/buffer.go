// SPDX-License-Identifier: Apache-2.0

package xstream

// Buffer is a FIFO of Result envelopes. It acts as both a Sink (push
// components/errors) and a Stream (pop them back out in order), and is used
// both as a test fixture and as a memoized stream that can be replayed.
type Buffer struct {
	items []Result
}

// NewBuffer returns an empty Buffer.
func NewBuffer() *Buffer { return &Buffer{} }

func (b *Buffer) Len() int      { return len(b.items) }
func (b *Buffer) IsEmpty() bool { return len(b.items) == 0 }

// Push appends a Result directly; Sink methods below build on it.
func (b *Buffer) Push(r Result) { b.items = append(b.items, r) }

// Stream side.

func (b *Buffer) Next() Result {
	if len(b.items) == 0 {
		return EOFResult()
	}
	r := b.items[0]
	b.items = b.items[1:]
	return r
}

func (b *Buffer) EmitArtifacts() [][]AnyArtifact { return nil }

// Sink side.

func (b *Buffer) OnOpen() error { return nil }

func (b *Buffer) OnComponent(c Component) error {
	b.Push(ComponentResult(c))
	return nil
}

func (b *Buffer) OnClose() error { return nil }

func (b *Buffer) OnError(err error) { b.Push(ErrResult(err)) }

func (b *Buffer) OnEmitArtifacts() []AnyArtifact { return nil }

var (
	_ Stream = (*Buffer)(nil)
	_ Sink   = (*Buffer)(nil)
)
