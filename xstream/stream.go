// SPDX-License-Identifier: Apache-2.0

package xstream

// Stream is the pull-based producer side of the protocol: Next yields one
// Result per call until end-of-stream or error; EmitArtifacts returns the
// artifacts released by this stage and (if it wraps another stream) every
// stage upstream of it, ordered innermost-first.
type Stream interface {
	Next() Result
	EmitArtifacts() [][]AnyArtifact
}

// Inner is implemented by streams that wrap exactly one upstream stream.
// Streams with no upstream (e.g. a reader) do not implement it. Generic
// code walks the chain via a type assertion against Inner rather than a
// type switch over every concrete wrapper, matching the small-interface
// style used throughout this package.
type Inner interface {
	Stream() Stream
}

// emitArtifactsChain is the common EmitArtifacts body shared by every
// wrapping stream: recurse into the inner stream first, then append own.
func emitArtifactsChain(inner Stream, own []AnyArtifact) [][]AnyArtifact {
	var batches [][]AnyArtifact
	if inner != nil {
		batches = inner.EmitArtifacts()
	}
	return append(batches, own)
}
