// SPDX-License-Identifier: Apache-2.0

package xstream

import (
	"math/rand/v2"
	"time"
)

// Split routes each Trace/Event to the main stream or a side sink based on
// a per-item draw from a seeded PRNG: draws <= ratio stay on the main
// stream, the remainder go to the side sink. Meta is always forwarded to
// both. Sample is Split with a Void side sink — see NewSample.
type Split struct {
	inner Stream
	side  Sink
	ratio float64
	rng   *rand.Rand
	open  bool
}

// NewSplit wraps inner, routing to side by ratio. If seed is nil, the PRNG
// is seeded from wall-clock time (irreproducible but convenient for
// interactive use); pass a non-nil seed for reproducible splits.
func NewSplit(inner Stream, side Sink, ratio float64, seed *uint64) *Split {
	var s1, s2 uint64
	if seed != nil {
		s1, s2 = *seed, *seed^0x9e3779b97f4a7c15
	} else {
		now := uint64(time.Now().UnixNano())
		s1, s2 = now, now^0x9e3779b97f4a7c15
	}
	src := rand.NewChaCha8(expandSeed(s1, s2))
	return &Split{inner: inner, side: side, ratio: ratio, rng: rand.New(src)}
}

// NewSample is Split with a Void side sink, matching the Sample plugin
// stage's fixed-discard semantics.
func NewSample(inner Stream, ratio float64, seed *uint64) *Split {
	return NewSplit(inner, Void{}, ratio, seed)
}

func expandSeed(s1, s2 uint64) [32]byte {
	var seed [32]byte
	for i := 0; i < 16; i += 8 {
		for j := 0; j < 8; j++ {
			seed[i+j] = byte(s1 >> (8 * j))
		}
	}
	for i := 16; i < 32; i += 8 {
		for j := 0; j < 8; j++ {
			seed[i+j] = byte(s2 >> (8 * j))
		}
	}
	return seed
}

func (s *Split) Stream() Stream { return s.inner }

func (s *Split) Next() Result {
	if !s.open {
		s.open = true
		if err := s.side.OnOpen(); err != nil {
			return ErrResult(err)
		}
	}

	for {
		r := s.inner.Next()
		switch {
		case r.EOF:
			if err := s.side.OnClose(); err != nil {
				return ErrResult(err)
			}
			return r
		case r.Err != nil:
			s.side.OnError(r.Err)
			return r
		case r.Component.Kind == KindMeta:
			if err := s.side.OnComponent(r.Component); err != nil {
				return ErrResult(err)
			}
			return r
		default:
			draw := s.rng.Float64()
			if draw <= s.ratio {
				return r
			}
			if err := s.side.OnComponent(r.Component); err != nil {
				return ErrResult(err)
			}
			// side took this item; keep pulling for the next main candidate
		}
	}
}

func (s *Split) EmitArtifacts() [][]AnyArtifact {
	return emitArtifactsChain(s.inner, s.side.OnEmitArtifacts())
}

var (
	_ Stream = (*Split)(nil)
	_ Inner  = (*Split)(nil)
)
