// SPDX-License-Identifier: Apache-2.0

package plugin

import (
	"github.com/pm4rs/xesflow/xstream"
	"github.com/pm4rs/xesflow/xstream/extension"
)

// registerStandardStages installs every built-in stage into r. XES file
// I/O and log materialization stages are added by the xes and logsink
// packages respectively, via RegisterXesStages/RegisterLogStage, since
// wiring them here would make this leaf package depend on them.
func registerStandardStages(r *Registry) {
	r.Register("VoidSink", "discards everything written to it and yields nothing", NewSinkFactory(
		Declaration{}, func(*Parameters) (xstream.Sink, error) { return xstream.Void{}, nil },
	))

	r.Register("VoidStream", "an empty stream, useful as a placeholder source", NewStreamFactory(
		Declaration{}, func(*Parameters) (xstream.Stream, error) { return xstream.Void{}, nil },
	))

	r.Register("Duplicator", "tees every component to a side sink while passing it through", NewStreamFactory(
		Declaration{}.StreamParam("inner", "the stream to duplicate").SinkParam("side", "the sink receiving every component"),
		func(p *Parameters) (xstream.Stream, error) {
			inner, err := p.AcquireStream("inner")
			if err != nil {
				return nil, err
			}
			side, err := p.AcquireSink("side")
			if err != nil {
				return nil, err
			}
			return xstream.NewDuplicator(inner, side), nil
		},
	))

	r.Register("Statistics", "counts traces and events as they pass through", NewStreamFactory(
		Declaration{}.StreamParam("inner", "the stream to observe"),
		func(p *Parameters) (xstream.Stream, error) {
			inner, err := p.AcquireStream("inner")
			if err != nil {
				return nil, err
			}
			return xstream.NewObserver(inner, xstream.NewStatistics()), nil
		},
	))

	r.Register("Validator", "checks a stream's meta, globals, and extensions for consistency", NewStreamFactory(
		Declaration{}.StreamParam("inner", "the stream to validate"),
		func(p *Parameters) (xstream.Stream, error) {
			inner, err := p.AcquireStream("inner")
			if err != nil {
				return nil, err
			}
			v := xstream.NewValidator(extension.Default(), nil)
			return xstream.NewObserver(inner, v), nil
		},
	))

	r.Register("Repair", "strips whitespace from classifier names", NewStreamFactory(
		Declaration{}.StreamParam("inner", "the stream to repair"),
		func(p *Parameters) (xstream.Stream, error) {
			inner, err := p.AcquireStream("inner")
			if err != nil {
				return nil, err
			}
			return xstream.NewObserver(inner, xstream.NewRepair()), nil
		},
	))

	r.Register("Split", "routes a fraction of traces/events to a side sink", NewStreamFactory(
		Declaration{}.
			StreamParam("inner", "the stream to split").
			SinkParam("side", "the sink receiving the complementary fraction").
			DefaultAttr("ratio", "fraction of items kept on the main stream", xstream.FloatValue(0.5)).
			DefaultAttr("seed", "PRNG seed for reproducible splits; omit for a time-seeded split", xstream.IntValue(-1)),
		func(p *Parameters) (xstream.Stream, error) {
			inner, err := p.AcquireStream("inner")
			if err != nil {
				return nil, err
			}
			side, err := p.AcquireSink("side")
			if err != nil {
				return nil, err
			}
			ratio, seed, err := acquireRatioAndSeed(p)
			if err != nil {
				return nil, err
			}
			return xstream.NewSplit(inner, side, ratio, seed), nil
		},
	))

	r.Register("Sample", "discards a fraction of traces/events", NewStreamFactory(
		Declaration{}.
			StreamParam("inner", "the stream to sample").
			DefaultAttr("ratio", "fraction of items kept", xstream.FloatValue(0.5)).
			DefaultAttr("seed", "PRNG seed for reproducible sampling; omit for a time-seeded sample", xstream.IntValue(-1)),
		func(p *Parameters) (xstream.Stream, error) {
			inner, err := p.AcquireStream("inner")
			if err != nil {
				return nil, err
			}
			ratio, seed, err := acquireRatioAndSeed(p)
			if err != nil {
				return nil, err
			}
			return xstream.NewSample(inner, ratio, seed), nil
		},
	))

	r.Register("Sender", "sending endpoint of a stream channel", NewSinkFactory(
		Declaration{}.SinkParam("emit", "the channel-backed sink to forward to"),
		func(p *Parameters) (xstream.Sink, error) { return p.AcquireSink("emit") },
	))

	r.Register("Receiver", "receiving endpoint of a stream channel", NewStreamFactory(
		Declaration{}.StreamParam("acquire", "the channel-backed stream to pull from"),
		func(p *Parameters) (xstream.Stream, error) { return p.AcquireStream("acquire") },
	))

	r.Register("Log", "materializes the stream into an in-memory Log", NewSinkFactory(
		Declaration{}, func(*Parameters) (xstream.Sink, error) { return xstream.NewLog(), nil },
	))
}

// acquireRatioAndSeed reads the "ratio" and "seed" attributes shared by the
// Split and Sample stages. A negative seed means "no seed" (time-seeded).
func acquireRatioAndSeed(p *Parameters) (float64, *uint64, error) {
	ratioAttr, err := p.AcquireAttribute("ratio")
	if err != nil {
		return 0, nil, err
	}
	ratio, err := xstream.AsFloat(ratioAttr)
	if err != nil {
		return 0, nil, err
	}

	seedAttr, err := p.AcquireAttribute("seed")
	if err != nil {
		return 0, nil, err
	}
	seedVal, err := xstream.AsInt(seedAttr)
	if err != nil {
		return 0, nil, err
	}
	if seedVal < 0 {
		return ratio, nil, nil
	}
	seed := uint64(seedVal)
	return ratio, &seed, nil
}
