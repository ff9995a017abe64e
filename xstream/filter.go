// SPDX-License-Identifier: Apache-2.0

package xstream

// Condition is a failable predicate over a component's attributes, modeled
// after the ambient flow package's Predicate[T] shape but specialized to
// Attributes since filters here never need a context.Context.
type Condition func(Attributes) (bool, error)

// Clause is a conjunction of Conditions: all must hold.
type Clause []Condition

// DNF is a disjunction of Clauses: the overall filter passes if any clause
// holds. An empty DNF always fails (drops everything), matching the
// original's "empty set = always drop" semantics.
type DNF []Clause

func (d DNF) eval(attrs Attributes) (bool, error) {
	for _, clause := range d {
		ok := true
		for _, cond := range clause {
			hit, err := cond(attrs)
			if err != nil {
				return false, err
			}
			if !hit {
				ok = false
				break
			}
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Filter is a Handler dropping Traces and Events that fail their respective
// DNF. A nil DNF for either kind passes everything of that kind through
// unfiltered (distinct from an empty, non-nil DNF which drops everything).
type Filter struct {
	BaseHandler
	Traces DNF
	Events DNF
}

func NewFilter(traces, events DNF) *Filter {
	return &Filter{Traces: traces, Events: events}
}

func (f *Filter) OnTrace(t Trace) (*Trace, error) {
	if f.Traces == nil {
		return &t, nil
	}
	ok, err := f.Traces.eval(t.Attributes)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (f *Filter) OnEvent(e Event, _ bool) (*Event, error) {
	if f.Events == nil {
		return &e, nil
	}
	ok, err := f.Events.eval(e.Attributes)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &e, nil
}

var _ Handler = (*Filter)(nil)
