// SPDX-License-Identifier: Apache-2.0

// Package extension implements the standard XES extensions — Concept,
// Organizational, and Time — plus the registry that resolves a stream's
// declared extensions by prefix so xstream.Validator can attach their
// checks.
package extension

import "github.com/pm4rs/xesflow/xstream"

const (
	ConceptName   = "Concept"
	ConceptPrefix = "concept"
	ConceptURI    = "http://www.xes-standard.org/concept.xesext"
)

// Concept is the concept extension's view of a component: the human-
// readable name every component may carry, and the per-event instance
// identifier used to disambiguate repeated activities.
type Concept struct {
	Name     *string
	Instance *string
}

// ViewConcept extracts concept:name (any component) and concept:instance
// (events only) from c's attributes.
func ViewConcept(c xstream.Component) (Concept, error) {
	var view Concept
	attrs := c.AttributesOf()

	if v := attrs.Get("concept:name"); v != nil {
		s, err := xstream.AsString(v)
		if err != nil {
			return view, err
		}
		view.Name = &s
	}

	if c.Kind == xstream.KindEvent {
		if v := attrs.Get("concept:instance"); v != nil {
			s, err := xstream.AsString(v)
			if err != nil {
				return view, err
			}
			view.Instance = &s
		}
	}

	return view, nil
}

func conceptValidator(_ xstream.Meta) xstream.ValidatorFunc {
	return func(c xstream.Component) error {
		_, err := ViewConcept(c)
		return err
	}
}
