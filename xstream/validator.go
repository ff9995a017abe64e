// SPDX-License-Identifier: Apache-2.0

package xstream

import "regexp"

// ValidatorFunc checks one component, returning a ValidationError (or an
// ExtensionError, for extension-contributed checks) on failure. It takes
// the whole Component, not just its Attributes, because some checks (the
// time extension's chronological-order check, notably) reason about a
// parent's children rather than its own attribute mapping.
type ValidatorFunc func(Component) error

// ExtensionEntry is the validator-relevant half of an extension registry
// entry. It is declared here, not in xstream/extension, so that Validator
// can depend on an ExtensionLookup interface without importing the
// extension package — extension imports xstream, not the reverse.
type ExtensionEntry struct {
	Name   string
	Prefix string
	URI    string

	Validator func(Meta) ValidatorFunc
}

// ExtensionLookup is satisfied by xstream/extension.Registry. It is passed
// explicitly into NewValidator rather than defaulted, so tests can supply a
// minimal fake registry instead of depending on the real package-global one
// (see DESIGN.md's note on dependency injection for registries).
type ExtensionLookup interface {
	Get(prefix string) (ExtensionEntry, bool)
}

// classifierNameRE approximates xs:NCName closely enough for classifier
// name validation: starts with a letter or underscore, continues with
// letters, digits, underscore, hyphen, or period. The XES writer's full
// NCName/Name/token/anyURI validators (xstream/xes/xmlutil.go) are stricter
// and cover the Unicode character classes from the XML Schema spec; this
// lighter check is sufficient here because XES classifier names in practice
// are ASCII identifiers, and a false negative simply surfaces as a
// legitimate ValidationError the writer would have produced anyway.
var classifierNameRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*$`)

// Validator builds per-extension and per-global validators from a stream's
// Meta, then checks the Meta itself and every subsequent trace/event
// against the applicable subset.
type Validator struct {
	BaseHandler
	lookup ExtensionLookup

	metaValidators  []ValidatorFunc
	traceValidators []ValidatorFunc
	eventValidators []ValidatorFunc

	onUnsupported func(prefix string)
}

// NewValidator constructs a Validator that resolves extensions through
// lookup. onUnsupported, if non-nil, is invoked once per extension
// declaration the lookup doesn't recognize — callers typically wire this to
// a logger rather than treating it as fatal (unsupported extensions are
// tolerated, not errors).
func NewValidator(lookup ExtensionLookup, onUnsupported func(prefix string)) *Validator {
	return &Validator{lookup: lookup, onUnsupported: onUnsupported}
}

func (v *Validator) OnMeta(m Meta) (Meta, error) {
	for _, decl := range m.Extensions {
		entry, ok := v.lookup.Get(decl.Prefix)
		if !ok {
			if v.onUnsupported != nil {
				v.onUnsupported(decl.Prefix)
			}
			continue
		}
		v.metaValidators = append(v.metaValidators, entry.Validator(m))
		v.traceValidators = append(v.traceValidators, entry.Validator(m))
		v.eventValidators = append(v.eventValidators, entry.Validator(m))
	}

	for _, g := range m.Globals {
		global := g
		fn := func(c Component) error { return global.Validate(c) }
		switch g.Scope {
		case ScopeTrace:
			v.traceValidators = append(v.traceValidators, fn)
		case ScopeEvent:
			v.eventValidators = append(v.eventValidators, fn)
		}
	}

	for _, c := range m.Classifiers {
		if !classifierNameRE.MatchString(c.Name) {
			return m, ValidationErrorf("classifier name %q is no valid xs:NCName", c.Name)
		}
	}

	for _, fn := range v.metaValidators {
		if err := fn(MetaComponent(m)); err != nil {
			return m, err
		}
	}

	return m, nil
}

func (v *Validator) OnTrace(t Trace) (*Trace, error) {
	c := TraceComponent(t)
	for _, fn := range v.traceValidators {
		if err := fn(c); err != nil {
			return nil, err
		}
	}
	return &t, nil
}

func (v *Validator) OnEvent(e Event, _ bool) (*Event, error) {
	c := EventComponent(e)
	for _, fn := range v.eventValidators {
		if err := fn(c); err != nil {
			return nil, err
		}
	}
	return &e, nil
}

var _ Handler = (*Validator)(nil)
