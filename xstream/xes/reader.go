// SPDX-License-Identifier: Apache-2.0

// Package xes implements streaming XML (de)serialization of XES event logs
// (IEEE Std 1849-2016) on top of encoding/xml's token API. Reading
// tolerates a superset of strict XES for compatibility with older or
// slightly malformed files; writing aims for full compliance.
package xes

import (
	"encoding/xml"
	"io"
	"strconv"
	"time"

	"github.com/pm4rs/xesflow/xstream"
)

type intermediate struct {
	typeName string
	attrs    map[string]string
	children []any
}

func newIntermediate(name string, rawAttrs []xml.Attr) *intermediate {
	attrs := make(map[string]string, len(rawAttrs))
	for _, a := range rawAttrs {
		attrs[a.Name.Local] = a.Value
	}
	return &intermediate{typeName: name, attrs: attrs}
}

func (it *intermediate) pop(key string) (string, error) {
	v, ok := it.attrs[key]
	if !ok {
		return "", xstream.KeyErrorf("missing %q attribute in %q", key, it.typeName)
	}
	delete(it.attrs, key)
	return v, nil
}

func (it *intermediate) add(c any) { it.children = append(it.children, c) }

// xesValue is the intermediate representation of a <values> element: the
// attribute list nested inside a list-typed attribute.
type xesValue struct {
	attributes []xstream.Attribute
}

// logMarker signals that the closing tag was the root <log> element.
type logMarker struct{}

func toAttribute(it *intermediate) (xstream.Attribute, error) {
	key, err := it.pop("key")
	if err != nil {
		return xstream.Attribute{}, err
	}

	switch it.typeName {
	case "string":
		v, err := it.pop("value")
		if err != nil {
			return xstream.Attribute{}, err
		}
		return xstream.Attribute{Key: key, Value: xstream.StringValue(v)}, nil
	case "date":
		v, err := it.pop("value")
		if err != nil {
			return xstream.Attribute{}, err
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return xstream.Attribute{}, xstream.WrapParseDateTime(err)
		}
		return xstream.Attribute{Key: key, Value: xstream.DateValue(t)}, nil
	case "int":
		v, err := it.pop("value")
		if err != nil {
			return xstream.Attribute{}, err
		}
		i, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return xstream.Attribute{}, xstream.WrapParseInt(err)
		}
		return xstream.Attribute{Key: key, Value: xstream.IntValue(i)}, nil
	case "float":
		v, err := it.pop("value")
		if err != nil {
			return xstream.Attribute{}, err
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return xstream.Attribute{}, xstream.WrapParseFloat(err)
		}
		return xstream.Attribute{Key: key, Value: xstream.FloatValue(f)}, nil
	case "boolean":
		v, err := it.pop("value")
		if err != nil {
			return xstream.Attribute{}, err
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return xstream.Attribute{}, xstream.WrapParseBool(err)
		}
		return xstream.Attribute{Key: key, Value: xstream.BoolValue(b)}, nil
	case "id":
		v, err := it.pop("value")
		if err != nil {
			return xstream.Attribute{}, err
		}
		return xstream.Attribute{Key: key, Value: xstream.IDValue(v)}, nil
	case "list":
		var attrs []xstream.Attribute
		for _, c := range it.children {
			if v, ok := c.(xesValue); ok {
				attrs = append(attrs, v.attributes...)
			}
		}
		return xstream.Attribute{Key: key, Value: xstream.ListValue(attrs)}, nil
	default:
		return xstream.Attribute{}, xstream.KeyErrorf("unknown attribute %s", it.typeName)
	}
}

func toValue(it *intermediate) xesValue {
	var v xesValue
	for _, c := range it.children {
		if a, ok := c.(xstream.Attribute); ok {
			v.attributes = append(v.attributes, a)
		}
	}
	return v
}

func toExtensionDecl(it *intermediate) (xstream.ExtensionDecl, error) {
	name, err := it.pop("name")
	if err != nil {
		return xstream.ExtensionDecl{}, err
	}
	prefix, err := it.pop("prefix")
	if err != nil {
		return xstream.ExtensionDecl{}, err
	}
	uri, err := it.pop("uri")
	if err != nil {
		return xstream.ExtensionDecl{}, err
	}
	return xstream.ExtensionDecl{Name: name, Prefix: prefix, URI: uri}, nil
}

func toGlobal(it *intermediate) (xstream.Global, error) {
	scope, err := xstream.ParseScope(it.attrs["scope"])
	if err != nil {
		return xstream.Global{}, err
	}
	var attrs xstream.Attributes
	for _, c := range it.children {
		if a, ok := c.(xstream.Attribute); ok {
			attrs = append(attrs, a)
		}
	}
	return xstream.Global{Scope: scope, Attributes: attrs}, nil
}

func toClassifierDecl(it *intermediate) (xstream.ClassifierDecl, error) {
	name, err := it.pop("name")
	if err != nil {
		return xstream.ClassifierDecl{}, err
	}
	scope, err := xstream.ParseScope(it.attrs["scope"])
	if err != nil {
		return xstream.ClassifierDecl{}, err
	}
	keys, err := it.pop("keys")
	if err != nil {
		return xstream.ClassifierDecl{}, err
	}
	return xstream.ClassifierDecl{Name: name, Scope: scope, Keys: keys}, nil
}

func toEvent(it *intermediate) xstream.Event {
	var attrs xstream.Attributes
	for _, c := range it.children {
		if a, ok := c.(xstream.Attribute); ok {
			attrs = attrs.Set(a.Key, a.Value)
		}
	}
	return xstream.Event{Attributes: attrs}
}

func toTrace(it *intermediate) xstream.Trace {
	var attrs xstream.Attributes
	var events []xstream.Event
	for _, c := range it.children {
		switch v := c.(type) {
		case xstream.Attribute:
			attrs = attrs.Set(v.Key, v.Value)
		case xstream.Event:
			events = append(events, v)
		}
	}
	return xstream.Trace{Attributes: attrs, Events: events}
}

func toComponent(it *intermediate) (any, error) {
	switch it.typeName {
	case "string", "date", "int", "float", "boolean", "id", "list":
		return toAttribute(it)
	case "values":
		return toValue(it), nil
	case "extension":
		return toExtensionDecl(it)
	case "global":
		return toGlobal(it)
	case "classifier":
		return toClassifierDecl(it)
	case "event":
		return toEvent(it), nil
	case "trace":
		return toTrace(it), nil
	case "log":
		return logMarker{}, nil
	default:
		return nil, xstream.XesErrorf("unexpected XES component: %q", it.typeName)
	}
}

// Reader is a pull-based Stream that parses XES XML incrementally: a Trace
// or Event is only ever buffered one level deep, via cache, so arbitrarily
// large logs stream through bounded memory.
type Reader struct {
	dec   *xml.Decoder
	stack []*intermediate
	cache *xstream.Component
	meta  *xstream.Meta
	empty bool
}

// NewReader wraps r as a streaming XES parser.
func NewReader(r io.Reader) *Reader {
	return &Reader{dec: xml.NewDecoder(r), meta: &xstream.Meta{}, empty: true}
}

// absorb routes a freshly closed component: at nesting depth <= 1 (a
// direct child of <log>, or <log> itself) it feeds the running Meta or
// emits a Trace/Event; deeper, it's simply attached to its parent
// intermediate to be assembled later.
func (r *Reader) absorb(c any) (xstream.Result, bool, error) {
	if len(r.stack) > 1 {
		r.stack[len(r.stack)-1].add(c)
		return xstream.Result{}, false, nil
	}

	switch v := c.(type) {
	case xstream.ExtensionDecl:
		if r.meta == nil {
			return xstream.Result{}, false, xstream.StateErrorf("unexpected extension declaration after meta was emitted")
		}
		r.meta.Extensions = append(r.meta.Extensions, v)
	case xstream.Global:
		if r.meta == nil {
			return xstream.Result{}, false, xstream.StateErrorf("unexpected global declaration after meta was emitted")
		}
		r.meta.Globals = append(r.meta.Globals, v)
	case xstream.ClassifierDecl:
		if r.meta == nil {
			return xstream.Result{}, false, xstream.StateErrorf("unexpected classifier declaration after meta was emitted")
		}
		r.meta.Classifiers = append(r.meta.Classifiers, v)
	case xstream.Attribute:
		if r.meta == nil {
			return xstream.Result{}, false, xstream.StateErrorf("unexpected attribute after meta was emitted")
		}
		r.meta.Attributes = r.meta.Attributes.Set(v.Key, v.Value)
	case xesValue:
		return xstream.Result{}, false, xstream.StateErrorf("unexpected values component outside a list attribute")
	case xstream.Trace:
		if r.meta != nil {
			m := *r.meta
			r.meta = nil
			cached := xstream.TraceComponent(v)
			r.cache = &cached
			return xstream.ComponentResult(xstream.MetaComponent(m)), true, nil
		}
		return xstream.ComponentResult(xstream.TraceComponent(v)), true, nil
	case xstream.Event:
		if r.meta != nil {
			m := *r.meta
			r.meta = nil
			cached := xstream.EventComponent(v)
			r.cache = &cached
			return xstream.ComponentResult(xstream.MetaComponent(m)), true, nil
		}
		return xstream.ComponentResult(xstream.EventComponent(v)), true, nil
	case logMarker:
		r.empty = false
		if r.meta != nil {
			m := *r.meta
			r.meta = nil
			return xstream.ComponentResult(xstream.MetaComponent(m)), true, nil
		}
	}

	return xstream.Result{}, false, nil
}

func (r *Reader) Next() xstream.Result {
	if r.cache != nil {
		c := *r.cache
		r.cache = nil
		return xstream.ComponentResult(c)
	}

	for {
		tok, err := r.dec.Token()
		if err == io.EOF {
			if r.empty {
				return xstream.ErrResult(xstream.XesErrorf("no root component found"))
			}
			return xstream.EOFResult()
		}
		if err != nil {
			return xstream.ErrResult(xstream.WrapXML(err))
		}

		switch t := tok.(type) {
		case xml.StartElement:
			r.stack = append(r.stack, newIntermediate(t.Name.Local, t.Attr))
		case xml.EndElement:
			n := len(r.stack) - 1
			if n < 0 {
				return xstream.ErrResult(xstream.XesErrorf("unbalanced closing tag %q", t.Name.Local))
			}
			it := r.stack[n]
			r.stack = r.stack[:n]

			c, err := toComponent(it)
			if err != nil {
				return xstream.ErrResult(err)
			}
			result, emit, err := r.absorb(c)
			if err != nil {
				return xstream.ErrResult(err)
			}
			if emit {
				return result
			}
		}
	}
}

func (r *Reader) EmitArtifacts() [][]xstream.AnyArtifact { return nil }

var _ xstream.Stream = (*Reader)(nil)
