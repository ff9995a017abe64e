// SPDX-License-Identifier: Apache-2.0

package xes

import (
	"encoding/xml"
	"io"
	"strconv"
	"time"

	"github.com/pm4rs/xesflow/xstream"
)

// Writer is a Sink that serializes every component it receives as XES XML,
// writing the fixed <log> preamble on OnOpen and the closing tag on
// OnClose. It never buffers more than one component at a time.
type Writer struct {
	enc *xml.Encoder
}

// NewWriter wraps w as an XES XML writer. indent is the per-level
// indentation string; an empty string defaults to a single tab.
func NewWriter(w io.Writer, indent string) *Writer {
	if indent == "" {
		indent = "\t"
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", indent)
	return &Writer{enc: enc}
}

func name(local string) xml.Name { return xml.Name{Local: local} }

func attr(key, value string) xml.Attr { return xml.Attr{Name: name(key), Value: value} }

func (w *Writer) OnOpen() error {
	if err := w.enc.EncodeToken(xml.ProcInst{Target: "xml", Inst: []byte(`version="1.0" encoding="UTF-8"`)}); err != nil {
		return xstream.WrapXML(err)
	}
	comments := []string{
		" This file has been generated with xesflow ",
		" It conforms to the XES standard, see http://www.xes-standard.org ",
		" For IEEE Task Force on Process Mining: http://www.win.tue.nl/ieeetfpm ",
	}
	for _, c := range comments {
		if err := w.enc.EncodeToken(xml.Comment(c)); err != nil {
			return xstream.WrapXML(err)
		}
	}
	start := xml.StartElement{
		Name: name("log"),
		Attr: []xml.Attr{attr("xes.version", "1849.2016"), attr("xes.features", "")},
	}
	if err := w.enc.EncodeToken(start); err != nil {
		return xstream.WrapXML(err)
	}
	return nil
}

func (w *Writer) OnComponent(c xstream.Component) error {
	switch c.Kind {
	case xstream.KindMeta:
		return w.writeMeta(*c.Meta)
	case xstream.KindTrace:
		return w.writeTrace(*c.Trace)
	case xstream.KindEvent:
		return w.writeEvent(*c.Event)
	default:
		return xstream.StateErrorf("unknown component kind %v", c.Kind)
	}
}

func (w *Writer) OnClose() error {
	if err := w.enc.EncodeToken(xml.EndElement{Name: name("log")}); err != nil {
		return xstream.WrapXML(err)
	}
	return xstream.WrapXML(w.enc.Flush())
}

func (w *Writer) OnError(error) {}

func (w *Writer) OnEmitArtifacts() []xstream.AnyArtifact { return nil }

func (w *Writer) writeEmpty(tag string, attrs []xml.Attr) error {
	if err := w.enc.EncodeToken(xml.StartElement{Name: name(tag), Attr: attrs}); err != nil {
		return xstream.WrapXML(err)
	}
	if err := w.enc.EncodeToken(xml.EndElement{Name: name(tag)}); err != nil {
		return xstream.WrapXML(err)
	}
	return nil
}

func (w *Writer) writeAttribute(a xstream.Attribute) error {
	key, err := ValidateName(a.Key)
	if err != nil {
		return err
	}

	switch v := a.Value.(type) {
	case xstream.StringValue:
		return w.writeEmpty("string", []xml.Attr{attr("key", key), attr("value", string(v))})
	case xstream.DateValue:
		return w.writeEmpty("date", []xml.Attr{attr("key", key), attr("value", time.Time(v).Format(time.RFC3339Nano))})
	case xstream.IntValue:
		return w.writeEmpty("int", []xml.Attr{attr("key", key), attr("value", strconv.FormatInt(int64(v), 10))})
	case xstream.FloatValue:
		return w.writeEmpty("float", []xml.Attr{attr("key", key), attr("value", strconv.FormatFloat(float64(v), 'g', -1, 64))})
	case xstream.BoolValue:
		return w.writeEmpty("boolean", []xml.Attr{attr("key", key), attr("value", strconv.FormatBool(bool(v)))})
	case xstream.IDValue:
		return w.writeEmpty("id", []xml.Attr{attr("key", key), attr("value", string(v))})
	case xstream.ListValue:
		if err := w.enc.EncodeToken(xml.StartElement{Name: name("list"), Attr: []xml.Attr{attr("key", key)}}); err != nil {
			return xstream.WrapXML(err)
		}
		if err := w.enc.EncodeToken(xml.StartElement{Name: name("values")}); err != nil {
			return xstream.WrapXML(err)
		}
		for _, inner := range v {
			if err := w.writeAttribute(inner); err != nil {
				return err
			}
		}
		if err := w.enc.EncodeToken(xml.EndElement{Name: name("values")}); err != nil {
			return xstream.WrapXML(err)
		}
		return xstream.WrapXML(w.enc.EncodeToken(xml.EndElement{Name: name("list")}))
	default:
		return xstream.AttributeErrorf("unknown attribute value type for key %q", a.Key)
	}
}

func (w *Writer) writeExtensionDecl(e xstream.ExtensionDecl) error {
	name_, err := ValidateNCName(e.Name)
	if err != nil {
		return err
	}
	prefix, err := ValidateNCName(e.Prefix)
	if err != nil {
		return err
	}
	uri, err := ValidateURI(e.URI)
	if err != nil {
		return err
	}
	return w.writeEmpty("extension", []xml.Attr{attr("name", name_), attr("prefix", prefix), attr("uri", uri)})
}

func (w *Writer) writeGlobal(g xstream.Global) error {
	if err := w.enc.EncodeToken(xml.StartElement{Name: name("global"), Attr: []xml.Attr{attr("scope", g.Scope.String())}}); err != nil {
		return xstream.WrapXML(err)
	}
	for _, a := range g.Attributes {
		if err := w.writeAttribute(a); err != nil {
			return err
		}
	}
	return xstream.WrapXML(w.enc.EncodeToken(xml.EndElement{Name: name("global")}))
}

func (w *Writer) writeClassifierDecl(c xstream.ClassifierDecl) error {
	cname, err := ValidateNCName(c.Name)
	if err != nil {
		return err
	}
	keys, err := ValidateToken(c.Keys)
	if err != nil {
		return err
	}
	return w.writeEmpty("classifier", []xml.Attr{attr("name", cname), attr("scope", c.Scope.String()), attr("keys", keys)})
}

func (w *Writer) writeMeta(m xstream.Meta) error {
	for _, e := range m.Extensions {
		if err := w.writeExtensionDecl(e); err != nil {
			return err
		}
	}
	for _, g := range m.Globals {
		if err := w.writeGlobal(g); err != nil {
			return err
		}
	}
	for _, c := range m.Classifiers {
		if err := w.writeClassifierDecl(c); err != nil {
			return err
		}
	}
	for _, a := range m.Attributes {
		if err := w.writeAttribute(a); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeEvent(e xstream.Event) error {
	if err := w.enc.EncodeToken(xml.StartElement{Name: name("event")}); err != nil {
		return xstream.WrapXML(err)
	}
	for _, a := range e.Attributes {
		if err := w.writeAttribute(a); err != nil {
			return err
		}
	}
	return xstream.WrapXML(w.enc.EncodeToken(xml.EndElement{Name: name("event")}))
}

func (w *Writer) writeTrace(t xstream.Trace) error {
	if err := w.enc.EncodeToken(xml.StartElement{Name: name("trace")}); err != nil {
		return xstream.WrapXML(err)
	}
	for _, a := range t.Attributes {
		if err := w.writeAttribute(a); err != nil {
			return err
		}
	}
	for _, e := range t.Events {
		if err := w.writeEvent(e); err != nil {
			return err
		}
	}
	return xstream.WrapXML(w.enc.EncodeToken(xml.EndElement{Name: name("trace")}))
}

var _ xstream.Sink = (*Writer)(nil)
