// SPDX-License-Identifier: Apache-2.0

package flowgraph

import (
	"encoding/json"
	"io"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pm4rs/xesflow/xstream"
	"github.com/pm4rs/xesflow/xstream/plugin"
)

// GraphConfig is the declarative, serializable shape of a Graph: its
// topology alone. Artifacts is deliberately excluded — AnyArtifact is a
// type-erased interface value with no general-purpose polymorphic
// (de)serialization in this module, so round-tripping is scoped to the
// realistic use case of saving and loading a pipeline definition before it
// has ever run, not to resuming mid-execution state.
type GraphConfig struct {
	Pipes []Pipe `yaml:"pipes" json:"pipes"`
}

// LoadGraph reads a YAML-encoded GraphConfig from r and returns a Graph
// resolved against reg (plugin.Default() if nil).
func LoadGraph(r io.Reader, reg *plugin.Registry) (*Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, xstream.XesErrorf("reading graph config: %v", err)
	}
	var cfg GraphConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, xstream.XesErrorf("decoding graph config: %v", err)
	}
	g := NewGraph(reg)
	g.Pipes = cfg.Pipes
	return g, nil
}

// Save writes g's topology as YAML to w.
func (g *Graph) Save(w io.Writer) error {
	data, err := yaml.Marshal(g.toConfig())
	if err != nil {
		return xstream.XesErrorf("encoding graph config: %v", err)
	}
	_, err = w.Write(data)
	return err
}

// LoadGraphJSON is LoadGraph's JSON counterpart.
func LoadGraphJSON(r io.Reader, reg *plugin.Registry) (*Graph, error) {
	var cfg GraphConfig
	if err := json.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, xstream.XesErrorf("decoding graph config: %v", err)
	}
	g := NewGraph(reg)
	g.Pipes = cfg.Pipes
	return g, nil
}

// SaveJSON is Save's JSON counterpart.
func (g *Graph) SaveJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(g.toConfig())
}

func (g *Graph) toConfig() GraphConfig {
	pipes := append([]Pipe(nil), g.Pipes...)
	if g.staging != nil {
		pipes = append(pipes, *g.staging)
	}
	return GraphConfig{Pipes: pipes}
}

// segmentDoc is Segment's wire shape: Attributes becomes an ordered list so
// the tagged-union AttributeValue interface can round-trip through both
// yaml.v3 and encoding/json, which otherwise have no way to reconstruct a
// concrete AttributeValue from a plain map[string]any.
type segmentDoc struct {
	Name             string         `yaml:"name" json:"name"`
	Attributes       []namedAttrDoc `yaml:"attributes,omitempty" json:"attributes,omitempty"`
	StreamSender     []string       `yaml:"stream_sender,omitempty" json:"stream_sender,omitempty"`
	StreamReceiver   []string       `yaml:"stream_receiver,omitempty" json:"stream_receiver,omitempty"`
	ArtifactSender   []string       `yaml:"artifact_sender,omitempty" json:"artifact_sender,omitempty"`
	ArtifactReceiver []string       `yaml:"artifact_receiver,omitempty" json:"artifact_receiver,omitempty"`
}

type namedAttrDoc struct {
	Key string `yaml:"key" json:"key"`
	attrDoc `yaml:",inline"`
}

// attrDoc tags an AttributeValue with its concrete type so docToAttr can
// reconstruct the right variant. Value holds the scalar payload for every
// variant but List; List holds nested named entries for ListValue.
type attrDoc struct {
	Type  string         `yaml:"type" json:"type"`
	Value any            `yaml:"value,omitempty" json:"value,omitempty"`
	List  []namedAttrDoc `yaml:"list,omitempty" json:"list,omitempty"`
}

func (s Segment) MarshalYAML() (interface{}, error) { return s.toDoc() }

func (s *Segment) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var doc segmentDoc
	if err := unmarshal(&doc); err != nil {
		return err
	}
	return s.fromDoc(doc)
}

func (s Segment) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.toDoc())
}

func (s *Segment) UnmarshalJSON(data []byte) error {
	var doc segmentDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	return s.fromDoc(doc)
}

func (s Segment) toDoc() segmentDoc {
	keys := make([]string, 0, len(s.Attributes))
	for k := range s.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]namedAttrDoc, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, namedAttrDoc{Key: k, attrDoc: attrToDoc(s.Attributes[k])})
	}

	return segmentDoc{
		Name:             s.Name,
		Attributes:       attrs,
		StreamSender:     s.StreamSender,
		StreamReceiver:   s.StreamReceiver,
		ArtifactSender:   s.ArtifactSender,
		ArtifactReceiver: s.ArtifactReceiver,
	}
}

func (s *Segment) fromDoc(doc segmentDoc) error {
	s.Name = doc.Name
	s.StreamSender = doc.StreamSender
	s.StreamReceiver = doc.StreamReceiver
	s.ArtifactSender = doc.ArtifactSender
	s.ArtifactReceiver = doc.ArtifactReceiver

	if len(doc.Attributes) == 0 {
		return nil
	}
	s.Attributes = make(map[string]xstream.AttributeValue, len(doc.Attributes))
	for _, a := range doc.Attributes {
		v, err := docToAttr(a.attrDoc)
		if err != nil {
			return err
		}
		s.Attributes[a.Key] = v
	}
	return nil
}

func attrToDoc(v xstream.AttributeValue) attrDoc {
	switch val := v.(type) {
	case xstream.StringValue:
		return attrDoc{Type: "string", Value: string(val)}
	case xstream.DateValue:
		return attrDoc{Type: "date", Value: time.Time(val).Format(time.RFC3339)}
	case xstream.IntValue:
		return attrDoc{Type: "int", Value: int64(val)}
	case xstream.FloatValue:
		return attrDoc{Type: "float", Value: float64(val)}
	case xstream.BoolValue:
		return attrDoc{Type: "boolean", Value: bool(val)}
	case xstream.IDValue:
		return attrDoc{Type: "id", Value: string(val)}
	case xstream.ListValue:
		list := make([]namedAttrDoc, len(val))
		for i, a := range val {
			list[i] = namedAttrDoc{Key: a.Key, attrDoc: attrToDoc(a.Value)}
		}
		return attrDoc{Type: "list", List: list}
	default:
		return attrDoc{Type: "string", Value: ""}
	}
}

func docToAttr(d attrDoc) (xstream.AttributeValue, error) {
	switch d.Type {
	case "string":
		s, _ := d.Value.(string)
		return xstream.StringValue(s), nil
	case "date":
		s, _ := d.Value.(string)
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, xstream.WrapParseDateTime(err)
		}
		return xstream.DateValue(t), nil
	case "int":
		n, err := asInt64(d.Value)
		if err != nil {
			return nil, err
		}
		return xstream.IntValue(n), nil
	case "float":
		switch n := d.Value.(type) {
		case float64:
			return xstream.FloatValue(n), nil
		case int:
			return xstream.FloatValue(float64(n)), nil
		case int64:
			return xstream.FloatValue(float64(n)), nil
		default:
			return nil, xstream.XesErrorf("invalid float attribute value %v", d.Value)
		}
	case "boolean":
		b, _ := d.Value.(bool)
		return xstream.BoolValue(b), nil
	case "id":
		s, _ := d.Value.(string)
		return xstream.IDValue(s), nil
	case "list":
		out := make(xstream.ListValue, len(d.List))
		for i, item := range d.List {
			v, err := docToAttr(item.attrDoc)
			if err != nil {
				return nil, err
			}
			out[i] = xstream.Attribute{Key: item.Key, Value: v}
		}
		return out, nil
	default:
		return nil, xstream.XesErrorf("unknown attribute type %q", d.Type)
	}
}

// asInt64 accepts both YAML's native int and JSON's float64 number decode.
func asInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		return int64(n), nil
	default:
		return 0, xstream.XesErrorf("invalid int attribute value %v", v)
	}
}
