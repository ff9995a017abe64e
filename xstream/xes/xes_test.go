// SPDX-License-Identifier: Apache-2.0

package xes

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pm4rs/xesflow/xstream"
)

func sampleMeta() xstream.Meta {
	return xstream.Meta{
		Extensions: []xstream.ExtensionDecl{
			{Name: "Concept", Prefix: "concept", URI: "http://www.xes-standard.org/concept.xesext"},
		},
		Globals: []xstream.Global{
			{Scope: xstream.ScopeEvent, Attributes: xstream.Attributes{
				{Key: "concept:name", Value: xstream.StringValue("")},
			}},
		},
		Classifiers: []xstream.ClassifierDecl{
			{Name: "Activity", Scope: xstream.ScopeEvent, Keys: "concept:name"},
		},
		Attributes: xstream.Attributes{
			{Key: "concept:name", Value: xstream.StringValue("order log")},
		},
	}
}

func sampleTrace() xstream.Trace {
	ts := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return xstream.Trace{
		Attributes: xstream.Attributes{
			{Key: "concept:name", Value: xstream.StringValue("case-1")},
		},
		Events: []xstream.Event{
			{Attributes: xstream.Attributes{
				{Key: "concept:name", Value: xstream.StringValue("place order")},
				{Key: "time:timestamp", Value: xstream.DateValue(ts)},
				{Key: "cost", Value: xstream.FloatValue(12.5)},
				{Key: "retries", Value: xstream.IntValue(0)},
				{Key: "automated", Value: xstream.BoolValue(true)},
				{Key: "correlation", Value: xstream.IDValue("abc-123")},
				{Key: "tags", Value: xstream.ListValue{
					{Key: "t1", Value: xstream.StringValue("fast")},
					{Key: "t2", Value: xstream.StringValue("online")},
				}},
			}},
			{Attributes: xstream.Attributes{
				{Key: "concept:name", Value: xstream.StringValue("ship order")},
				{Key: "time:timestamp", Value: xstream.DateValue(ts.Add(time.Hour))},
			}},
		},
	}
}

func writeLog(t *testing.T, meta xstream.Meta, traces ...xstream.Trace) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := NewWriter(&buf, "  ")
	require.NoError(t, w.OnOpen())
	require.NoError(t, w.OnComponent(xstream.MetaComponent(meta)))
	for _, tr := range traces {
		require.NoError(t, w.OnComponent(xstream.TraceComponent(tr)))
	}
	require.NoError(t, w.OnClose())
	return buf.Bytes()
}

func drain(t *testing.T, r *Reader) []xstream.Result {
	t.Helper()
	var out []xstream.Result
	for {
		res := r.Next()
		if res.EOF {
			return out
		}
		require.Nil(t, res.Err, "unexpected error: %v", res.Err)
		out = append(out, res)
	}
}

func TestWriterReaderRoundTrip(t *testing.T) {
	t.Parallel()

	meta := sampleMeta()
	trace := sampleTrace()
	data := writeLog(t, meta, trace)

	r := NewReader(bytes.NewReader(data))
	results := drain(t, r)
	require.Len(t, results, 2)

	require.Equal(t, xstream.KindMeta, results[0].Component.Kind)
	gotMeta := *results[0].Component.Meta
	require.Len(t, gotMeta.Extensions, 1)
	require.Equal(t, "Concept", gotMeta.Extensions[0].Name)
	require.Len(t, gotMeta.Globals, 1)
	require.Equal(t, xstream.ScopeEvent, gotMeta.Globals[0].Scope)
	require.Len(t, gotMeta.Classifiers, 1)
	name, err := gotMeta.Attributes.GetOr("concept:name")
	require.NoError(t, err)
	s, err := xstream.AsString(name)
	require.NoError(t, err)
	require.Equal(t, "order log", s)

	require.Equal(t, xstream.KindTrace, results[1].Component.Kind)
	gotTrace := *results[1].Component.Trace
	require.Len(t, gotTrace.Events, 2)

	first := gotTrace.Events[0].Attributes
	cost, err := first.GetOr("cost")
	require.NoError(t, err)
	f, err := xstream.AsFloat(cost)
	require.NoError(t, err)
	require.Equal(t, 12.5, f)

	retries, err := first.GetOr("retries")
	require.NoError(t, err)
	i, err := xstream.AsInt(retries)
	require.NoError(t, err)
	require.Equal(t, int64(0), i)

	automated, err := first.GetOr("automated")
	require.NoError(t, err)
	b, err := xstream.AsBool(automated)
	require.NoError(t, err)
	require.True(t, b)

	corr, err := first.GetOr("correlation")
	require.NoError(t, err)
	id, err := xstream.AsID(corr)
	require.NoError(t, err)
	require.Equal(t, "abc-123", id)

	tags, err := first.GetOr("tags")
	require.NoError(t, err)
	list, err := xstream.AsList(tags)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "t1", list[0].Key)
}

func TestReaderMetaFollowedByEventOnly(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewWriter(&buf, "")
	require.NoError(t, w.OnOpen())
	require.NoError(t, w.OnComponent(xstream.MetaComponent(xstream.Meta{})))
	require.NoError(t, w.OnComponent(xstream.EventComponent(xstream.Event{
		Attributes: xstream.Attributes{{Key: "concept:name", Value: xstream.StringValue("solo")}},
	})))
	require.NoError(t, w.OnClose())

	r := NewReader(bytes.NewReader(buf.Bytes()))
	results := drain(t, r)
	require.Len(t, results, 2)
	require.Equal(t, xstream.KindMeta, results[0].Component.Kind)
	require.Equal(t, xstream.KindEvent, results[1].Component.Kind)
}

func TestReaderTruncatedDocumentErrors(t *testing.T) {
	t.Parallel()

	data := writeLog(t, xstream.Meta{}, sampleTrace())
	// Cut off before the closing </log>.
	truncated := bytes.TrimSuffix(bytes.TrimSpace(data), []byte("</log>"))

	r := NewReader(bytes.NewReader(truncated))
	for {
		res := r.Next()
		if res.EOF {
			t.Fatal("expected an error for a truncated document, got clean EOF")
		}
		if res.Err != nil {
			return
		}
	}
}

func TestReaderUnbalancedClosingTagErrors(t *testing.T) {
	t.Parallel()

	r := NewReader(bytes.NewReader([]byte(`<log></trace></log>`)))
	for i := 0; i < 10; i++ {
		res := r.Next()
		if res.Err != nil {
			return
		}
		if res.EOF {
			t.Fatal("expected an unbalanced closing tag error, got clean EOF")
		}
	}
	t.Fatal("expected an unbalanced closing tag error within 10 reads")
}

func TestReaderUnknownElementErrors(t *testing.T) {
	t.Parallel()

	r := NewReader(bytes.NewReader([]byte(`<log><bogus/></log>`)))
	res := r.Next()
	require.Error(t, res.Err)
}

func TestReaderMissingRequiredAttributeErrors(t *testing.T) {
	t.Parallel()

	r := NewReader(bytes.NewReader([]byte(`<log><string key="concept:name"/></log>`)))
	res := r.Next()
	require.Error(t, res.Err)
}

func TestReaderBadIntValueErrors(t *testing.T) {
	t.Parallel()

	r := NewReader(bytes.NewReader([]byte(`<log><trace><int key="n" value="nope"/></trace></log>`)))
	res := r.Next()
	require.Error(t, res.Err)
}

func TestReaderBadDateValueErrors(t *testing.T) {
	t.Parallel()

	r := NewReader(bytes.NewReader([]byte(`<log><trace><date key="t" value="not-a-date"/></trace></log>`)))
	res := r.Next()
	require.Error(t, res.Err)
}

func TestReaderNoRootComponentErrors(t *testing.T) {
	t.Parallel()

	r := NewReader(bytes.NewReader([]byte(``)))
	res := r.Next()
	require.Error(t, res.Err)
}

func TestReaderGlobalAndClassifierScopeParsing(t *testing.T) {
	t.Parallel()

	doc := `<log>
<global scope="trace"><string key="concept:name" value=""/></global>
<classifier name="Activity" scope="event" keys="concept:name"/>
</log>`
	r := NewReader(bytes.NewReader([]byte(doc)))
	results := drain(t, r)
	require.Len(t, results, 1)
	meta := *results[0].Component.Meta
	require.Len(t, meta.Globals, 1)
	require.Equal(t, xstream.ScopeTrace, meta.Globals[0].Scope)
	require.Len(t, meta.Classifiers, 1)
	require.Equal(t, xstream.ScopeEvent, meta.Classifiers[0].Scope)
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	_, err := ValidateToken("concept:name org:resource")
	require.NoError(t, err)

	_, err = ValidateToken("bad\ttoken")
	require.Error(t, err)
}

func TestValidateName(t *testing.T) {
	t.Parallel()

	_, err := ValidateName("concept:name")
	require.NoError(t, err)

	_, err = ValidateName("1leadingdigit")
	require.Error(t, err)
}

func TestValidateNCName(t *testing.T) {
	t.Parallel()

	_, err := ValidateNCName("concept")
	require.NoError(t, err)

	_, err = ValidateNCName("has:colon")
	require.Error(t, err)
}

func TestValidateURI(t *testing.T) {
	t.Parallel()

	_, err := ValidateURI("http://www.xes-standard.org/concept.xesext")
	require.NoError(t, err)

	_, err = ValidateURI("not a uri")
	require.Error(t, err)
}
