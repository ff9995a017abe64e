// SPDX-License-Identifier: Apache-2.0

package extension

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pm4rs/xesflow/xstream"
)

func TestStandardRegistryHasAllThree(t *testing.T) {
	t.Parallel()

	r := Standard()
	for _, prefix := range []string{ConceptPrefix, OrgPrefix, TimePrefix} {
		_, ok := r.Get(prefix)
		require.True(t, ok, "expected prefix %q to be registered", prefix)
	}

	_, ok := r.Get("nonsense")
	require.False(t, ok)
}

func TestRegistryRemove(t *testing.T) {
	t.Parallel()

	r := Standard()
	entry, ok := r.Remove(ConceptPrefix)
	require.True(t, ok)
	require.Equal(t, ConceptName, entry.Name)

	_, ok = r.Get(ConceptPrefix)
	require.False(t, ok)
}

func TestViewConcept(t *testing.T) {
	t.Parallel()

	name := "register request"
	c := xstream.EventComponent(xstream.Event{Attributes: xstream.Attributes{
		{Key: "concept:name", Value: xstream.StringValue(name)},
		{Key: "concept:instance", Value: xstream.StringValue("1")},
	}})

	view, err := ViewConcept(c)
	require.NoError(t, err)
	require.NotNil(t, view.Name)
	require.Equal(t, name, *view.Name)
	require.NotNil(t, view.Instance)
	require.Equal(t, "1", *view.Instance)
}

func TestViewConceptWrongType(t *testing.T) {
	t.Parallel()

	c := xstream.EventComponent(xstream.Event{Attributes: xstream.Attributes{
		{Key: "concept:name", Value: xstream.IntValue(42)},
	}})

	_, err := ViewConcept(c)
	require.Error(t, err)
}

func TestViewOrgOnlyAppliesToEvents(t *testing.T) {
	t.Parallel()

	trace := xstream.TraceComponent(xstream.Trace{Attributes: xstream.Attributes{
		{Key: "org:resource", Value: xstream.StringValue("alice")},
	}})

	view, err := ViewOrg(trace)
	require.NoError(t, err)
	require.Nil(t, view.Resource)
}

func TestViewTimeEvent(t *testing.T) {
	t.Parallel()

	ts := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	c := xstream.EventComponent(xstream.Event{Attributes: xstream.Attributes{
		{Key: "time:timestamp", Value: xstream.DateValue(ts)},
	}})

	view, err := ViewTime(c)
	require.NoError(t, err)
	require.True(t, view.IsEq(TimeView{t1: ts, t2: ts}))
}

func TestViewTimeTraceInvalidInterval(t *testing.T) {
	t.Parallel()

	early := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)

	trace := xstream.TraceComponent(xstream.Trace{Events: []xstream.Event{
		{Attributes: xstream.Attributes{{Key: "time:timestamp", Value: xstream.DateValue(late)}}},
		{Attributes: xstream.Attributes{{Key: "time:timestamp", Value: xstream.DateValue(early)}}},
	}})

	_, err := ViewTime(trace)
	require.Error(t, err)
}

func TestViewTimeTraceEmpty(t *testing.T) {
	t.Parallel()

	trace := xstream.TraceComponent(xstream.Trace{})
	_, err := ViewTime(trace)
	require.Error(t, err)
}

func TestTimeValidatorDetectsOutOfOrderEvents(t *testing.T) {
	t.Parallel()

	early := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)

	trace := xstream.TraceComponent(xstream.Trace{Events: []xstream.Event{
		{Attributes: xstream.Attributes{{Key: "time:timestamp", Value: xstream.DateValue(late)}}},
		{Attributes: xstream.Attributes{{Key: "time:timestamp", Value: xstream.DateValue(early)}}},
	}})

	validate := timeValidator(xstream.Meta{})
	require.Error(t, validate(trace))
}

func TestTimeValidatorAcceptsChronologicalEvents(t *testing.T) {
	t.Parallel()

	early := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)

	trace := xstream.TraceComponent(xstream.Trace{Events: []xstream.Event{
		{Attributes: xstream.Attributes{{Key: "time:timestamp", Value: xstream.DateValue(early)}}},
		{Attributes: xstream.Attributes{{Key: "time:timestamp", Value: xstream.DateValue(late)}}},
	}})

	validate := timeValidator(xstream.Meta{})
	require.NoError(t, validate(trace))
}
