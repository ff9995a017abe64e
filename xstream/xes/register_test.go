// SPDX-License-Identifier: Apache-2.0

package xes

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pm4rs/xesflow/xstream"
	"github.com/pm4rs/xesflow/xstream/plugin"
)

func TestOpenRetryingSurfacesPersistentFailure(t *testing.T) {
	t.Parallel()

	_, err := openRetrying(filepath.Join(t.TempDir(), "does-not-exist.xes"))
	require.Error(t, err)
}

func TestCreateRetryingWritesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.xes")
	f, err := createRetrying(path)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func TestRegisterXesStagesRoundTripsThroughFile(t *testing.T) {
	t.Parallel()

	reg := plugin.NewRegistry()
	RegisterXesStages(reg)

	path := filepath.Join(t.TempDir(), "round-trip.xes")

	writerEntry, ok := reg.Get("XesWriter")
	require.True(t, ok)
	sink, err := writerEntry.Factory.BuildSink(
		map[string]xstream.AttributeValue{"path": xstream.StringValue(path)},
		nil, nil, nil,
	)
	require.NoError(t, err)

	require.NoError(t, sink.OnOpen())
	require.NoError(t, sink.OnComponent(xstream.MetaComponent(sampleMeta())))
	require.NoError(t, sink.OnComponent(xstream.TraceComponent(sampleTrace())))
	require.NoError(t, sink.OnClose())

	readerEntry, ok := reg.Get("XesReader")
	require.True(t, ok)
	stream, err := readerEntry.Factory.BuildStream(
		map[string]xstream.AttributeValue{"path": xstream.StringValue(path)},
		nil, nil, nil,
	)
	require.NoError(t, err)

	var kinds []xstream.ComponentKind
	for {
		r := stream.Next()
		if r.EOF {
			break
		}
		require.NoError(t, r.Err)
		kinds = append(kinds, r.Component.Kind)
	}
	require.Contains(t, kinds, xstream.KindMeta)
	require.Contains(t, kinds, xstream.KindTrace)
}
