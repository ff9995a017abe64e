// SPDX-License-Identifier: Apache-2.0

package plugin

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pm4rs/xesflow/xstream"
)

func TestRegistryRegisterAndGet(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Register("Noop", "does nothing", NewStreamFactory(Declaration{}, func(*Parameters) (xstream.Stream, error) {
		return xstream.Void{}, nil
	}))

	entry, ok := r.Get("Noop")
	require.True(t, ok)
	require.Equal(t, "Noop", entry.Name)
	require.NotEqual(t, entry.InstanceID.String(), "")

	_, ok = r.Get("Missing")
	require.False(t, ok)
}

func TestRegistryOverwriteMintsFreshInstanceID(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	factory := NewSinkFactory(Declaration{}, func(*Parameters) (xstream.Sink, error) { return xstream.Void{}, nil })
	r.Register("Sink", "first", factory)
	first, _ := r.Get("Sink")

	r.Register("Sink", "second", factory)
	second, _ := r.Get("Sink")

	require.NotEqual(t, first.InstanceID, second.InstanceID)
	require.Equal(t, "second", second.Description)
}

func TestDeclarationMissingRequiredAttribute(t *testing.T) {
	t.Parallel()

	decl := Declaration{}.Attribute("path", "required path")
	factory := NewStreamFactory(decl, func(p *Parameters) (xstream.Stream, error) {
		v, err := p.AcquireAttribute("path")
		if err != nil {
			return nil, err
		}
		_ = v
		return xstream.Void{}, nil
	})

	_, err := factory.BuildStream(nil, nil, nil, nil)
	require.Error(t, err)
}

func TestDeclarationDefaultAttr(t *testing.T) {
	t.Parallel()

	decl := Declaration{}.DefaultAttr("ratio", "fraction", xstream.FloatValue(0.5))
	factory := NewStreamFactory(decl, func(p *Parameters) (xstream.Stream, error) {
		v, err := p.AcquireAttribute("ratio")
		if err != nil {
			return nil, err
		}
		f, err := xstream.AsFloat(v)
		require.NoError(t, err)
		require.Equal(t, 0.5, f)
		return xstream.Void{}, nil
	})

	_, err := factory.BuildStream(nil, nil, nil, nil)
	require.NoError(t, err)
}

func TestDeclarationOverridesDefaultAttr(t *testing.T) {
	t.Parallel()

	decl := Declaration{}.DefaultAttr("ratio", "fraction", xstream.FloatValue(0.5))
	factory := NewStreamFactory(decl, func(p *Parameters) (xstream.Stream, error) {
		v, err := p.AcquireAttribute("ratio")
		require.NoError(t, err)
		f, err := xstream.AsFloat(v)
		require.NoError(t, err)
		require.Equal(t, 0.9, f)
		return xstream.Void{}, nil
	})

	_, err := factory.BuildStream(map[string]xstream.AttributeValue{"ratio": xstream.FloatValue(0.9)}, nil, nil, nil)
	require.NoError(t, err)
}

func TestDeclarationExtraArtifactsAreCollected(t *testing.T) {
	t.Parallel()

	decl := Declaration{}.Artifact("primary", "the only declared artifact")
	var extras []*xstream.AnyArtifact
	factory := NewStreamFactory(decl, func(p *Parameters) (xstream.Stream, error) {
		_, err := p.AcquireArtifact("primary")
		require.NoError(t, err)
		extras = p.AcquireArtifactExtra()
		return xstream.Void{}, nil
	})

	a1 := xstream.NewArtifact("stats", xstream.NewStatistics())
	a2 := xstream.NewArtifact("stats", xstream.NewStatistics())
	_, err := factory.BuildStream(nil, []*xstream.AnyArtifact{&a1, &a2}, nil, nil)
	require.NoError(t, err)
	require.Len(t, extras, 1)
}

func TestFactoryTypeMismatch(t *testing.T) {
	t.Parallel()

	sink := NewSinkFactory(Declaration{}, func(*Parameters) (xstream.Sink, error) { return xstream.Void{}, nil })
	_, err := sink.BuildStream(nil, nil, nil, nil)
	require.Error(t, err)
}

func TestDefaultRegistryHasBuiltins(t *testing.T) {
	t.Parallel()

	r := Default()
	for _, name := range []string{"VoidStream", "VoidSink", "Duplicator", "Statistics", "Validator", "Repair", "Split", "Sample", "Sender", "Receiver", "Log"} {
		_, ok := r.Get(name)
		require.True(t, ok, "expected %q to be registered", name)
	}
}

func TestAcquireRatioAndSeedDefaultsToTimeSeeded(t *testing.T) {
	t.Parallel()

	r := Default()
	entry, ok := r.Get("Split")
	require.True(t, ok)

	inner := xstream.NewBuffer()
	inner.OnClose()
	side := xstream.NewBuffer()

	stream, err := entry.Factory.BuildStream(nil, nil, []xstream.Stream{inner}, []xstream.Sink{side})
	require.NoError(t, err)
	require.NotNil(t, stream)
}
