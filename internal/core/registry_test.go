package core

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinyprotocol/internal/shared"
	"tinyprotocol/internal/types"
)

type fakeProtocolIndex struct {
	index types.ProtocolIndex
	err   error
	loads int
}

func (f *fakeProtocolIndex) Load(context.Context) (types.ProtocolIndex, error) {
	f.loads++
	return f.index, f.err
}

func TestVersionRegistryRegister(t *testing.T) {
	registry := NewVersionRegistry()
	require.NoError(t, registry.Register("1.16.5", 754))
	require.NoError(t, registry.RegisterUnresolved("1.17"))
	require.NoError(t, registry.Register("1.16.5", 753))

	want := []types.VersionEntry{
		{ID: "1.16.5", Protocol: 753},
		{ID: "1.17", Protocol: types.UnresolvedProtocol},
	}
	if diff := cmp.Diff(want, registry.Versions()); diff != "" {
		t.Fatalf("unexpected versions (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"1.17"}, registry.Unresolved())
	pos, ok := registry.IndexOf("1.17")
	assert.True(t, ok)
	assert.Equal(t, 1, pos)
}

func TestVersionRegistryRejectsInvalid(t *testing.T) {
	registry := NewVersionRegistry()
	err := registry.Register("1.16.5", -3)
	require.Error(t, err)
	assert.Equal(t, shared.KindInvalidConfiguration, shared.KindOf(err))

	err = registry.Register(" ", 1)
	require.Error(t, err)
	assert.Equal(t, shared.KindInvalidConfiguration, shared.KindOf(err))

	registry.Seal()
	err = registry.Register("1.17", 755)
	require.Error(t, err)
	assert.Equal(t, shared.KindInvalidConfiguration, shared.KindOf(err))
}

func TestVersionRegistryResolveAll(t *testing.T) {
	registry := NewVersionRegistry()
	require.NoError(t, registry.Register("1.16.5", 754))
	require.NoError(t, registry.RegisterUnresolved("1.17"))
	require.NoError(t, registry.RegisterUnresolved("1.17.1"))

	index := &fakeProtocolIndex{index: types.ProtocolIndex{"1.17": 755, "1.17.1": 756}}
	require.NoError(t, registry.ResolveAll(t.Context(), index))
	ordinals, err := registry.Ordinals()
	require.NoError(t, err)
	assert.Equal(t, []int{754, 755, 756}, ordinals)

	require.NoError(t, registry.ResolveAll(t.Context(), index))
	assert.Equal(t, 1, index.loads, "a resolved registry must not reload the index")
}

func TestVersionRegistryResolveAllMissingEntry(t *testing.T) {
	registry := NewVersionRegistry()
	require.NoError(t, registry.RegisterUnresolved("1.17"))
	require.NoError(t, registry.RegisterUnresolved("21w37a"))

	err := registry.ResolveAll(t.Context(), &fakeProtocolIndex{index: types.ProtocolIndex{"1.17": 755}})
	require.Error(t, err)
	assert.Equal(t, shared.KindUnresolvableVersion, shared.KindOf(err))
	assert.Contains(t, shared.ErrorMessage(err), "21w37a")
	assert.Equal(t, []string{"1.17", "21w37a"}, registry.Unresolved(), "a failed resolution leaves the registry untouched")

	_, err = registry.Ordinals()
	require.Error(t, err)
	assert.Equal(t, shared.KindUnresolvableVersion, shared.KindOf(err))
}

func TestVersionRegistryResolveAllIndexFailure(t *testing.T) {
	registry := NewVersionRegistry()
	require.NoError(t, registry.RegisterUnresolved("1.17"))

	err := registry.ResolveAll(t.Context(), &fakeProtocolIndex{err: assert.AnError})
	require.Error(t, err)
	assert.Equal(t, "failed to load protocol index", shared.ErrorMessage(err))

	err = registry.ResolveAll(t.Context(), nil)
	require.Error(t, err)
	assert.Equal(t, shared.KindUnresolvableVersion, shared.KindOf(err))
}

func TestVersionRegistryOrdinalsEmpty(t *testing.T) {
	_, err := NewVersionRegistry().Ordinals()
	require.Error(t, err)
	assert.Equal(t, shared.KindInvalidConfiguration, shared.KindOf(err))
}

func TestVersionRegistryCheckOrdering(t *testing.T) {
	registry := NewVersionRegistry()
	require.NoError(t, registry.Register("1.17", 755))
	require.NoError(t, registry.Register("1.16.5", 754))
	require.NoError(t, registry.Register("1.17.1", 756))

	warnings := registry.CheckOrdering(t.Context())
	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], "1.16.5")
	assert.Contains(t, warnings[1], "protocol 754")
}
