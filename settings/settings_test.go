package settings

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegepoly/vegepoly/vegmodel"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenSeedsDefaults(t *testing.T) {
	store := openTestStore(t)

	for _, vt := range []int{vegmodel.TypeTrees, vegmodel.TypeSurfaces, vegmodel.TypeRocailles} {
		p, ok, err := store.DefaultParams(vt)
		require.NoError(t, err)
		require.True(t, ok, "missing seeded default for type %d", vt)
		assert.Equal(t, vegmodel.DefaultParams(vt), p)
	}

	types, err := store.AvailableTypes()
	require.NoError(t, err)
	assert.Equal(t, []int{vegmodel.TypeTrees, vegmodel.TypeSurfaces, vegmodel.TypeRocailles}, types)
}

func TestExportPath(t *testing.T) {
	store := openTestStore(t)

	path, err := store.ExportPath()
	require.NoError(t, err)
	assert.Empty(t, path)

	require.NoError(t, store.SetExportPath("/data/exports"))
	path, err = store.ExportPath()
	require.NoError(t, err)
	assert.Equal(t, "/data/exports", path)

	// Replaces rather than accumulates.
	require.NoError(t, store.SetExportPath("/tmp"))
	path, err = store.ExportPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp", path)
}

func TestUserParamsLifecycle(t *testing.T) {
	store := openTestStore(t)

	has, err := store.HasUserParams(vegmodel.TypeSurfaces)
	require.NoError(t, err)
	assert.False(t, has)

	override := vegmodel.Params{VegetationType: vegmodel.TypeSurfaces, Density: 7.5, Variation: 0.2, TypeValue: 25}
	require.NoError(t, store.SetUserParams(override))

	has, err = store.HasUserParams(vegmodel.TypeSurfaces)
	require.NoError(t, err)
	assert.True(t, has)

	got, ok, err := store.UserParams(vegmodel.TypeSurfaces)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, override, got)

	removed, ok, err := store.RemoveUserParams(vegmodel.TypeSurfaces)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, override, removed)

	_, ok, err = store.UserParams(vegmodel.TypeSurfaces)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetUserParamsRejectsInvalid(t *testing.T) {
	store := openTestStore(t)

	assert.Error(t, store.SetUserParams(vegmodel.Params{VegetationType: 0, Density: 5}))
	assert.Error(t, store.SetUserParams(vegmodel.Params{VegetationType: 1, Density: 0}))
	assert.Error(t, store.SetUserParams(vegmodel.Params{VegetationType: 1, Density: 5, Variation: -0.1}))
}

func TestEffectiveParamsPrecedence(t *testing.T) {
	store := openTestStore(t)

	// No override: the stored default wins.
	p, err := store.EffectiveParams(vegmodel.TypeTrees)
	require.NoError(t, err)
	assert.Equal(t, vegmodel.DefaultParams(vegmodel.TypeTrees), p)

	override := vegmodel.Params{VegetationType: vegmodel.TypeTrees, Density: 3, Variation: 2, TypeValue: 99}
	require.NoError(t, store.SetUserParams(override))

	p, err = store.EffectiveParams(vegmodel.TypeTrees)
	require.NoError(t, err)
	assert.Equal(t, override, p)

	// Unknown types fall back to the built-in profile.
	p, err = store.EffectiveParams(9)
	require.NoError(t, err)
	assert.Equal(t, vegmodel.DefaultParams(9), p)
}

func TestResetUserParams(t *testing.T) {
	store := openTestStore(t)

	for _, vt := range []int{vegmodel.TypeTrees, vegmodel.TypeSurfaces} {
		p := vegmodel.DefaultParams(vt)
		p.Density = 42
		require.NoError(t, store.SetUserParams(p))
	}
	require.NoError(t, store.ResetUserParams())

	for _, vt := range []int{vegmodel.TypeTrees, vegmodel.TypeSurfaces} {
		has, err := store.HasUserParams(vt)
		require.NoError(t, err)
		assert.False(t, has)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.SetExportPath("/keep"))
	require.NoError(t, store.Close())

	// Reopening keeps data and does not duplicate seeded defaults.
	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()

	p, err := store.ExportPath()
	require.NoError(t, err)
	assert.Equal(t, "/keep", p)

	types, err := store.AvailableTypes()
	require.NoError(t, err)
	assert.Len(t, types, 3)
}
