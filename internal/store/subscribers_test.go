package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriberLifecycle(t *testing.T) {
	paths := testPaths(t)
	subs, err := LoadSubscribers(paths)
	require.NoError(t, err)

	sub, err := subs.Upsert(42)
	require.NoError(t, err)
	assert.True(t, sub.Active)
	assert.False(t, sub.Since.IsZero())
	assert.Empty(t, sub.Locale)

	require.NoError(t, subs.SetLocale(42, "es-es"))
	sub, ok := subs.Get(42)
	require.True(t, ok)
	assert.Equal(t, "es-es", sub.Locale)
	assert.Equal(t, "es-es", sub.UILang)

	changed, err := subs.Deactivate(42, "user request")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = subs.Deactivate(42, "user request")
	require.NoError(t, err)
	assert.False(t, changed)

	// Reactivation keeps the previously chosen locale.
	sub, err = subs.Upsert(42)
	require.NoError(t, err)
	assert.True(t, sub.Active)
	assert.Equal(t, "es-es", sub.Locale)
}

func TestSubscribersPersistAcrossReload(t *testing.T) {
	paths := testPaths(t)
	subs, err := LoadSubscribers(paths)
	require.NoError(t, err)

	_, err = subs.Upsert(7)
	require.NoError(t, err)
	require.NoError(t, subs.SetLocale(7, "en-us"))
	_, err = subs.Upsert(3)
	require.NoError(t, err)

	reloaded, err := LoadSubscribers(paths)
	require.NoError(t, err)
	sub, ok := reloaded.Get(7)
	require.True(t, ok)
	assert.Equal(t, "en-us", sub.Locale)
	_, ok = reloaded.Get(3)
	assert.True(t, ok)
}

func TestActiveByLocale(t *testing.T) {
	subs, err := LoadSubscribers(testPaths(t))
	require.NoError(t, err)

	for _, chat := range []int64{30, 10, 20} {
		_, err := subs.Upsert(chat)
		require.NoError(t, err)
		require.NoError(t, subs.SetLocale(chat, "en-us"))
	}
	_, err = subs.Upsert(40)
	require.NoError(t, err)
	require.NoError(t, subs.SetLocale(40, "es-es"))
	_, err = subs.Deactivate(20, "blocked")
	require.NoError(t, err)

	active := subs.ActiveByLocale("en-us")
	require.Len(t, active, 2)
	assert.Equal(t, int64(10), active[0].ChatID)
	assert.Equal(t, int64(30), active[1].ChatID)
}

func TestDeactivateUnknownChat(t *testing.T) {
	subs, err := LoadSubscribers(testPaths(t))
	require.NoError(t, err)

	changed, err := subs.Deactivate(999, "removed from chat")
	require.NoError(t, err)
	assert.False(t, changed)
}
