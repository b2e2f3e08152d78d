package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerAppendAndDelivered(t *testing.T) {
	paths := testPaths(t)
	ledger, err := LoadLedger(paths)
	require.NoError(t, err)

	assert.Empty(t, ledger.Delivered(42, "en-us"))

	require.NoError(t, ledger.Append(42, "en-us", 413))
	require.NoError(t, ledger.Append(42, "en-us", 412))
	require.NoError(t, ledger.Append(42, "en-us", 413))
	require.NoError(t, ledger.Append(42, "es-es", 1))
	require.NoError(t, ledger.Append(7, "en-us", 413))

	delivered := ledger.Delivered(42, "en-us")
	assert.Equal(t, map[int]bool{412: true, 413: true}, delivered)
	assert.Equal(t, map[int]bool{1: true}, ledger.Delivered(42, "es-es"))
	assert.Equal(t, map[int]bool{413: true}, ledger.Delivered(7, "en-us"))
}

func TestLedgerPersistsPerAppend(t *testing.T) {
	paths := testPaths(t)
	ledger, err := LoadLedger(paths)
	require.NoError(t, err)
	require.NoError(t, ledger.Append(42, "en-us", 1))

	reloaded, err := LoadLedger(paths)
	require.NoError(t, err)
	assert.Equal(t, map[int]bool{1: true}, reloaded.Delivered(42, "en-us"))
}
