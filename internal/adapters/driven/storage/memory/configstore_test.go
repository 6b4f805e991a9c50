package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("index.name", "quaestor-chunks"))

	val, ok := store.Get("index.name")
	assert.True(t, ok)
	assert.Equal(t, "quaestor-chunks", val)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("str", "value"))
	require.NoError(t, store.Set("int", 42))
	require.NoError(t, store.Set("int64", int64(7)))
	require.NoError(t, store.Set("float", 3.0))
	require.NoError(t, store.Set("bool", true))
	require.NoError(t, store.Set("slice", []string{"a", "b"}))
	require.NoError(t, store.Set("anyslice", []any{"c", 1, "d"}))

	assert.Equal(t, "value", store.GetString("str"))
	assert.Equal(t, "", store.GetString("int"))
	assert.Equal(t, 42, store.GetInt("int"))
	assert.Equal(t, 7, store.GetInt("int64"))
	assert.Equal(t, 3, store.GetInt("float"))
	assert.Equal(t, 0, store.GetInt("str"))
	assert.True(t, store.GetBool("bool"))
	assert.False(t, store.GetBool("str"))
	assert.Equal(t, []string{"a", "b"}, store.GetStringSlice("slice"))
	assert.Equal(t, []string{"c", "d"}, store.GetStringSlice("anyslice"))
	assert.Nil(t, store.GetStringSlice("int"))
}

func TestConfigStore_MissingKeysReturnZeroValues(t *testing.T) {
	store := NewConfigStore()

	assert.Equal(t, "", store.GetString("missing"))
	assert.Equal(t, 0, store.GetInt("missing"))
	assert.False(t, store.GetBool("missing"))
	assert.Nil(t, store.GetStringSlice("missing"))
}

func TestConfigStore_SaveLoadPath(t *testing.T) {
	store := NewConfigStore()

	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
	assert.Equal(t, ":memory:", store.Path())
}
