package mmht

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ValentinKolb/mmkv/lib/db"
	"github.com/ValentinKolb/mmkv/lib/region"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T, capacity int) (db.KVDB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "store.mmkv")
	database, err := NewMMHT(path, &Options{Capacity: capacity})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database, path
}

func TestBoundedKeysAndValues(t *testing.T) {
	database, _ := openTemp(t, 16)

	err := database.Set(strings.Repeat("k", 63), []byte("v"))
	assert.ErrorIs(t, err, db.ErrKeyTooLong)

	err = database.Set("k", make([]byte, 253))
	assert.ErrorIs(t, err, db.ErrValueTooLarge)

	require.NoError(t, database.Set(strings.Repeat("k", 62), make([]byte, 252)))
	assert.Equal(t, 1, database.Count())

	// unrepresentable keys are simply absent
	assert.False(t, database.Has(strings.Repeat("k", 63)))
	_, ok := database.Get(strings.Repeat("k", 63))
	assert.False(t, ok)
	assert.NoError(t, database.Delete(strings.Repeat("k", 63)))
	assert.Equal(t, 1, database.Count())
}

func TestStoreFull(t *testing.T) {
	database, _ := openTemp(t, 4)

	for _, k := range []string{"a", "b", "c", "d"} {
		require.NoError(t, database.Set(k, []byte(k)))
	}
	before := storeFull.Get()

	err := database.Set("e", []byte("e"))
	assert.ErrorIs(t, err, db.ErrStoreFull)
	assert.Equal(t, before+1, storeFull.Get())

	// updates still work on a full table
	require.NoError(t, database.Set("a", []byte("A")))
	v, ok := database.Get("a")
	require.True(t, ok)
	assert.Equal(t, []byte("A"), v)

	// deleting frees a slot
	require.NoError(t, database.Delete("b"))
	require.NoError(t, database.Set("e", []byte("e")))
}

func TestDataSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.mmkv")

	database, err := NewMMHT(path, &Options{Capacity: 64})
	require.NoError(t, err)
	require.NoError(t, database.Set("x", []byte("1")))
	require.NoError(t, database.Close())

	database, err = NewMMHT(path, &Options{Capacity: 64})
	require.NoError(t, err)
	defer database.Close()

	v, ok := database.Get("x")
	require.True(t, ok)
	assert.Equal(t, []byte("1"), v)
}

func TestForeignFileIsRefused(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foreign")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\necho hello\n"), 0600))

	_, err := NewMMHT(path, nil)
	assert.ErrorIs(t, err, region.ErrFormat)
}

func TestGetInfo(t *testing.T) {
	database, path := openTemp(t, 32)

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, database.Set(k, bytes.Repeat([]byte("x"), 10)))
	}
	require.NoError(t, database.Delete("c"))
	database.Get("a")

	dbInfo := database.GetInfo()
	assert.Equal(t, db.ImplMMHT, dbInfo.DbType)
	assert.Greater(t, dbInfo.SizeBytes, 32*320)
	assert.Len(t, dbInfo.SupportedFeatures, 9)

	meta, ok := dbInfo.Metadata.(*info)
	require.True(t, ok)
	assert.Equal(t, path, meta.Path)
	assert.Equal(t, 32, meta.Capacity)
	assert.Equal(t, 2, meta.Entries)
	assert.Equal(t, 1, meta.Tombstones)
	assert.InDelta(t, 3.0/32.0, meta.LoadFactor, 1e-9)
	assert.Equal(t, int64(3), meta.Latency.SetCount)
	assert.Equal(t, int64(1), meta.Latency.GetCount)
}

func TestKeysAfterClear(t *testing.T) {
	database, _ := openTemp(t, 16)

	require.NoError(t, database.Set("one", nil))
	require.NoError(t, database.Set("two", nil))
	assert.ElementsMatch(t, []string{"one", "two"}, database.Keys())

	require.NoError(t, database.Clear())
	assert.Empty(t, database.Keys())
	assert.Equal(t, 0, database.Count())
}

func TestWritePrometheus(t *testing.T) {
	database, _ := openTemp(t, 16)
	require.NoError(t, database.Set("k", nil))

	var buf bytes.Buffer
	WritePrometheus(&buf)
	assert.Contains(t, buf.String(), `mmkv_ops_total{op="set"}`)
	assert.Contains(t, buf.String(), `mmkv_store_full_total`)
}
