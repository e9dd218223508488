package upload

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreSaveRead(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "uploads"), 1024)
	require.NoError(t, err)

	path, err := store.Save([]byte("document body"), "notes.txt")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "_notes.txt"))

	data, err := store.Read(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("document body"), data)
}

func TestStoreUniqueNames(t *testing.T) {
	store, err := NewStore(t.TempDir(), 1024)
	require.NoError(t, err)

	a, err := store.Save([]byte("x"), "same.txt")
	require.NoError(t, err)
	b, err := store.Save([]byte("y"), "same.txt")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestStoreSizeLimit(t *testing.T) {
	store, err := NewStore(t.TempDir(), 10)
	require.NoError(t, err)

	_, err = store.Save(make([]byte, 11), "big.txt")
	assert.ErrorContains(t, err, "file too large")
}

func TestStoreDelete(t *testing.T) {
	store, err := NewStore(t.TempDir(), 1024)
	require.NoError(t, err)

	path, err := store.Save([]byte("x"), "gone.txt")
	require.NoError(t, err)
	require.NoError(t, store.Delete(path))

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	// deleting again is not an error
	assert.NoError(t, store.Delete(path))
}

func TestStoreStripsDirectoryComponents(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, 1024)
	require.NoError(t, err)

	path, err := store.Save([]byte("x"), "../escape.txt")
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
}
