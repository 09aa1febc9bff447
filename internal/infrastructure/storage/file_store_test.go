package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "ether-stories-api/pkg/errors"
)

func TestFileStoreSaveAndResolve(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, "")
	require.NoError(t, err)

	ref, err := store.Save(context.Background(), "stories/abc/chapter_1.png", []byte("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "stories", "abc", "chapter_1.png"), ref)

	data, err := os.ReadFile(ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestFileStorePublicURL(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "https://media.example.com/")
	require.NoError(t, err)

	ref, err := store.Save(context.Background(), "stories/abc/chapter_2.mp3", []byte("mp3"))
	require.NoError(t, err)
	assert.Equal(t, "https://media.example.com/stories/abc/chapter_2.mp3", ref)
}

func TestFileStoreOverwriteIsAtomicReplace(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "")
	require.NoError(t, err)

	ref1, err := store.Save(context.Background(), "stories/x/chapter_1.png", []byte("v1"))
	require.NoError(t, err)
	ref2, err := store.Save(context.Background(), "stories/x/chapter_1.png", []byte("v2"))
	require.NoError(t, err)
	assert.Equal(t, ref1, ref2)

	data, err := os.ReadFile(ref2)
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), data)
}

func TestFileStoreRejectsBadInput(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "")
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "../escape.png", []byte("x"))
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.CodeStorageError))

	_, err = store.Save(context.Background(), "", []byte("x"))
	require.Error(t, err)

	_, err = store.Save(context.Background(), "stories/a/empty.png", nil)
	require.Error(t, err)
}

func TestNewFileStoreRequiresBaseDir(t *testing.T) {
	_, err := NewFileStore("  ", "")
	require.Error(t, err)
}
