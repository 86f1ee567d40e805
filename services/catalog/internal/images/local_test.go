package images

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_PutAndExists(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStorage(dir, "")
	ctx := context.Background()

	ok, err := store.Exists(ctx, "ring.jpg")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, "ring.jpg", strings.NewReader("jpeg-bytes")))

	ok, err = store.Exists(ctx, "ring.jpg")
	require.NoError(t, err)
	assert.True(t, ok)

	data, err := os.ReadFile(filepath.Join(dir, "ring.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))
}

func TestLocalStorage_Put_Overwrites(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStorage(dir, "")
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "ring.jpg", strings.NewReader("old")))
	require.NoError(t, store.Put(ctx, "ring.jpg", strings.NewReader("new")))

	data, err := os.ReadFile(filepath.Join(dir, "ring.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestLocalStorage_Put_CreatesSubdirectories(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStorage(filepath.Join(dir, "public", "data", "images"), "")

	require.NoError(t, store.Put(context.Background(), "hero/drinks-hero.jpg", strings.NewReader("svg")))
	assert.FileExists(t, filepath.Join(dir, "public", "data", "images", "hero", "drinks-hero.jpg"))
}

func TestLocalStorage_RejectsEscapingNames(t *testing.T) {
	store := NewLocalStorage(t.TempDir(), "")
	ctx := context.Background()

	for _, name := range []string{"../x.jpg", "/etc/passwd", ""} {
		err := store.Put(ctx, name, strings.NewReader("x"))
		assert.Error(t, err, name)
		_, err = store.Exists(ctx, name)
		assert.Error(t, err, name)
	}
}

func TestLocalStorage_Put_CancelledContext(t *testing.T) {
	store := NewLocalStorage(t.TempDir(), "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.Put(ctx, "ring.jpg", strings.NewReader("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocalStorage_URL(t *testing.T) {
	assert.Equal(t, "/data/images/J1.jpg", NewLocalStorage("x", "").URL("J1.jpg"))
	assert.Equal(t, "/static/J1.jpg", NewLocalStorage("x", "/static").URL("J1.jpg"))
}

func TestLocalStorage_List(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"J1.jpg", "J1_2.PNG", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "hero.jpg"), 0o755))

	names, err := NewLocalStorage(dir, "").List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"J1.jpg", "J1_2.PNG"}, names)
}

func TestLocalStorage_List_MissingDir(t *testing.T) {
	names, err := NewLocalStorage(filepath.Join(t.TempDir(), "nope"), "").List()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestIsImage(t *testing.T) {
	assert.True(t, IsImage("a.JPG"))
	assert.True(t, IsImage("dir/a.webp"))
	assert.True(t, IsImage("a.svg"))
	assert.False(t, IsImage("a.txt"))
	assert.False(t, IsImage("jpg"))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/png", ContentType("a.png"))
	assert.Equal(t, "image/jpeg", ContentType("a.JPG"))
	assert.Equal(t, "application/octet-stream", ContentType("a.unknownext"))
}
