package checkpoint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Memorem/wallpaperflare-parser/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte(n), 0644))
	}
}

func TestOpenMissingIsEmpty(t *testing.T) {
	dir := t.TempDir()
	cp, err := Open(dir, "cats", logger.NewNopLogger())
	require.NoError(t, err)

	assert.Zero(t, cp.Len())
	assert.Equal(t, filepath.Join(dir, FileName), cp.Path())
	_, statErr := os.Stat(cp.Path())
	assert.True(t, os.IsNotExist(statErr), "opening must not create the file")
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "wallpaper_flare_0.jpg")

	cp := New(dir, "cats", logger.NewNopLogger())
	cp.Record("wallpaper_flare_123.jpg", "wallpaper_flare_0.jpg")
	require.NoError(t, cp.Save())

	reloaded, err := Open(dir, "cats", logger.NewNopLogger())
	require.NoError(t, err)
	file, ok := reloaded.Lookup("wallpaper_flare_123.jpg")
	assert.True(t, ok)
	assert.Equal(t, "wallpaper_flare_0.jpg", file)

	key, ok := reloaded.Owner("wallpaper_flare_0.jpg")
	assert.True(t, ok)
	assert.Equal(t, "wallpaper_flare_123.jpg", key)

	// only the checkpoint and the image, no temporary files
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestLookupIgnoresDeletedFiles(t *testing.T) {
	dir := t.TempDir()
	cp := New(dir, "cats", logger.NewNopLogger())
	cp.Record("wallpaper_flare_5.jpg", "wallpaper_flare_0.jpg")

	_, ok := cp.Lookup("wallpaper_flare_5.jpg")
	assert.False(t, ok)
	_, ok = cp.Owner("wallpaper_flare_0.jpg")
	assert.False(t, ok)

	touch(t, dir, "wallpaper_flare_0.jpg")
	_, ok = cp.Lookup("wallpaper_flare_5.jpg")
	assert.True(t, ok)
}

func TestRemapFollowsRenames(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "wallpaper_flare_0.jpg", "wallpaper_flare_1.jpg")

	cp := New(dir, "cats", logger.NewNopLogger())
	cp.Record("wallpaper_flare_70.jpg", "wallpaper_flare_1.jpg")
	cp.Record("wallpaper_flare_90.jpg", "wallpaper_flare_0.jpg")

	// swap: 1 -> 0 and 0 -> 1
	cp.Remap(map[string]string{
		"wallpaper_flare_1.jpg": "wallpaper_flare_0.jpg",
		"wallpaper_flare_0.jpg": "wallpaper_flare_1.jpg",
	})

	file, _ := cp.Lookup("wallpaper_flare_70.jpg")
	assert.Equal(t, "wallpaper_flare_0.jpg", file)
	file, _ = cp.Lookup("wallpaper_flare_90.jpg")
	assert.Equal(t, "wallpaper_flare_1.jpg", file)
	key, _ := cp.Owner("wallpaper_flare_0.jpg")
	assert.Equal(t, "wallpaper_flare_70.jpg", key)
}

func TestRecordReplacesPreviousFile(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "wallpaper_flare_3.jpg", "wallpaper_flare_7.jpg")

	cp := New(dir, "", logger.NewNopLogger())
	cp.Record("wallpaper_flare_7.jpg", "wallpaper_flare_3.jpg")
	cp.Record("wallpaper_flare_7.jpg", "wallpaper_flare_7.jpg")

	assert.Equal(t, 1, cp.Len())
	_, ok := cp.Owner("wallpaper_flare_3.jpg")
	assert.False(t, ok)
	key, ok := cp.Owner("wallpaper_flare_7.jpg")
	assert.True(t, ok)
	assert.Equal(t, "wallpaper_flare_7.jpg", key)
}

func TestOpenCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("{not json"), 0644))

	cp, err := Open(dir, "cats", logger.NewNopLogger())
	require.Error(t, err)
	require.NotNil(t, cp)
	assert.Zero(t, cp.Len())
}
