package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTagMode(t *testing.T) {
	s := New("  Nature ", "/data", map[string]string{"User-Agent": "ua"})

	assert.Equal(t, ModeTag, s.Mode())
	assert.Equal(t, "nature", s.Tag())
	assert.Equal(t, filepath.Join("/data", "image", "nature"), s.Dir())
}

func TestNewMainPageMode(t *testing.T) {
	for _, tag := range []string{"", "   ", "\t"} {
		s := New(tag, "/data", nil)
		assert.Equal(t, ModeMainPage, s.Mode())
		assert.Empty(t, s.Tag())
		assert.Equal(t, filepath.Join("/data", "image", MainPageLabel), s.Dir())
	}
}

func TestHeadersAreCopied(t *testing.T) {
	in := map[string]string{"User-Agent": "ua"}
	s := New("cats", ".", in)

	in["User-Agent"] = "changed"
	got := s.Headers()
	assert.Equal(t, "ua", got["User-Agent"])

	got["User-Agent"] = "mutated"
	assert.Equal(t, "ua", s.Headers()["User-Agent"])
}

func TestEnsureDir(t *testing.T) {
	root := t.TempDir()
	s := New("space", root, nil)

	require.NoError(t, s.EnsureDir())
	info, err := os.Stat(s.Dir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// second call is a no-op
	require.NoError(t, s.EnsureDir())
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "tag", ModeTag.String())
	assert.Equal(t, "main_page", ModeMainPage.String())
}
