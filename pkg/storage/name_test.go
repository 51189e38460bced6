package storage

import (
	"testing"

	errs "github.com/Memorem/wallpaperflare-parser/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseImageURL(t *testing.T) {
	tests := []struct {
		url   string
		token string
		ext   string
	}{
		{"https://site/img/photo-42.jpg", "42", "jpg"},
		{"https://c4.wallpaperflare.com/wallpaper/1/2/3/sky-night-stars-7.PNG", "7", "png"},
		{"https://site/img/photo-42.jpg?w=1920#top", "42", "jpg"},
		{"https://site/img/plain.webp", "plain", "webp"},
		{"/relative/a-b-c-xyz.jpeg", "xyz", "jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			name, err := ParseImageURL(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.token, name.Token)
			assert.Equal(t, tt.ext, name.Ext)
		})
	}
}

func TestParseImageURLRejectsMalformed(t *testing.T) {
	for _, raw := range []string{
		"https://site/img/photo-42",
		"https://site/img/photo-.jpg",
		"https://site/img/photo-42.",
		"https://site/",
		"https://site/img/.jpg",
		"%zz",
	} {
		_, err := ParseImageURL(raw)
		require.Error(t, err, raw)
		assert.Equal(t, errs.ErrorTypeBadURL, errs.TypeOf(err), raw)
	}
}

func TestFileName(t *testing.T) {
	name, err := ParseImageURL("https://site/img/photo-42.jpg")
	require.NoError(t, err)
	assert.Equal(t, "wallpaper_flare_42.jpg", name.FileName("wallpaper_flare"))
}

func TestParseFileName(t *testing.T) {
	n, ok := parseFileName("wallpaper_flare_42.jpg", "wallpaper_flare")
	require.True(t, ok)
	assert.Equal(t, ImageName{Token: "42", Ext: "jpg"}, n)

	for _, name := range []string{"other_42.jpg", "wallpaper_flare_.jpg", "wallpaper_flare_42", "wallpaper_flare.jpg"} {
		_, ok := parseFileName(name, "wallpaper_flare")
		assert.False(t, ok, name)
	}
}
