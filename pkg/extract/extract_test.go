package extract

import (
	"fmt"
	"strings"
	"testing"

	errs "github.com/Memorem/wallpaperflare-parser/pkg/errors"
	"github.com/Memorem/wallpaperflare-parser/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tagListing(hrefs ...string) []byte {
	var b strings.Builder
	b.WriteString(`<html><body><ul class="gallery">`)
	for _, h := range hrefs {
		fmt.Fprintf(&b, `<li itemscope><figure><a itemprop="url" href="%s"><img src="thumb.jpg"></a></figure></li>`, h)
	}
	b.WriteString(`</ul><a itemprop="url" href="/outside-gallery"></a></body></html>`)
	return []byte(b.String())
}

func TestRefererLinksTagMode(t *testing.T) {
	for k := 1; k <= 5; k++ {
		hrefs := make([]string, k)
		for i := range hrefs {
			hrefs[i] = fmt.Sprintf("https://www.wallpaperflare.com/item-%d-wallpaper", i)
		}

		links, err := RefererLinks(tagListing(hrefs...), session.ModeTag)
		require.NoError(t, err)
		assert.Equal(t, hrefs, links)
	}
}

func TestRefererLinksDeduplicates(t *testing.T) {
	links, err := RefererLinks(tagListing("/a", "/b", "/a", "/c", "/b"), session.ModeTag)
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/b", "/c"}, links)
}

func TestRefererLinksMainPageMode(t *testing.T) {
	fragment := `<li><a itemprop="url" href="/one"></a></li><li><a itemprop="url" href="/two"></a></li>`

	links, err := RefererLinks([]byte(fragment), session.ModeMainPage)
	require.NoError(t, err)
	assert.Equal(t, []string{"/one", "/two"}, links)

	// main page selector does not match a tag listing
	_, err = RefererLinks(tagListing("/x"), session.ModeMainPage)
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestRefererLinksNoMatch(t *testing.T) {
	for _, body := range []string{"", "<html><body><p>nothing</p></body></html>", "<ul class=\"gallery\"></ul>", "\x00\xff<<<"} {
		links, err := RefererLinks([]byte(body), session.ModeTag)
		assert.Nil(t, links)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNoMatch)
		assert.Equal(t, errs.ErrorTypeParsing, errs.TypeOf(err))
	}
}

func TestImagePageLink(t *testing.T) {
	body := `<div><a class="link_btn aq mt20" href="/photo-123/download">Download</a>
		<a class="link_btn aq mt20" href="/second">Other</a></div>`

	link, err := ImagePageLink([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, "/photo-123/download", link)

	_, err = ImagePageLink([]byte(`<a class="link_btn" href="/partial">x</a>`))
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestDownloadLink(t *testing.T) {
	body := `<section itemprop="primaryImageOfPage"><img id="show_img" src="https://c4.wallpaperflare.com/wallpaper/1/2/3/photo-42.jpg"></section>`

	link, err := DownloadLink([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, "https://c4.wallpaperflare.com/wallpaper/1/2/3/photo-42.jpg", link)

	// the image must be a direct child of the section
	nested := `<section itemprop="primaryImageOfPage"><div><img id="show_img" src="/x.jpg"></div></section>`
	_, err = DownloadLink([]byte(nested))
	assert.ErrorIs(t, err, ErrNoMatch)

	empty := `<section itemprop="primaryImageOfPage"><img id="show_img" src=""></section>`
	_, err = DownloadLink([]byte(empty))
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestResolve(t *testing.T) {
	got, err := Resolve("http://127.0.0.1:9000/search?wallpaper=x&page=1", "/nature-123")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000/nature-123", got)

	got, err = Resolve("http://127.0.0.1:9000/a", "https://cdn.example.com/i.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/i.jpg", got)
}

func TestSet(t *testing.T) {
	s := NewSet()
	assert.True(t, s.Add("b"))
	assert.True(t, s.Add("a"))
	assert.False(t, s.Add("b"))
	assert.False(t, s.Add(""))
	s.AddAll([]string{"c", "a"})

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []string{"b", "a", "c"}, s.Items())
}
