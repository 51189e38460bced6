// Package extract pulls the three link kinds out of wallpaperflare HTML.
// All functions are pure and never panic on unexpected markup.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"strings"

	errs "github.com/Memorem/wallpaperflare-parser/pkg/errors"
	"github.com/Memorem/wallpaperflare-parser/pkg/session"
	"github.com/PuerkitoBio/goquery"
)

// ErrNoMatch means the selector matched nothing usable
var ErrNoMatch = errors.New("no matching element")

const (
	// TagListingSelector finds referer anchors on a search listing
	TagListingSelector = `ul.gallery > li a[itemprop="url"]`
	// MainListingSelector finds referer anchors in a "load more" fragment
	MainListingSelector = `body > li a[itemprop="url"]`
	// ImagePageSelector finds the download button on a referer page
	ImagePageSelector = `a.link_btn.aq.mt20`
	// DownloadSelector finds the full-size image on an image page
	DownloadSelector = `section[itemprop="primaryImageOfPage"] > img#show_img`
)

// RefererLinks returns the distinct href values of the listing anchors in
// first-seen order.
func RefererLinks(body []byte, mode session.Mode) ([]string, error) {
	sel := TagListingSelector
	if mode == session.ModeMainPage {
		sel = MainListingSelector
	}

	doc, err := parse(body)
	if err != nil {
		return nil, err
	}

	links := NewSet()
	doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			links.Add(strings.TrimSpace(href))
		}
	})
	if links.Len() == 0 {
		return nil, noMatch(sel)
	}
	return links.Items(), nil
}

// ImagePageLink returns the href of the first download button
func ImagePageLink(body []byte) (string, error) {
	return firstAttr(body, ImagePageSelector, "href")
}

// DownloadLink returns the src of the full-size image
func DownloadLink(body []byte) (string, error) {
	return firstAttr(body, DownloadSelector, "src")
}

// Resolve makes ref absolute against base. Absolute refs are returned unchanged.
func Resolve(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", errs.Wrap(errs.ErrorTypeBadURL, base, err)
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", errs.Wrap(errs.ErrorTypeBadURL, ref, err)
	}
	return b.ResolveReference(r).String(), nil
}

func firstAttr(body []byte, sel, attr string) (string, error) {
	doc, err := parse(body)
	if err != nil {
		return "", err
	}
	v, ok := doc.Find(sel).First().Attr(attr)
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return "", noMatch(sel)
	}
	return v, nil
}

func parse(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeParsing, "", fmt.Errorf("failed to parse HTML: %w", err))
	}
	return doc, nil
}

func noMatch(sel string) error {
	return errs.Wrap(errs.ErrorTypeParsing, "", fmt.Errorf("%w for %s", ErrNoMatch, sel))
}
