package storage

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	errs "github.com/Memorem/wallpaperflare-parser/pkg/errors"
)

// ImageName is the identity parsed from an image URL
type ImageName struct {
	Token string
	Ext   string
}

// ParseImageURL takes the last path segment of raw, uses the text after its
// final '-' as the token and the text after its final '.' as the extension.
// Query strings and fragments are ignored.
func ParseImageURL(raw string) (ImageName, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return ImageName{}, errs.Wrap(errs.ErrorTypeBadURL, raw, err)
	}

	base := path.Base(u.Path)
	dot := strings.LastIndex(base, ".")
	if dot <= 0 || dot == len(base)-1 {
		return ImageName{}, errs.New(errs.ErrorTypeBadURL, raw, "image URL has no file extension")
	}
	stem, ext := base[:dot], base[dot+1:]

	token := stem
	if i := strings.LastIndex(stem, "-"); i >= 0 {
		token = stem[i+1:]
	}
	if token == "" {
		return ImageName{}, errs.New(errs.ErrorTypeBadURL, raw, "image URL has an empty name token")
	}

	return ImageName{Token: token, Ext: strings.ToLower(ext)}, nil
}

// FileName returns <prefix>_<token>.<ext>
func (n ImageName) FileName(prefix string) string {
	return fmt.Sprintf("%s_%s.%s", prefix, n.Token, n.Ext)
}

// parseFileName is the inverse of FileName. ok is false for names that do not
// carry prefix or lack a token or extension.
func parseFileName(name, prefix string) (ImageName, bool) {
	rest, found := strings.CutPrefix(name, prefix+"_")
	if !found {
		return ImageName{}, false
	}
	dot := strings.LastIndex(rest, ".")
	if dot <= 0 || dot == len(rest)-1 {
		return ImageName{}, false
	}
	return ImageName{Token: rest[:dot], Ext: rest[dot+1:]}, true
}
