// Package session holds the immutable per-run context shared by every stage.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Mode selects which listing the paginator walks
type Mode int

const (
	// ModeTag walks the search listing for a tag
	ModeTag Mode = iota
	// ModeMainPage walks the front page "load more" listing
	ModeMainPage
)

func (m Mode) String() string {
	switch m {
	case ModeTag:
		return "tag"
	case ModeMainPage:
		return "main_page"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// MainPageLabel names the output directory used when no tag is given
const MainPageLabel = "Main page image"

// Session is created once per run and never mutated afterwards
type Session struct {
	tag     string
	mode    Mode
	dir     string
	headers map[string]string
}

var lower = cases.Lower(language.Und)

// New normalises tag and derives the output directory <rootDir>/image/<label>.
// An empty or whitespace-only tag selects main page mode.
func New(tag, rootDir string, headers map[string]string) *Session {
	tag = lower.String(strings.TrimSpace(tag))

	s := &Session{
		tag:     tag,
		mode:    ModeTag,
		headers: make(map[string]string, len(headers)),
	}
	for k, v := range headers {
		s.headers[k] = v
	}

	label := tag
	if tag == "" {
		s.mode = ModeMainPage
		label = MainPageLabel
	}
	s.dir = filepath.Join(rootDir, "image", label)
	return s
}

// Tag returns the normalised tag, empty in main page mode
func (s *Session) Tag() string { return s.tag }

// Mode returns the listing mode
func (s *Session) Mode() Mode { return s.mode }

// Dir returns the destination directory
func (s *Session) Dir() string { return s.dir }

// Headers returns a copy of the static request headers
func (s *Session) Headers() map[string]string {
	out := make(map[string]string, len(s.headers))
	for k, v := range s.headers {
		out[k] = v
	}
	return out
}

// EnsureDir creates the destination directory and its parents
func (s *Session) EnsureDir() error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", s.dir, err)
	}
	return nil
}
