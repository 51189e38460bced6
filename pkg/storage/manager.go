package storage

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	errs "github.com/Memorem/wallpaperflare-parser/pkg/errors"
)

// Manager writes images into one output directory. Files are addressed by
// their base name inside that directory.
type Manager struct {
	outputDir string
	prefix    string
}

// NewManager creates the output directory if needed
func NewManager(outputDir, prefix string) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeStorage, "", fmt.Errorf("failed to create output directory: %w", err))
	}
	return &Manager{outputDir: outputDir, prefix: prefix}, nil
}

// FileName returns the file name a freshly downloaded image gets
func (m *Manager) FileName(name ImageName) string {
	return name.FileName(m.prefix)
}

// Path returns the full path of file
func (m *Manager) Path(file string) string {
	return filepath.Join(m.outputDir, file)
}

// Exists reports whether file is present as a regular file
func (m *Manager) Exists(file string) bool {
	info, err := os.Stat(m.Path(file))
	return err == nil && info.Mode().IsRegular()
}

// SaveImage writes r to file via a temporary file and returns the final path
func (m *Manager) SaveImage(r io.Reader, file string) (string, error) {
	final := m.Path(file)

	tmp, err := os.CreateTemp(m.outputDir, "."+file+".*.tmp")
	if err != nil {
		return "", errs.Wrap(errs.ErrorTypeStorage, final, fmt.Errorf("failed to create temporary file: %w", err))
	}
	tmpName := tmp.Name()

	_, err = io.Copy(tmp, r)
	closeErr := tmp.Close()
	if err != nil {
		os.Remove(tmpName)
		return "", errs.Wrap(errs.ErrorTypeStorage, final, fmt.Errorf("failed to write image data: %w", err))
	}
	if closeErr != nil {
		os.Remove(tmpName)
		return "", errs.Wrap(errs.ErrorTypeStorage, final, fmt.Errorf("failed to close file: %w", closeErr))
	}

	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return "", errs.Wrap(errs.ErrorTypeStorage, final, err)
	}
	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		return "", errs.Wrap(errs.ErrorTypeStorage, final, fmt.Errorf("failed to rename temporary file: %w", err))
	}

	return final, nil
}

// SaveBytes is SaveImage for an in-memory body
func (m *Manager) SaveBytes(body []byte, file string) (string, error) {
	return m.SaveImage(bytes.NewReader(body), file)
}
