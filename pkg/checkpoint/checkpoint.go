package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	errs "github.com/Memorem/wallpaperflare-parser/pkg/errors"
	"github.com/Memorem/wallpaperflare-parser/pkg/logger"
)

// FileName is the checkpoint file inside a download directory
const FileName = ".flareparser-checkpoint.json"

const currentVersion = 1

// Checkpoint is the persisted state of one download directory
type Checkpoint struct {
	Tag string `json:"tag"`
	// Images maps an image's token file name to its current file name
	Images          map[string]string `json:"images"`
	TotalDownloaded int               `json:"total_downloaded"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	Version         int               `json:"version"`
}

// Manager guards a Checkpoint for concurrent download workers
type Manager struct {
	mu     sync.Mutex
	dir    string
	path   string
	cp     *Checkpoint
	owners map[string]string // current file name -> image key
	logger logger.Logger
}

// New returns an empty checkpoint for dir without touching the disk
func New(dir, tag string, log logger.Logger) *Manager {
	if log == nil {
		log = logger.GetLogger()
	}
	now := time.Now()
	m := &Manager{
		dir:  dir,
		path: filepath.Join(dir, FileName),
		cp: &Checkpoint{
			Tag:       tag,
			Images:    make(map[string]string),
			CreatedAt: now,
			UpdatedAt: now,
			Version:   currentVersion,
		},
		logger: log.WithField("component", "checkpoint"),
	}
	m.reindex()
	return m
}

// Open loads the checkpoint of dir. A missing file yields an empty checkpoint.
func Open(dir, tag string, log logger.Logger) (*Manager, error) {
	m := New(dir, tag, log)

	data, err := os.ReadFile(m.path)
	if errors.Is(err, os.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return m, errs.Wrap(errs.ErrorTypeStorage, m.path, fmt.Errorf("failed to read checkpoint: %w", err))
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return m, errs.Wrap(errs.ErrorTypeStorage, m.path, fmt.Errorf("failed to decode checkpoint: %w", err))
	}
	if cp.Images == nil {
		cp.Images = make(map[string]string)
	}
	if tag != "" {
		cp.Tag = tag
	}
	m.cp = &cp
	m.reindex()

	m.logger.DebugWithFields("Checkpoint loaded", map[string]interface{}{
		"path":       m.path,
		"images":     len(cp.Images),
		"updated_at": cp.UpdatedAt,
	})
	return m, nil
}

func (m *Manager) reindex() {
	m.owners = make(map[string]string, len(m.cp.Images))
	for key, file := range m.cp.Images {
		m.owners[file] = key
	}
}

func (m *Manager) present(file string) bool {
	info, err := os.Lstat(filepath.Join(m.dir, file))
	return err == nil && info.Mode().IsRegular()
}

// Lookup returns the current file name of the image key if that file still exists
func (m *Manager) Lookup(key string) (string, bool) {
	m.mu.Lock()
	file, ok := m.cp.Images[key]
	m.mu.Unlock()
	if !ok || !m.present(file) {
		return "", false
	}
	return file, true
}

// Owner returns the image key whose existing file is currently named file
func (m *Manager) Owner(file string) (string, bool) {
	m.mu.Lock()
	key, ok := m.owners[file]
	m.mu.Unlock()
	if !ok || !m.present(file) {
		return "", false
	}
	return key, true
}

// Record notes that the image key is stored as file
func (m *Manager) Record(key, file string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, ok := m.cp.Images[key]; ok && m.owners[prev] == key {
		delete(m.owners, prev)
	}
	if _, existed := m.cp.Images[key]; !existed {
		m.cp.TotalDownloaded++
	}
	m.cp.Images[key] = file
	m.owners[file] = key
}

// Remap applies renames (old file name -> new file name) to the recorded images
func (m *Manager) Remap(moves map[string]string) {
	if len(moves) == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, file := range m.cp.Images {
		if to, ok := moves[file]; ok {
			m.cp.Images[key] = to
		}
	}
	m.reindex()
}

// Len returns the number of recorded images
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cp.Images)
}

// Path returns the checkpoint file path
func (m *Manager) Path() string {
	return m.path
}

// Save writes the checkpoint atomically
func (m *Manager) Save() error {
	m.mu.Lock()
	m.cp.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(m.cp, "", "  ")
	images := len(m.cp.Images)
	m.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}

	tmp, err := os.CreateTemp(m.dir, FileName+".*.tmp")
	if err != nil {
		return errs.Wrap(errs.ErrorTypeStorage, m.path, fmt.Errorf("failed to create temporary checkpoint file: %w", err))
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errs.Wrap(errs.ErrorTypeStorage, m.path, fmt.Errorf("failed to write checkpoint: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errs.Wrap(errs.ErrorTypeStorage, m.path, fmt.Errorf("failed to sync checkpoint file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errs.Wrap(errs.ErrorTypeStorage, m.path, fmt.Errorf("failed to close checkpoint file: %w", err))
	}
	if err := os.Rename(tmpName, m.path); err != nil {
		os.Remove(tmpName)
		return errs.Wrap(errs.ErrorTypeStorage, m.path, fmt.Errorf("failed to replace checkpoint file: %w", err))
	}

	m.logger.DebugWithFields("Checkpoint saved", map[string]interface{}{
		"path":   m.path,
		"images": images,
	})
	return nil
}
