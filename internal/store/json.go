package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"countdown/internal/config"
	"countdown/internal/logger"
	"countdown/pkg/models"
)

// File names inside the data directory.
const (
	EventsFile   = "events.json"
	SettingsFile = "settings.json"
)

// JSONStore keeps events.json and settings.json in one directory.
type JSONStore struct {
	Dir string
	mu  sync.Mutex
}

// NewJSONStore returns a JSONStore rooted at dir.
func NewJSONStore(dir string) *JSONStore {
	return &JSONStore{Dir: dir}
}

func (s *JSONStore) eventsPath() string   { return filepath.Join(s.Dir, EventsFile) }
func (s *JSONStore) settingsPath() string { return filepath.Join(s.Dir, SettingsFile) }

// LoadEvents reads events.json. A missing file is an empty collection.
func (s *JSONStore) LoadEvents(ctx context.Context) ([]models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var events []models.Event
	found, err := readJSON(s.eventsPath(), &events)
	if err != nil {
		return nil, err
	}
	if !found {
		return []models.Event{}, nil
	}
	logger.Debugf("loaded %d events from %s", len(events), s.eventsPath())
	return events, nil
}

// SaveEvents replaces events.json atomically.
func (s *JSONStore) SaveEvents(ctx context.Context, events []models.Event) error {
	defer logger.Timer("save events")()
	s.mu.Lock()
	defer s.mu.Unlock()

	if events == nil {
		events = []models.Event{}
	}
	return writeJSON(s.eventsPath(), events)
}

// LoadSettings reads settings.json. A missing file yields the defaults.
func (s *JSONStore) LoadSettings(ctx context.Context) (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := models.DefaultSettings()
	if _, err := readJSON(s.settingsPath(), &st); err != nil {
		return models.DefaultSettings(), err
	}
	st.Normalize()
	return st, nil
}

// SaveSettings replaces settings.json atomically.
func (s *JSONStore) SaveSettings(ctx context.Context, st models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSON(s.settingsPath(), st)
}

// Close is a no-op.
func (s *JSONStore) Close() error { return nil }

func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return true, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return config.WriteFileAtomic(path, data)
}
