// Package settings persists operator-tunable runtime settings in a small
// JSON file. Settings are re-read on every access so edits (from the API or
// by hand) take effect without a restart.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/wardesk/faqdex/internal/domain"
)

// Settings are the runtime-adjustable knobs.
type Settings struct {
	// SearchMode selects how answers are resolved: immediate, agent or agent_pro.
	SearchMode domain.SelectionMode `json:"search_mode"`
	// AgentConfidenceThreshold is the floor below which a graded answer is
	// treated as no match.
	AgentConfidenceThreshold float64 `json:"agent_confidence_threshold"`
}

// Defaults returns the settings used when the file is missing or unreadable.
func Defaults() Settings {
	return Settings{
		SearchMode:               domain.ModeAgent,
		AgentConfidenceThreshold: 0.3,
	}
}

// FileStore reads and writes settings on disk, guarding concurrent access
// with a mutex. Reads fall back to defaults on missing or corrupt files.
type FileStore struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
}

// NewFileStore creates a settings store at path.
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

// Load returns the current settings, merging defaults over missing keys.
func (f *FileStore) Load() Settings {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

func (f *FileStore) load() Settings {
	s := Defaults()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if !os.IsNotExist(err) {
			f.logger.Warn("read settings file, using defaults",
				zap.String("path", f.path), zap.Error(err))
		}
		return s
	}

	if err := json.Unmarshal(data, &s); err != nil {
		f.logger.Warn("corrupt settings file, using defaults",
			zap.String("path", f.path), zap.Error(err))
		return Defaults()
	}

	if !s.SearchMode.Valid() {
		s.SearchMode = Defaults().SearchMode
	}
	if s.AgentConfidenceThreshold < 0 || s.AgentConfidenceThreshold > 1 {
		s.AgentConfidenceThreshold = Defaults().AgentConfidenceThreshold
	}
	return s
}

// SetSearchMode validates and persists the selection mode.
func (f *FileStore) SetSearchMode(mode domain.SelectionMode) error {
	if !mode.Valid() {
		return fmt.Errorf("invalid search mode %q: %w", mode, domain.ErrInvalidInput)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	s := f.load()
	s.SearchMode = mode
	return f.save(s)
}

// SetConfidenceThreshold validates and persists the confidence floor.
func (f *FileStore) SetConfidenceThreshold(threshold float64) error {
	if threshold < 0 || threshold > 1 {
		return fmt.Errorf("confidence threshold %v out of [0, 1]: %w", threshold, domain.ErrInvalidInput)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	s := f.load()
	s.AgentConfidenceThreshold = threshold
	return f.save(s)
}

func (f *FileStore) save(s Settings) error {
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	return nil
}
