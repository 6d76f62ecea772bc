package config

import (
	"sync"
	"time"
)

// Settings are the runtime knobs read by every probe and fetch.
type Settings struct {
	StopOnFirstSuccess bool          `json:"stop_on_first_success"`
	PersistStorage     bool          `json:"persist_storage"`
	Timeout            time.Duration `json:"timeout"`
}

// DefaultSettings returns {StopOnFirstSuccess: false, PersistStorage: true, Timeout: 3s}.
func DefaultSettings() Settings {
	return Settings{
		StopOnFirstSuccess: false,
		PersistStorage:     true,
		Timeout:            3 * time.Second,
	}
}

// SettingsPatch is a partial update. Nil fields are left untouched.
type SettingsPatch struct {
	StopOnFirstSuccess *bool          `json:"stop_on_first_success,omitempty"`
	PersistStorage     *bool          `json:"persist_storage,omitempty"`
	Timeout            *time.Duration `json:"timeout,omitempty"`
}

// Apply returns s with the non-nil fields of p applied.
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.StopOnFirstSuccess != nil {
		s.StopOnFirstSuccess = *p.StopOnFirstSuccess
	}
	if p.PersistStorage != nil {
		s.PersistStorage = *p.PersistStorage
	}
	if p.Timeout != nil {
		s.Timeout = *p.Timeout
	}
	return s
}

// LiveSettings holds the current Settings for concurrent readers.
type LiveSettings struct {
	mu       sync.RWMutex
	settings Settings
}

// NewLiveSettings creates a holder seeded with initial.
func NewLiveSettings(initial Settings) *LiveSettings {
	return &LiveSettings{settings: initial}
}

// Settings returns a copy of the current settings.
func (l *LiveSettings) Settings() Settings {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.settings
}

// Configure merges patch into the current settings and returns the result.
func (l *LiveSettings) Configure(patch SettingsPatch) Settings {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.settings = patch.Apply(l.settings)
	return l.settings
}
