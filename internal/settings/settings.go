// Package settings keeps the device's feature preferences in the local store.
package settings

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/projectsanctuary/sanctuary/internal/storage/local"
)

var ErrInvalidFrequency = errors.New("reminder frequency must be daily, weekly or monthly")

// CloudConnections tracks which backup providers were linked.
type CloudConnections struct {
	GoogleDrive bool `json:"googleDrive"`
	Dropbox     bool `json:"dropbox"`
	OneDrive    bool `json:"oneDrive"`
}

type Settings struct {
	EmailNotifications  bool             `json:"emailNotifications"`
	WeeklyDigest        bool             `json:"weeklyDigest"`
	ReflectionReminders bool             `json:"reflectionReminders"`
	DarkMode            bool             `json:"darkMode"`
	AutoArchive         bool             `json:"autoArchive"`
	ReminderFrequency   string           `json:"reminderFrequency"`
	Cloud               CloudConnections `json:"cloud"`
}

// Defaults match a fresh install.
func Defaults() Settings {
	return Settings{
		EmailNotifications:  true,
		WeeklyDigest:        true,
		ReflectionReminders: true,
		ReminderFrequency:   "weekly",
	}
}

func (s Settings) Validate() error {
	switch s.ReminderFrequency {
	case "daily", "weekly", "monthly":
		return nil
	}
	return ErrInvalidFrequency
}

type BlobStore interface {
	GetJSON(ctx context.Context, key string, v any) (bool, error)
	SetJSON(ctx context.Context, key string, v any) error
}

type Store struct {
	mu    sync.Mutex
	blobs BlobStore
}

func NewStore(blobs BlobStore) *Store {
	return &Store{blobs: blobs}
}

// Load returns the stored settings, or Defaults when nothing was saved yet.
func (s *Store) Load(ctx context.Context) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Store) load(ctx context.Context) (Settings, error) {
	out := Defaults()
	if _, err := s.blobs.GetJSON(ctx, local.KeySettings, &out); err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}
	return out, nil
}

func (s *Store) Save(ctx context.Context, st Settings) error {
	if err := st.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.blobs.SetJSON(ctx, local.KeySettings, st); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// Update applies fn to the stored settings and saves the result.
func (s *Store) Update(ctx context.Context, fn func(*Settings)) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load(ctx)
	if err != nil {
		return Settings{}, err
	}
	fn(&st)
	if err := st.Validate(); err != nil {
		return Settings{}, err
	}
	if err := s.blobs.SetJSON(ctx, local.KeySettings, st); err != nil {
		return Settings{}, fmt.Errorf("write settings: %w", err)
	}
	return st, nil
}

// AutoArchiveEnabled reports the autoArchive preference.
func (s *Store) AutoArchiveEnabled(ctx context.Context) (bool, error) {
	st, err := s.Load(ctx)
	if err != nil {
		return false, err
	}
	return st.AutoArchive, nil
}
