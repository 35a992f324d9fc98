package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/projectsanctuary/sanctuary/internal/engagement/domain"
	"github.com/projectsanctuary/sanctuary/internal/storage/local"
)

type BlobStore interface {
	GetJSON(ctx context.Context, key string, v any) (bool, error)
	SetJSON(ctx context.Context, key string, v any) error
}

// LocalStore keeps mood history (newest first, capped) under local.KeyMoodHistory
// and the current streak as a bare number under local.KeyActivityStreak.
type LocalStore struct {
	mu    sync.Mutex
	store BlobStore
}

func NewLocalStore(store BlobStore) *LocalStore {
	return &LocalStore{store: store}
}

func (s *LocalStore) ListMoods(ctx context.Context, _ string) ([]domain.MoodEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.MoodEntry
	if _, err := s.store.GetJSON(ctx, local.KeyMoodHistory, &out); err != nil {
		return nil, fmt.Errorf("read mood history: %w", err)
	}
	return out, nil
}

func (s *LocalStore) AddMood(ctx context.Context, _ string, e domain.MoodEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var history []domain.MoodEntry
	if _, err := s.store.GetJSON(ctx, local.KeyMoodHistory, &history); err != nil {
		return fmt.Errorf("read mood history: %w", err)
	}
	history = append([]domain.MoodEntry{e}, history...)
	if len(history) > domain.MaxMoodHistory {
		history = history[:domain.MaxMoodHistory]
	}
	if err := s.store.SetJSON(ctx, local.KeyMoodHistory, history); err != nil {
		return fmt.Errorf("write mood history: %w", err)
	}
	return nil
}

// GetStreak reports the stored number as both current and longest; the device keeps no history.
func (s *LocalStore) GetStreak(ctx context.Context, _ string) (domain.Streak, error) {
	var n int
	if _, err := s.store.GetJSON(ctx, local.KeyActivityStreak, &n); err != nil {
		return domain.Streak{}, fmt.Errorf("read activity streak: %w", err)
	}
	return domain.Streak{Current: n, Longest: n}, nil
}

func (s *LocalStore) SetStreak(ctx context.Context, _ string, st domain.Streak) error {
	if err := s.store.SetJSON(ctx, local.KeyActivityStreak, st.Current); err != nil {
		return fmt.Errorf("write activity streak: %w", err)
	}
	return nil
}
