package repository

import (
	"context"

	"github.com/projectsanctuary/sanctuary/internal/engagement/domain"
)

// Store persists mood history and the activity streak. owner is ignored by the device store.
type Store interface {
	ListMoods(ctx context.Context, owner string) ([]domain.MoodEntry, error)
	AddMood(ctx context.Context, owner string, e domain.MoodEntry) error
	GetStreak(ctx context.Context, owner string) (domain.Streak, error)
	SetStreak(ctx context.Context, owner string, s domain.Streak) error
}
