package service

import (
	"context"
	"fmt"
	"time"

	"github.com/projectsanctuary/sanctuary/internal/engagement/domain"
	"github.com/projectsanctuary/sanctuary/internal/engagement/repository"
	"github.com/projectsanctuary/sanctuary/internal/logging"
)

type OwnerSource interface {
	OwnerID() string
}

// EngagementService reads and records mood check-ins and the activity streak
// against the same backend the projects use.
type EngagementService struct {
	local  repository.Store
	hosted repository.Store
	owner  OwnerSource
	now    func() time.Time
}

// NewEngagementService builds the service. hosted may be nil.
func NewEngagementService(local, hosted repository.Store, owner OwnerSource) *EngagementService {
	return &EngagementService{
		local:  local,
		hosted: hosted,
		owner:  owner,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *EngagementService) active() (repository.Store, string) {
	if s.hosted != nil && s.owner != nil {
		if id := s.owner.OwnerID(); id != "" {
			return s.hosted, id
		}
	}
	return s.local, ""
}

func (s *EngagementService) Moods(ctx context.Context) ([]domain.MoodEntry, error) {
	store, owner := s.active()
	return store.ListMoods(ctx, owner)
}

func (s *EngagementService) LogMood(ctx context.Context, mood domain.Mood, energy int, notes string) (domain.MoodEntry, error) {
	e, err := domain.NewMoodEntry(mood, energy, notes, s.now())
	if err != nil {
		return domain.MoodEntry{}, err
	}
	store, owner := s.active()
	if err := store.AddMood(ctx, owner, e); err != nil {
		logging.NewLogger(ctx).LogError("engagement.mood", err)
		return domain.MoodEntry{}, fmt.Errorf("log mood: %w", err)
	}
	return e, nil
}

func (s *EngagementService) Streak(ctx context.Context) (domain.Streak, error) {
	store, owner := s.active()
	return store.GetStreak(ctx, owner)
}

func (s *EngagementService) SetStreak(ctx context.Context, current int) (domain.Streak, error) {
	store, owner := s.active()
	st, err := store.GetStreak(ctx, owner)
	if err != nil {
		return domain.Streak{}, err
	}
	st, err = st.WithCurrent(current)
	if err != nil {
		return domain.Streak{}, err
	}
	if err := store.SetStreak(ctx, owner, st); err != nil {
		logging.NewLogger(ctx).LogError("engagement.streak", err)
		return domain.Streak{}, fmt.Errorf("set streak: %w", err)
	}
	return st, nil
}
