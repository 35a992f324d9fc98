package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/projectsanctuary/sanctuary/internal/engagement/domain"
)

// HostedStore keeps engagement data in mood_entries and activity_streaks.
type HostedStore struct {
	db *sql.DB
}

func NewHostedStore(db *sql.DB) *HostedStore {
	return &HostedStore{db: db}
}

func (r *HostedStore) ListMoods(ctx context.Context, owner string) ([]domain.MoodEntry, error) {
	const q = `
SELECT id, mood, energy, notes, created_at
FROM mood_entries
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2;
`
	rows, err := r.db.QueryContext(ctx, q, owner, domain.MaxMoodHistory)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.MoodEntry, 0, domain.MaxMoodHistory)
	for rows.Next() {
		var (
			e    domain.MoodEntry
			mood string
		)
		if err := rows.Scan(&e.ID, &mood, &e.Energy, &e.Notes, &e.Timestamp); err != nil {
			return nil, err
		}
		e.Mood = domain.Mood(mood)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// AddMood upserts by id so repeated migrations do not duplicate entries.
func (r *HostedStore) AddMood(ctx context.Context, owner string, e domain.MoodEntry) error {
	if owner == "" {
		return fmt.Errorf("owner required")
	}
	const q = `
INSERT INTO mood_entries (id, user_id, mood, energy, notes, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE
SET mood = EXCLUDED.mood, energy = EXCLUDED.energy, notes = EXCLUDED.notes, created_at = EXCLUDED.created_at
WHERE mood_entries.user_id = EXCLUDED.user_id;
`
	_, err := r.db.ExecContext(ctx, q, e.ID, owner, string(e.Mood), e.Energy, e.Notes,
		e.Timestamp.UTC().Format(time.RFC3339Nano))
	return err
}

func (r *HostedStore) GetStreak(ctx context.Context, owner string) (domain.Streak, error) {
	const q = `SELECT current_streak, longest_streak FROM activity_streaks WHERE user_id = $1;`
	var s domain.Streak
	err := r.db.QueryRowContext(ctx, q, owner).Scan(&s.Current, &s.Longest)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Streak{}, nil
	}
	if err != nil {
		return domain.Streak{}, err
	}
	return s, nil
}

func (r *HostedStore) SetStreak(ctx context.Context, owner string, s domain.Streak) error {
	if owner == "" {
		return fmt.Errorf("owner required")
	}
	const q = `
INSERT INTO activity_streaks (user_id, current_streak, longest_streak, last_active_date, updated_at)
VALUES ($1, $2, $3, CURRENT_DATE, now())
ON CONFLICT (user_id) DO UPDATE
SET current_streak = EXCLUDED.current_streak,
    longest_streak = GREATEST(activity_streaks.longest_streak, EXCLUDED.longest_streak),
    last_active_date = EXCLUDED.last_active_date,
    updated_at = now();
`
	_, err := r.db.ExecContext(ctx, q, owner, s.Current, s.Longest)
	return err
}
