package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MaxMoodHistory is how many mood entries the device keeps.
const MaxMoodHistory = 30

type Mood string

const (
	MoodEnergized Mood = "energized"
	MoodFocused   Mood = "focused"
	MoodCreative  Mood = "creative"
	MoodTired     Mood = "tired"
	MoodStressed  Mood = "stressed"
	MoodNeutral   Mood = "neutral"
)

func (m Mood) Valid() bool {
	switch m {
	case MoodEnergized, MoodFocused, MoodCreative, MoodTired, MoodStressed, MoodNeutral:
		return true
	}
	return false
}

var (
	ErrInvalidMood   = errors.New("invalid mood")
	ErrInvalidEnergy = errors.New("energy must be between 1 and 5")
	ErrInvalidStreak = errors.New("streak cannot be negative")
)

// MoodEntry is one mood and energy check-in.
type MoodEntry struct {
	ID        string    `json:"id"`
	Mood      Mood      `json:"mood"`
	Energy    int       `json:"energy"`
	Notes     string    `json:"notes"`
	Timestamp time.Time `json:"timestamp"`
}

func NewMoodEntry(mood Mood, energy int, notes string, now time.Time) (MoodEntry, error) {
	e := MoodEntry{
		ID:        uuid.NewString(),
		Mood:      mood,
		Energy:    energy,
		Notes:     notes,
		Timestamp: now,
	}
	if err := e.Validate(); err != nil {
		return MoodEntry{}, err
	}
	return e, nil
}

func (e MoodEntry) Validate() error {
	if !e.Mood.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMood, e.Mood)
	}
	if e.Energy < 1 || e.Energy > 5 {
		return ErrInvalidEnergy
	}
	return nil
}

// Streak counts consecutive active days.
type Streak struct {
	Current int `json:"current_streak"`
	Longest int `json:"longest_streak"`
}

// WithCurrent sets the current streak and raises the longest one if needed.
func (s Streak) WithCurrent(n int) (Streak, error) {
	if n < 0 {
		return Streak{}, ErrInvalidStreak
	}
	s.Current = n
	if n > s.Longest {
		s.Longest = n
	}
	return s, nil
}
