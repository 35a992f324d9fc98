package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoodEntry(t *testing.T) {
	now := time.Date(2024, 2, 2, 9, 0, 0, 0, time.UTC)

	t.Run("valid", func(t *testing.T) {
		e, err := NewMoodEntry(MoodFocused, 4, "deep work", now)
		require.NoError(t, err)
		assert.NotEmpty(t, e.ID)
		assert.Equal(t, now, e.Timestamp)
	})

	t.Run("unknown mood", func(t *testing.T) {
		_, err := NewMoodEntry("grumpy", 3, "", now)
		assert.ErrorIs(t, err, ErrInvalidMood)
	})

	t.Run("energy out of range", func(t *testing.T) {
		_, err := NewMoodEntry(MoodTired, 0, "", now)
		assert.ErrorIs(t, err, ErrInvalidEnergy)
		_, err = NewMoodEntry(MoodTired, 6, "", now)
		assert.ErrorIs(t, err, ErrInvalidEnergy)
	})
}

func TestStreak_WithCurrent(t *testing.T) {
	s, err := Streak{Current: 2, Longest: 5}.WithCurrent(3)
	require.NoError(t, err)
	assert.Equal(t, Streak{Current: 3, Longest: 5}, s)

	s, err = s.WithCurrent(7)
	require.NoError(t, err)
	assert.Equal(t, Streak{Current: 7, Longest: 7}, s)

	_, err = s.WithCurrent(-1)
	assert.ErrorIs(t, err, ErrInvalidStreak)
}
