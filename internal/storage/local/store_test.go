package local

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_GetSet(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	t.Run("missing key", func(t *testing.T) {
		_, ok, err := s.Get(ctx, KeyProjects)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("set overwrites", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, KeyActivityStreak, "1"))
		require.NoError(t, s.Set(ctx, KeyActivityStreak, "2"))

		v, ok, err := s.Get(ctx, KeyActivityStreak)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "2", v)
	})

	t.Run("remove deletes several keys", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, KeyProjects, "[]"))
		require.NoError(t, s.Set(ctx, KeyMoodHistory, "[]"))
		require.NoError(t, s.Remove(ctx, KeyProjects, KeyMoodHistory))

		_, ok, err := s.Get(ctx, KeyProjects)
		require.NoError(t, err)
		assert.False(t, ok)
		_, ok, err = s.Get(ctx, KeyMoodHistory)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestStore_JSONAndFlags(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	type settings struct {
		AutoArchive bool `json:"autoArchive"`
	}

	require.NoError(t, s.SetJSON(ctx, KeySettings, settings{AutoArchive: true}))
	var got settings
	ok, err := s.GetJSON(ctx, KeySettings, &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, got.AutoArchive)

	migrated, err := s.Flag(ctx, KeyMigrated)
	require.NoError(t, err)
	assert.False(t, migrated)

	require.NoError(t, s.SetFlag(ctx, KeyMigrated))
	migrated, err = s.Flag(ctx, KeyMigrated)
	require.NoError(t, err)
	assert.True(t, migrated)
}

func TestStore_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, KeyUserRole, "writer"))
	require.NoError(t, s.Close())

	s, err = Open(dir)
	require.NoError(t, err)
	defer s.Close()

	v, ok, err := s.Get(ctx, KeyUserRole)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "writer", v)
}
