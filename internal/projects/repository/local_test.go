package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projectsanctuary/sanctuary/internal/projects/domain"
	"github.com/projectsanctuary/sanctuary/internal/storage/local"
)

func newLocal(t *testing.T) (*LocalBackend, *local.Store) {
	t.Helper()
	store, err := local.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewLocalBackend(store), store
}

func mustProject(t *testing.T, title string, at time.Time) domain.Project {
	t.Helper()
	p, err := domain.Create(domain.NewProject{Title: title, Type: "Blog Post"}, at)
	require.NoError(t, err)
	return p
}

func TestLocalBackend(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	t.Run("empty store lists nothing", func(t *testing.T) {
		b, _ := newLocal(t)
		items, err := b.List(ctx, "")
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("create writes the projects key", func(t *testing.T) {
		b, store := newLocal(t)
		p := mustProject(t, "Draft", t0)
		p.OwnerID = "stray"
		require.NoError(t, b.Create(ctx, p))

		var raw []domain.Project
		ok, err := store.GetJSON(ctx, local.KeyProjects, &raw)
		require.NoError(t, err)
		require.True(t, ok)
		require.Len(t, raw, 1)
		assert.Equal(t, domain.StatusActive, raw[0].Status)
		assert.Empty(t, raw[0].OwnerID)
		assert.True(t, raw[0].CreatedAt.Equal(raw[0].LastActivity))

		assert.ErrorIs(t, b.Create(ctx, p), domain.ErrDuplicateID)
	})

	t.Run("list is newest activity first", func(t *testing.T) {
		b, _ := newLocal(t)
		old := mustProject(t, "Old", t0)
		fresh := mustProject(t, "Fresh", t0.Add(time.Hour))
		require.NoError(t, b.Create(ctx, fresh))
		require.NoError(t, b.Create(ctx, old))

		items, err := b.List(ctx, "")
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "Fresh", items[0].Title)
	})

	t.Run("update and delete", func(t *testing.T) {
		b, _ := newLocal(t)
		p := mustProject(t, "Draft", t0)
		require.NoError(t, b.Create(ctx, p))

		p.Title = "Renamed"
		require.NoError(t, b.Update(ctx, p))
		items, err := b.List(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, "Renamed", items[0].Title)

		require.NoError(t, b.Delete(ctx, "", p.ID))
		assert.ErrorIs(t, b.Delete(ctx, "", p.ID), domain.ErrNotFound)
		assert.ErrorIs(t, b.Update(ctx, p), domain.ErrNotFound)
	})
}

type ownerFunc func() string

func (f ownerFunc) OwnerID() string { return f() }

func TestSelector(t *testing.T) {
	localB := &LocalBackend{}
	hostedB := &HostedBackend{}
	owner := ""
	s := NewSelector(localB, hostedB, ownerFunc(func() string { return owner }))

	b, id := s.Active()
	assert.Same(t, localB, b)
	assert.Empty(t, id)
	assert.Equal(t, "local", s.Name())

	owner = "u1"
	b, id = s.Active()
	assert.Same(t, hostedB, b)
	assert.Equal(t, "u1", id)
	assert.Equal(t, "hosted", s.Name())

	t.Run("no hosted database stays local", func(t *testing.T) {
		s := NewSelector(localB, nil, ownerFunc(func() string { return "u1" }))
		b, id := s.Active()
		assert.Same(t, localB, b)
		assert.Empty(t, id)
	})
}
