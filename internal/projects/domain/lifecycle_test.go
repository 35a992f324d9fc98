package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestProject(t *testing.T) Project {
	t.Helper()
	p, err := Create(NewProject{Title: "Draft", Type: "Blog Post", Role: "writer"}, t0)
	require.NoError(t, err)
	return p
}

func TestCreate(t *testing.T) {
	t.Run("new project is active with equal timestamps", func(t *testing.T) {
		p := newTestProject(t)
		assert.NotEmpty(t, p.ID)
		assert.Equal(t, StatusActive, p.Status)
		assert.Equal(t, t0, p.CreatedAt)
		assert.Equal(t, t0, p.LastActivity)
		assert.Nil(t, p.Archive)
		require.NoError(t, p.Validate())
	})

	t.Run("empty title is rejected", func(t *testing.T) {
		_, err := Create(NewProject{Title: "   "}, t0)
		assert.ErrorIs(t, err, ErrTitleRequired)

		var verr *ValidationError
		assert.True(t, errors.As(err, &verr))
	})
}

func TestCanTransition(t *testing.T) {
	allowed := [][2]Status{
		{StatusActive, StatusPaused},
		{StatusActive, StatusCompleted},
		{StatusActive, StatusArchived},
		{StatusPaused, StatusActive},
		{StatusPaused, StatusCompleted},
		{StatusPaused, StatusArchived},
		{StatusCompleted, StatusActive},
		{StatusCompleted, StatusPaused},
		{StatusCompleted, StatusArchived},
		{StatusArchived, StatusActive},
	}
	for _, tr := range allowed {
		assert.True(t, CanTransition(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}

	denied := [][2]Status{
		{StatusArchived, StatusPaused},
		{StatusArchived, StatusCompleted},
		{StatusCompleted, StatusCompleted},
		{StatusActive, StatusActive},
	}
	for _, tr := range denied {
		assert.False(t, CanTransition(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}
}

func TestWithStatus(t *testing.T) {
	t.Run("every valid transition advances last activity", func(t *testing.T) {
		p := newTestProject(t)
		later := t0.Add(time.Hour)

		paused, err := p.WithStatus(StatusPaused, later)
		require.NoError(t, err)
		assert.Equal(t, StatusPaused, paused.Status)
		assert.Equal(t, later, paused.LastActivity)

		resumed, err := paused.WithStatus(StatusActive, later.Add(time.Minute))
		require.NoError(t, err)
		assert.False(t, resumed.LastActivity.Before(paused.LastActivity))

		completed, err := resumed.WithStatus(StatusCompleted, later.Add(2*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, completed.Status)
	})

	t.Run("last activity never moves backwards", func(t *testing.T) {
		p := newTestProject(t)
		paused, err := p.WithStatus(StatusPaused, t0.Add(-time.Hour))
		require.NoError(t, err)
		assert.Equal(t, t0, paused.LastActivity)
	})

	t.Run("archive needs the archive action", func(t *testing.T) {
		_, err := newTestProject(t).WithStatus(StatusArchived, t0)
		assert.ErrorIs(t, err, ErrArchiveRecordRequired)
	})

	t.Run("completed project can be reopened", func(t *testing.T) {
		completed, err := newTestProject(t).WithStatus(StatusCompleted, t0)
		require.NoError(t, err)

		for _, to := range []Status{StatusActive, StatusPaused} {
			reopened, err := completed.WithStatus(to, t0.Add(time.Hour))
			require.NoError(t, err, "completed -> %s", to)
			assert.Equal(t, to, reopened.Status)
			assert.Equal(t, t0.Add(time.Hour), reopened.LastActivity)
		}
		assert.Equal(t, StatusCompleted, completed.Status)
	})

	t.Run("invalid transition leaves original untouched", func(t *testing.T) {
		archived, err := newTestProject(t).Archived(ArchiveRequest{Kind: ArchiveTemporary}, t0)
		require.NoError(t, err)

		_, err = archived.WithStatus(StatusPaused, t0.Add(time.Hour))
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, StatusArchived, archived.Status)
		assert.Equal(t, t0, archived.LastActivity)
	})

	t.Run("unknown status is a validation error", func(t *testing.T) {
		_, err := newTestProject(t).WithStatus(Status("sleeping"), t0)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}

func TestArchiveAndRevive(t *testing.T) {
	p := newTestProject(t)
	archivedAt := t0.Add(24 * time.Hour)

	archived, err := p.Archived(ArchiveRequest{
		Kind:           ArchivePermanent,
		FarewellNote:   "thanks",
		LessonsLearned: "scope smaller",
		Reason:         "lost interest",
	}, archivedAt)
	require.NoError(t, err)

	t.Run("archive sets status and record together", func(t *testing.T) {
		assert.Equal(t, StatusArchived, archived.Status)
		require.NotNil(t, archived.Archive)
		assert.Equal(t, ArchivePermanent, archived.Archive.Kind)
		assert.Equal(t, archivedAt, archived.Archive.ArchivedAt)
		assert.Equal(t, archivedAt, archived.LastActivity)
		require.NoError(t, archived.Validate())
		assert.Nil(t, p.Archive, "original must not be mutated")
	})

	t.Run("archive kind defaults to temporary", func(t *testing.T) {
		a, err := p.Archived(ArchiveRequest{}, archivedAt)
		require.NoError(t, err)
		assert.Equal(t, ArchiveTemporary, a.Archive.Kind)
	})

	t.Run("archiving twice is rejected", func(t *testing.T) {
		_, err := archived.Archived(ArchiveRequest{}, archivedAt)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("revive keeps the archive record", func(t *testing.T) {
		revived, err := archived.Revived(archivedAt.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, StatusActive, revived.Status)
		require.NotNil(t, revived.Archive)
		assert.Equal(t, "thanks", revived.Archive.FarewellNote)
		assert.Equal(t, "lost interest", revived.Archive.Reason)
		require.NoError(t, revived.Validate())
	})

	t.Run("status change from archived to active is a revive", func(t *testing.T) {
		revived, err := archived.WithStatus(StatusActive, archivedAt.Add(time.Hour))
		require.NoError(t, err)
		assert.NotNil(t, revived.Archive)
	})

	t.Run("revive requires archived status", func(t *testing.T) {
		_, err := p.Revived(archivedAt)
		assert.ErrorIs(t, err, ErrNotArchived)
	})
}

func TestEditsAndNotes(t *testing.T) {
	p := newTestProject(t)

	t.Run("edit rejects empty title", func(t *testing.T) {
		empty := " "
		_, err := p.Edited(Edit{Title: &empty}, t0)
		assert.ErrorIs(t, err, ErrTitleRequired)
	})

	t.Run("edit applies only given fields", func(t *testing.T) {
		desc := "longer description"
		out, err := p.Edited(Edit{Description: &desc}, t0.Add(time.Minute))
		require.NoError(t, err)
		assert.Equal(t, "Draft", out.Title)
		assert.Equal(t, desc, out.Description)
		assert.Equal(t, t0.Add(time.Minute), out.LastActivity)
	})

	t.Run("notes are appended", func(t *testing.T) {
		first, err := p.WithNote("outline done", t0)
		require.NoError(t, err)
		second, err := first.WithNote("intro drafted", t0)
		require.NoError(t, err)
		assert.Equal(t, "outline done\n\nintro drafted", second.Notes)
	})

	t.Run("touch only moves last activity", func(t *testing.T) {
		out := p.Touched(t0.Add(time.Hour))
		assert.Equal(t, t0.Add(time.Hour), out.LastActivity)
		assert.Equal(t, p.Status, out.Status)
		assert.Equal(t, p.Title, out.Title)
	})
}

func TestValidate(t *testing.T) {
	t.Run("archived without record is invalid", func(t *testing.T) {
		p := newTestProject(t)
		p.Status = StatusArchived
		assert.ErrorIs(t, p.Validate(), ErrArchiveRecordRequired)
	})

	t.Run("last activity before creation is invalid", func(t *testing.T) {
		p := newTestProject(t)
		p.LastActivity = t0.Add(-time.Second)
		assert.Error(t, p.Validate())
	})
}
