package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projectsanctuary/sanctuary/config"
	"github.com/projectsanctuary/sanctuary/internal/projects/domain"
	"github.com/projectsanctuary/sanctuary/internal/settings"
)

func localConfig(dataDir string) *config.Config {
	return &config.Config{
		Local:       config.LocalConfig{DataDir: dataDir, DeviceID: "test-device"},
		AutoArchive: config.AutoArchiveConfig{AfterDays: 90, Schedule: "@daily"},
	}
}

func newLocalApp(t *testing.T, dataDir string) *App {
	t.Helper()
	ctx := context.Background()
	app, err := NewApp(ctx, localConfig(dataDir))
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })
	require.NoError(t, app.Restore(ctx))
	return app
}

func TestApp_AutoArchiveSweepsDaemonService(t *testing.T) {
	ctx := context.Background()
	app := newLocalApp(t, t.TempDir())
	assert.Nil(t, app.SQL)
	assert.Nil(t, app.Redis)

	app.Projects.SetClock(func() time.Time { return time.Now().UTC().AddDate(0, 0, -100) })
	stale, err := app.Projects.Create(ctx, domain.NewProject{Title: "Forgotten draft"})
	require.NoError(t, err)
	app.Projects.SetClock(func() time.Time { return time.Now().UTC() })
	fresh, err := app.Projects.Create(ctx, domain.NewProject{Title: "Current"})
	require.NoError(t, err)

	t.Run("disabled setting archives nothing", func(t *testing.T) {
		rep, err := app.AutoArchiveSweeper().Sweep(ctx)
		require.NoError(t, err)
		assert.False(t, rep.Enabled)
		assert.Empty(t, rep.Archived)
	})

	_, err = app.Settings.Update(ctx, func(s *settings.Settings) { s.AutoArchive = true })
	require.NoError(t, err)

	rep, err := app.AutoArchiveSweeper().Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{stale.ID}, rep.Archived)

	// The handlers read the same collection the sweep wrote.
	got, err := app.Projects.Get(stale.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusArchived, got.Status)
	require.NotNil(t, got.Archive)
	assert.Equal(t, "inactive for 90 days", got.Archive.Reason)

	got, err = app.Projects.Get(fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, got.Status)
}

func TestApp_WorkerArchiveSurvivesDaemonWrite(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	daemon := newLocalApp(t, dir)

	daemon.Projects.SetClock(func() time.Time { return time.Now().UTC().AddDate(0, 0, -100) })
	stale, err := daemon.Projects.Create(ctx, domain.NewProject{Title: "Forgotten draft"})
	require.NoError(t, err)
	daemon.Projects.SetClock(func() time.Time { return time.Now().UTC() })
	_, err = daemon.Settings.Update(ctx, func(s *settings.Settings) { s.AutoArchive = true })
	require.NoError(t, err)

	worker := newLocalApp(t, dir)
	rep, err := worker.AutoArchiveSweeper().Sweep(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{stale.ID}, rep.Archived)

	_, err = daemon.Projects.AppendNote(ctx, stale.ID, "one more idea")
	require.NoError(t, err)

	require.NoError(t, worker.Projects.Load(ctx))
	got, err := worker.Projects.Get(stale.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusArchived, got.Status)
	require.NotNil(t, got.Archive)
	assert.Equal(t, "one more idea", got.Notes)
}

func TestApp_HealthChecksLocalOnly(t *testing.T) {
	app := newLocalApp(t, t.TempDir())

	checks := app.HealthChecks()
	require.Len(t, checks, 3)
	assert.Equal(t, "local", checks[0].Name)
	assert.True(t, checks[0].Required)
	assert.NoError(t, checks[0].Ping(context.Background()))
	assert.Nil(t, checks[1].Ping)
	assert.Nil(t, checks[2].Ping)
}
