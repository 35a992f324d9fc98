// Package autoarchive archives projects nobody has touched for a while, when
// the user turned the autoArchive setting on.
package autoarchive

import (
	"context"
	"fmt"
	"time"

	"github.com/projectsanctuary/sanctuary/internal/logging"
	"github.com/projectsanctuary/sanctuary/internal/projects/domain"
)

type Projects interface {
	Load(ctx context.Context) error
	List() []domain.Project
	Archive(ctx context.Context, id string, req domain.ArchiveRequest) (domain.Project, error)
}

type Preference interface {
	AutoArchiveEnabled(ctx context.Context) (bool, error)
}

// Report summarises one sweep.
type Report struct {
	Enabled  bool
	Checked  int
	Archived []string
	Failed   int
}

type Sweeper struct {
	projects Projects
	prefs    Preference
	days     int
	now      func() time.Time
}

func NewSweeper(projects Projects, prefs Preference, afterDays int) *Sweeper {
	return &Sweeper{
		projects: projects,
		prefs:    prefs,
		days:     afterDays,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Stale reports whether p should be archived at now.
func Stale(p domain.Project, now time.Time, days int) bool {
	if p.Status != domain.StatusActive && p.Status != domain.StatusPaused {
		return false
	}
	return now.Sub(p.LastActivity) > time.Duration(days)*24*time.Hour
}

// Sweep reloads the collection and archives every stale project.
func (s *Sweeper) Sweep(ctx context.Context) (Report, error) {
	log := logging.NewLogger(ctx)

	enabled, err := s.prefs.AutoArchiveEnabled(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("read auto-archive setting: %w", err)
	}
	if !enabled {
		return Report{}, nil
	}

	if err := s.projects.Load(ctx); err != nil {
		return Report{Enabled: true}, err
	}

	rep := Report{Enabled: true}
	now := s.now()
	for _, p := range s.projects.List() {
		rep.Checked++
		if !Stale(p, now, s.days) {
			continue
		}
		_, err := s.projects.Archive(ctx, p.ID, domain.ArchiveRequest{
			Kind:   domain.ArchiveTemporary,
			Reason: fmt.Sprintf("inactive for %d days", s.days),
		})
		if err != nil {
			log.LogErrorf("autoarchive.sweep", "id=%s error=%v", p.ID, err)
			rep.Failed++
			continue
		}
		rep.Archived = append(rep.Archived, p.ID)
	}

	if len(rep.Archived) > 0 {
		log.LogInfof("autoarchive.sweep", "archived=%d failed=%d", len(rep.Archived), rep.Failed)
	}
	return rep, nil
}
