// Package migration moves device-resident data into the hosted store the first
// time an owner signs in on a device that holds local data.
package migration

import (
	"context"
	"errors"
	"fmt"
	"sync"

	edomain "github.com/projectsanctuary/sanctuary/internal/engagement/domain"
	erepo "github.com/projectsanctuary/sanctuary/internal/engagement/repository"
	"github.com/projectsanctuary/sanctuary/internal/logging"
	pdomain "github.com/projectsanctuary/sanctuary/internal/projects/domain"
	"github.com/projectsanctuary/sanctuary/internal/storage/local"
)

var (
	ErrNotSignedIn      = errors.New("migration requires a signed-in owner")
	ErrNoHostedStore    = errors.New("no hosted store configured")
	ErrNothingToMigrate = errors.New("nothing to migrate")
	ErrIncomplete       = errors.New("migration incomplete")
)

// LocalState is the flag and key handling of the device store.
type LocalState interface {
	Flag(ctx context.Context, key string) (bool, error)
	SetFlag(ctx context.Context, key string) error
	Remove(ctx context.Context, keys ...string) error
}

type ProjectSource interface {
	List(ctx context.Context, owner string) ([]pdomain.Project, error)
}

type ProjectSink interface {
	Upsert(ctx context.Context, owner string, p pdomain.Project) error
}

// Deps wires the protocol. The hosted fields may be nil when no hosted store exists.
type Deps struct {
	State            LocalState
	LocalProjects    ProjectSource
	HostedProjects   ProjectSink
	LocalEngagement  erepo.Store
	HostedEngagement erepo.Store
}

// Result counts what one Accept moved.
type Result struct {
	Projects int  `json:"projects"`
	Moods    int  `json:"moods"`
	Streak   bool `json:"streak"`
	Failed   int  `json:"failed"`
}

type Protocol struct {
	deps Deps

	mu      sync.Mutex
	pending bool
}

func New(deps Deps) *Protocol {
	return &Protocol{deps: deps}
}

// Migrated reports whether the device already accepted or skipped.
func (p *Protocol) Migrated(ctx context.Context) (bool, error) {
	return p.deps.State.Flag(ctx, local.KeyMigrated)
}

type snapshot struct {
	projects []pdomain.Project
	moods    []edomain.MoodEntry
	streak   edomain.Streak
}

func (s snapshot) empty() bool {
	return len(s.projects) == 0 && len(s.moods) == 0 && s.streak.Current <= 0
}

func (p *Protocol) read(ctx context.Context) (snapshot, error) {
	var (
		s   snapshot
		err error
	)
	if s.projects, err = p.deps.LocalProjects.List(ctx, ""); err != nil {
		return snapshot{}, err
	}
	if s.moods, err = p.deps.LocalEngagement.ListMoods(ctx, ""); err != nil {
		return snapshot{}, err
	}
	if s.streak, err = p.deps.LocalEngagement.GetStreak(ctx, ""); err != nil {
		return snapshot{}, err
	}
	return s, nil
}

// HasLocalData reports whether the device holds projects, mood entries or a
// positive streak and has not migrated yet.
func (p *Protocol) HasLocalData(ctx context.Context) (bool, error) {
	migrated, err := p.Migrated(ctx)
	if err != nil || migrated {
		return false, err
	}
	s, err := p.read(ctx)
	if err != nil {
		return false, err
	}
	return !s.empty(), nil
}

// ShouldOffer evaluates the trigger for owner and remembers a positive answer
// until the offer is accepted or skipped.
func (p *Protocol) ShouldOffer(ctx context.Context, owner string) (bool, error) {
	if owner == "" || p.deps.HostedProjects == nil || p.deps.HostedEngagement == nil {
		return false, nil
	}
	ok, err := p.HasLocalData(ctx)
	if err != nil {
		return false, fmt.Errorf("evaluate migration: %w", err)
	}
	p.mu.Lock()
	p.pending = ok
	p.mu.Unlock()
	return ok, nil
}

// Pending reports whether an offer is outstanding.
func (p *Protocol) Pending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending
}

// Accept upserts every local record into the hosted store for owner. Only a
// fully successful run clears the local keys and sets the migrated flag; a
// partial run leaves everything in place so the offer comes back.
func (p *Protocol) Accept(ctx context.Context, owner string) (Result, error) {
	if owner == "" {
		return Result{}, ErrNotSignedIn
	}
	if p.deps.HostedProjects == nil || p.deps.HostedEngagement == nil {
		return Result{}, ErrNoHostedStore
	}

	log := logging.NewLogger(ctx)
	s, err := p.read(ctx)
	if err != nil {
		log.LogError("migration.read", err)
		return Result{}, fmt.Errorf("read local data: %w", err)
	}
	if s.empty() {
		return Result{}, ErrNothingToMigrate
	}

	var res Result
	for _, pr := range s.projects {
		if err := p.deps.HostedProjects.Upsert(ctx, owner, pr); err != nil {
			log.LogErrorf("migration.project", "id=%s error=%v", pr.ID, err)
			res.Failed++
			continue
		}
		res.Projects++
	}
	for _, m := range s.moods {
		if err := p.deps.HostedEngagement.AddMood(ctx, owner, m); err != nil {
			log.LogErrorf("migration.mood", "id=%s error=%v", m.ID, err)
			res.Failed++
			continue
		}
		res.Moods++
	}
	if s.streak.Current > 0 {
		if err := p.deps.HostedEngagement.SetStreak(ctx, owner, s.streak); err != nil {
			log.LogErrorf("migration.streak", "error=%v", err)
			res.Failed++
		} else {
			res.Streak = true
		}
	}

	if res.Failed > 0 {
		return res, fmt.Errorf("%w: %d records failed", ErrIncomplete, res.Failed)
	}

	if err := p.deps.State.Remove(ctx, local.KeyProjects, local.KeyMoodHistory, local.KeyActivityStreak); err != nil {
		log.LogError("migration.clear", err)
		return res, fmt.Errorf("clear local data: %w", err)
	}
	if err := p.deps.State.SetFlag(ctx, local.KeyMigrated); err != nil {
		log.LogError("migration.flag", err)
		return res, fmt.Errorf("set migrated flag: %w", err)
	}

	p.mu.Lock()
	p.pending = false
	p.mu.Unlock()

	log.LogInfof("migration.accept", "owner=%s projects=%d moods=%d streak=%t", owner, res.Projects, res.Moods, res.Streak)
	return res, nil
}

// Skip suppresses future offers without moving or deleting local data.
func (p *Protocol) Skip(ctx context.Context) error {
	if err := p.deps.State.SetFlag(ctx, local.KeyMigrated); err != nil {
		return fmt.Errorf("set migrated flag: %w", err)
	}
	p.mu.Lock()
	p.pending = false
	p.mu.Unlock()
	return nil
}
