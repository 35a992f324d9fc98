package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/projectsanctuary/sanctuary/internal/logging"
	"github.com/projectsanctuary/sanctuary/internal/projects/domain"
	"github.com/projectsanctuary/sanctuary/internal/projects/repository"
)

const quickCaptureFallback = "Quick Capture"

// ProjectService owns the in-memory project collection of the device. Every
// mutation goes to the active backend first and is applied in memory only
// when the backend accepted it.
type ProjectService struct {
	mu       sync.Mutex
	backends *repository.Selector
	catalog  *domain.Catalog
	now      func() time.Time
	items    []domain.Project
	// loaded names the backend and owner items came from.
	loaded string
}

func NewProjectService(backends *repository.Selector, catalog *domain.Catalog) *ProjectService {
	return &ProjectService{
		backends: backends,
		catalog:  catalog,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source.
func (s *ProjectService) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Backend names the backend currently in use.
func (s *ProjectService) Backend() string {
	return s.backends.Name()
}

func (s *ProjectService) source() string {
	_, owner := s.backends.Active()
	return s.backends.Name() + "/" + owner
}

// Load replaces the in-memory collection with the active backend's. When the
// read fails after the active backend changed, the collection is emptied so
// the previous owner's projects never stay listed.
func (s *ProjectService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	src := s.source()
	backend, owner := s.backends.Active()
	items, err := backend.List(ctx, owner)
	if err != nil {
		if src != s.loaded {
			s.items, s.loaded = nil, ""
		}
		logging.NewLogger(ctx).LogErrorf("projects.load", "source=%s error=%v", src, err)
		return fmt.Errorf("load projects: %w", err)
	}
	repository.SortByActivity(items)
	s.items, s.loaded = items, src
	return nil
}

// List returns a copy of the collection, newest activity first.
func (s *ProjectService) List() []domain.Project {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Project, len(s.items))
	for i, p := range s.items {
		out[i] = p.Clone()
	}
	return out
}

func (s *ProjectService) Get(id string) (domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return domain.Project{}, domain.ErrNotFound
	}
	return s.items[i].Clone(), nil
}

func (s *ProjectService) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

// Create adds a new active project. The type falls back to the role's first type.
func (s *ProjectService) Create(ctx context.Context, in domain.NewProject) (domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(in.Type) == "" && s.catalog != nil {
		in.Type = s.catalog.DefaultType(in.Role)
	}
	p, err := domain.Create(in, s.now())
	if err != nil {
		return domain.Project{}, err
	}
	return s.insert(ctx, p)
}

func (s *ProjectService) insert(ctx context.Context, p domain.Project) (domain.Project, error) {
	backend, owner := s.backends.Active()
	p.OwnerID = owner
	if err := backend.Create(ctx, p); err != nil {
		logging.NewLogger(ctx).LogError("projects.create", err)
		return domain.Project{}, fmt.Errorf("create project: %w", err)
	}
	s.items = append([]domain.Project{p}, s.items...)
	repository.SortByActivity(s.items)
	return p.Clone(), nil
}

// QuickCapture turns free text into a project: the first line is the title.
func (s *ProjectService) QuickCapture(ctx context.Context, text, role string) (domain.Project, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Project{}, domain.NewValidationError("nothing to capture")
	}
	title, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	title = strings.TrimSpace(title)
	if title == "" {
		title = quickCaptureFallback
	}
	return s.Create(ctx, domain.NewProject{
		Title:       title,
		Type:        domain.QuickCaptureType,
		Description: text,
		Role:        role,
	})
}

// ApplyTemplate creates a project from one of the role's templates.
func (s *ProjectService) ApplyTemplate(ctx context.Context, role, templateTitle string) (domain.Project, error) {
	if s.catalog == nil {
		return domain.Project{}, domain.NewValidationError("no template catalog")
	}
	tpl, ok := s.catalog.Template(role, templateTitle)
	if !ok {
		return domain.Project{}, domain.NewValidationError(fmt.Sprintf("unknown template %q for role %q", templateTitle, role))
	}
	return s.Create(ctx, domain.NewProject{
		Title:       tpl.Title,
		Type:        tpl.Type,
		Description: tpl.Description,
		Notes:       tpl.Notes,
		Role:        role,
	})
}

// mutate applies fn to the stored copy of the project and persists the result.
// The active backend is re-read first so a change written by another process
// sharing the store is never overwritten with a stale in-memory copy.
func (s *ProjectService) mutate(ctx context.Context, op, id string, fn func(domain.Project, time.Time) (domain.Project, error)) (domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(id) < 0 {
		return domain.Project{}, domain.ErrNotFound
	}

	backend, owner := s.backends.Active()
	current, err := backend.List(ctx, owner)
	if err != nil {
		logging.NewLogger(ctx).LogError(op, err)
		return domain.Project{}, fmt.Errorf("read project: %w", err)
	}
	repository.SortByActivity(current)

	j := slices.IndexFunc(current, func(p domain.Project) bool { return p.ID == id })
	if j < 0 {
		s.items, s.loaded = current, s.source()
		return domain.Project{}, domain.ErrNotFound
	}
	next, err := fn(current[j], s.now())
	if err != nil {
		return domain.Project{}, err
	}

	next.OwnerID = owner
	if err := backend.Update(ctx, next); err != nil {
		logging.NewLogger(ctx).LogError(op, err)
		return domain.Project{}, fmt.Errorf("update project: %w", err)
	}
	current[j] = next
	repository.SortByActivity(current)
	s.items, s.loaded = current, s.source()
	return next.Clone(), nil
}

func (s *ProjectService) Edit(ctx context.Context, id string, e domain.Edit) (domain.Project, error) {
	return s.mutate(ctx, "projects.edit", id, func(p domain.Project, now time.Time) (domain.Project, error) {
		return p.Edited(e, now)
	})
}

func (s *ProjectService) AppendNote(ctx context.Context, id, text string) (domain.Project, error) {
	return s.mutate(ctx, "projects.note", id, func(p domain.Project, now time.Time) (domain.Project, error) {
		return p.WithNote(text, now)
	})
}

// ChangeStatus moves a project along the lifecycle. Archiving needs Archive.
func (s *ProjectService) ChangeStatus(ctx context.Context, id string, to domain.Status) (domain.Project, error) {
	return s.mutate(ctx, "projects.status", id, func(p domain.Project, now time.Time) (domain.Project, error) {
		return p.WithStatus(to, now)
	})
}

func (s *ProjectService) Archive(ctx context.Context, id string, req domain.ArchiveRequest) (domain.Project, error) {
	return s.mutate(ctx, "projects.archive", id, func(p domain.Project, now time.Time) (domain.Project, error) {
		return p.Archived(req, now)
	})
}

func (s *ProjectService) Revive(ctx context.Context, id string) (domain.Project, error) {
	return s.mutate(ctx, "projects.revive", id, func(p domain.Project, now time.Time) (domain.Project, error) {
		return p.Revived(now)
	})
}

// Touch records that the user worked on the project.
func (s *ProjectService) Touch(ctx context.Context, id string) (domain.Project, error) {
	return s.mutate(ctx, "projects.touch", id, func(p domain.Project, now time.Time) (domain.Project, error) {
		return p.Touched(now), nil
	})
}

// Delete removes a project permanently.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return domain.ErrNotFound
	}
	backend, owner := s.backends.Active()
	if err := backend.Delete(ctx, owner, id); err != nil {
		logging.NewLogger(ctx).LogError("projects.delete", err)
		return fmt.Errorf("delete project: %w", err)
	}
	s.items = append(s.items[:i:i], s.items[i+1:]...)
	return nil
}

// ImportResult counts how an import went.
type ImportResult struct {
	Imported int `json:"imported"`
	Failed   int `json:"failed"`
}

// Import stores already decoded projects in the active backend. Records the
// backend rejects are logged and skipped; the rest are applied.
func (s *ProjectService) Import(ctx context.Context, items []domain.Project) (ImportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := logging.NewLogger(ctx)
	backend, owner := s.backends.Active()

	var (
		res  ImportResult
		errs []error
	)
	for _, p := range items {
		p.OwnerID = owner
		if err := backend.Create(ctx, p); err != nil {
			log.LogErrorf("projects.import", "id=%s error=%v", p.ID, err)
			res.Failed++
			errs = append(errs, err)
			continue
		}
		s.items = append(s.items, p)
		res.Imported++
	}
	repository.SortByActivity(s.items)

	if res.Imported == 0 && res.Failed > 0 {
		return res, fmt.Errorf("import projects: %w", errors.Join(errs...))
	}
	return res, nil
}
