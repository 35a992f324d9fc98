package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/projectsanctuary/sanctuary/internal/projects/domain"
	"github.com/projectsanctuary/sanctuary/internal/storage/local"
)

// BlobStore is the slice of the device store the local backend needs.
type BlobStore interface {
	GetJSON(ctx context.Context, key string, v any) (bool, error)
	SetJSON(ctx context.Context, key string, v any) error
}

// LocalBackend keeps the whole collection as one JSON blob under local.KeyProjects.
// Every mutation rewrites the blob.
type LocalBackend struct {
	mu    sync.Mutex
	store BlobStore
}

func NewLocalBackend(store BlobStore) *LocalBackend {
	return &LocalBackend{store: store}
}

func (b *LocalBackend) load(ctx context.Context) ([]domain.Project, error) {
	var items []domain.Project
	if _, err := b.store.GetJSON(ctx, local.KeyProjects, &items); err != nil {
		return nil, fmt.Errorf("read local projects: %w", err)
	}
	return items, nil
}

func (b *LocalBackend) save(ctx context.Context, items []domain.Project) error {
	if items == nil {
		items = []domain.Project{}
	}
	if err := b.store.SetJSON(ctx, local.KeyProjects, items); err != nil {
		return fmt.Errorf("write local projects: %w", err)
	}
	return nil
}

func (b *LocalBackend) List(ctx context.Context, _ string) ([]domain.Project, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	items, err := b.load(ctx)
	if err != nil {
		return nil, err
	}
	SortByActivity(items)
	return items, nil
}

func (b *LocalBackend) Create(ctx context.Context, p domain.Project) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	items, err := b.load(ctx)
	if err != nil {
		return err
	}
	for _, it := range items {
		if it.ID == p.ID {
			return domain.ErrDuplicateID
		}
	}
	p.OwnerID = ""
	return b.save(ctx, append([]domain.Project{p}, items...))
}

func (b *LocalBackend) Update(ctx context.Context, p domain.Project) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	items, err := b.load(ctx)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].ID == p.ID {
			p.OwnerID = ""
			items[i] = p
			return b.save(ctx, items)
		}
	}
	return domain.ErrNotFound
}

func (b *LocalBackend) Delete(ctx context.Context, _ string, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	items, err := b.load(ctx)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].ID == id {
			return b.save(ctx, append(items[:i], items[i+1:]...))
		}
	}
	return domain.ErrNotFound
}
