package repository

import (
	"context"
	"slices"

	"github.com/projectsanctuary/sanctuary/internal/projects/domain"
)

// Backend is where the project collection lives. The owner argument scopes
// hosted reads and deletes; the device store ignores it.
type Backend interface {
	List(ctx context.Context, owner string) ([]domain.Project, error)
	Create(ctx context.Context, p domain.Project) error
	Update(ctx context.Context, p domain.Project) error
	Delete(ctx context.Context, owner, id string) error
}

// SortByActivity orders projects newest activity first.
func SortByActivity(items []domain.Project) {
	slices.SortStableFunc(items, func(a, b domain.Project) int {
		return b.LastActivity.Compare(a.LastActivity)
	})
}
