package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/projectsanctuary/sanctuary/internal/logging"
	"github.com/projectsanctuary/sanctuary/internal/projects/domain"
	"github.com/projectsanctuary/sanctuary/internal/storage/local"
)

var ErrUnknownRole = errors.New("unknown role")

type RoleStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

type OwnerSource interface {
	OwnerID() string
}

// ProfileService resolves the user's role from the hosted profile when signed
// in and from the device store otherwise.
type ProfileService struct {
	repo    *Repo
	local   RoleStore
	owner   OwnerSource
	catalog *domain.Catalog
}

// NewProfileService builds the service. repo may be nil when there is no hosted database.
func NewProfileService(repo *Repo, local RoleStore, owner OwnerSource, catalog *domain.Catalog) *ProfileService {
	return &ProfileService{repo: repo, local: local, owner: owner, catalog: catalog}
}

func (s *ProfileService) Catalog() *domain.Catalog {
	return s.catalog
}

// Role is the current role id, lower case, or "" when none was chosen.
func (s *ProfileService) Role(ctx context.Context) (string, error) {
	if uid := s.ownerID(); uid != "" && s.repo != nil {
		p, err := s.repo.Get(ctx, uid)
		switch {
		case err == nil && p.Role != "":
			return strings.ToLower(p.Role), nil
		case err != nil && !errors.Is(err, ErrNotFound):
			return "", err
		}
	}
	v, _, err := s.local.Get(ctx, local.KeyUserRole)
	if err != nil {
		return "", err
	}
	return strings.ToLower(v), nil
}

// SetRole stores role for uid on the hosted profile, or on the device when uid is empty.
func (s *ProfileService) SetRole(ctx context.Context, uid, email, role string) (string, error) {
	r, ok := s.catalog.Role(role)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}

	if uid != "" && s.repo != nil {
		if err := s.repo.UpsertRole(ctx, uid, email, capitalize(r.ID)); err != nil {
			logging.NewLogger(ctx).LogError("profile.role", err)
			return "", err
		}
		return r.ID, nil
	}
	if err := s.local.Set(ctx, local.KeyUserRole, r.ID); err != nil {
		return "", err
	}
	return r.ID, nil
}

// Profile returns the hosted profile of uid.
func (s *ProfileService) Profile(ctx context.Context, uid string) (Profile, error) {
	if s.repo == nil {
		return Profile{}, ErrNotFound
	}
	return s.repo.Get(ctx, uid)
}

func (s *ProfileService) ownerID() string {
	if s.owner == nil {
		return ""
	}
	return s.owner.OwnerID()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
