package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a project.
type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusArchived  Status = "archived"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusPaused, StatusCompleted, StatusArchived:
		return true
	}
	return false
}

// ArchiveKind tells how final an archive is meant to be.
type ArchiveKind string

const (
	ArchiveTemporary ArchiveKind = "temporary"
	ArchivePermanent ArchiveKind = "permanent"
	ArchiveCompleted ArchiveKind = "completed"
)

func (k ArchiveKind) Valid() bool {
	switch k {
	case ArchiveTemporary, ArchivePermanent, ArchiveCompleted:
		return true
	}
	return false
}

// ArchiveRecord is attached when a project is archived. Reviving keeps it as history.
type ArchiveRecord struct {
	Kind           ArchiveKind `json:"archiveType"`
	FarewellNote   string      `json:"farewellNote"`
	LessonsLearned string      `json:"lessonsLearned"`
	Reason         string      `json:"reasonForArchiving"`
	ArchivedAt     time.Time   `json:"archivedAt"`
}

// Project is the central entity. The JSON shape is shared by the device store
// and the JSON export so both stay readable by the same decoder.
type Project struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Type         string         `json:"type"`
	Status       Status         `json:"status"`
	Description  string         `json:"description"`
	Notes        string         `json:"notes"`
	Role         string         `json:"userRole"`
	CreatedAt    time.Time      `json:"createdAt"`
	LastActivity time.Time      `json:"lastActivity"`
	OwnerID      string         `json:"user_id,omitempty"`
	Archive      *ArchiveRecord `json:"archiveData,omitempty"`
}

// NewProject holds the user-supplied fields of a project about to be created.
type NewProject struct {
	Title       string
	Type        string
	Description string
	Notes       string
	Role        string
}

// Create builds an active project with a fresh id. CreatedAt and LastActivity are both now.
func Create(in NewProject, now time.Time) (Project, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Project{}, ErrTitleRequired
	}
	return Project{
		ID:           NewID(),
		Title:        title,
		Type:         strings.TrimSpace(in.Type),
		Status:       StatusActive,
		Description:  in.Description,
		Notes:        in.Notes,
		Role:         in.Role,
		CreatedAt:    now,
		LastActivity: now,
	}, nil
}

// NewID returns a random project id.
func NewID() string {
	return uuid.NewString()
}

// Validate checks the invariants every stored project must satisfy.
func (p Project) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return NewValidationError("id is required")
	}
	if strings.TrimSpace(p.Title) == "" {
		return ErrTitleRequired
	}
	if !p.Status.Valid() {
		return NewValidationError("invalid status " + string(p.Status))
	}
	if p.CreatedAt.IsZero() || p.LastActivity.IsZero() {
		return NewValidationError("createdAt and lastActivity are required")
	}
	if p.LastActivity.Before(p.CreatedAt) {
		return NewValidationError("lastActivity precedes createdAt")
	}
	if p.Status == StatusArchived && p.Archive == nil {
		return ErrArchiveRecordRequired
	}
	if p.Archive != nil && !p.Archive.Kind.Valid() {
		return NewValidationError("invalid archive type " + string(p.Archive.Kind))
	}
	return nil
}

// Clone returns a copy that shares no memory with p.
func (p Project) Clone() Project {
	if p.Archive != nil {
		a := *p.Archive
		p.Archive = &a
	}
	return p
}
