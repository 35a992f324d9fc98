package domain

import (
	"strings"
	"time"
)

var transitions = map[Status][]Status{
	StatusActive:    {StatusPaused, StatusCompleted, StatusArchived},
	StatusPaused:    {StatusActive, StatusCompleted, StatusArchived},
	StatusCompleted: {StatusActive, StatusPaused, StatusArchived},
	StatusArchived:  {StatusActive},
}

// CanTransition reports whether a project may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ArchiveRequest carries the user's farewell bundle.
type ArchiveRequest struct {
	Kind           ArchiveKind `json:"archiveType"`
	FarewellNote   string      `json:"farewellNote"`
	LessonsLearned string      `json:"lessonsLearned"`
	Reason         string      `json:"reasonForArchiving"`
}

// Edit holds optional field changes. Nil fields are left alone.
type Edit struct {
	Title       *string `json:"title,omitempty"`
	Type        *string `json:"type,omitempty"`
	Description *string `json:"description,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

// touch moves LastActivity forward and never backwards.
func (p *Project) touch(now time.Time) {
	if now.After(p.LastActivity) {
		p.LastActivity = now
	}
}

// WithStatus returns p moved to status to. Archiving needs an archive record and
// goes through Archived; archived -> active is a revive.
func (p Project) WithStatus(to Status, now time.Time) (Project, error) {
	if !to.Valid() {
		return Project{}, NewValidationError("invalid status " + string(to))
	}
	if to == StatusArchived {
		return Project{}, ErrArchiveRecordRequired
	}
	if p.Status == StatusArchived && to == StatusActive {
		return p.Revived(now)
	}
	if !CanTransition(p.Status, to) {
		return Project{}, ErrInvalidTransition
	}
	out := p.Clone()
	out.Status = to
	out.touch(now)
	return out, nil
}

// Archived returns p archived with the given record. Status and record change together.
func (p Project) Archived(req ArchiveRequest, now time.Time) (Project, error) {
	if !CanTransition(p.Status, StatusArchived) {
		return Project{}, ErrInvalidTransition
	}
	kind := req.Kind
	if kind == "" {
		kind = ArchiveTemporary
	}
	if !kind.Valid() {
		return Project{}, NewValidationError("invalid archive type " + string(kind))
	}
	out := p.Clone()
	out.Status = StatusArchived
	out.Archive = &ArchiveRecord{
		Kind:           kind,
		FarewellNote:   req.FarewellNote,
		LessonsLearned: req.LessonsLearned,
		Reason:         req.Reason,
		ArchivedAt:     now,
	}
	out.touch(now)
	return out, nil
}

// Revived returns an archived project back in active status with its archive record intact.
func (p Project) Revived(now time.Time) (Project, error) {
	if p.Status != StatusArchived {
		return Project{}, ErrNotArchived
	}
	out := p.Clone()
	out.Status = StatusActive
	out.touch(now)
	return out, nil
}

// Touched records work on the project without changing anything else.
func (p Project) Touched(now time.Time) Project {
	out := p.Clone()
	out.touch(now)
	return out
}

// Edited applies manual field edits.
func (p Project) Edited(e Edit, now time.Time) (Project, error) {
	out := p.Clone()
	if e.Title != nil {
		title := strings.TrimSpace(*e.Title)
		if title == "" {
			return Project{}, ErrTitleRequired
		}
		out.Title = title
	}
	if e.Type != nil {
		out.Type = strings.TrimSpace(*e.Type)
	}
	if e.Description != nil {
		out.Description = *e.Description
	}
	if e.Notes != nil {
		out.Notes = *e.Notes
	}
	out.touch(now)
	return out, nil
}

// WithNote appends text to the project's notes.
func (p Project) WithNote(text string, now time.Time) (Project, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Project{}, NewValidationError("note is empty")
	}
	out := p.Clone()
	if out.Notes == "" {
		out.Notes = text
	} else {
		out.Notes = out.Notes + "\n\n" + text
	}
	out.touch(now)
	return out, nil
}
