package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/projectsanctuary/sanctuary/internal/projects/domain"
)

const projectColumns = `id, user_id, title, type, status, description, notes, user_role,
archive_type, archive_note, lessons_learned, archive_reason, archived_at,
created_at, last_activity`

// HostedBackend stores one row per project in Postgres, scoped by user_id.
// Timestamps travel as RFC 3339 strings.
type HostedBackend struct {
	db *sql.DB
}

func NewHostedBackend(db *sql.DB) *HostedBackend {
	return &HostedBackend{db: db}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func projectArgs(p domain.Project) []any {
	var (
		kind, note, lessons, reason sql.NullString
		archivedAt                  any
	)
	if a := p.Archive; a != nil {
		kind = sql.NullString{String: string(a.Kind), Valid: true}
		note = sql.NullString{String: a.FarewellNote, Valid: true}
		lessons = sql.NullString{String: a.LessonsLearned, Valid: true}
		reason = sql.NullString{String: a.Reason, Valid: true}
		archivedAt = formatTime(a.ArchivedAt)
	}
	return []any{
		p.ID, p.OwnerID, p.Title, p.Type, string(p.Status), p.Description, p.Notes, p.Role,
		kind, note, lessons, reason, archivedAt,
		formatTime(p.CreatedAt), formatTime(p.LastActivity),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (domain.Project, error) {
	var (
		p                           domain.Project
		status                      string
		kind, note, lessons, reason sql.NullString
		archivedAt                  sql.NullTime
	)
	err := row.Scan(
		&p.ID, &p.OwnerID, &p.Title, &p.Type, &status, &p.Description, &p.Notes, &p.Role,
		&kind, &note, &lessons, &reason, &archivedAt,
		&p.CreatedAt, &p.LastActivity,
	)
	if err != nil {
		return domain.Project{}, err
	}
	p.Status = domain.Status(status)
	if kind.Valid {
		p.Archive = &domain.ArchiveRecord{
			Kind:           domain.ArchiveKind(kind.String),
			FarewellNote:   note.String,
			LessonsLearned: lessons.String,
			Reason:         reason.String,
			ArchivedAt:     archivedAt.Time,
		}
	}
	return p, nil
}

func (r *HostedBackend) List(ctx context.Context, owner string) ([]domain.Project, error) {
	q := `SELECT ` + projectColumns + `
FROM projects
WHERE user_id = $1
ORDER BY last_activity DESC;`

	rows, err := r.db.QueryContext(ctx, q, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *HostedBackend) Create(ctx context.Context, p domain.Project) error {
	if p.OwnerID == "" {
		return fmt.Errorf("owner required")
	}
	q := `INSERT INTO projects (` + projectColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);`

	_, err := r.db.ExecContext(ctx, q, projectArgs(p)...)
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrDuplicateID
		}
		return err
	}
	return nil
}

const updateProject = `
UPDATE projects
SET title = $3, type = $4, status = $5, description = $6, notes = $7, user_role = $8,
    archive_type = $9, archive_note = $10, lessons_learned = $11, archive_reason = $12, archived_at = $13,
    created_at = $14, last_activity = $15, updated_at = now()
WHERE id = $1 AND user_id = $2;
`

func (r *HostedBackend) Update(ctx context.Context, p domain.Project) error {
	res, err := r.db.ExecContext(ctx, updateProject, projectArgs(p)...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *HostedBackend) Delete(ctx context.Context, owner, id string) error {
	const q = `DELETE FROM projects WHERE id = $1 AND user_id = $2;`
	res, err := r.db.ExecContext(ctx, q, id, owner)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Upsert inserts p for owner or overwrites the row with the same id.
// A row with that id owned by someone else is left alone and reported as a duplicate.
func (r *HostedBackend) Upsert(ctx context.Context, owner string, p domain.Project) error {
	p.OwnerID = owner
	q := `INSERT INTO projects (` + projectColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
ON CONFLICT (id) DO UPDATE
SET title = EXCLUDED.title, type = EXCLUDED.type, status = EXCLUDED.status,
    description = EXCLUDED.description, notes = EXCLUDED.notes, user_role = EXCLUDED.user_role,
    archive_type = EXCLUDED.archive_type, archive_note = EXCLUDED.archive_note,
    lessons_learned = EXCLUDED.lessons_learned, archive_reason = EXCLUDED.archive_reason,
    archived_at = EXCLUDED.archived_at, created_at = EXCLUDED.created_at,
    last_activity = EXCLUDED.last_activity, updated_at = now()
WHERE projects.user_id = EXCLUDED.user_id;`

	res, err := r.db.ExecContext(ctx, q, projectArgs(p)...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrDuplicateID
	}
	return nil
}
