package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrNotFound = errors.New("profile not found")

// DB is the part of *pgxpool.Pool the repo uses.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Repo struct {
	db DB
}

func NewRepo(db DB) *Repo {
	return &Repo{db: db}
}

type Profile struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Repo) Get(ctx context.Context, uid string) (Profile, error) {
	const q = `
select id, email, role, created_at, updated_at
from users
where id = $1;
`
	var p Profile
	err := r.db.QueryRow(ctx, q, uid).Scan(&p.UID, &p.Email, &p.Role, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, err
	}
	return p, nil
}

// UpsertRole records the role for uid and makes sure a streak row exists.
func (r *Repo) UpsertRole(ctx context.Context, uid, email, role string) error {
	if uid == "" {
		return fmt.Errorf("firebase_uid required")
	}

	const upsertUser = `
insert into users (id, email, role, updated_at)
values ($1, $2, $3, now())
on conflict (id) do update
set
  email = coalesce(nullif(excluded.email, ''), users.email),
  role = excluded.role,
  updated_at = now();
`
	if _, err := r.db.Exec(ctx, upsertUser, uid, email, role); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}

	const ensureStreak = `
insert into activity_streaks (user_id, current_streak, longest_streak)
values ($1, 0, 0)
on conflict (user_id) do nothing;
`
	if _, err := r.db.Exec(ctx, ensureStreak, uid); err != nil {
		return fmt.Errorf("ensure streak: %w", err)
	}
	return nil
}
