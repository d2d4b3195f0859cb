package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrInactive = errors.New("user inactive")
	ErrInvalid  = errors.New("invalid")
)

type Store struct {
	db    *sql.DB
	types *pgtype.Map
}

func NewStore(db *sql.DB) *Store { return &Store{db: db, types: pgtype.NewMap()} }

func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Postgres error codes mapped to store errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
	case pgForeignKeyViolation:
		return fmt.Errorf("%w: %s", ErrNotFound, pgErr.ConstraintName)
	case pgCheckViolation:
		return fmt.Errorf("%w: %s", ErrInvalid, pgErr.ConstraintName)
	}
	return err
}

const userColumns = `id, email, name, role, skills, looking_for, avatar, theme, is_active, created_at`

func (s *Store) scanUser(row interface{ Scan(...any) error }, extra ...any) (User, error) {
	var u User
	dest := []any{&u.ID, &u.Email, &u.Name, &u.Role, s.types.SQLScanner(&u.Skills), &u.LookingFor, &u.Avatar, &u.Theme, &u.IsActive, &u.CreatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	if u.Skills == nil {
		u.Skills = []string{}
	}
	return u, nil
}

// Auth & Users
func (s *Store) CreateUser(ctx context.Context, email, passwordHash, name string) (User, error) {
	row := s.db.QueryRowContext(ctx, `insert into users(id, email, password_hash, name) values($1,$2,$3,$4)
		returning `+userColumns, uuid.NewString(), email, passwordHash, name)
	u, err := s.scanUser(row)
	if err != nil {
		return User{}, mapPgError(err)
	}
	return u, nil
}

// get user creds by email, including password hash
func (s *Store) userCredsByEmail(ctx context.Context, email string) (User, string, error) {
	var hash string
	row := s.db.QueryRowContext(ctx, `select `+userColumns+`, password_hash from users where lower(email)=lower($1)`, email)
	u, err := s.scanUser(row, &hash)
	return u, hash, err
}

func (s *Store) UserByID(ctx context.Context, id string) (User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `select `+userColumns+` from users where id=$1`, id))
}

func (s *Store) CreateSession(ctx context.Context, userID string, ttl time.Duration) (string, time.Time, error) {
	// 32 random bytes, base64 URL encoded
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", time.Time{}, err
	}
	token := base64.RawURLEncoding.EncodeToString(b)
	expires := time.Now().Add(ttl)
	_, err := s.db.ExecContext(ctx, `insert into sessions(user_id, token, expires_at) values($1,$2,$3)`, userID, token, expires)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expires, nil
}

func (s *Store) UserBySession(ctx context.Context, token string) (User, error) {
	row := s.db.QueryRowContext(ctx, `select u.id, u.email, u.name, u.role, u.skills, u.looking_for, u.avatar, u.theme, u.is_active, u.created_at
		from sessions s join users u on u.id=s.user_id
		where s.token=$1 and s.expires_at > now()`, token)
	return s.scanUser(row)
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `delete from sessions where token=$1`, token)
	return err
}

// Verify user password and return user if ok
func (s *Store) Authenticate(ctx context.Context, email, password string) (User, error) {
	u, hash, err := s.userCredsByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return User{}, ErrNotFound
	}
	if !u.IsActive {
		return User{}, ErrInactive
	}
	return u, nil
}

// UpdateProfile writes the non-nil fields of p.
func (s *Store) UpdateProfile(ctx context.Context, id string, p ProfileUpdate) error {
	var sets []string
	var args []any
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s=$%d", col, len(args)))
	}
	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.Role != nil {
		add("role", *p.Role)
	}
	if p.Skills != nil {
		add("skills", p.Skills)
	}
	if p.LookingFor != nil {
		add("looking_for", *p.LookingFor)
	}
	if p.Avatar != nil {
		add("avatar", *p.Avatar)
	}
	if p.Theme != nil {
		add("theme", *p.Theme)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	q := fmt.Sprintf(`update users set %s where id=$%d`, joinComma(sets), len(args))
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return mapPgError(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListMembers(ctx context.Context) ([]Member, error) {
	rows, err := s.db.QueryContext(ctx, `select id, name, role, skills, looking_for, avatar from users where is_active order by created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Member{}
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.Name, &m.Role, s.types.SQLScanner(&m.Skills), &m.LookingFor, &m.Avatar); err != nil {
			return nil, err
		}
		if m.Skills == nil {
			m.Skills = []string{}
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Connection requests

const requestColumns = `id, from_user, to_user, status, created_at`

func scanRequest(row interface{ Scan(...any) error }) (Request, error) {
	var r Request
	err := row.Scan(&r.ID, &r.From, &r.To, &r.Status, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Request{}, ErrNotFound
	}
	return r, err
}

// QueryRequests returns requests matching every non-empty field of f.
func (s *Store) QueryRequests(ctx context.Context, f RequestFilter) ([]Request, error) {
	var conds []string
	var args []any
	add := func(col, v string) {
		if v == "" {
			return
		}
		args = append(args, v)
		conds = append(conds, fmt.Sprintf("%s=$%d", col, len(args)))
	}
	add("from_user", f.From)
	add("to_user", f.To)
	add("status", f.Status)
	q := `select ` + requestColumns + ` from requests`
	if len(conds) > 0 {
		q += ` where ` + strings.Join(conds, " and ")
	}
	q += ` order by created_at, id`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Request{}
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CreateRequest inserts a pending request. A second request for the same
// ordered pair fails with ErrConflict; an unknown recipient with
// ErrNotFound.
func (s *Store) CreateRequest(ctx context.Context, from, to string) (Request, error) {
	row := s.db.QueryRowContext(ctx, `insert into requests(id, from_user, to_user, status) values($1,$2,$3,$4)
		returning `+requestColumns, uuid.NewString(), from, to, StatusPending)
	r, err := scanRequest(row)
	if err != nil {
		return Request{}, mapPgError(err)
	}
	return r, nil
}

// WithdrawRequest deletes a pending request sent by from.
func (s *Store) WithdrawRequest(ctx context.Context, id, from string) (Request, error) {
	row := s.db.QueryRowContext(ctx, `delete from requests where id=$1 and from_user=$2 and status=$3
		returning `+requestColumns, id, from, StatusPending)
	return scanRequest(row)
}

// AcceptRequest marks a pending request addressed to to as accepted.
func (s *Store) AcceptRequest(ctx context.Context, id, to string) (Request, error) {
	row := s.db.QueryRowContext(ctx, `update requests set status=$1 where id=$2 and to_user=$3 and status=$4
		returning `+requestColumns, StatusAccepted, id, to, StatusPending)
	return scanRequest(row)
}

func joinComma(parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	out := parts[0]
	for i := 1; i < len(parts); i++ {
		out += ", " + parts[i]
	}
	return out
}

const schema = `
-- Users and auth
create table if not exists users(
		id text primary key,
		email text unique not null,
		password_hash text not null default '',
		name text not null default '',
		role text not null default '',
		skills text[] not null default '{}',
		looking_for text not null default '',
		avatar text not null default '',
		theme text not null default 'dark' check (theme in ('light', 'dark')),
		is_active boolean not null default true,
		created_at timestamptz not null default now()
);

create table if not exists sessions(
		id bigserial primary key,
		user_id text not null references users(id) on delete cascade,
		token text unique not null,
		created_at timestamptz not null default now(),
		expires_at timestamptz not null
);

-- Connection requests; both states are active, so one row per ordered pair
create table if not exists requests(
		id text primary key,
		from_user text not null references users(id) on delete cascade,
		to_user text not null references users(id) on delete cascade,
		status text not null check (status in ('pending', 'accepted')),
		created_at timestamptz not null default now(),
		check (from_user <> to_user)
);
create unique index if not exists requests_pair_idx on requests(from_user, to_user);
create index if not exists requests_to_idx on requests(to_user, status);
`
