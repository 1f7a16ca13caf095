package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/lingua/internal/lingua/domain"
)

type usersRepo struct {
	q querier
}

const userColumns = `id, username, preferred_name, password_hash, role, level,
	mfa_secret, mfa_enabled_at, created_at, updated_at`

func scanUser(s scanner) (domain.User, error) {
	var (
		u                    domain.User
		level                string
		secret               sql.NullString
		enabledAt            sql.NullInt64
		createdAt, updatedAt int64
	)
	err := s.Scan(&u.ID, &u.Username, &u.PreferredName, &u.PasswordHash, &u.Role, &level,
		&secret, &enabledAt, &createdAt, &updatedAt)
	if err != nil {
		return domain.User{}, err
	}
	u.Level = domain.Level(level)
	u.MFASecret = secret.String
	u.MFAEnabledAt = fromNullMillis(enabledAt)
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updatedAt)
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	u, err := scanUser(r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	return u, mapNotFound(err)
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	u, err := scanUser(r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
	return u, mapNotFound(err)
}

func (r *usersRepo) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at, id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanUser)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := millis(time.Now())
	created := now
	if !u.CreatedAt.IsZero() {
		created = millis(u.CreatedAt)
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO users (id, username, preferred_name, password_hash, role, level,
			mfa_secret, mfa_enabled_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.PreferredName, u.PasswordHash, u.Role, string(u.Level),
		nullString(u.MFASecret), nullMillis(u.MFAEnabledAt), created, now)
	return mapConstraint(err)
}

func (r *usersRepo) UpdateProfile(ctx context.Context, userID, preferredName string, level domain.Level) error {
	return expectOne(r.q.ExecContext(ctx,
		`UPDATE users SET preferred_name = ?, level = ?, updated_at = ? WHERE id = ?`,
		preferredName, string(level), millis(time.Now()), userID))
}

func (r *usersRepo) UpdateRole(ctx context.Context, userID, role string) error {
	return expectOne(r.q.ExecContext(ctx,
		`UPDATE users SET role = ?, updated_at = ? WHERE id = ?`,
		role, millis(time.Now()), userID))
}

func (r *usersRepo) UpdateMFASecret(ctx context.Context, userID, secret string) error {
	return expectOne(r.q.ExecContext(ctx,
		`UPDATE users SET mfa_secret = ?, updated_at = ? WHERE id = ?`,
		nullString(secret), millis(time.Now()), userID))
}

func (r *usersRepo) EnableMFA(ctx context.Context, userID string, at time.Time) error {
	return expectOne(r.q.ExecContext(ctx,
		`UPDATE users SET mfa_enabled_at = ?, updated_at = ? WHERE id = ?`,
		millis(at), millis(time.Now()), userID))
}

func (r *usersRepo) DisableMFA(ctx context.Context, userID string) error {
	return expectOne(r.q.ExecContext(ctx,
		`UPDATE users SET mfa_secret = NULL, mfa_enabled_at = NULL, updated_at = ? WHERE id = ?`,
		millis(time.Now()), userID))
}

func (r *usersRepo) DeleteUser(ctx context.Context, userID string) error {
	return expectOne(r.q.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID))
}

func (r *usersRepo) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func (r *usersRepo) CountAdmins(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role = 'admin'`).Scan(&n)
	return n, err
}
