package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/lingua/internal/lingua/domain"
)

type bannersRepo struct {
	q querier
}

const bannerColumns = `id, message, level, active, starts_at, ends_at, created_by, created_at, updated_at`

func scanBanner(s scanner) (domain.Banner, error) {
	var (
		b                    domain.Banner
		active               int
		startsAt, endsAt     sql.NullInt64
		createdAt, updatedAt int64
	)
	if err := s.Scan(&b.ID, &b.Message, &b.Level, &active, &startsAt, &endsAt, &b.CreatedBy, &createdAt, &updatedAt); err != nil {
		return domain.Banner{}, err
	}
	b.Active = active != 0
	b.StartsAt = fromNullMillis(startsAt)
	b.EndsAt = fromNullMillis(endsAt)
	b.CreatedAt = fromMillis(createdAt)
	b.UpdatedAt = fromMillis(updatedAt)
	return b, nil
}

func (r *bannersRepo) GetBanner(ctx context.Context, id string) (domain.Banner, error) {
	b, err := scanBanner(r.q.QueryRowContext(ctx, `SELECT `+bannerColumns+` FROM banners WHERE id = ?`, id))
	return b, mapNotFound(err)
}

func (r *bannersRepo) ListBanners(ctx context.Context) ([]domain.Banner, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+bannerColumns+` FROM banners ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanBanner)
}

func (r *bannersRepo) ListActive(ctx context.Context, now time.Time) ([]domain.Banner, error) {
	ms := millis(now)
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+bannerColumns+` FROM banners
		WHERE active = 1
		  AND (starts_at IS NULL OR starts_at <= ?)
		  AND (ends_at IS NULL OR ends_at > ?)
		ORDER BY created_at DESC, id DESC`, ms, ms)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanBanner)
}

func (r *bannersRepo) CreateBanner(ctx context.Context, b domain.Banner) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO banners (id, message, level, active, starts_at, ends_at, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Message, b.Level, boolInt(b.Active), nullMillis(b.StartsAt), nullMillis(b.EndsAt),
		b.CreatedBy, millis(b.CreatedAt), millis(b.UpdatedAt))
	return mapConstraint(err)
}

func (r *bannersRepo) UpdateBanner(ctx context.Context, b domain.Banner) error {
	return expectOne(r.q.ExecContext(ctx, `
		UPDATE banners SET message = ?, level = ?, active = ?, starts_at = ?, ends_at = ?, updated_at = ?
		WHERE id = ?`,
		b.Message, b.Level, boolInt(b.Active), nullMillis(b.StartsAt), nullMillis(b.EndsAt),
		millis(b.UpdatedAt), b.ID))
}

func (r *bannersRepo) DeleteBanner(ctx context.Context, id string) error {
	return expectOne(r.q.ExecContext(ctx, `DELETE FROM banners WHERE id = ?`, id))
}

func (r *bannersRepo) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM banners WHERE ends_at IS NOT NULL AND ends_at < ?`, millis(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
