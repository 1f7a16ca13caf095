package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/lingua/internal/lingua/domain"
)

type cardsRepo struct {
	q querier
}

const cardColumns = `id, user_id, word, translation, story_id, ease, interval_days, repetitions,
	streak, last_quality, learned, due_at, reviewed_at, created_at, updated_at, deleted_at, change_seq`

func scanCard(s scanner) (domain.Card, error) {
	var (
		c                           domain.Card
		learned                     int
		dueAt, createdAt, updatedAt int64
		reviewedAt, deletedAt       sql.NullInt64
	)
	err := s.Scan(&c.ID, &c.UserID, &c.Word, &c.Translation, &c.StoryID, &c.Ease, &c.Interval,
		&c.Repetitions, &c.Streak, &c.LastQuality, &learned, &dueAt, &reviewedAt,
		&createdAt, &updatedAt, &deletedAt, &c.Seq)
	if err != nil {
		return domain.Card{}, err
	}
	c.Learned = learned != 0
	c.DueAt = fromMillis(dueAt)
	c.ReviewedAt = fromNullMillis(reviewedAt)
	c.CreatedAt = fromMillis(createdAt)
	c.UpdatedAt = fromMillis(updatedAt)
	c.DeletedAt = fromNullMillis(deletedAt)
	return c, nil
}

func (r *cardsRepo) GetCard(ctx context.Context, userID, id string) (domain.Card, error) {
	c, err := scanCard(r.q.QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE id = ? AND user_id = ? AND deleted_at IS NULL`, id, userID))
	return c, mapNotFound(err)
}

func (r *cardsRepo) ListCards(ctx context.Context, userID string) ([]domain.Card, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE user_id = ? AND deleted_at IS NULL ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanCard)
}

func (r *cardsRepo) ListDue(ctx context.Context, userID string, now time.Time, limit int) ([]domain.Card, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+cardColumns+` FROM cards
		WHERE user_id = ? AND deleted_at IS NULL AND due_at <= ?
		ORDER BY due_at, id
		LIMIT ?`, userID, millis(now), limit)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanCard)
}

func (r *cardsRepo) ListChangedSince(ctx context.Context, userID string, after int64) ([]domain.Card, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+cardColumns+` FROM cards
		WHERE user_id = ? AND change_seq > ?
		ORDER BY change_seq`, userID, after)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanCard)
}

func (r *cardsRepo) CreateCard(ctx context.Context, c domain.Card) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO cards (id, user_id, word, translation, story_id, ease, interval_days, repetitions,
			streak, last_quality, learned, due_at, reviewed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Word, c.Translation, c.StoryID, c.Ease, c.Interval, c.Repetitions,
		c.Streak, c.LastQuality, boolInt(c.Learned), millis(c.DueAt), nullMillis(c.ReviewedAt),
		millis(c.CreatedAt), millis(c.UpdatedAt))
	return mapConstraint(err)
}

func (r *cardsRepo) UpdateSchedule(ctx context.Context, c domain.Card) error {
	return expectOne(r.q.ExecContext(ctx, `
		UPDATE cards SET ease = ?, interval_days = ?, repetitions = ?, streak = ?, last_quality = ?,
			learned = ?, due_at = ?, reviewed_at = ?, updated_at = ?
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		c.Ease, c.Interval, c.Repetitions, c.Streak, c.LastQuality, boolInt(c.Learned),
		millis(c.DueAt), nullMillis(c.ReviewedAt), millis(c.UpdatedAt), c.ID, c.UserID))
}

func (r *cardsRepo) SoftDeleteCard(ctx context.Context, userID, id string, now time.Time) error {
	return expectOne(r.q.ExecContext(ctx,
		`UPDATE cards SET deleted_at = ?, updated_at = ? WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		millis(now), millis(now), id, userID))
}

func (r *cardsRepo) PurgeDeleted(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM cards WHERE deleted_at IS NOT NULL AND deleted_at < ?`, millis(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
