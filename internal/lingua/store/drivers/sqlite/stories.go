package sqlite

import (
	"context"

	"github.com/aussiebroadwan/lingua/internal/lingua/domain"
)

type storiesRepo struct {
	q querier
}

const storyColumns = `id, title, language, level, body, audio_url, created_by, created_at`

func scanStory(s scanner) (domain.Story, error) {
	var (
		st        domain.Story
		level     string
		createdAt int64
	)
	if err := s.Scan(&st.ID, &st.Title, &st.Language, &level, &st.Body, &st.AudioURL, &st.CreatedBy, &createdAt); err != nil {
		return domain.Story{}, err
	}
	st.Level = domain.Level(level)
	st.CreatedAt = fromMillis(createdAt)
	return st, nil
}

func (r *storiesRepo) GetStory(ctx context.Context, id string) (domain.Story, error) {
	st, err := scanStory(r.q.QueryRowContext(ctx, `SELECT `+storyColumns+` FROM stories WHERE id = ?`, id))
	return st, mapNotFound(err)
}

func (r *storiesRepo) ListStories(ctx context.Context, level domain.Level, limit, offset int) ([]domain.Story, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+storyColumns+` FROM stories
		WHERE (? = '' OR level = ?)
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`,
		string(level), string(level), limit, offset)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanStory)
}

func (r *storiesRepo) CreateStory(ctx context.Context, s domain.Story) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO stories (id, title, language, level, body, audio_url, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Title, s.Language, string(s.Level), s.Body, s.AudioURL, s.CreatedBy, millis(s.CreatedAt))
	return mapConstraint(err)
}

func (r *storiesRepo) DeleteStory(ctx context.Context, id string) error {
	return expectOne(r.q.ExecContext(ctx, `DELETE FROM stories WHERE id = ?`, id))
}
