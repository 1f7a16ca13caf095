package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/lingua/internal/lingua/domain"
	"github.com/aussiebroadwan/lingua/internal/lingua/store"
	"github.com/aussiebroadwan/lingua/pkg/idx"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page bounds a list query.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	p.Limit = min(p.Limit, MaxPageSize)
	p.Offset = max(p.Offset, 0)
	return p
}

// NewStory is an admin's story submission.
type NewStory struct {
	Title    string
	Language string
	Level    domain.Level
	Body     string
	AudioURL string
}

type StoryService struct {
	Store store.Store
}

func (s *StoryService) List(ctx context.Context, level domain.Level, p Page) ([]domain.Story, error) {
	if level != "" && !level.Valid() {
		return nil, fmt.Errorf("%w: unknown level %q", ErrInvalidInput, level)
	}
	p = p.normalize()
	return s.Store.Stories().ListStories(ctx, level, p.Limit, p.Offset)
}

func (s *StoryService) Get(ctx context.Context, id string) (domain.Story, error) {
	st, err := s.Store.Stories().GetStory(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Story{}, ErrNotFound
	}
	return st, err
}

func (s *StoryService) Create(ctx context.Context, authorID string, in NewStory) (domain.Story, error) {
	st := domain.Story{
		ID:        idx.New().String(),
		Title:     strings.TrimSpace(in.Title),
		Language:  strings.TrimSpace(in.Language),
		Level:     in.Level,
		Body:      strings.TrimSpace(in.Body),
		AudioURL:  strings.TrimSpace(in.AudioURL),
		CreatedBy: authorID,
		CreatedAt: time.Now().UTC(),
	}
	switch {
	case st.Title == "":
		return domain.Story{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	case st.Language == "":
		return domain.Story{}, fmt.Errorf("%w: language is required", ErrInvalidInput)
	case st.Body == "":
		return domain.Story{}, fmt.Errorf("%w: body is required", ErrInvalidInput)
	case !st.Level.Valid():
		return domain.Story{}, fmt.Errorf("%w: unknown level %q", ErrInvalidInput, st.Level)
	}
	if st.AudioURL != "" {
		u, err := url.Parse(st.AudioURL)
		if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
			return domain.Story{}, fmt.Errorf("%w: audio url must be http(s)", ErrInvalidInput)
		}
	}

	if err := s.Store.Stories().CreateStory(ctx, st); err != nil {
		return domain.Story{}, err
	}
	return st, nil
}

func (s *StoryService) Delete(ctx context.Context, id string) error {
	err := s.Store.Stories().DeleteStory(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
