package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aussiebroadwan/lingua/internal/lingua/domain"
	"github.com/aussiebroadwan/lingua/internal/lingua/store"
	"github.com/aussiebroadwan/lingua/pkg/idx"
)

const (
	MaxWordLength  = 128
	DefaultDueSize = 50
)

// NewCard is a vocabulary entry to add.
type NewCard struct {
	ID          string // optional client-generated ULID
	Word        string
	Translation string
	StoryID     string
}

type VocabularyService struct {
	Store store.Store

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *VocabularyService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *VocabularyService) Add(ctx context.Context, userID string, in NewCard) (domain.Card, error) {
	return addCard(ctx, s.Store, userID, in, s.now())
}

func (s *VocabularyService) List(ctx context.Context, userID string) ([]domain.Card, error) {
	return s.Store.Cards().ListCards(ctx, userID)
}

func (s *VocabularyService) Due(ctx context.Context, userID string, limit int) ([]domain.Card, error) {
	if limit <= 0 {
		limit = DefaultDueSize
	}
	return s.Store.Cards().ListDue(ctx, userID, s.now(), min(limit, MaxPageSize))
}

// Review records a recall quality (0-5) for a card and reschedules it.
func (s *VocabularyService) Review(ctx context.Context, userID, cardID string, quality int) (domain.Card, error) {
	var out domain.Card
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		now := s.now()
		c, err := reviewCard(ctx, tx, userID, cardID, quality, now, now)
		out = c
		return err
	})
	return out, err
}

func (s *VocabularyService) Delete(ctx context.Context, userID, cardID string) error {
	return deleteCard(ctx, s.Store, userID, cardID, s.now())
}

// The helpers below are shared with the sync service, which runs them
// inside its own transaction.

func addCard(ctx context.Context, st store.Store, userID string, in NewCard, now time.Time) (domain.Card, error) {
	word := strings.TrimSpace(in.Word)
	translation := strings.TrimSpace(in.Translation)
	if word == "" || translation == "" {
		return domain.Card{}, fmt.Errorf("%w: word and translation are required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(word) > MaxWordLength || utf8.RuneCountInString(translation) > MaxWordLength {
		return domain.Card{}, fmt.Errorf("%w: word too long", ErrInvalidInput)
	}

	id := in.ID
	switch {
	case id == "":
		id = idx.New().String()
	case !idx.Valid(id):
		return domain.Card{}, fmt.Errorf("%w: card id must be a ULID", ErrInvalidInput)
	}

	if in.StoryID != "" {
		if _, err := st.Stories().GetStory(ctx, in.StoryID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.Card{}, fmt.Errorf("%w: unknown story", ErrInvalidInput)
			}
			return domain.Card{}, err
		}
	}

	c := domain.NewCard(id, userID, word, translation, in.StoryID, now)
	if err := st.Cards().CreateCard(ctx, c); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Card{}, fmt.Errorf("%w: card already exists", ErrConflict)
		}
		return domain.Card{}, err
	}
	return c, nil
}

// reviewCard schedules from the review time at but stamps the change with
// the server time now, which the sync feed orders by.
func reviewCard(ctx context.Context, st store.Store, userID, cardID string, quality int, at, now time.Time) (domain.Card, error) {
	if quality < 0 || quality > domain.MaxQuality {
		return domain.Card{}, fmt.Errorf("%w: quality must be 0-%d", ErrInvalidInput, domain.MaxQuality)
	}
	c, err := st.Cards().GetCard(ctx, userID, cardID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Card{}, ErrNotFound
		}
		return domain.Card{}, err
	}
	c.Review(quality, at)
	c.UpdatedAt = now
	if err := st.Cards().UpdateSchedule(ctx, c); err != nil {
		return domain.Card{}, err
	}
	return c, nil
}

func deleteCard(ctx context.Context, st store.Store, userID, cardID string, now time.Time) error {
	err := st.Cards().SoftDeleteCard(ctx, userID, cardID, now)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
