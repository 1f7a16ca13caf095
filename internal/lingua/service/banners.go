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

const MaxBannerLength = 500

// BannerInput is the editable part of a banner.
type BannerInput struct {
	Message  string
	Level    string
	Active   bool
	StartsAt *time.Time
	EndsAt   *time.Time
}

func (in BannerInput) validate() error {
	switch {
	case strings.TrimSpace(in.Message) == "":
		return fmt.Errorf("%w: message is required", ErrInvalidInput)
	case utf8.RuneCountInString(in.Message) > MaxBannerLength:
		return fmt.Errorf("%w: message too long", ErrInvalidInput)
	case !domain.ValidBannerLevel(in.Level):
		return fmt.Errorf("%w: level must be info, warning or error", ErrInvalidInput)
	case in.StartsAt != nil && in.EndsAt != nil && !in.EndsAt.After(*in.StartsAt):
		return fmt.Errorf("%w: ends_at must be after starts_at", ErrInvalidInput)
	}
	return nil
}

type BannerService struct {
	Store store.Store

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *BannerService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Active returns the banners showing now.
func (s *BannerService) Active(ctx context.Context) ([]domain.Banner, error) {
	return s.Store.Banners().ListActive(ctx, s.now())
}

func (s *BannerService) List(ctx context.Context) ([]domain.Banner, error) {
	return s.Store.Banners().ListBanners(ctx)
}

func (s *BannerService) Create(ctx context.Context, authorID string, in BannerInput) (domain.Banner, error) {
	if in.Level == "" {
		in.Level = domain.BannerInfo
	}
	if err := in.validate(); err != nil {
		return domain.Banner{}, err
	}
	now := s.now()
	b := domain.Banner{
		ID:        idx.New().String(),
		Message:   strings.TrimSpace(in.Message),
		Level:     in.Level,
		Active:    in.Active,
		StartsAt:  in.StartsAt,
		EndsAt:    in.EndsAt,
		CreatedBy: authorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Store.Banners().CreateBanner(ctx, b); err != nil {
		return domain.Banner{}, err
	}
	return b, nil
}

func (s *BannerService) Update(ctx context.Context, id string, in BannerInput) (domain.Banner, error) {
	if err := in.validate(); err != nil {
		return domain.Banner{}, err
	}

	var out domain.Banner
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		b, err := tx.Banners().GetBanner(ctx, id)
		if err != nil {
			return err
		}
		b.Message = strings.TrimSpace(in.Message)
		b.Level = in.Level
		b.Active = in.Active
		b.StartsAt = in.StartsAt
		b.EndsAt = in.EndsAt
		b.UpdatedAt = s.now()
		out = b
		return tx.Banners().UpdateBanner(ctx, b)
	})
	if errors.Is(err, store.ErrNotFound) {
		return domain.Banner{}, ErrNotFound
	}
	return out, err
}

func (s *BannerService) Delete(ctx context.Context, id string) error {
	err := s.Store.Banners().DeleteBanner(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
