package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/lingua/internal/lingua/domain"
	"github.com/aussiebroadwan/lingua/internal/lingua/store"
	"github.com/aussiebroadwan/lingua/pkg/cryptox"
	"github.com/aussiebroadwan/lingua/pkg/idx"
	"github.com/aussiebroadwan/lingua/pkg/slogx"
)

// BootstrapService creates the first admin on an empty installation.
type BootstrapService struct {
	Store store.Store
	Token string // pre-shared; an empty token disables bootstrap
}

func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	n, err := s.Store.Users().CountUsers(ctx)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Bootstrap creates an admin account when no users exist yet.
func (s *BootstrapService) Bootstrap(ctx context.Context, token, username, password, preferredName string) (domain.User, error) {
	l := slogx.FromContext(ctx)

	if s.Token == "" || !constantTimeEqual(token, s.Token) {
		l.Warn("unauthorized bootstrap attempt")
		return domain.User{}, ErrBootstrapUnauthorized
	}

	username = strings.TrimSpace(username)
	if err := validateCredentials(username, password); err != nil {
		return domain.User{}, err
	}
	if preferredName = strings.TrimSpace(preferredName); preferredName == "" {
		preferredName = username
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	u := domain.User{
		ID:            idx.New().String(),
		Username:      username,
		PreferredName: preferredName,
		PasswordHash:  hash,
		Role:          domain.RoleAdmin,
		Level:         domain.LevelA1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// Count and insert in one transaction so concurrent calls cannot both win.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		n, err := tx.Users().CountUsers(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrBootstrapAlready
		}
		return tx.Users().CreateUser(ctx, u)
	})
	if err != nil {
		if errors.Is(err, ErrBootstrapAlready) {
			l.Warn("attempted bootstrap on already-bootstrapped system")
		}
		return domain.User{}, err
	}

	l.Info("system bootstrapped", slog.String("admin_user_id", u.ID))
	return u, nil
}
