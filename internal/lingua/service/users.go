package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/lingua/internal/lingua/domain"
	"github.com/aussiebroadwan/lingua/internal/lingua/store"
	"github.com/aussiebroadwan/lingua/pkg/slogx"
)

// UserAdminService backs the admin panel's user management.
type UserAdminService struct {
	Store store.Store
}

func (s *UserAdminService) List(ctx context.Context, p Page) ([]domain.User, error) {
	p = p.normalize()
	return s.Store.Users().ListUsers(ctx, p.Limit, p.Offset)
}

// SetRole changes another user's role. Admins cannot change their own.
func (s *UserAdminService) SetRole(ctx context.Context, actorID, userID, role string) (domain.User, error) {
	if !domain.ValidRole(role) {
		return domain.User{}, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
	if actorID == userID {
		return domain.User{}, fmt.Errorf("%w: cannot change your own role", ErrForbidden)
	}

	var out domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdateRole(ctx, userID, role); err != nil {
			return err
		}
		u, err := tx.Users().GetUserByID(ctx, userID)
		out = u
		return err
	})
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrNotFound
	}
	if err != nil {
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("user role changed",
		slog.String("actor_id", actorID), slog.String("user_id", userID), slog.String("role", role))
	return out, nil
}

// Delete removes another user and everything they own.
func (s *UserAdminService) Delete(ctx context.Context, actorID, userID string) error {
	if actorID == userID {
		return fmt.Errorf("%w: cannot delete yourself", ErrForbidden)
	}
	err := s.Store.Users().DeleteUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	slogx.FromContext(ctx).Info("user deleted", slog.String("actor_id", actorID), slog.String("user_id", userID))
	return nil
}
