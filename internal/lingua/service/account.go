package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aussiebroadwan/lingua/internal/lingua/domain"
	"github.com/aussiebroadwan/lingua/internal/lingua/store"
	"github.com/aussiebroadwan/lingua/pkg/cryptox"
	"github.com/aussiebroadwan/lingua/pkg/idx"
	"github.com/aussiebroadwan/lingua/pkg/jwtx"
	"github.com/aussiebroadwan/lingua/pkg/slogx"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 256
	MaxNameLength     = 64
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,32}$`)

// Registration is a new account request.
type Registration struct {
	Username      string
	Password      string
	PreferredName string
	Level         domain.Level
}

// LoginResult is a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      domain.User
}

type AccountService struct {
	Store store.Store
	Auth  *Authority
	MFA   *MFAService
}

func validateCredentials(username, password string) error {
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("%w: username must be 3-32 letters, digits, '.', '_' or '-'", ErrInvalidInput)
	}
	if n := utf8.RuneCountInString(password); n < MinPasswordLength || n > MaxPasswordLength {
		return fmt.Errorf("%w: password must be %d-%d characters", ErrInvalidInput, MinPasswordLength, MaxPasswordLength)
	}
	return nil
}

func validateProfile(preferredName string, level domain.Level) error {
	if utf8.RuneCountInString(preferredName) > MaxNameLength {
		return fmt.Errorf("%w: preferred name too long", ErrInvalidInput)
	}
	if !level.Valid() {
		return fmt.Errorf("%w: unknown level %q", ErrInvalidInput, level)
	}
	return nil
}

// Register creates a user account with the user role.
func (s *AccountService) Register(ctx context.Context, reg Registration) (domain.User, error) {
	reg.Username = strings.TrimSpace(reg.Username)
	reg.PreferredName = strings.TrimSpace(reg.PreferredName)
	if reg.Level == "" {
		reg.Level = domain.LevelA1
	}
	if reg.PreferredName == "" {
		reg.PreferredName = reg.Username
	}
	if err := validateCredentials(reg.Username, reg.Password); err != nil {
		return domain.User{}, err
	}
	if err := validateProfile(reg.PreferredName, reg.Level); err != nil {
		return domain.User{}, err
	}

	hash, err := cryptox.HashPassword(reg.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	u := domain.User{
		ID:            idx.New().String(),
		Username:      reg.Username,
		PreferredName: reg.PreferredName,
		PasswordHash:  hash,
		Role:          domain.RoleUser,
		Level:         reg.Level,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, fmt.Errorf("%w: username taken", ErrConflict)
		}
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("user registered", slog.String("user_id", u.ID))
	return u, nil
}

// Login checks a password and, when MFA is enabled, the second factor.
// A missing code returns ErrMFARequired so the client can prompt for it.
func (s *AccountService) Login(ctx context.Context, username, password, code string) (LoginResult, error) {
	l := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn the same work as a real check.
			_ = cryptox.VerifyPassword(password, dummyHash)
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		l.Info("login failed", slog.String("user_id", u.ID))
		return LoginResult{}, ErrInvalidCredentials
	}

	amr := []string{jwtx.AMRPassword}
	if u.MFAEnabled() {
		if strings.TrimSpace(code) == "" {
			return LoginResult{}, ErrMFARequired
		}
		if err := s.MFA.CheckSecondFactor(ctx, u, code); err != nil {
			l.Info("login second factor failed", slog.String("user_id", u.ID))
			return LoginResult{}, err
		}
		amr = append(amr, jwtx.AMROTP)
	}

	tok, exp, err := s.Auth.Issue(u, amr)
	if err != nil {
		return LoginResult{}, err
	}
	l.Info("user logged in", slog.String("user_id", u.ID), slog.Bool("mfa", u.MFAEnabled()))
	return LoginResult{Token: tok, ExpiresAt: exp, User: u}, nil
}

// Me returns the account for userID.
func (s *AccountService) Me(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrNotFound
	}
	return u, err
}

// UpdateProfile changes the preferred name and level. Empty values keep
// the current ones.
func (s *AccountService) UpdateProfile(ctx context.Context, userID, preferredName string, level domain.Level) (domain.User, error) {
	u, err := s.Me(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	if name := strings.TrimSpace(preferredName); name != "" {
		u.PreferredName = name
	}
	if level != "" {
		u.Level = level
	}
	if err := validateProfile(u.PreferredName, u.Level); err != nil {
		return domain.User{}, err
	}
	if err := s.Store.Users().UpdateProfile(ctx, u.ID, u.PreferredName, u.Level); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

var dummyHash = func() string {
	h, err := cryptox.HashPassword("lingua-dummy-password")
	if err != nil {
		panic(err)
	}
	return h
}()
