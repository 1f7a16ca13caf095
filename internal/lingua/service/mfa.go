package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/lingua/internal/lingua/domain"
	"github.com/aussiebroadwan/lingua/internal/lingua/store"
	"github.com/aussiebroadwan/lingua/pkg/cryptox"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const backupCodeCount = 10

// Enrollment is a pending TOTP enrolment.
type Enrollment struct {
	Secret  string `json:"secret"`
	URL     string `json:"otpauth_url"`
	Issuer  string `json:"issuer"`
	Account string `json:"account"`
}

type MFAService struct {
	Store  store.Store
	Issuer string // shown in authenticator apps

	// Now is the clock used for code validation. Defaults to time.Now.
	Now func() time.Time
}

func (s *MFAService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Enroll creates a TOTP secret for the user. MFA is not enforced until
// Verify accepts a code from it. Enrolling again replaces a pending secret.
func (s *MFAService) Enroll(ctx context.Context, userID string) (Enrollment, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return Enrollment{}, err
	}
	if u.MFAEnabled() {
		return Enrollment{}, ErrMFAAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: u.Username,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return Enrollment{}, fmt.Errorf("generate totp key: %w", err)
	}
	if err := s.Store.Users().UpdateMFASecret(ctx, userID, key.Secret()); err != nil {
		return Enrollment{}, fmt.Errorf("store totp secret: %w", err)
	}

	return Enrollment{Secret: key.Secret(), URL: key.URL(), Issuer: s.Issuer, Account: u.Username}, nil
}

// Verify confirms enrolment with a code, enables MFA and returns one-time
// backup codes. They are shown once; only their fingerprints are stored.
func (s *MFAService) Verify(ctx context.Context, userID, code string) ([]string, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.MFAEnabled() {
		return nil, ErrMFAAlreadyEnabled
	}
	if u.MFASecret == "" {
		return nil, ErrMFANotEnrolled
	}
	if !s.validate(code, u.MFASecret) {
		return nil, ErrInvalidTOTPCode
	}

	codes := make([]string, backupCodeCount)
	for i := range codes {
		c, err := cryptox.GenerateToken(cryptox.TokenSize128)
		if err != nil {
			return nil, fmt.Errorf("generate backup code: %w", err)
		}
		codes[i] = c
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.BackupCodes().DeleteAllBackupCodes(ctx, userID); err != nil {
			return err
		}
		for _, c := range codes {
			if err := tx.BackupCodes().CreateBackupCode(ctx, userID, cryptox.FingerprintToken(c)); err != nil {
				return fmt.Errorf("store backup code: %w", err)
			}
		}
		return tx.Users().EnableMFA(ctx, userID, s.now().UTC())
	})
	if err != nil {
		return nil, err
	}
	return codes, nil
}

// Disable turns MFA off after checking a current code or backup code.
func (s *MFAService) Disable(ctx context.Context, userID, code string) error {
	u, err := s.user(ctx, userID)
	if err != nil {
		return err
	}
	if !u.MFAEnabled() {
		return ErrMFANotEnabled
	}
	if err := s.CheckSecondFactor(ctx, u, code); err != nil {
		return err
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.BackupCodes().DeleteAllBackupCodes(ctx, userID); err != nil {
			return err
		}
		return tx.Users().DisableMFA(ctx, userID)
	})
}

// CheckSecondFactor accepts a TOTP code or consumes a backup code.
func (s *MFAService) CheckSecondFactor(ctx context.Context, u domain.User, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrInvalidTOTPCode
	}
	if s.validate(code, u.MFASecret) {
		return nil
	}

	err := s.Store.BackupCodes().ConsumeBackupCode(ctx, u.ID, cryptox.FingerprintToken(code))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrInvalidTOTPCode
	default:
		return err
	}
}

func (s *MFAService) validate(code, secret string) bool {
	ok, err := totp.ValidateCustom(code, secret, s.now().UTC(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}

func (s *MFAService) user(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrNotFound
	}
	return u, err
}
