package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/lingua/internal/lingua/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Sub-repositories are reached
// through methods so a Tx can hand out the same repos bound to the
// transaction, and a Tx cannot open another one.
type Store interface {
	Users() Users
	BackupCodes() BackupCodes
	Stories() Stories
	Cards() Cards
	SyncOps() SyncOps
	Banners() Banners

	ApplyMigrations() error

	// Tx starts a read/write transaction. The caller must Commit or Rollback.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped Store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// ListUsers returns users ordered by creation, oldest first.
	ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error)

	// CreateUser returns ErrAlreadyExists when the username is taken.
	CreateUser(ctx context.Context, u domain.User) error

	UpdateProfile(ctx context.Context, userID, preferredName string, level domain.Level) error
	UpdateRole(ctx context.Context, userID, role string) error
	UpdateMFASecret(ctx context.Context, userID, secret string) error
	EnableMFA(ctx context.Context, userID string, at time.Time) error

	// DisableMFA clears both the secret and the enabled timestamp.
	DisableMFA(ctx context.Context, userID string) error

	// DeleteUser cascades to cards, backup codes and sync records.
	DeleteUser(ctx context.Context, userID string) error

	CountUsers(ctx context.Context) (int, error)
	CountAdmins(ctx context.Context) (int, error)
}

type BackupCodes interface {
	CreateBackupCode(ctx context.Context, userID, codeHash string) error

	// ConsumeBackupCode deletes a matching unused code. It returns
	// ErrNotFound when no such code exists.
	ConsumeBackupCode(ctx context.Context, userID, codeHash string) error

	DeleteAllBackupCodes(ctx context.Context, userID string) error
}

type Stories interface {
	GetStory(ctx context.Context, id string) (domain.Story, error)

	// ListStories filters by level when level is non-empty, newest first.
	ListStories(ctx context.Context, level domain.Level, limit, offset int) ([]domain.Story, error)

	CreateStory(ctx context.Context, s domain.Story) error
	DeleteStory(ctx context.Context, id string) error
}

type Cards interface {
	// GetCard returns a live (not deleted) card owned by userID.
	GetCard(ctx context.Context, userID, id string) (domain.Card, error)

	// ListCards returns live cards ordered by creation.
	ListCards(ctx context.Context, userID string) ([]domain.Card, error)

	// ListDue returns live cards due at or before now, most overdue first.
	ListDue(ctx context.Context, userID string, now time.Time, limit int) ([]domain.Card, error)

	// ListChangedSince returns every card, tombstones included, written
	// after change sequence after, in sequence order.
	ListChangedSince(ctx context.Context, userID string, after int64) ([]domain.Card, error)

	// CreateCard returns ErrAlreadyExists when the user already has a live
	// card for the same word.
	CreateCard(ctx context.Context, c domain.Card) error

	// UpdateSchedule persists the SM-2 fields of c.
	UpdateSchedule(ctx context.Context, c domain.Card) error

	// SoftDeleteCard marks a card deleted at now.
	SoftDeleteCard(ctx context.Context, userID, id string, now time.Time) error

	// PurgeDeleted removes tombstones deleted before cutoff.
	PurgeDeleted(ctx context.Context, cutoff time.Time) (int64, error)
}

type SyncOps interface {
	// GetResult returns the recorded result of a previously applied op.
	GetResult(ctx context.Context, userID, opID string) (domain.OpResult, error)

	// RecordResult stores r. It returns ErrAlreadyExists for a replayed op.
	RecordResult(ctx context.Context, r domain.OpResult) error

	// DeleteBefore removes records applied before cutoff.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type Banners interface {
	GetBanner(ctx context.Context, id string) (domain.Banner, error)
	ListBanners(ctx context.Context) ([]domain.Banner, error)

	// ListActive returns banners showing at now.
	ListActive(ctx context.Context, now time.Time) ([]domain.Banner, error)

	CreateBanner(ctx context.Context, b domain.Banner) error
	UpdateBanner(ctx context.Context, b domain.Banner) error
	DeleteBanner(ctx context.Context, id string) error

	// DeleteExpired removes banners whose window closed before cutoff.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
