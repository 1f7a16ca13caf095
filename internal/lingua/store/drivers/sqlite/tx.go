package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/lingua/internal/lingua/store"
)

type txStore struct {
	tx *sql.Tx
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

// Close is a no-op; the outer Store owns the connection.
func (t *txStore) Close() error { return nil }

func (t *txStore) Ping(ctx context.Context) error { return nil }

// Nested transactions are not supported.
func (t *txStore) Tx(ctx context.Context) (store.Tx, error) { return nil, sql.ErrTxDone }

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Users() store.Users             { return &usersRepo{q: t.tx} }
func (t *txStore) BackupCodes() store.BackupCodes { return &backupCodesRepo{q: t.tx} }
func (t *txStore) Stories() store.Stories         { return &storiesRepo{q: t.tx} }
func (t *txStore) Cards() store.Cards             { return &cardsRepo{q: t.tx} }
func (t *txStore) SyncOps() store.SyncOps         { return &syncOpsRepo{q: t.tx} }
func (t *txStore) Banners() store.Banners         { return &bannersRepo{q: t.tx} }

// ApplyMigrations is a no-op; migrate before opening transactions.
func (t *txStore) ApplyMigrations() error { return nil }
