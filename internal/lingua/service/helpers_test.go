package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/lingua/internal/lingua/domain"
	"github.com/aussiebroadwan/lingua/internal/lingua/service"
	"github.com/aussiebroadwan/lingua/internal/lingua/store/drivers/sqlite"
	"github.com/aussiebroadwan/lingua/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

type fixture struct {
	store    *sqlite.Store
	auth     *service.Authority
	mfa      *service.MFAService
	accounts *service.AccountService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := newTestStore(t)
	auth := service.NewAuthority(s, "lingua-test", time.Hour, slogx.Discard())
	auth.NumKeys = 1
	require.NoError(t, auth.Init(context.Background()))

	mfa := &service.MFAService{Store: s, Issuer: "Lingua"}
	return &fixture{
		store:    s,
		auth:     auth,
		mfa:      mfa,
		accounts: &service.AccountService{Store: s, Auth: auth, MFA: mfa},
	}
}

func (f *fixture) register(t *testing.T, username string) domain.User {
	t.Helper()
	u, err := f.accounts.Register(context.Background(), service.Registration{
		Username: username,
		Password: "correct horse",
		Level:    domain.LevelA2,
	})
	require.NoError(t, err)
	return u
}
