package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/lingua/pkg/idx"
	"github.com/aussiebroadwan/lingua/pkg/linguasdk"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, false)

	live, err := e.client.Liveness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)

	ready, err := e.client.Readiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Checks.Database)
	require.Equal(t, "ok", ready.Checks.Auth)
}

func TestReadyzWhileAuthInitialising(t *testing.T) {
	e := newEnv(t, true)

	h, code, err := e.client.ReadinessRaw(context.Background())
	require.NoError(t, err)
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Equal(t, "degraded", h.Status)
	require.Equal(t, "initialising", h.Checks.Auth)

	_, _, err = e.client.Login(context.Background(), linguasdk.LoginRequest{Username: "nobody", Password: testPassword})
	require.ErrorIs(t, err, linguasdk.ErrInvalidCredentials)
}

func TestAccounts(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, false)

	c, u := e.signup(t, "ana")
	require.Equal(t, "user", u.Role)
	require.Equal(t, "A1", u.Level)

	_, err := e.client.Register(ctx, linguasdk.RegisterRequest{Username: "ANA", Password: testPassword})
	require.ErrorIs(t, err, linguasdk.ErrConflict)

	_, err = e.client.Register(ctx, linguasdk.RegisterRequest{Username: "x", Password: testPassword})
	require.ErrorIs(t, err, linguasdk.ErrInvalidRequest)

	_, _, err = e.client.Login(ctx, linguasdk.LoginRequest{Username: "ana", Password: "wrong password"})
	require.ErrorIs(t, err, linguasdk.ErrInvalidCredentials)

	me, err := c.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, u.ID, me.ID)

	me, err = c.UpdateProfile(ctx, linguasdk.UpdateProfileRequest{PreferredName: "Ana", Level: "B2"})
	require.NoError(t, err)
	require.Equal(t, "Ana", me.PreferredName)
	require.Equal(t, "B2", me.Level)

	_, err = c.UpdateProfile(ctx, linguasdk.UpdateProfileRequest{Level: "Z9"})
	require.ErrorIs(t, err, linguasdk.ErrInvalidRequest)

	_, err = e.client.Me(ctx)
	require.ErrorIs(t, err, linguasdk.ErrInvalidToken)
	_, err = e.client.WithToken("garbage").Me(ctx)
	require.ErrorIs(t, err, linguasdk.ErrInvalidToken)

	require.NoError(t, c.Logout(ctx))
}

func TestLoginSetsSessionCookie(t *testing.T) {
	e := newEnv(t, false)
	e.signup(t, "bea")

	resp, err := http.Post(e.srv.URL+"/v1/auth/login", "application/json",
		strings.NewReader(`{"username":"bea","password":"`+testPassword+`"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "lingua_session" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	require.True(t, cookie.HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
}

func TestRejectsMalformedBodies(t *testing.T) {
	e := newEnv(t, false)

	for _, body := range []string{`{`, `{"username":"a","password":"b","admin":true}`, `{"username":"a"} {}`} {
		resp, err := http.Post(e.srv.URL+"/v1/auth/register", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		require.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
		require.Contains(t, string(b), linguasdk.ErrorCodeInvalidRequest)
	}
}

func TestBootstrap(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, false)

	_, err := e.client.Bootstrap(ctx, "wrong", linguasdk.BootstrapRequest{Username: "admin", Password: testPassword})
	require.ErrorIs(t, err, linguasdk.ErrAccessDenied)

	c, u := e.admin(t)
	require.Equal(t, "admin", u.Role)

	me, err := c.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "admin", me.Role)

	_, err = e.client.Bootstrap(ctx, bootstrapToken, linguasdk.BootstrapRequest{Username: "again", Password: testPassword})
	require.ErrorIs(t, err, linguasdk.ErrAlreadyBootstrapped)
}

func TestMFA(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, false)
	c, _ := e.signup(t, "cleo")

	_, err := c.VerifyTOTP(ctx, "123456")
	require.ErrorIs(t, err, linguasdk.ErrMFANotEnrolled)

	enr, err := c.EnrollTOTP(ctx)
	require.NoError(t, err)
	require.Contains(t, enr.URL, "otpauth://totp/")

	_, err = c.VerifyTOTP(ctx, "000000")
	require.ErrorIs(t, err, linguasdk.ErrInvalidCode)

	code, err := totp.GenerateCode(enr.Secret, time.Now())
	require.NoError(t, err)
	backup, err := c.VerifyTOTP(ctx, code)
	require.NoError(t, err)
	require.Len(t, backup.Codes, 10)

	me, err := c.Me(ctx)
	require.NoError(t, err)
	require.True(t, me.MFAEnabled)

	_, _, err = e.client.Login(ctx, linguasdk.LoginRequest{Username: "cleo", Password: testPassword})
	require.ErrorIs(t, err, linguasdk.ErrMFARequired)

	_, _, err = e.client.Login(ctx, linguasdk.LoginRequest{Username: "cleo", Password: testPassword, Code: backup.Codes[0]})
	require.NoError(t, err)
	// Backup codes are single use.
	_, _, err = e.client.Login(ctx, linguasdk.LoginRequest{Username: "cleo", Password: testPassword, Code: backup.Codes[0]})
	require.ErrorIs(t, err, linguasdk.ErrInvalidCode)

	require.NoError(t, c.DisableTOTP(ctx, backup.Codes[1]))
	_, _, err = e.client.Login(ctx, linguasdk.LoginRequest{Username: "cleo", Password: testPassword})
	require.NoError(t, err)
}

func TestVocabularyAndSync(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, false)
	c, _ := e.signup(t, "dora")

	card, err := c.AddCard(ctx, linguasdk.CardRequest{Word: "gato", Translation: "cat"})
	require.NoError(t, err)
	require.Equal(t, 2.5, card.Ease)

	_, err = c.AddCard(ctx, linguasdk.CardRequest{Word: "gato", Translation: "cat"})
	require.ErrorIs(t, err, linguasdk.ErrConflict)

	due, err := c.DueCards(ctx, 10)
	require.NoError(t, err)
	require.Len(t, due, 1)

	reviewed, err := c.Review(ctx, card.ID, 5)
	require.NoError(t, err)
	require.Equal(t, 1, reviewed.Interval)
	require.Equal(t, 1, reviewed.Repetitions)

	_, err = c.Review(ctx, card.ID, 9)
	require.ErrorIs(t, err, linguasdk.ErrInvalidRequest)
	_, err = c.Review(ctx, idx.New().String(), 3)
	require.ErrorIs(t, err, linguasdk.ErrNotFound)

	due, err = c.DueCards(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, due)

	// Another user never sees the card.
	other, _ := e.signup(t, "emil")
	_, err = other.Review(ctx, card.ID, 3)
	require.ErrorIs(t, err, linguasdk.ErrNotFound)

	offlineID := idx.New().String()
	payload := func(v any) json.RawMessage {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		return b
	}
	now := time.Now().UTC()
	ops := []linguasdk.SyncOp{
		{OpID: "op-2", Kind: "review", ClientTime: now.Add(time.Second), Payload: payload(map[string]any{"card_id": offlineID, "quality": 4})},
		{OpID: "op-1", Kind: "add_card", ClientTime: now, Payload: payload(map[string]any{"card_id": offlineID, "word": "perro", "translation": "dog"})},
		{OpID: "op-3", Kind: "delete_card", ClientTime: now.Add(2 * time.Second), Payload: payload(map[string]any{"card_id": card.ID})},
	}
	res, err := c.Sync(ctx, ops)
	require.NoError(t, err)
	require.Len(t, res.Results, 3)
	for _, r := range res.Results {
		require.Equal(t, "applied", r.Status, r.OpID)
	}
	require.Equal(t, "op-1", res.Results[0].OpID)

	again, err := c.Sync(ctx, ops)
	require.NoError(t, err)
	for _, r := range again.Results {
		require.True(t, r.Replayed)
	}

	changes, err := c.Changes(ctx, "")
	require.NoError(t, err)
	require.Len(t, changes.Cards, 2)
	byID := map[string]linguasdk.CardResponse{}
	for _, cr := range changes.Cards {
		byID[cr.ID] = cr
	}
	require.Equal(t, 1, byID[offlineID].Repetitions)
	require.NotNil(t, byID[card.ID].DeletedAt)

	caughtUp, err := c.Changes(ctx, changes.Cursor)
	require.NoError(t, err)
	require.Empty(t, caughtUp.Cards)
	require.Equal(t, changes.Cursor, caughtUp.Cursor)

	_, err = c.Changes(ctx, "not-a-cursor")
	require.ErrorIs(t, err, linguasdk.ErrInvalidRequest)

	_, err = c.Sync(ctx, []linguasdk.SyncOp{{Kind: "review"}})
	require.ErrorIs(t, err, linguasdk.ErrInvalidRequest)

	cards, err := c.Cards(ctx)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	require.NoError(t, c.DeleteCard(ctx, offlineID))
	require.ErrorIs(t, c.DeleteCard(ctx, offlineID), linguasdk.ErrNotFound)
}

func TestAdmin(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, false)
	admin, adminUser := e.admin(t)
	user, u := e.signup(t, "fern")

	// Regular users are kept out of admin endpoints.
	_, err := user.Users(ctx)
	require.ErrorIs(t, err, linguasdk.ErrAccessDenied)
	_, err = user.CreateStory(ctx, linguasdk.StoryRequest{Title: "t", Language: "es", Level: "A1", Body: "b"})
	require.ErrorIs(t, err, linguasdk.ErrAccessDenied)

	story, err := admin.CreateStory(ctx, linguasdk.StoryRequest{
		Title: "El gato", Language: "es", Level: "A1", Body: "Hay un gato.",
	})
	require.NoError(t, err)

	list, err := user.Stories(ctx, "A1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	got, err := user.Story(ctx, story.ID)
	require.NoError(t, err)
	require.Equal(t, "El gato", got.Title)

	card, err := user.AddCard(ctx, linguasdk.CardRequest{Word: "gato", Translation: "cat", StoryID: story.ID})
	require.NoError(t, err)
	require.Equal(t, story.ID, card.StoryID)

	banner, err := admin.CreateBanner(ctx, linguasdk.BannerRequest{Message: "Welcome!", Active: true})
	require.NoError(t, err)
	require.Equal(t, "info", banner.Level)

	active, err := e.client.ActiveBanners(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)

	_, err = admin.UpdateBanner(ctx, banner.ID, linguasdk.BannerRequest{Message: "Welcome!", Level: "info", Active: false})
	require.NoError(t, err)
	active, err = e.client.ActiveBanners(ctx)
	require.NoError(t, err)
	require.Empty(t, active)

	all, err := admin.Banners(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.NoError(t, admin.DeleteBanner(ctx, banner.ID))

	users, err := admin.Users(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	_, err = admin.SetRole(ctx, adminUser.ID, "user")
	require.ErrorIs(t, err, linguasdk.ErrAccessDenied)
	require.ErrorIs(t, admin.DeleteUser(ctx, adminUser.ID), linguasdk.ErrAccessDenied)

	promoted, err := admin.SetRole(ctx, u.ID, "admin")
	require.NoError(t, err)
	require.Equal(t, "admin", promoted.Role)

	// Role changes reach tokens issued before them.
	_, err = user.Users(ctx)
	require.NoError(t, err)
	_, err = admin.SetRole(ctx, u.ID, "user")
	require.NoError(t, err)
	_, err = user.Users(ctx)
	require.ErrorIs(t, err, linguasdk.ErrAccessDenied)

	require.NoError(t, admin.DeleteStory(ctx, story.ID))
	require.ErrorIs(t, admin.DeleteStory(ctx, story.ID), linguasdk.ErrNotFound)

	require.NoError(t, admin.DeleteUser(ctx, u.ID))
	_, err = user.Me(ctx)
	require.ErrorIs(t, err, linguasdk.ErrInvalidToken)
	_, err = user.Cards(ctx)
	require.ErrorIs(t, err, linguasdk.ErrInvalidToken)
}

func TestUnknownAPIPath(t *testing.T) {
	e := newEnv(t, false)

	resp, err := http.Get(e.srv.URL + "/v1/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
