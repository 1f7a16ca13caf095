package service_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/aussiebroadwan/lingua/internal/lingua/domain"
	"github.com/aussiebroadwan/lingua/internal/lingua/service"
	"github.com/aussiebroadwan/lingua/pkg/idx"
	"github.com/stretchr/testify/require"
)

func op(id, kind string, at time.Time, payload any) domain.SyncOp {
	raw, _ := json.Marshal(payload)
	return domain.SyncOp{OpID: id, Kind: kind, Payload: raw, ClientTime: at}
}

func TestSyncAppliesInClientOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.register(t, "vera")

	clk := newClock(time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC))
	s := &service.SyncService{Store: f.store, Now: clk.Now}

	cardID := idx.New().String()
	t0 := clk.Now().Add(-time.Hour)

	// Sent out of order: the review must run after the add.
	batch, err := s.Apply(ctx, u.ID, []domain.SyncOp{
		op("2", domain.OpReview, t0.Add(time.Minute), map[string]any{"card_id": cardID, "quality": 5}),
		op("1", domain.OpAddCard, t0, map[string]any{"card_id": cardID, "word": "sol", "translation": "sun"}),
	})
	require.NoError(t, err)
	require.Len(t, batch.Results, 2)
	require.Equal(t, "1", batch.Results[0].OpID)
	require.Equal(t, domain.OpApplied, batch.Results[0].Status)
	require.Equal(t, cardID, batch.Results[0].CardID)
	require.Equal(t, domain.OpApplied, batch.Results[1].Status)

	c, err := f.store.Cards().GetCard(ctx, u.ID, cardID)
	require.NoError(t, err)
	require.Equal(t, 1, c.Repetitions)
	// Scheduled from the offline review time.
	require.True(t, t0.Add(time.Minute).AddDate(0, 0, 1).Equal(c.DueAt), c.DueAt)
}

func TestSyncIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.register(t, "walt")
	s := &service.SyncService{Store: f.store}

	cardID := idx.New().String()
	now := time.Now()
	ops := []domain.SyncOp{
		op("a", domain.OpAddCard, now, map[string]any{"card_id": cardID, "word": "luna", "translation": "moon"}),
		op("b", domain.OpReview, now.Add(time.Second), map[string]any{"card_id": cardID, "quality": 4}),
	}

	first, err := s.Apply(ctx, u.ID, ops)
	require.NoError(t, err)

	again, err := s.Apply(ctx, u.ID, ops)
	require.NoError(t, err)
	for i := range again.Results {
		require.True(t, again.Results[i].Replayed)
		require.Equal(t, first.Results[i].Status, again.Results[i].Status)
		require.Equal(t, first.Results[i].CardID, again.Results[i].CardID)
	}

	c, err := f.store.Cards().GetCard(ctx, u.ID, cardID)
	require.NoError(t, err)
	require.Equal(t, 1, c.Repetitions, "review applied once")

	// Op ids are scoped per user.
	other := f.register(t, "xena")
	res, err := s.Apply(ctx, other.ID, []domain.SyncOp{
		op("a", domain.OpAddCard, now, map[string]any{"word": "luna", "translation": "moon"}),
	})
	require.NoError(t, err)
	require.False(t, res.Results[0].Replayed)
	require.Equal(t, domain.OpApplied, res.Results[0].Status)
}

func TestSyncRejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.register(t, "yuri")
	s := &service.SyncService{Store: f.store}
	now := time.Now()

	batch, err := s.Apply(ctx, u.ID, []domain.SyncOp{
		op("1", domain.OpReview, now, map[string]any{"card_id": idx.New().String(), "quality": 3}),
		op("2", "rename_card", now.Add(time.Second), map[string]any{}),
		{OpID: "3", Kind: domain.OpAddCard, ClientTime: now.Add(2 * time.Second)},
		op("4", domain.OpDeleteCard, now.Add(3*time.Second), map[string]any{"card_id": "nope"}),
	})
	require.NoError(t, err)
	for _, r := range batch.Results {
		require.Equal(t, domain.OpRejected, r.Status, r.OpID)
		require.NotEmpty(t, r.Error)
	}

	// A rejection is recorded and replayed too.
	again, err := s.Apply(ctx, u.ID, []domain.SyncOp{op("1", domain.OpReview, now, map[string]any{})})
	require.NoError(t, err)
	require.True(t, again.Results[0].Replayed)
	require.Equal(t, domain.OpRejected, again.Results[0].Status)

	_, err = s.Apply(ctx, u.ID, []domain.SyncOp{op("", domain.OpReview, now, nil)})
	require.ErrorIs(t, err, service.ErrInvalidInput)
	_, err = s.Apply(ctx, u.ID, []domain.SyncOp{op("x", domain.OpReview, now, nil), op("x", domain.OpReview, now, nil)})
	require.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestSyncPull(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.register(t, "zoe")

	clk := newClock(time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC))
	s := &service.SyncService{Store: f.store, Now: clk.Now}
	v := &service.VocabularyService{Store: f.store, Now: clk.Now}

	a, err := v.Add(ctx, u.ID, service.NewCard{Word: "agua", Translation: "water"})
	require.NoError(t, err)
	clk.Advance(time.Minute)
	_, err = v.Add(ctx, u.ID, service.NewCard{Word: "pan", Translation: "bread"})
	require.NoError(t, err)

	all, err := s.Pull(ctx, u.ID, "")
	require.NoError(t, err)
	require.Len(t, all.Cards, 2)

	none, err := s.Pull(ctx, u.ID, string(all.Cursor))
	require.NoError(t, err)
	require.Empty(t, none.Cards)
	require.Equal(t, all.Cursor, none.Cursor)

	clk.Advance(time.Minute)
	require.NoError(t, v.Delete(ctx, u.ID, a.ID))

	changed, err := s.Pull(ctx, u.ID, string(all.Cursor))
	require.NoError(t, err)
	require.Len(t, changed.Cards, 1)
	require.Equal(t, a.ID, changed.Cards[0].ID)
	require.NotNil(t, changed.Cards[0].DeletedAt)

	_, err = s.Pull(ctx, u.ID, "yesterday")
	require.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestSyncPullSeesOtherDevices(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.register(t, "ines")

	clk := newClock(time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC))
	s := &service.SyncService{Store: f.store, Now: clk.Now}
	v := &service.VocabularyService{Store: f.store, Now: clk.Now}

	_, err := v.Add(ctx, u.ID, service.NewCard{Word: "casa", Translation: "house"})
	require.NoError(t, err)
	start, err := s.Pull(ctx, u.ID, "")
	require.NoError(t, err)
	require.Len(t, start.Cards, 1)
	require.NotEmpty(t, start.Cursor)

	// Another device writes while this one is offline.
	clk.Advance(time.Minute)
	other, err := v.Add(ctx, u.ID, service.NewCard{Word: "gato", Translation: "cat"})
	require.NoError(t, err)

	clk.Advance(time.Minute)
	cardID := idx.New().String()
	_, err = s.Apply(ctx, u.ID, []domain.SyncOp{
		op("p1", domain.OpAddCard, clk.Now(), map[string]any{"card_id": cardID, "word": "perro", "translation": "dog"}),
	})
	require.NoError(t, err)

	changes, err := s.Pull(ctx, u.ID, string(start.Cursor))
	require.NoError(t, err)
	require.Len(t, changes.Cards, 2)
	require.Equal(t, other.ID, changes.Cards[0].ID)
	require.Equal(t, cardID, changes.Cards[1].ID)
}

func TestSyncPullSameMillisecond(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.register(t, "juno")

	// The clock never moves, so every write shares one timestamp.
	clk := newClock(time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC))
	s := &service.SyncService{Store: f.store, Now: clk.Now}
	v := &service.VocabularyService{Store: f.store, Now: clk.Now}

	a, err := v.Add(ctx, u.ID, service.NewCard{Word: "rojo", Translation: "red"})
	require.NoError(t, err)

	first, err := s.Pull(ctx, u.ID, "")
	require.NoError(t, err)
	require.Len(t, first.Cards, 1)

	b, err := v.Add(ctx, u.ID, service.NewCard{Word: "azul", Translation: "blue"})
	require.NoError(t, err)
	_, err = v.Review(ctx, u.ID, a.ID, 4)
	require.NoError(t, err)

	next, err := s.Pull(ctx, u.ID, string(first.Cursor))
	require.NoError(t, err)
	require.Len(t, next.Cards, 2)
	require.Equal(t, b.ID, next.Cards[0].ID)
	require.Equal(t, a.ID, next.Cards[1].ID)
	require.Equal(t, 1, next.Cards[1].Repetitions)

	done, err := s.Pull(ctx, u.ID, string(next.Cursor))
	require.NoError(t, err)
	require.Empty(t, done.Cards)
}
