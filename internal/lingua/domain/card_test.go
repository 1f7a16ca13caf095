package domain_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/lingua/internal/lingua/domain"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

func TestReviewSchedule(t *testing.T) {
	c := domain.NewCard("c1", "u1", "perro", "dog", "", t0)
	require.True(t, c.Due(t0))

	c.Review(5, t0)
	require.Equal(t, 1, c.Interval)
	require.InDelta(t, 2.6, c.Ease, 1e-9)
	require.Equal(t, t0.AddDate(0, 0, 1), c.DueAt)
	require.False(t, c.Due(t0))

	c.Review(4, t0)
	require.Equal(t, 6, c.Interval)
	require.InDelta(t, 2.6, c.Ease, 1e-9)

	c.Review(4, t0)
	require.Equal(t, 16, c.Interval) // round(6 * 2.6)
	require.Equal(t, 3, c.Repetitions)
}

func TestReviewFailureResets(t *testing.T) {
	c := domain.NewCard("c1", "u1", "gato", "cat", "", t0)
	c.Review(5, t0)
	c.Review(5, t0)
	c.Review(1, t0)

	require.Equal(t, 0, c.Repetitions)
	require.Equal(t, 1, c.Interval)
	require.Equal(t, 0, c.Streak)
	require.Equal(t, 1, c.LastQuality)
}

func TestEaseFloor(t *testing.T) {
	c := domain.NewCard("c1", "u1", "x", "y", "", t0)
	for range 20 {
		c.Review(0, t0)
	}
	require.Equal(t, domain.MinEase, c.Ease)
}

func TestQualityIsClamped(t *testing.T) {
	c := domain.NewCard("c1", "u1", "x", "y", "", t0)
	c.Review(9, t0)
	require.Equal(t, domain.MaxQuality, c.LastQuality)
	c.Review(-3, t0)
	require.Equal(t, 0, c.LastQuality)
}

func TestLearned(t *testing.T) {
	c := domain.NewCard("c1", "u1", "x", "y", "", t0)
	now := t0
	for i := range 5 {
		c.Review(5, now)
		now = c.DueAt
		if i < 4 {
			require.False(t, c.Learned)
		}
	}
	require.GreaterOrEqual(t, c.Interval, domain.LearnedInterval)
	require.True(t, c.Learned)
}

func TestBannerShowing(t *testing.T) {
	end := t0.Add(time.Hour)
	start := t0.Add(-time.Hour)
	b := domain.Banner{Active: true, StartsAt: &start, EndsAt: &end}

	require.True(t, b.Showing(t0))
	require.False(t, b.Showing(t0.Add(-2*time.Hour)))
	require.False(t, b.Showing(end))
	require.True(t, b.Expired(end))

	b.Active = false
	require.False(t, b.Showing(t0))
}

func TestLevelValid(t *testing.T) {
	require.True(t, domain.LevelB2.Valid())
	require.False(t, domain.Level("D1").Valid())
	require.False(t, domain.Level("").Valid())
}
