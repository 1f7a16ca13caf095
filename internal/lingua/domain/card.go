package domain

import (
	"math"
	"time"
)

// SM-2 parameters.
const (
	DefaultEase     = 2.5
	MinEase         = 1.3
	LearnedStreak   = 5
	LearnedInterval = 21 // days
	MaxQuality      = 5
)

// Card is one vocabulary item scheduled with SM-2.
type Card struct {
	ID          string
	UserID      string
	Word        string
	Translation string
	StoryID     string

	Ease        float64
	Interval    int // days
	Repetitions int
	Streak      int // consecutive reviews with quality >= 3
	LastQuality int
	Learned     bool

	DueAt      time.Time
	ReviewedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time // tombstone, kept for sync

	// Seq orders the user's change feed. The store assigns it on every
	// write.
	Seq int64
}

// NewCard returns a card due immediately.
func NewCard(id, userID, word, translation, storyID string, now time.Time) Card {
	return Card{
		ID:          id,
		UserID:      userID,
		Word:        word,
		Translation: translation,
		StoryID:     storyID,
		Ease:        DefaultEase,
		DueAt:       now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Review applies an SM-2 review with quality q (0-5) at now.
func (c *Card) Review(q int, now time.Time) {
	q = min(max(q, 0), MaxQuality)

	if q < 3 {
		c.Repetitions = 0
		c.Interval = 1
		c.Streak = 0
	} else {
		switch c.Repetitions {
		case 0:
			c.Interval = 1
		case 1:
			c.Interval = 6
		default:
			c.Interval = int(math.Round(float64(c.Interval) * c.Ease))
		}
		c.Repetitions++
		c.Streak++
	}

	d := float64(MaxQuality - q)
	c.Ease = max(c.Ease+(0.1-d*(0.08+d*0.02)), MinEase)

	c.LastQuality = q
	c.Learned = c.Streak >= LearnedStreak && c.Interval >= LearnedInterval
	c.DueAt = now.AddDate(0, 0, c.Interval)
	c.ReviewedAt = &now
	c.UpdatedAt = now
}

// Due reports whether the card should be reviewed at now.
func (c Card) Due(now time.Time) bool {
	return c.DeletedAt == nil && !c.DueAt.After(now)
}
