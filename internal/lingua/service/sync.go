package service

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/lingua/internal/lingua/domain"
	"github.com/aussiebroadwan/lingua/internal/lingua/store"
	"github.com/aussiebroadwan/lingua/pkg/slogx"
)

const MaxSyncBatch = 500

// Cursor marks a point in a user's change feed. It is opaque to clients.
type Cursor string

// ParseCursor decodes c into a change sequence. The empty cursor is the
// start of the feed.
func ParseCursor(c string) (int64, error) {
	if c == "" {
		return 0, nil
	}
	seq, err := strconv.ParseInt(c, 10, 64)
	if err != nil || seq < 0 {
		return 0, fmt.Errorf("%w: bad cursor", ErrInvalidInput)
	}
	return seq, nil
}

func cursorAt(seq int64) Cursor {
	return Cursor(strconv.FormatInt(seq, 10))
}

// SyncResult is the outcome of one op.
type SyncResult struct {
	OpID     string `json:"op_id"`
	Status   string `json:"status"`
	CardID   string `json:"card_id,omitempty"`
	Error    string `json:"error,omitempty"`
	Replayed bool   `json:"replayed,omitempty"`
}

// SyncBatch is the response to a pushed batch. It carries no cursor:
// clients pull with the cursor of their last pull, which also covers
// writes made by other devices in the meantime.
type SyncBatch struct {
	Results []SyncResult
}

// Changes is the response to a pull.
type Changes struct {
	Cards  []domain.Card
	Cursor Cursor
}

type addCardPayload struct {
	CardID      string `json:"card_id"`
	Word        string `json:"word"`
	Translation string `json:"translation"`
	StoryID     string `json:"story_id"`
}

type reviewPayload struct {
	CardID  string `json:"card_id"`
	Quality int    `json:"quality"`
}

type deletePayload struct {
	CardID string `json:"card_id"`
}

// SyncService applies operations queued by offline clients.
type SyncService struct {
	Store store.Store

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *SyncService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Apply runs ops in client time order. Each op commits on its own and is
// applied at most once per user: a replayed op id returns its recorded
// result. Ops that fail validation are recorded as rejected; storage
// errors abort the batch without recording the failing op.
func (s *SyncService) Apply(ctx context.Context, userID string, ops []domain.SyncOp) (SyncBatch, error) {
	if len(ops) > MaxSyncBatch {
		return SyncBatch{}, fmt.Errorf("%w: at most %d ops per batch", ErrInvalidInput, MaxSyncBatch)
	}
	seen := make(map[string]struct{}, len(ops))
	for _, op := range ops {
		if strings.TrimSpace(op.OpID) == "" {
			return SyncBatch{}, fmt.Errorf("%w: op_id is required", ErrInvalidInput)
		}
		if _, dup := seen[op.OpID]; dup {
			return SyncBatch{}, fmt.Errorf("%w: duplicate op_id %q in batch", ErrInvalidInput, op.OpID)
		}
		seen[op.OpID] = struct{}{}
	}

	ordered := slices.Clone(ops)
	slices.SortStableFunc(ordered, func(a, b domain.SyncOp) int {
		if c := a.ClientTime.Compare(b.ClientTime); c != 0 {
			return c
		}
		return cmp.Compare(a.OpID, b.OpID)
	})

	l := slogx.FromContext(ctx)
	results := make([]SyncResult, 0, len(ordered))
	var applied int
	for _, op := range ordered {
		res, err := s.applyOne(ctx, userID, op)
		if err != nil {
			return SyncBatch{}, fmt.Errorf("apply op %q: %w", op.OpID, err)
		}
		if !res.Replayed && res.Status == domain.OpApplied {
			applied++
		}
		results = append(results, res)
	}
	l.Info("sync batch applied", "ops", len(ops), "applied", applied)

	return SyncBatch{Results: results}, nil
}

func (s *SyncService) applyOne(ctx context.Context, userID string, op domain.SyncOp) (SyncResult, error) {
	var out SyncResult
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		prev, err := tx.SyncOps().GetResult(ctx, userID, op.OpID)
		if err == nil {
			out = SyncResult{OpID: prev.OpID, Status: prev.Status, CardID: prev.CardID, Error: prev.Error, Replayed: true}
			return nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		now := s.now()
		at := op.ClientTime
		if at.IsZero() || at.After(now) {
			at = now
		}

		cardID, opErr := s.dispatch(ctx, tx, userID, op, at, now)
		rec := domain.OpResult{
			UserID:    userID,
			OpID:      op.OpID,
			Kind:      op.Kind,
			Status:    domain.OpApplied,
			CardID:    cardID,
			AppliedAt: now,
		}
		if opErr != nil {
			if !isRejection(opErr) {
				return opErr
			}
			rec.Status = domain.OpRejected
			rec.Error = opErr.Error()
		}
		if err := tx.SyncOps().RecordResult(ctx, rec); err != nil {
			return err
		}
		out = SyncResult{OpID: rec.OpID, Status: rec.Status, CardID: rec.CardID, Error: rec.Error}
		return nil
	})
	return out, err
}

func (s *SyncService) dispatch(ctx context.Context, tx store.Tx, userID string, op domain.SyncOp, at, now time.Time) (string, error) {
	switch op.Kind {
	case domain.OpAddCard:
		var p addCardPayload
		if err := decodePayload(op.Payload, &p); err != nil {
			return "", err
		}
		c, err := addCard(ctx, tx, userID, NewCard{ID: p.CardID, Word: p.Word, Translation: p.Translation, StoryID: p.StoryID}, now)
		return c.ID, err

	case domain.OpReview:
		var p reviewPayload
		if err := decodePayload(op.Payload, &p); err != nil {
			return "", err
		}
		c, err := reviewCard(ctx, tx, userID, p.CardID, p.Quality, at, now)
		if err != nil {
			return p.CardID, err
		}
		return c.ID, nil

	case domain.OpDeleteCard:
		var p deletePayload
		if err := decodePayload(op.Payload, &p); err != nil {
			return "", err
		}
		return p.CardID, deleteCard(ctx, tx, userID, p.CardID, now)

	default:
		return "", fmt.Errorf("%w: unknown op kind %q", ErrInvalidInput, op.Kind)
	}
}

func decodePayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: payload is required", ErrInvalidInput)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: payload: %v", ErrInvalidInput, err)
	}
	return nil
}

func isRejection(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict)
}

// Pull returns the cards changed after cursor, tombstones included. The
// returned cursor is the sequence of the last card, or the input cursor
// when nothing changed.
func (s *SyncService) Pull(ctx context.Context, userID, cursor string) (Changes, error) {
	since, err := ParseCursor(cursor)
	if err != nil {
		return Changes{}, err
	}
	cards, err := s.Store.Cards().ListChangedSince(ctx, userID, since)
	if err != nil {
		return Changes{}, err
	}

	next := Cursor(cursor)
	if n := len(cards); n > 0 {
		next = cursorAt(cards[n-1].Seq)
	}
	return Changes{Cards: cards, Cursor: next}, nil
}
